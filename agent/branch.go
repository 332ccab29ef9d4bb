package agent

// buildBranchPath joins a parent branch label and a child segment with a
// dot. Either side may be empty.
func buildBranchPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	default:
		return parent + "." + child
	}
}
