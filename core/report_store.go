package core

// ReportStore archives the rendered output of runs. Reports are keyed by
// session and run id and outlive the session they belong to.
type ReportStore interface {
	Save(sessionID, runID string, report []byte) error
	Get(sessionID, runID string) ([]byte, error)
	// List returns the run ids of a session in save order.
	List(sessionID string) ([]string, error)
	Delete(sessionID, runID string) error
}
