package artifact

import "fmt"

var (
	// ErrNotFound is returned when no report exists for the given session /
	// run pair.
	ErrNotFound = fmt.Errorf("report not found")
)
