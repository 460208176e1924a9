package pipeline

import "fmt"

// ValidationError reports input the pipeline cannot work on: nil or empty
// tables, or a mapping that cannot produce the canonical schema.
type ValidationError struct {
	Step   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline %s: %s", e.Step, e.Reason)
}

// BusinessRule marks the error as caused by input data.
func (e *ValidationError) BusinessRule() bool { return true }
