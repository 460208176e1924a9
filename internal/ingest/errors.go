package ingest

import "fmt"

// FormatError reports that the expected sheet, table or header could not be
// located in a source. Retrying without a corrected file or config fails
// the same way.
type FormatError struct {
	Format Format
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingest %s: %s", e.Format, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// BusinessRule marks the error as caused by input data.
func (e *FormatError) BusinessRule() bool { return true }
