// Package pipeline runs the batch stages that turn raw workbooks into the
// master table: transform (normalize every workbook) and combine.
package pipeline

import (
	"errors"
	"fmt"
)

// PipelineError wraps an error with the phase and file where it occurred.
type PipelineError struct {
	Phase string
	File  string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Phase, e.File, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Failures returns every PipelineError joined into err.
func Failures(err error) []*PipelineError {
	var out []*PipelineError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		var pe *PipelineError
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		if errors.As(err, &pe) {
			out = append(out, pe)
		}
	}
	walk(err)
	return out
}
