package spellcheck

import (
	"errors"
	"fmt"
)

// ErrMistakesFound is matched by errors.Is on the error returned from a
// pass that found mistakes.
var ErrMistakesFound = errors.New("potential spelling mistakes found")

// MistakesFoundError is returned by Process after the report was written.
type MistakesFoundError struct {
	Mistakes   []Mistake
	ReportPath string
}

func (e *MistakesFoundError) Error() string {
	return fmt.Sprintf("%d potential spelling mistakes found, see %s", len(e.Mistakes), e.ReportPath)
}

func (e *MistakesFoundError) Unwrap() error { return ErrMistakesFound }

// ReportError means the report could not be written. Mistakes buffered
// before the failure are not reported.
type ReportError struct {
	Path string
	Err  error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("write spelling report %s: %v", e.Path, e.Err)
}

func (e *ReportError) Unwrap() error { return e.Err }
