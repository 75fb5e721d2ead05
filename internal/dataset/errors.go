package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile      = errors.New("empty file")
	ErrMissingColumns = errors.New("missing required columns")
)

// LoadError is returned when the dataset cannot be loaded at all. The
// dashboard cannot render anything without a table, so it is fatal at startup.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
