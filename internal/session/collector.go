package session

import (
	"errors"
	"fmt"
)

// ErrorCollector accumulates teardown errors so that one failing session
// does not stop the others from being closed.
type ErrorCollector struct {
	errors []error
}

// NewErrorCollector creates a new ErrorCollector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// Add records err, prefixed with context when context is not empty
func (ec *ErrorCollector) Add(context string, err error) {
	if err == nil {
		return
	}
	if context != "" {
		err = fmt.Errorf("%s: %w", context, err)
	}
	ec.errors = append(ec.errors, err)
}

// HasErrors returns true if any errors have been collected
func (ec *ErrorCollector) HasErrors() bool {
	return len(ec.errors) > 0
}

// Count returns the number of errors collected
func (ec *ErrorCollector) Count() int {
	return len(ec.errors)
}

// Result returns nil when nothing was collected. Otherwise it returns a
// single error that wraps every collected error, so errors.Is matches any
// of them.
func (ec *ErrorCollector) Result(context string) error {
	if len(ec.errors) == 0 {
		return nil
	}

	var err error
	if len(ec.errors) == 1 {
		err = ec.errors[0]
	} else {
		err = errors.Join(ec.errors...)
	}

	if context != "" {
		return fmt.Errorf("%s: %w", context, err)
	}
	return err
}
