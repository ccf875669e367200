package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrFormNotFound is returned by SelectForm when no form matches the selector.
	ErrFormNotFound = errors.New("form not found")

	// ErrFieldNotFound is returned by Form.Set when the form has no control with the given name.
	ErrFieldNotFound = errors.New("form field not found")

	// ErrNoPage is returned when an operation needs a current page but nothing has been opened yet.
	ErrNoPage = errors.New("no page has been opened")
)

// HTTPError represents a non-success HTTP response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s %s: %s", e.Method, e.URL, e.Status)
}
