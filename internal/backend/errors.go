package backend

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend answers 401, regardless of
// which call triggered it. The caller must purge credentials and reset
// session state before any redirect happens.
var ErrUnauthorized = errors.New("backend.unauthorized")

// APIError carries a non-2xx backend status and its message verbatim, so
// validation failures surface to the user unmodified.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}
