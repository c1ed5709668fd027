package youtube

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// APIError reports that the remote platform rejected a call. Status is the
// HTTP status code (zero for pure transport failures) and Body carries the
// platform's error payload when one was returned.
type APIError struct {
	// Op is the operation: "search", "details", "upload".
	Op string
	// Status is the HTTP status code, or zero for transport errors.
	Status int
	// Body is the response body of the failed call, when available.
	Body string
	// Err is the underlying error.
	Err error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("youtube: %s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("youtube: %s failed: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// wrapAPIError converts a google-api-go-client error into an APIError,
// extracting status and body when the platform answered.
func wrapAPIError(op string, err error) error {
	apiErr := &APIError{Op: op, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr.Status = gerr.Code
		apiErr.Body = gerr.Body
	}
	return apiErr
}
