package confluence

import (
	"fmt"
	"net/http"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// APIError is a non-2xx response from the Confluence server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("confluence: status %d", e.StatusCode)
	}
	return fmt.Sprintf("confluence: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap classifies the failure: 404 is a miss, anything else is transport.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrPageNotFound
	}
	return domain.ErrTransport
}
