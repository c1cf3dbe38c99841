package edgar

import "fmt"

// APIError represents an error response from sec-api.io.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sec-api error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}
