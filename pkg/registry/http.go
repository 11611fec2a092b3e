package registry

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// newDefaultHTTPClient creates the HTTP client used for registry calls.
func newDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultTimeout,
	}
}

// HTTPError represents a non-success response from the registry.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// checkResponse converts a non-2xx response into an HTTPError.
func checkResponse(resp *http.Response, url string) error {
	if resp.StatusCode >= 400 {
		return HTTPError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			URL:        url,
		}
	}
	return nil
}

// safeClose closes a response body with error logging.
func safeClose(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Warning: failed to close HTTP response body: %v", err)
		}
	}
}
