package httpx

import (
	"fmt"
	"io"
	"net/http"
)

// Doer is the minimal HTTP client interface used across packages.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserAgent identifies publist on outbound requests. doi.org and ORCID ask
// API clients to send a descriptive agent with a contact URL.
const UserAgent = "publist/1.0 (+https://github.com/publist/publist)"

// SetUA sets the UserAgent header on the request.
func SetUA(req *http.Request) {
	if req != nil {
		req.Header.Set("User-Agent", UserAgent)
	}
}

// BodyExcerpt reads at most 4 KiB of the response body for error messages.
func BodyExcerpt(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return string(b)
}

// StatusError describes an unexpected HTTP status from an upstream API.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Service, e.StatusCode, e.Body)
}

// NewStatusError builds a StatusError from resp, consuming a body excerpt.
func NewStatusError(service string, resp *http.Response) *StatusError {
	return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: BodyExcerpt(resp)}
}
