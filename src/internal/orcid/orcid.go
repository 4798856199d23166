// Package orcid reads a researcher's works from the ORCID public API.
package orcid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"publist/src/internal/httpx"
)

// BaseURL is the ORCID public API v3.0 endpoint.
const BaseURL = "https://pub.orcid.org/v3.0/"

var (
	// ErrInvalidID is returned for strings that are not ORCID iDs.
	ErrInvalidID = errors.New("orcid: invalid iD")
	// ErrTransport wraps network failures and non-200 answers.
	ErrTransport = errors.New("orcid: transport error")
)

var idPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// NormalizeID accepts a bare iD or an orcid.org URL and returns the bare iD.
func NormalizeID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "orcid.org/"); i >= 0 {
		s = s[i+len("orcid.org/"):]
	}
	s = strings.ToUpper(strings.Trim(s, "/"))
	if !idPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return s, nil
}

// Client fetches ORCID records.
type Client struct {
	http    httpx.Doer
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient allows tests to inject a fake HTTP client.
func WithHTTPClient(d httpx.Doer) Option { return func(c *Client) { c.http = d } }

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// NewClient creates an ORCID client.
func NewClient(opts ...Option) *Client {
	c := &Client{http: &http.Client{Timeout: 30 * time.Second}, baseURL: BaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRecord retrieves the full public record for id. The undecoded body is
// kept in Record.Raw.
func (c *Client) FetchRecord(ctx context.Context, id string) (*Record, error) {
	norm, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+norm, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	httpx.SetUA(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrTransport, httpx.NewStatusError("orcid", resp))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("orcid: decoding record %s: %w", norm, err)
	}
	rec.Raw = raw
	return &rec, nil
}
