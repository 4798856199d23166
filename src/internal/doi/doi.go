package doi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"publist/src/internal/httpx"
)

// DefaultBaseURL is the doi.org resolver used for content negotiation.
const DefaultBaseURL = "https://dx.doi.org/"

// DefaultTimeout bounds a single resolver request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotFound means the resolver answered but had no data for the DOI.
	ErrNotFound = errors.New("doi: no data")
	// ErrInvalidFormat is returned for an unsupported output format.
	ErrInvalidFormat = errors.New("doi: unsupported format")
	// ErrTransport wraps network failures and server or auth errors.
	ErrTransport = errors.New("doi: transport error")
	// ErrMalformed is returned when a 200 response body cannot be decoded.
	ErrMalformed = errors.New("doi: malformed response")
)

// Client resolves DOIs through doi.org content negotiation.
type Client struct {
	http    httpx.Doer
	baseURL string
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient allows tests to inject a fake HTTP client.
func WithHTTPClient(d httpx.Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithBaseURL points the client at another resolver (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithRateLimit spaces requests to at most rps per second. rps <= 0 disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithTimeout replaces the default HTTP client with one using timeout d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a resolver client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result holds the outcome of Fetch. Metadata is set for FormatCiteproc,
// Text for the textual formats.
type Result struct {
	Format   Format
	Metadata *Metadata
	Text     string
}

// Fetch issues one request for id in the given format. A non-200 answer that
// is not a server or auth failure yields ErrNotFound.
func (c *Client) Fetch(ctx context.Context, id string, f Format) (Result, error) {
	accept, err := f.Accept()
	if err != nil {
		return Result{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{}, fmt.Errorf("%w: empty identifier", ErrNotFound)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("rate limiter: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(id), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", accept)
	httpx.SetUA(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, id); err != nil {
		return Result{}, err
	}

	out := Result{Format: f}
	if f == FormatCiteproc {
		var m Metadata
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
			return Result{}, fmt.Errorf("%w: %s: %w", ErrMalformed, id, err)
		}
		out.Metadata = &m
		return out, nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	out.Text = strings.TrimSpace(string(b))
	return out, nil
}

// FetchMetadata fetches the structured citeproc record for id.
func (c *Client) FetchMetadata(ctx context.Context, id string) (*Metadata, error) {
	r, err := c.Fetch(ctx, id, FormatCiteproc)
	if err != nil {
		return nil, err
	}
	return r.Metadata, nil
}

// FetchText fetches a textual rendering of id (BibTeX or an APA reference).
func (c *Client) FetchText(ctx context.Context, id string, f Format) (string, error) {
	if f == FormatCiteproc {
		return "", fmt.Errorf("%w: %s is not a text format", ErrInvalidFormat, f)
	}
	r, err := c.Fetch(ctx, id, f)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// resolveURL escapes each path segment of the DOI but keeps its slashes.
func (c *Client) resolveURL(id string) string {
	segs := strings.Split(id, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return c.baseURL + strings.Join(segs, "/")
}

func checkStatus(resp *http.Response, id string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", ErrTransport, httpx.NewStatusError("doi", resp))
	default:
		return fmt.Errorf("%w: %s (http %d)", ErrNotFound, id, resp.StatusCode)
	}
}
