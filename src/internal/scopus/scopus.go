// Package scopus lists an author's documents through the Elsevier Scopus Search API.
package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"publist/src/internal/httpx"
)

const (
	// BaseURL is the Scopus Search API endpoint.
	BaseURL = "https://api.elsevier.com/content/search/scopus"

	// PageSize is the number of entries requested per page.
	PageSize = 25

	// MaxResults is the deepest offset the Search API serves with start/count paging.
	MaxResults = 5000

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv = "SCOPUS_API_KEY"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("scopus: API key not set")
	// ErrInvalidID is returned for author ids that are not numeric.
	ErrInvalidID = errors.New("scopus: invalid author id")
	// ErrAuth indicates a rejected or unauthorized API key.
	ErrAuth = errors.New("scopus: authentication error")
	// ErrTransport wraps network failures and other non-200 answers.
	ErrTransport = errors.New("scopus: transport error")
)

var authorIDPattern = regexp.MustCompile(`^\d+$`)

// Client is a Scopus Search API client.
type Client struct {
	http    httpx.Doer
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption { return func(c *Client) { c.apiKey = key } }

// WithHTTPClient allows tests to inject a fake HTTP client.
func WithHTTPClient(d httpx.Doer) ClientOption { return func(c *Client) { c.http = d } }

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption { return func(c *Client) { c.baseURL = u } }

// WithRateLimit spaces page requests to at most rps per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a client. The API key defaults to $SCOPUS_API_KEY.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: BaseURL,
		apiKey:  os.Getenv(APIKeyEnv),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorDocuments pages through every document of the numeric author id.
// The raw page bodies are returned in request order.
func (c *Client) AuthorDocuments(ctx context.Context, authorID string) ([]Entry, [][]byte, error) {
	authorID = strings.TrimSpace(authorID)
	if !authorIDPattern.MatchString(authorID) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidID, authorID)
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, nil, fmt.Errorf("%w: export %s", ErrMissingAPIKey, APIKeyEnv)
	}
	var (
		entries []Entry
		pages   [][]byte
	)
	for start := 0; start < MaxResults; {
		page, raw, err := c.searchPage(ctx, authorID, start)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, raw)
		got := page.documents()
		entries = append(entries, got...)
		total := page.total()
		start += len(page.Results.Entry)
		if len(page.Results.Entry) == 0 || len(got) == 0 || start >= total {
			break
		}
	}
	return entries, pages, nil
}

func (c *Client) searchPage(ctx context.Context, authorID string, start int) (*Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	q := url.Values{}
	q.Set("query", "AU-ID("+authorID+")")
	q.Set("field", "dc:identifier,dc:title,prism:doi,prism:coverDate,subtypeDescription")
	q.Set("start", strconv.Itoa(start))
	q.Set("count", strconv.Itoa(PageSize))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ELS-APIKey", c.apiKey)
	httpx.SetUA(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, nil, fmt.Errorf("%w: %w", ErrAuth, httpx.NewStatusError("scopus", resp))
	case resp.StatusCode != http.StatusOK:
		return nil, nil, fmt.Errorf("%w: %w", ErrTransport, httpx.NewStatusError("scopus", resp))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	var page Response
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, nil, fmt.Errorf("scopus: decoding page at %d: %w", start, err)
	}
	return &page, raw, nil
}
