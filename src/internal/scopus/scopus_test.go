package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

// pagedHTTP serves total documents, every third one without a DOI.
type pagedHTTP struct {
	total    int
	status   int
	requests []*http.Request
}

func (p *pagedHTTP) Do(req *http.Request) (*http.Response, error) {
	p.requests = append(p.requests, req)
	if p.status != 0 && p.status != 200 {
		return &http.Response{StatusCode: p.status, Body: io.NopCloser(strings.NewReader("denied")), Header: make(http.Header)}, nil
	}
	var start, count int
	fmt.Sscanf(req.URL.Query().Get("start"), "%d", &start)
	fmt.Sscanf(req.URL.Query().Get("count"), "%d", &count)
	var entries []map[string]string
	for i := start; i < start+count && i < p.total; i++ {
		e := map[string]string{"dc:identifier": fmt.Sprintf("SCOPUS_ID:%d", i)}
		if i%3 != 2 {
			e["prism:doi"] = fmt.Sprintf("10.1000/doc%d", i)
		}
		entries = append(entries, e)
	}
	if p.total == 0 {
		entries = []map[string]string{{"@_fa": "true", "error": "Result set was empty"}}
	}
	body, _ := json.Marshal(map[string]any{"search-results": map[string]any{
		"opensearch:totalResults": fmt.Sprint(p.total),
		"opensearch:startIndex":   fmt.Sprint(start),
		"entry":                   entries,
	}})
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(string(body))), Header: make(http.Header)}, nil
}

func TestAuthorDocuments_Pages(t *testing.T) {
	fake := &pagedHTTP{total: 60}
	c := NewClient(WithHTTPClient(fake), WithAPIKey("k"))
	entries, pages, err := c.AuthorDocuments(context.Background(), "7005289082")
	if err != nil {
		t.Fatalf("AuthorDocuments: %v", err)
	}
	if len(entries) != 60 || len(pages) != 3 || len(fake.requests) != 3 {
		t.Fatalf("entries=%d pages=%d requests=%d", len(entries), len(pages), len(fake.requests))
	}
	req := fake.requests[0]
	if req.Header.Get("X-ELS-APIKey") != "k" || req.URL.Query().Get("query") != "AU-ID(7005289082)" {
		t.Fatalf("request: %v %v", req.Header, req.URL)
	}
	dois := ExtractDOIs(entries)
	if len(dois) != 40 || dois[0] != "10.1000/doc0" || dois[2] != "10.1000/doc3" {
		t.Fatalf("dois: %d %v", len(dois), dois[:3])
	}
}

func TestAuthorDocuments_EmptyResultSet(t *testing.T) {
	c := NewClient(WithHTTPClient(&pagedHTTP{}), WithAPIKey("k"))
	entries, _, err := c.AuthorDocuments(context.Background(), "1")
	if err != nil {
		t.Fatalf("AuthorDocuments: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("want no entries, got %+v", entries)
	}
}

func TestAuthorDocuments_Errors(t *testing.T) {
	c := NewClient(WithHTTPClient(&pagedHTTP{total: 1}), WithAPIKey(""))
	if _, _, err := c.AuthorDocuments(context.Background(), "1"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("want ErrMissingAPIKey, got %v", err)
	}
	c = NewClient(WithHTTPClient(&pagedHTTP{total: 1}), WithAPIKey("k"))
	if _, _, err := c.AuthorDocuments(context.Background(), "Zio"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("want ErrInvalidID, got %v", err)
	}
	c = NewClient(WithHTTPClient(&pagedHTTP{status: 401}), WithAPIKey("k"))
	if _, _, err := c.AuthorDocuments(context.Background(), "1"); !errors.Is(err, ErrAuth) {
		t.Fatalf("want ErrAuth, got %v", err)
	}
	c = NewClient(WithHTTPClient(&pagedHTTP{status: 500}), WithAPIKey("k"))
	if _, _, err := c.AuthorDocuments(context.Background(), "1"); !errors.Is(err, ErrTransport) {
		t.Fatalf("want ErrTransport, got %v", err)
	}
}

func TestNewClient_APIKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	if c := NewClient(); c.apiKey != "from-env" {
		t.Fatalf("apiKey = %q", c.apiKey)
	}
}

func TestSourceCollect(t *testing.T) {
	s := Source{Client: NewClient(WithHTTPClient(&pagedHTTP{total: 4}), WithAPIKey("k")), AuthorID: "42"}
	col, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []string{"10.1000/doc0", "10.1000/doc1", "10.1000/doc3"}
	if !reflect.DeepEqual(col.DOIs, want) {
		t.Fatalf("DOIs = %v, want %v", col.DOIs, want)
	}
	var pages []json.RawMessage
	if err := json.Unmarshal(col.Raw, &pages); err != nil || len(pages) != 1 {
		t.Fatalf("raw pages: %d %v", len(pages), err)
	}
	if s.Name() != "Scopus" {
		t.Fatal("name")
	}
}
