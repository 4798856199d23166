package doi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type testHTTP struct {
	status int
	body   string
	req    *http.Request
}

func (t *testHTTP) Do(req *http.Request) (*http.Response, error) {
	t.req = req
	return &http.Response{StatusCode: t.status, Body: io.NopCloser(strings.NewReader(t.body)), Header: make(http.Header)}, nil
}

type failingHTTP struct{}

func (failingHTTP) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

const sampleCSL = `{
	"title": "A Sample Article",
	"author": [
		{"family":"Holdgraf","given":"Chris","ORCID":"http://orcid.org/0000-1111"},
		{"family":"Smith","given":"John"},
		{"literal":"Brain Consortium"}
	],
	"container-title": ["Journal of Things"],
	"issued": {"date-parts": [[2023,7,14]]},
	"reference-count": 42,
	"DOI": "10.1234/sample",
	"URL": "https://doi.org/10.1234/sample",
	"publisher": "ACME",
	"type": "journal-article"
}`

func TestFetchMetadata_Success(t *testing.T) {
	fake := &testHTTP{status: 200, body: sampleCSL}
	c := NewClient(WithHTTPClient(fake))

	m, err := c.FetchMetadata(context.Background(), "10.1234/sample")
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	if got := fake.req.Header.Get("Accept"); got != "application/citeproc+json" {
		t.Fatalf("accept header: %q", got)
	}
	if got := fake.req.URL.String(); got != "https://dx.doi.org/10.1234/sample" {
		t.Fatalf("request url: %q", got)
	}
	if m.Title != "A Sample Article" || m.ContainerTitle != "Journal of Things" {
		t.Fatalf("titles: %+v", m)
	}
	if y, ok := m.Year(); !ok || y != 2023 {
		t.Fatalf("year: %d %v", y, ok)
	}
	if m.ReferenceCount == nil || *m.ReferenceCount != 42 {
		t.Fatalf("reference count: %v", m.ReferenceCount)
	}
	if len(m.Author) != 3 || m.Author[0].ORCID != "http://orcid.org/0000-1111" || m.Author[2].Literal != "Brain Consortium" {
		t.Fatalf("authors: %+v", m.Author)
	}
	if m.Publisher != "ACME" || m.Type != "journal-article" || m.URL == "" {
		t.Fatalf("fields: %+v", m)
	}
}

func TestFetch_TextFormats(t *testing.T) {
	cases := []struct {
		format Format
		accept string
	}{
		{FormatBibTeX, "application/x-bibtex"},
		{FormatReference, "text/x-bibliography; style=apa"},
	}
	for _, tc := range cases {
		fake := &testHTTP{status: 200, body: "  @article{x}\n"}
		c := NewClient(WithHTTPClient(fake))
		txt, err := c.FetchText(context.Background(), "10.1/x", tc.format)
		if err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		if txt != "@article{x}" {
			t.Fatalf("%s: text %q", tc.format, txt)
		}
		if got := fake.req.Header.Get("Accept"); got != tc.accept {
			t.Fatalf("%s: accept %q, want %q", tc.format, got, tc.accept)
		}
	}
}

func TestFetch_NotFound(t *testing.T) {
	for _, status := range []int{404, 400, 204, 302} {
		c := NewClient(WithHTTPClient(&testHTTP{status: status, body: "nope"}))
		_, err := c.FetchMetadata(context.Background(), "10.0/none")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("status %d: want ErrNotFound, got %v", status, err)
		}
	}
}

func TestFetch_TransportErrors(t *testing.T) {
	for _, status := range []int{401, 403, 429, 500, 503} {
		c := NewClient(WithHTTPClient(&testHTTP{status: status, body: "boom"}))
		_, err := c.FetchMetadata(context.Background(), "10.0/x")
		if !errors.Is(err, ErrTransport) || errors.Is(err, ErrNotFound) {
			t.Fatalf("status %d: want ErrTransport, got %v", status, err)
		}
	}
	c := NewClient(WithHTTPClient(failingHTTP{}))
	if _, err := c.FetchMetadata(context.Background(), "10.0/x"); !errors.Is(err, ErrTransport) {
		t.Fatalf("network failure: want ErrTransport, got %v", err)
	}
}

func TestFetch_Malformed(t *testing.T) {
	c := NewClient(WithHTTPClient(&testHTTP{status: 200, body: "<html>"}))
	if _, err := c.FetchMetadata(context.Background(), "10.0/x"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestFetch_InvalidFormatFailsFast(t *testing.T) {
	fake := &testHTTP{status: 200}
	c := NewClient(WithHTTPClient(fake))
	if _, err := c.Fetch(context.Background(), "10.0/x", Format(99)); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
	if fake.req != nil {
		t.Fatal("no request should be made for an invalid format")
	}
	if _, err := c.FetchText(context.Background(), "10.0/x", FormatCiteproc); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("FetchText citeproc: want ErrInvalidFormat, got %v", err)
	}
}

func TestFetch_EscapesSegments(t *testing.T) {
	fake := &testHTTP{status: 200, body: "x"}
	c := NewClient(WithHTTPClient(fake), WithBaseURL("https://resolver.test"))
	if _, err := c.FetchText(context.Background(), "10.1002/(SICI)1097 x#1", FormatReference); err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if got := fake.req.URL.EscapedPath(); got != "/10.1002/%28SICI%291097%20x%231" && got != "/10.1002/(SICI)1097%20x%231" {
		t.Fatalf("escaped path: %q", got)
	}
}

func TestFetch_HTTPTestServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/10.5555/abc" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(sampleCSL))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
	if _, err := c.FetchMetadata(context.Background(), "10.5555/abc"); err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	if _, err := c.FetchMetadata(context.Background(), "10.5555/missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"dict": FormatCiteproc, "citeproc": FormatCiteproc, "BibTeX": FormatBibTeX, "apa": FormatReference, "reference": FormatReference}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("ris"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}
}
