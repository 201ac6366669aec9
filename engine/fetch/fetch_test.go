package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tubemeta/tubemeta/engine/extract"
	"github.com/tubemeta/tubemeta/pkg/fn"
)

// rewriteTransport rewrites all request URLs to point at our test server.
type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	newURL := fmt.Sprintf("%s%s", t.baseURL, req.URL.RequestURI())
	newReq, err := http.NewRequestWithContext(req.Context(), req.Method, newURL, req.Body)
	if err != nil {
		return nil, err
	}
	newReq.Header = req.Header
	if t.base != nil {
		return t.base.RoundTrip(newReq)
	}
	return http.DefaultTransport.RoundTrip(newReq)
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := New(zerolog.Nop(), nil)
	c.retry = fn.RetryOpts{MaxAttempts: 1}
	hc := srv.Client()
	hc.Transport = &rewriteTransport{base: hc.Transport, baseURL: srv.URL}
	c.SetHTTPClient(hc)
	return c
}

func TestWatchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("v") != "abc123" {
			t.Errorf("unexpected id %q", q.Get("v"))
		}
		if q.Get("hl") != "en" || q.Get("gl") != "US" {
			t.Error("locale pin missing from query")
		}
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("unexpected user agent %q", ua)
		}
		fmt.Fprint(w, "<html>watch page body</html>")
	}))
	defer srv.Close()

	c := testClient(t, srv)
	body, err := c.WatchPage(context.Background(), "abc123").Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "watch page body") {
		t.Errorf("wrong body: %q", body)
	}
	if c.requests.Value() != 1 {
		t.Errorf("requests counter = %d", c.requests.Value())
	}
}

func TestWatchPageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	if c.WatchPage(context.Background(), "abc123").IsOk() {
		t.Fatal("expected error on 429")
	}
	if c.failures.Value() == 0 {
		t.Error("failure counter not bumped")
	}
}

func TestOEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oembed" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"title":"A Title","author_name":"A Channel"}`)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	info, err := c.OEmbed(context.Background(), "abc123").Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Title != "A Title" || info.Creator() != "A Channel" {
		t.Errorf("wrong info: %+v", info)
	}
}

func TestOEmbedCreatorFallback(t *testing.T) {
	if (OEmbedInfo{Author: "legacy"}).Creator() != "legacy" {
		t.Error("author fallback broken")
	}
	if (OEmbedInfo{AuthorName: "new", Author: "legacy"}).Creator() != "new" {
		t.Error("author_name should win")
	}
}

func TestFillMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"title":"Recovered","author_name":"Someone"}`)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	meta := c.FillMissing(context.Background(), extract.VideoMetadata{ID: "x", Title: "Kept"})
	if meta.Title != "Kept" {
		t.Errorf("existing title overwritten: %q", meta.Title)
	}
	if meta.Author != "Someone" {
		t.Errorf("author not filled: %q", meta.Author)
	}
}

func TestFillMissingComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected when nothing is missing")
	}))
	defer srv.Close()

	c := testClient(t, srv)
	meta := extract.VideoMetadata{ID: "x", Title: "T", Author: "A"}
	if got := c.FillMissing(context.Background(), meta); got != meta {
		t.Errorf("record changed: %+v", got)
	}
}

func TestFillMissingSwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	meta := c.FillMissing(context.Background(), extract.VideoMetadata{ID: "x"})
	if meta.Title != "" || meta.Author != "" {
		t.Errorf("failed lookup should leave fields empty: %+v", meta)
	}
}
