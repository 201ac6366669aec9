package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("requests_total", "Total requests.")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("value = %d", c.Value())
	}
	if r.Counter("requests_total", "") != c {
		t.Fatal("same name should return the same counter")
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("inflight", "In-flight work.")
	g.Set(3)
	g.Inc()
	g.Dec()
	if g.Value() != 3 {
		t.Fatalf("value = %d", g.Value())
	}
}

func TestRender(t *testing.T) {
	r := New()
	r.Counter("hits_total", "Cache hits.").Add(7)
	r.Gauge("queue_depth", "").Set(2)

	out := r.Render()
	for _, want := range []string{
		"# HELP hits_total Cache hits.",
		"# TYPE hits_total counter",
		"hits_total 7",
		"# TYPE queue_depth gauge",
		"queue_depth 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "# HELP queue_depth") {
		t.Error("helpless metric rendered a HELP line")
	}
}

func TestWithLabels(t *testing.T) {
	if got := WithLabels("reqs_total", "code", "200"); got != `reqs_total{code="200"}` {
		t.Errorf("got %q", got)
	}
	if got := WithLabels("reqs_total", "code", "200", "method", "GET"); got != `reqs_total{code="200",method="GET"}` {
		t.Errorf("got %q", got)
	}
	if got := WithLabels("reqs_total", "dangling"); got != "reqs_total" {
		t.Errorf("odd labels should be ignored, got %q", got)
	}
}

func TestLabeledSeriesShareTypeLine(t *testing.T) {
	r := New()
	r.Counter(WithLabels("reqs_total", "code", "200"), "Requests by code.").Add(2)
	r.Counter(WithLabels("reqs_total", "code", "500"), "").Add(1)

	out := r.Render()
	if strings.Count(out, "# TYPE reqs_total counter") != 1 {
		t.Errorf("expected one TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `reqs_total{code="200"} 2`) || !strings.Contains(out, `reqs_total{code="500"} 1`) {
		t.Errorf("labeled series missing:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("ok_total", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "ok_total 1") {
		t.Errorf("body:\n%s", rec.Body.String())
	}
}
