// Package fetch supplies the extraction engine with watch-page markup and
// the last-resort oEmbed lookup. All retry, rate-limit, and timeout policy
// lives here; the engine itself never touches the network.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/tubemeta/tubemeta/pkg/fn"
	"github.com/tubemeta/tubemeta/pkg/metrics"
)

const (
	// Canonical watch URL. The hl/gl/persist parameters pin the page to
	// English/US so the regex and tree strategies see stable markup, and
	// bpctr skips the content-warning interstitial.
	watchURLFormat = "https://www.youtube.com/watch?v=%s&hl=en&persist_hl=1&gl=US&persist_gl=1&bpctr=9999999999"
	oembedURL      = "https://www.youtube.com/oembed?url=https%%3A%%2F%%2Fwww.youtube.com%%2Fwatch%%3Fv%%3D%s&format=json"

	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	maxPageBytes = 8 << 20
)

// Client fetches YouTube pages with rate limiting and retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      fn.RetryOpts
	log        zerolog.Logger

	requests *metrics.Counter
	failures *metrics.Counter
}

// New creates a client with sane defaults. The registry may be nil when no
// metrics endpoint is wired up.
func New(log zerolog.Logger, reg *metrics.Registry) *Client {
	if reg == nil {
		reg = metrics.New()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 3),
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Jitter:      true,
		},
		log:      log,
		requests: reg.Counter("fetch_requests_total", "Outbound YouTube requests."),
		failures: reg.Counter("fetch_failures_total", "Outbound YouTube request failures."),
	}
}

// SetHTTPClient swaps the underlying HTTP client; tests use this to point
// at a local server.
func (c *Client) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// WatchPage fetches the watch-page HTML for a video id.
func (c *Client) WatchPage(ctx context.Context, id string) fn.Result[string] {
	return fn.Retry(ctx, c.retry, func(ctx context.Context) fn.Result[string] {
		if err := c.limiter.Wait(ctx); err != nil {
			return fn.Err[string](err)
		}
		c.requests.Inc()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(watchURLFormat, id), nil)
		if err != nil {
			return fn.Err[string](err)
		}
		req.Header.Set("User-Agent", desktopUserAgent)
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.failures.Inc()
			return fn.Err[string](err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			c.failures.Inc()
			return fn.Errf[string]("watch page %s: %s", id, resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		if err != nil {
			c.failures.Inc()
			return fn.Err[string](err)
		}
		c.log.Debug().Str("video_id", id).Int("bytes", len(body)).Msg("fetched watch page")
		return fn.Ok(string(body))
	})
}
