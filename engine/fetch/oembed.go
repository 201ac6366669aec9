package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tubemeta/tubemeta/engine/extract"
	"github.com/tubemeta/tubemeta/pkg/fn"
)

// OEmbedInfo is the subset of the oEmbed response the application reads.
type OEmbedInfo struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	Author     string `json:"author"`
}

// Creator returns author_name, falling back to the older author key.
func (o OEmbedInfo) Creator() string {
	if o.AuthorName != "" {
		return o.AuthorName
	}
	return o.Author
}

// OEmbed queries the official oEmbed endpoint for a video's title and
// author. Used only as a last resort when the page cascade left both empty.
func (c *Client) OEmbed(ctx context.Context, id string) fn.Result[OEmbedInfo] {
	if err := c.limiter.Wait(ctx); err != nil {
		return fn.Err[OEmbedInfo](err)
	}
	c.requests.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(oembedURL, id), nil)
	if err != nil {
		return fn.Err[OEmbedInfo](err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.failures.Inc()
		return fn.Err[OEmbedInfo](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.failures.Inc()
		return fn.Errf[OEmbedInfo]("oembed %s: %s", id, resp.Status)
	}

	var info OEmbedInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fn.Err[OEmbedInfo](err)
	}
	return fn.Ok(info)
}

// FillMissing consults oEmbed when title or author came back empty from the
// extraction cascade. oEmbed failure is swallowed: the record keeps its
// placeholders and the error is only logged.
func (c *Client) FillMissing(ctx context.Context, meta extract.VideoMetadata) extract.VideoMetadata {
	if meta.Title != "" && meta.Author != "" {
		return meta
	}
	info, err := c.OEmbed(ctx, meta.ID).Unwrap()
	if err != nil {
		c.log.Debug().Str("video_id", meta.ID).Err(err).Msg("oembed fallback failed")
		return meta
	}
	if meta.Title == "" {
		meta.Title = info.Title
	}
	if meta.Author == "" {
		meta.Author = info.Creator()
	}
	return meta
}
