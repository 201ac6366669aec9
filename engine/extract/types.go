// Package extract recovers video metadata from YouTube watch-page markup
// without an API key. It locates the JSON objects YouTube embeds in the
// page (ytInitialPlayerResponse, ytInitialData), attempts a strict typed
// decode, and falls back through per-field strategy cascades of tree
// lookups and regex scans when the typed decode is incomplete. Every
// function is pure with respect to its inputs; the package holds no state
// and is safe to call concurrently on independent documents.
package extract

// VideoMetadata is the assembled record for one video. It is immutable
// once built: the caller owns it, and caching or persistence happens
// outside this package.
type VideoMetadata struct {
	// ID is supplied by the caller and never derived from the page.
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	// ChannelID is the UC... browse id when recoverable.
	ChannelID        string `json:"channel_id,omitempty"`
	ShortDescription string `json:"short_description"`
	// LongDescription is set only when a candidate strictly longer than
	// ShortDescription was found.
	LongDescription string `json:"long_description,omitempty"`
	// ViewCountText is the canonical display form ("1,234,567 views").
	ViewCountText string `json:"view_count_text"`
	// RawViewCountText is the earliest raw capture, except that a live
	// "watching now" count always replaces it. Downstream liveness
	// heuristics depend on that phrasing surviving here.
	RawViewCountText  string `json:"raw_view_count_text"`
	PublishedTimeText string `json:"published_time_text"`
	DurationSeconds   int    `json:"duration_seconds,omitempty"`
	DurationText      string `json:"duration_text"`
}
