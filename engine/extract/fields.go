package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tubemeta/tubemeta/pkg/fn"
)

// page bundles everything the field cascades read: the raw document, both
// located blobs, the typed decode, and the parsed trees. Built once per
// Extract call and never mutated.
type page struct {
	doc        string
	playerBlob string
	dataBlob   string
	typed      playerResponse
	playerTree gjson.Result
	dataTree   gjson.Result
}

// Path from ytInitialData down to the primary-info renderer list.
const watchContentsPath = "contents.twoColumnWatchNextResults.results.results.contents"

var (
	reViewCountBlob    = regexp.MustCompile(`"(?:view_count|viewCount)":\s*"?([0-9][0-9,]*)"?`)
	reViewCountSimple  = regexp.MustCompile(`"viewCountText":\s*\{"simpleText":"((?:[^"\\]|\\.)*)"`)
	reViewRenderer     = regexp.MustCompile(`"(?:videoViewCountRenderer|viewCountRenderer)":\{"viewCount":\{"simpleText":"((?:[^"\\]|\\.)*)"`)
	reShortViewCount   = regexp.MustCompile(`"shortViewCount":\{"simpleText":"((?:[^"\\]|\\.)*)"`)
	reMicroViewCount   = regexp.MustCompile(`"viewCount":"([0-9]+)"`)
	rePublishDate      = regexp.MustCompile(`"publishDate":"((?:[^"\\]|\\.)*)"`)
	reUploadDate       = regexp.MustCompile(`"uploadDate":"((?:[^"\\]|\\.)*)"`)
	reDatePublished    = regexp.MustCompile(`"datePublished"\s*:\s*"(\d{4}-\d{2}-\d{2})`)
	reDateTextSimple   = regexp.MustCompile(`"dateText":\{"simpleText":"((?:[^"\\]|\\.)*)"`)
	reLengthSeconds    = regexp.MustCompile(`"lengthSeconds":"([0-9]+)"`)
	reApproxDurationMs = regexp.MustCompile(`"approxDurationMs":"([0-9]+)"`)
	reDescContent      = regexp.MustCompile(`"(?:content|simpleText)":"((?:[^"\\]|\\.)*)"`)
	reDescription      = regexp.MustCompile(`"description":"((?:[^"\\]|\\.)*)"`)
	reLeadTimestamp    = regexp.MustCompile(`^(?:\d{1,2}:)?\d{1,2}:\d{2}\s+`)
)

func (p *page) title() string {
	return runCascade(
		func() fn.Option[string] { return nonEmpty(p.typed.VideoDetails.Title) },
		func() fn.Option[string] { return jsonStringField(p.playerBlob, "title") },
	).OrElse("")
}

func (p *page) author() string {
	return runCascade(
		func() fn.Option[string] { return nonEmpty(p.typed.VideoDetails.Author) },
		func() fn.Option[string] { return jsonStringField(p.playerBlob, "author") },
	).OrElse("")
}

func (p *page) channelID() string {
	return runCascade(
		func() fn.Option[string] { return nonEmpty(p.typed.VideoDetails.ChannelID) },
		func() fn.Option[string] { return jsonStringField(p.playerBlob, "channelId") },
	).OrElse("")
}

func (p *page) shortDescription() string {
	return runCascade(
		func() fn.Option[string] { return nonEmpty(p.typed.VideoDetails.ShortDescription) },
		func() fn.Option[string] { return jsonStringField(p.playerBlob, "shortDescription") },
	).OrElse("")
}

// countable accepts a capture only when the approximate grammar parses it
// or digits survive stripping. Otherwise the strategy counts as no result
// and the cascade moves on.
func countable(o fn.Option[string]) fn.Option[string] {
	v, ok := o.Get()
	if !ok {
		return o
	}
	if ApproxNumber(v).IsSome() {
		return o
	}
	if stripNonDigits(v) != "" {
		return o
	}
	return fn.None[string]()
}

// viewCount resolves both the raw capture and the canonical display count.
// The raw text is kept separate so live "watching now" phrasing survives
// for downstream liveness heuristics: the dedicated live lookup at the end
// overwrites the raw text whenever it yields anything, no matter which
// strategy produced the canonical count.
func (p *page) viewCount() (raw, display string) {
	capture := runCascade(
		func() fn.Option[string] { return countable(nonEmpty(p.typed.VideoDetails.ViewCount)) },
		func() fn.Option[string] { return countable(reCapture(reViewCountBlob, p.playerBlob)) },
		func() fn.Option[string] { return countable(reCapture(reViewCountSimple, p.doc)) },
		func() fn.Option[string] { return countable(nonEmpty(p.primaryViewCountText())) },
		func() fn.Option[string] { return countable(reCapture(reViewRenderer, p.doc)) },
		func() fn.Option[string] { return countable(reCapture(reShortViewCount, p.doc)) },
		func() fn.Option[string] {
			return countable(reCapture(reMicroViewCount, windowAfter(p.doc, `"playerMicroformatRenderer"`, 4096)))
		},
	)

	raw = UnescapeJSON(capture.OrElse(""))
	if raw != "" {
		if n, ok := ApproxNumber(raw).Get(); ok {
			display = FormatViewCount(n)
		} else if d := stripNonDigits(raw); d != "" {
			if n, err := strconv.ParseInt(d, 10, 64); err == nil {
				display = FormatViewCount(n)
			}
		}
	}

	if live := p.liveViewersText(); live != "" {
		raw = live
	}
	return raw, display
}

// primaryViewCountText walks ytInitialData to the watch page's own view
// count renderer.
func (p *page) primaryViewCountText() string {
	var out string
	p.dataTree.Get(watchContentsPath).ForEach(func(_, item gjson.Result) bool {
		vc := item.Get("videoPrimaryInfoRenderer.viewCount")
		if !vc.Exists() {
			return true
		}
		for _, name := range []string{"videoViewCountRenderer", "viewCountRenderer"} {
			r := vc.Get(name)
			if !r.Exists() {
				continue
			}
			if t := strings.TrimSpace(textOf(r.Get("viewCount"))); t != "" {
				out = t
				return false
			}
			if t := strings.TrimSpace(r.Get("shortViewCount.simpleText").String()); t != "" {
				out = t
				return false
			}
		}
		return true
	})
	return out
}

// liveViewersText is the dedicated "watching now" lookup. Live pages carry
// the concurrent-viewer count in viewCount.runs instead of simpleText.
func (p *page) liveViewersText() string {
	var out string
	p.dataTree.Get(watchContentsPath).ForEach(func(_, item gjson.Result) bool {
		runs := item.Get("videoPrimaryInfoRenderer.viewCount.videoViewCountRenderer.viewCount.runs")
		if !runs.Exists() {
			return true
		}
		var b strings.Builder
		runs.ForEach(func(_, run gjson.Result) bool {
			b.WriteString(run.Get("text").String())
			return true
		})
		if t := strings.TrimSpace(b.String()); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}

func (p *page) publishedTime() string {
	capture := runCascade(
		func() fn.Option[string] { return nonEmpty(p.typed.Microformat.PlayerMicroformatRenderer.PublishDate) },
		func() fn.Option[string] { return reCapture(rePublishDate, p.playerBlob) },
		func() fn.Option[string] { return reCapture(reUploadDate, p.playerBlob) },
		func() fn.Option[string] { return reCapture(reDatePublished, p.doc) },
		func() fn.Option[string] { return nonEmpty(p.dateTextFromTree()) },
		func() fn.Option[string] { return reCapture(reDateTextSimple, p.doc) },
		func() fn.Option[string] {
			return nonEmpty(p.playerTree.Get("microformat.playerMicroformatRenderer.publishDate").String())
		},
		func() fn.Option[string] {
			return reCapture(rePublishDate, windowAfter(p.doc, `"playerMicroformatRenderer"`, 4096))
		},
	)
	return FormatPublishedDate(UnescapeJSON(capture.OrElse("")))
}

func (p *page) dateTextFromTree() string {
	var out string
	p.dataTree.Get(watchContentsPath).ForEach(func(_, item gjson.Result) bool {
		if t := strings.TrimSpace(item.Get("videoPrimaryInfoRenderer.dateText.simpleText").String()); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}

// durationSeconds resolves the length in seconds; only positive values are
// accepted, and approxDurationMs divides down with integer truncation.
func (p *page) durationSeconds() int {
	if n := parseSeconds(p.typed.VideoDetails.LengthSeconds); n > 0 {
		return n
	}
	if m, ok := reCapture(reLengthSeconds, p.playerBlob).Get(); ok {
		if n := parseSeconds(m); n > 0 {
			return n
		}
	}
	if m, ok := reCapture(reApproxDurationMs, p.playerBlob).Get(); ok {
		if ms := parseSeconds(m); ms/1000 > 0 {
			return ms / 1000
		}
	}
	return 0
}

func parseSeconds(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// longDescription runs its own candidate cascade. Every strategy gets a
// chance; the longest non-empty candidate wins, and it is only accepted
// when strictly longer than the short description.
func (p *page) longDescription(short string) string {
	candidates := []string{
		p.secondaryInfoDescription(),
		p.engagementPanelDescription(),
		descRegexNear(p.doc, `"attributedDescription"`),
		descRegexNear(p.doc, `"microformatDataRenderer"`),
		descriptionFromRuns(p.dataBlob),
	}

	best := ""
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if len(c) > len(best) {
			best = c
		}
	}
	if len(best) > len(short) {
		return best
	}
	return ""
}

func (p *page) secondaryInfoDescription() string {
	var out string
	p.dataTree.Get(watchContentsPath).ForEach(func(_, item gjson.Result) bool {
		desc := item.Get("videoSecondaryInfoRenderer.description")
		if !desc.Exists() {
			return true
		}
		if t := textOf(desc); t != "" {
			out = t
			return false
		}
		return true
	})
	return out
}

// engagementPanelDescription digs into the structured-description panel.
func (p *page) engagementPanelDescription() string {
	var out string
	p.dataTree.Get("engagementPanels").ForEach(func(_, panel gjson.Result) bool {
		section := panel.Get("engagementPanelSectionListRenderer")
		if !section.Exists() {
			return true
		}
		ident := section.Get("panelIdentifier").String() + " " + section.Get("targetId").String()
		if !strings.Contains(ident, "structured-description") {
			return true
		}
		section.Get("content.structuredDescriptionContentRenderer.items").ForEach(func(_, item gjson.Result) bool {
			if t := textOf(item.Get("videoDescriptionMetadataRenderer.description")); t != "" {
				out = t
				return false
			}
			return true
		})
		return out == ""
	})
	return out
}

// descRegexNear scans a bounded window after a renderer marker for a
// content or simpleText string.
func descRegexNear(doc, marker string) string {
	w := windowAfter(doc, marker, 16384)
	if w == "" {
		return ""
	}
	if m, ok := reCapture(reDescContent, w).Get(); ok {
		return UnescapeJSON(m)
	}
	if m, ok := reCapture(reDescription, w).Get(); ok {
		return UnescapeJSON(m)
	}
	return ""
}

// descriptionFromRuns walks the "description":{"runs":[...]} object inside
// ytInitialData, concatenating each run's text. Chapter-style runs that
// open with a timestamp get pushed onto their own line unless the output
// already ends in one.
func descriptionFromRuns(data string) string {
	const marker = `"description":{"runs":[`
	idx := strings.Index(data, marker)
	if idx < 0 {
		return ""
	}
	obj, _, err := ScanObject(data, idx+len(`"description":`))
	if err != nil {
		return ""
	}
	var b strings.Builder
	gjson.Parse(obj).Get("runs").ForEach(func(_, run gjson.Result) bool {
		t := run.Get("text").String()
		if t == "" {
			return true
		}
		if reLeadTimestamp.MatchString(t) && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString(t)
		return true
	})
	return b.String()
}
