package extract

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tubemeta/tubemeta/pkg/fn"
)

// strategy produces one candidate value for a single field.
type strategy func() fn.Option[string]

// runCascade tries strategies in order and returns the first candidate
// that trims to a non-empty string. Later strategies are never consulted
// after a hit, so priority is strict.
func runCascade(strategies ...strategy) fn.Option[string] {
	for _, s := range strategies {
		v, ok := s().Get()
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v != "" {
			return fn.Some(v)
		}
	}
	return fn.None[string]()
}

// nonEmpty wraps a plain string as a strategy result.
func nonEmpty(s string) fn.Option[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return fn.None[string]()
	}
	return fn.Some(s)
}

// reCapture runs a precompiled regex and returns its first capture group.
func reCapture(re *regexp.Regexp, text string) fn.Option[string] {
	if text == "" {
		return fn.None[string]()
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return fn.None[string]()
	}
	return nonEmpty(m[1])
}

// jsonStringField matches "field":"..." in a raw blob and unescapes the
// captured value.
func jsonStringField(blob, field string) fn.Option[string] {
	if blob == "" {
		return fn.None[string]()
	}
	re, err := regexp.Compile(`"` + regexp.QuoteMeta(field) + `":"((?:[^"\\]|\\.)*)"`)
	if err != nil {
		return fn.None[string]()
	}
	m := re.FindStringSubmatch(blob)
	if len(m) < 2 {
		return fn.None[string]()
	}
	return nonEmpty(UnescapeEntities(UnescapeJSON(m[1])))
}

// windowAfter returns up to n bytes of doc starting at the first occurrence
// of marker, for regex scans anchored near a known renderer name.
func windowAfter(doc, marker string, n int) string {
	idx := strings.Index(doc, marker)
	if idx < 0 {
		return ""
	}
	end := idx + len(marker) + n
	if end > len(doc) {
		end = len(doc)
	}
	return doc[idx:end]
}

// textOf reads a YouTube text node: simpleText when present, otherwise the
// concatenation of runs[].text.
func textOf(node gjson.Result) string {
	if s := node.Get("simpleText"); s.Exists() {
		return s.String()
	}
	var b strings.Builder
	node.Get("runs").ForEach(func(_, run gjson.Result) bool {
		b.WriteString(run.Get("text").String())
		return true
	})
	return b.String()
}
