package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tubemeta/tubemeta/pkg/fn"
)

var (
	reApprox   = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)*)\s*([KkMmBb])?`)
	reNonDigit = regexp.MustCompile(`[^0-9]`)
	reISODate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// ApproxNumber parses locale-tolerant count forms like "1.2M", "12K" and
// "12,345" into an integer. Suffixes are case-insensitive. Returns None on
// anything without a parseable number.
func ApproxNumber(s string) fn.Option[int64] {
	s = strings.TrimSpace(s)
	if s == "" {
		return fn.None[int64]()
	}
	m := reApprox.FindStringSubmatch(s)
	if m == nil {
		return fn.None[int64]()
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return fn.None[int64]()
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		val *= 1e3
	case "M":
		val *= 1e6
	case "B":
		val *= 1e9
	}
	return fn.Some(int64(val))
}

// stripNonDigits is the fallback when the approximate grammar fails.
func stripNonDigits(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// FormatViewCount renders the canonical display string for a view count.
// Called exactly once per extraction, after the cascade has settled.
func FormatViewCount(n int64) string {
	return groupDigits(n) + " views"
}

// FormatPublishedDate renders the canonical display string for a publish
// date. Bare ISO dates ("2023-07-14") are reformatted; text that is
// already human-readable passes through.
func FormatPublishedDate(s string) string {
	s = strings.TrimSpace(s)
	if m := reISODate.FindString(s); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

// FormatDuration renders seconds as "M:SS" under an hour, else "H:MM:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// groupDigits inserts thousands separators: 1234567 -> "1,234,567".
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// UnescapeJSON resolves the escape sequences that show up in regex-captured
// JSON string fragments: \" \\ \/ \n \t \r and \uXXXX.
func UnescapeJSON(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'u':
			if i+4 < len(s) {
				if code, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(code))
					i += 4
					continue
				}
			}
			b.WriteByte('\\')
			b.WriteByte('u')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// UnescapeEntities resolves the handful of HTML entities YouTube leaves in
// embedded text.
func UnescapeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
