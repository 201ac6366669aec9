package extract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tubemeta/tubemeta/pkg/fn"
)

// ErrNoPlayerResponse means no usable embedded object could be located
// anywhere in the document. It is the only fatal extraction error; every
// other failure degrades field by field.
var ErrNoPlayerResponse = errors.New("extract: no player response found")

// Marker spellings YouTube has used for each embedded assignment, in the
// order they should be tried. First match wins.
var (
	playerResponseMarkers = []string{
		"var ytInitialPlayerResponse = ",
		"ytInitialPlayerResponse = ",
		"ytInitialPlayerResponse=",
	}
	initialDataMarkers = []string{
		"var ytInitialData = ",
		"ytInitialData = ",
		"ytInitialData=",
	}
)

// Blob is a balanced JSON substring plus the index just past its closing
// brace, used to resume scanning when an occurrence fails validation.
type Blob struct {
	Text string
	Next int
}

// LocateObject finds the first marker occurrence followed by a balanced
// object containing every required key. Config-style objects can appear
// several times per page, so an occurrence that fails key validation is
// skipped by resuming the search at the blob's continuation index rather
// than giving up.
func LocateObject(doc string, markers []string, requiredKeys ...string) (Blob, bool) {
	for _, marker := range markers {
		offset := 0
		for offset < len(doc) {
			idx := strings.Index(doc[offset:], marker)
			if idx < 0 {
				break
			}
			idx += offset
			text, next, err := ScanObject(doc, idx+len(marker))
			if err != nil {
				offset = idx + len(marker)
				continue
			}
			if hasKeys(text, requiredKeys) {
				return Blob{Text: text, Next: next}, true
			}
			offset = next
		}
	}
	return Blob{}, false
}

func hasKeys(blob string, keys []string) bool {
	for _, k := range keys {
		if !strings.Contains(blob, k) {
			return false
		}
	}
	return true
}

// LocateStringField pulls an isolated "KEY":"value" scalar straight out of
// raw markup. Last resort for when no balanced object was recoverable.
func LocateStringField(doc, key string) fn.Option[string] {
	re, err := regexp.Compile(`"` + regexp.QuoteMeta(key) + `":"((?:[^"\\]|\\.)*)"`)
	if err != nil {
		return fn.None[string]()
	}
	m := re.FindStringSubmatch(doc)
	if len(m) < 2 {
		return fn.None[string]()
	}
	return nonEmpty(UnescapeJSON(m[1]))
}
