package extract

import "errors"

var (
	// ErrNotAnObject means the scan ran into markup before any opening
	// brace, i.e. the caller pointed at the wrong location.
	ErrNotAnObject = errors.New("extract: no object at scan position")
	// ErrUnterminated means the text ended before the object closed.
	ErrUnterminated = errors.New("extract: unterminated object")
)

// ScanObject scans text forward from start and returns the first balanced
// JSON object as an inclusive substring, plus the index immediately after
// its closing brace so callers can resume scanning for later occurrences.
//
// Depth only reacts to '{' and '}' outside string literals, so braces and
// brackets inside strings or arrays pass through untouched. A '<' seen
// before the opening brace aborts: the marker matched inside plain markup.
func ScanObject(text string, start int) (string, int, error) {
	depth := 0
	inString := false
	escaped := false
	objStart := -1

	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[objStart : i+1], i + 1, nil
				}
			}
		case '<':
			if depth == 0 {
				return "", 0, ErrNotAnObject
			}
		}
	}
	if objStart >= 0 {
		return "", 0, ErrUnterminated
	}
	return "", 0, ErrNotAnObject
}
