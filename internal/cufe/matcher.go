// Package cufe locates the electronic invoice identifier (CUFE) in text
// recovered from PDF pages.
//
// Extraction is a two-tier heuristic. Tier 1 tolerates line breaks between
// hex digits, which some PDF layouts produce when the identifier is stacked
// one character per line; it is bounded by word boundaries, where a word
// character is any Unicode letter or number or '_', so accented Spanish text
// glued to a run is not a boundary. Tier 2 looks for a plain contiguous run
// and has no boundary check, so a longer hex run still yields its leftmost
// 95-100 characters. The first match in document order wins in both tiers;
// nothing is scored or checksum-validated.
package cufe

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

const (
	MinLength = 95
	MaxLength = 100
)

// pattern is the shape of a normalized identifier.
const pattern = `^[0-9a-fA-F]{95,100}$`

var reStrict = regexp.MustCompile(`[0-9a-fA-F]{95,100}`)

// Tier identifies which pass produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierSplit
	TierStrict
)

func (t Tier) String() string {
	switch t {
	case TierSplit:
		return "newline-tolerant"
	case TierStrict:
		return "strict"
	default:
		return "none"
	}
}

// Result is the outcome of a search. Value is empty when Tier is TierNone.
type Result struct {
	Value string
	Tier  Tier
}

// Found reports whether an identifier was located.
func (r Result) Found() bool {
	return r.Tier != TierNone
}

// Match runs both tiers over text and returns the first hit.
func Match(text string) Result {
	if id, ok := findSplit(text); ok {
		return Result{Value: id, Tier: TierSplit}
	}
	if m := reStrict.FindString(text); m != "" {
		return Result{Value: m, Tier: TierStrict}
	}
	return Result{}
}

// Find returns the identifier and true, or "" and false when absent.
func Find(text string) (string, bool) {
	r := Match(text)
	return r.Value, r.Found()
}

// Pattern is the normalized identifier shape, shared with export schemas.
func Pattern() string {
	return pattern
}

// Preview shortens an identifier for progress output.
func Preview(id string, n int) string {
	if n <= 0 || len(id) <= n {
		return id
	}
	return id[:n] + "..."
}

// findSplit is the newline-tolerant pass: \b([0-9a-fA-F]\n*){95,100}\b with
// Unicode word boundaries. Starts are tried left to right and, for each start,
// lengths from the longest down, mirroring a backtracking regexp engine.
func findSplit(text string) (string, bool) {
	for i := 0; i < len(text); {
		if isHex(text[i]) && !wordBefore(text, i) {
			if id, ok := splitAt(text, i); ok {
				return id, true
			}
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return "", false
}

// splitAt collects up to MaxLength hex digits from i, skipping newlines after
// each digit, and returns the longest prefix of at least MinLength digits that
// ends on a word boundary.
func splitAt(text string, i int) (string, bool) {
	var (
		digits = make([]byte, 0, MaxLength)
		ends   = make([]int, 0, MaxLength)
	)
	pos := i
	for len(digits) < MaxLength && pos < len(text) && isHex(text[pos]) {
		digits = append(digits, text[pos])
		pos++
		ends = append(ends, pos)
		for pos < len(text) && text[pos] == '\n' {
			pos++
		}
	}
	for k := len(digits); k >= MinLength; k-- {
		end := ends[k-1]
		// the digit is a word character, so a following newline or any
		// non-word character closes the match
		if end < len(text) && text[end] == '\n' || !wordAt(text, end) {
			return string(digits[:k]), true
		}
	}
	return "", false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func wordAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWord(r)
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWord(r)
}
