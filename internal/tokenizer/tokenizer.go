// Package tokenizer implements the first pipeline stage: turning a raw
// crowdsourced saved-name string into a CleanedEntry of lowercase tokens,
// and extracting the per-token structural features the classifier scores.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"identityresolver/internal/model"
)

// indicScripts are the saved-name alphabets beyond Latin this system accepts.
// A saved name is a human's own spelling of a name, so we whitelist scripts
// rather than trying to enumerate every disallowed symbol.
var indicScripts = []*unicode.RangeTable{
	unicode.Devanagari,
	unicode.Bengali,
	unicode.Gurmukhi,
	unicode.Gujarati,
	unicode.Oriya,
	unicode.Tamil,
	unicode.Telugu,
	unicode.Kannada,
	unicode.Malayalam,
}

// junkRunChars collapse to a single space when they appear two or more
// times in a row; a lone occurrence falls through to the allowed-rune
// filter below and is replaced the same way.
const junkRunChars = "!@#$%^&*=_~|\\<>/"

func isIndic(r rune) bool {
	return unicode.IsOneOf(indicScripts, r)
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r == 0x200D || r == 0x20E3:
		return true
	default:
		return false
	}
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case isIndic(r):
		return true
	case r == ' ' || r == '.' || r == '-' || r == '\'':
		return true
	default:
		return false
	}
}

func isJunkRunChar(r rune) bool {
	return strings.ContainsRune(junkRunChars, r)
}

// stripBracketed drops the content of [...], (...) and {...} spans,
// including the delimiters themselves. Spans are matched by bracket kind
// independently; an unclosed opener is treated as extending to the end of
// the string.
func stripBracketed(s string) string {
	closers := map[rune]rune{'[': ']', '(': ')', '{': '}'}
	var out strings.Builder
	var stack []rune
	for _, r := range s {
		if len(stack) == 0 {
			if want, ok := closers[r]; ok {
				stack = append(stack, want)
				continue
			}
			out.WriteRune(r)
			continue
		}
		if r == stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
			continue
		}
		if want, ok := closers[r]; ok {
			stack = append(stack, want)
		}
	}
	return out.String()
}

func collapseJunkRuns(s string) string {
	var out strings.Builder
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		if !isJunkRunChar(runes[i]) {
			out.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isJunkRunChar(runes[j]) {
			j++
		}
		if j-i >= 2 {
			out.WriteRune(' ')
		} else {
			out.WriteRune(runes[i])
		}
		i = j
	}
	return out.String()
}

func stripEmoji(s string) string {
	var out strings.Builder
	for _, r := range s {
		if isEmoji(r) {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func replaceDisallowed(s string) string {
	var out strings.Builder
	for _, r := range s {
		if isAllowedRune(r) {
			out.WriteRune(r)
		} else {
			out.WriteRune(' ')
		}
	}
	return out.String()
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// NormalizeEntry runs the character pipeline over a CrowdEntry and splits
// the result into tokens. It reports ok=false when no usable token survives
// (the saved name was entirely emoji, brackets, or disallowed symbols).
func NormalizeEntry(entry model.CrowdEntry) (model.CleanedEntry, bool) {
	s := entry.SavedName
	s = stripEmoji(s)
	s = stripBracketed(s)
	s = collapseJunkRuns(s)
	s = replaceDisallowed(s)
	s = collapseWhitespace(s)
	s = strings.TrimSpace(s)

	words := strings.Fields(s)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".-'")
		if w == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(w))
	}

	if len(tokens) == 0 {
		return model.CleanedEntry{}, false
	}

	return model.CleanedEntry{
		Raw:        entry.SavedName,
		Cleaned:    s,
		Tokens:     tokens,
		UserID:     entry.UserID,
		TrustScore: entry.TrustScore,
		Timestamp:  entry.Timestamp,
		Country:    entry.Country,
	}, true
}

// charKind classifies a single rune for CharPattern purposes: D(igit),
// V(owel), C(onsonant/other-letter), X (anything else, e.g. punctuation
// that survived normalization such as '.', '-', '\'').
func charKind(r rune) byte {
	switch {
	case unicode.IsDigit(r):
		return 'D'
	case isVowel(r):
		return 'V'
	case unicode.IsLetter(r):
		return 'C'
	default:
		return 'X'
	}
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

const charPatternMaxLen = 8

// ExtractTokenFeatures computes the structural features of one token
// occurrence. token is compared in its original (pre-lowercase) case for
// IsCapitalized; all other features are computed over the lowercased form.
func ExtractTokenFeatures(token string) model.TokenFeatures {
	runes := []rune(token)
	lower := []rune(strings.ToLower(token))

	var alpha, numeric int
	for _, r := range lower {
		switch {
		case unicode.IsDigit(r):
			numeric++
		case unicode.IsLetter(r):
			alpha++
		}
	}

	n := len(lower)
	var alphaRatio, numericRatio float64
	if n > 0 {
		alphaRatio = float64(alpha) / float64(n)
		numericRatio = float64(numeric) / float64(n)
	}

	patLen := n
	if patLen > charPatternMaxLen {
		patLen = charPatternMaxLen
	}
	pattern := make([]byte, patLen)
	for i := 0; i < patLen; i++ {
		pattern[i] = charKind(lower[i])
	}

	capitalized := len(runes) > 0 && unicode.IsUpper(runes[0])

	return model.TokenFeatures{
		Token:         string(lower),
		Length:        n,
		AlphabetRatio: alphaRatio,
		NumericRatio:  numericRatio,
		IsCapitalized: capitalized,
		CharPattern:   string(pattern),
	}
}

var titleCaser = cases.Title(language.Und)

// CapitalizeName title-cases a resolved name for display, script-aware via
// language.Und so Indic scripts without a case distinction pass through
// unchanged instead of being mangled by an ASCII-only title-case.
func CapitalizeName(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(p)
	}
	return strings.Join(parts, " ")
}
