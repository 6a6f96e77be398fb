// Package spans marks variable occurrences inside utterance and response text.
package spans

import (
	"sort"
	"strings"
	"unicode"
)

// Sigil is the marker authored text uses around variable names, as in %name%.
const Sigil = '%'

// Span is a character range. Start and Length are rune counts.
type Span struct {
	Start  int
	Length int
}

// Closing returns the delimiter that pairs with open.
func Closing(open rune) rune {
	switch open {
	case '{':
		return '}'
	case '[':
		return ']'
	case '(':
		return ')'
	case '<':
		return '>'
	default:
		return open
	}
}

// Wrap surrounds every span of text with the delimiter pair. Span content
// loses any surrounding sigils, so "%name%" becomes "{name}". Spans that fall
// outside the text or overlap an earlier span are ignored.
func Wrap(text string, spans []Span, delim rune) string {
	if len(spans) == 0 {
		return text
	}
	runes := []rune(text)

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var sb strings.Builder
	closing := Closing(delim)
	cursor := 0
	wrapped := 0
	for _, s := range ordered {
		if s.Length <= 0 || s.Start < cursor || s.Start > len(runes) || s.Length > len(runes)-s.Start {
			continue
		}
		end := s.Start + s.Length
		sb.WriteString(string(runes[cursor:s.Start]))
		sb.WriteRune(delim)
		sb.WriteString(strings.TrimFunc(string(runes[s.Start:end]), func(r rune) bool { return r == Sigil }))
		sb.WriteRune(closing)
		cursor = end
		wrapped++
	}
	if wrapped == 0 {
		return text
	}
	sb.WriteString(string(runes[cursor:]))
	return sb.String()
}

// Markers finds %name% tokens in text. Each span covers the whole token
// including both sigils. Names may not be empty, start or end with whitespace,
// or cross a line break.
func Markers(text string) []Span {
	runes := []rune(text)
	var out []Span
	for i := 0; i < len(runes); i++ {
		if runes[i] != Sigil {
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] != Sigil && runes[j] != '\n' {
			j++
		}
		if j >= len(runes) || runes[j] != Sigil {
			continue
		}
		name := runes[i+1 : j]
		if len(name) == 0 || unicode.IsSpace(name[0]) || unicode.IsSpace(name[len(name)-1]) {
			continue
		}
		out = append(out, Span{Start: i, Length: j - i + 1})
		i = j
	}
	return out
}

// WrapMarkers wraps every %name% token found in text.
func WrapMarkers(text string, delim rune) string {
	return Wrap(text, Markers(text), delim)
}
