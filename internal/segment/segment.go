// Package segment decomposes composite dialogue strings into editable
// spans. Dialogue tables embed position markers of the form //(...)\\
// in front of each spoken fragment; the marker carries timing data and
// must never be edited, while the text after it is fair game.
package segment

import (
	"regexp"
	"strings"
)

// marker matches one position prefix, e.g. //(0,5)\\; the parenthesized
// content is opaque and not validated.
var marker = regexp.MustCompile(`//\([^)]+\)\\\\`)

// Piece is one contiguous span of a composite string: an immutable
// marker prefix (empty when the span has none) and the editable text
// that follows it.
type Piece struct {
	Prefix string
	Text   string
}

// Split decomposes raw into ordered pieces. Matching is greedy
// left-to-right and spans line breaks, since dialogue text routinely
// contains embedded newlines. A string without markers comes back as a
// single piece with no prefix, and so does any text preceding the first
// marker, so that Join(Split(s)) == s always holds.
func Split(raw string) []Piece {
	locs := marker.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return []Piece{{Text: raw}}
	}

	var pieces []Piece
	if locs[0][0] > 0 {
		pieces = append(pieces, Piece{Text: raw[:locs[0][0]]})
	}
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pieces = append(pieces, Piece{
			Prefix: raw[loc[0]:loc[1]],
			Text:   raw[loc[1]:end],
		})
	}
	return pieces
}

// Join is the inverse of Split: it concatenates every piece's prefix
// and text in order.
func Join(pieces []Piece) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.Prefix)
		b.WriteString(p.Text)
	}
	return b.String()
}
