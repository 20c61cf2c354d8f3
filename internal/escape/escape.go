// Package escape converts raw JSON string values to and from their
// single-line editor representation. In display form, newlines, carriage
// returns, and tabs appear as the visible sequences \n, \r, \t, and a
// literal backslash appears as \\.
package escape

import "strings"

// sentinel marks protected double-backslash sequences while unescaping.
// A private-use code point keeps it clear of anything found in game text.
const sentinel = ""

// ToDisplay converts a raw string into its editor display form.
// Backslashes are doubled first so the control-character escapes added
// afterwards stay unambiguous.
func ToDisplay(raw string) string {
	s := strings.ReplaceAll(raw, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}

// ToRaw converts editor display form back into the raw string.
// Escaped backslashes are parked on a sentinel before the control escapes
// are resolved; otherwise the display text `\\n` (a literal backslash
// followed by the letter n) would collapse into a newline.
func ToRaw(display string) string {
	s := strings.ReplaceAll(display, `\\`, sentinel)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return strings.ReplaceAll(s, sentinel, `\`)
}
