package textutil

// Truncate shortens a string to at most max runes, appending "..." when
// it was cut. Dialogue lines are full of multi-byte characters, so the
// cut is rune-based to avoid splitting one in half.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
