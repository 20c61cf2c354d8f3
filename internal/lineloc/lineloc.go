// Package lineloc recovers approximate source line numbers for extracted
// strings by re-reading the file as plain text. The JSON decoder throws
// positions away, so this is a best-effort scan over the file's literal
// layout: it assumes the pretty-printed one-key-per-line convention the
// game's tables ship with. Reformatted or minified files simply produce
// no entries; a missing key means "line unknown", never an error.
package lineloc

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var (
	langEnRe    = regexp.MustCompile(`"Language"\s*:\s*"en"`)
	stringKeyRe = regexp.MustCompile(`"String"\s*:`)
)

// BlockKey addresses one string item inside a LOCR language block:
// the block's index in the outer list and the item's 1-based position
// among the string entries of that block.
type BlockKey struct {
	Block int
	Item  int
}

// ScanDialogue maps top-level object positions to the line of the first
// "String" key seen inside each object that is tagged "en". Objects are
// delimited by brace depth: one opens when a '{' appears at depth zero
// and closes when the depth returns to zero.
func ScanDialogue(data []byte) map[int]int {
	lineMap := make(map[int]int)

	objectIndex := -1
	inObject := false
	currentIsEn := false
	braceLevel := 0
	foundString := false

	lineNum := 0
	sc := newLineScanner(data)
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.Contains(line, "{") && braceLevel == 0 {
			objectIndex++
			inObject = true
			currentIsEn = false
			foundString = false
			braceLevel += strings.Count(line, "{") - strings.Count(line, "}")
			if braceLevel < 0 {
				braceLevel = 0
			}
			if braceLevel == 0 {
				inObject = false
			}
		} else if inObject {
			braceLevel += strings.Count(line, "{")
			braceLevel -= strings.Count(line, "}")
		}

		if inObject {
			if !currentIsEn && langEnRe.MatchString(line) {
				currentIsEn = true
			}
			if currentIsEn && !foundString && stringKeyRe.MatchString(line) {
				lineMap[objectIndex] = lineNum
				foundString = true
			}
		}

		if braceLevel <= 0 && inObject {
			inObject = false
			currentIsEn = false
			foundString = false
			braceLevel = 0
		}
	}
	if sc.Err() != nil {
		return map[int]int{}
	}
	return lineMap
}

// ScanBlocks maps (language block, string item) positions to line
// numbers for the nested LOCR layout. Bracket depth delimits the outer
// and inner lists; brace depth counts the objects inside an inner list,
// where the first object is the language tag and the rest are string
// items, numbered from 1.
func ScanBlocks(data []byte) map[BlockKey]int {
	lineMap := make(map[BlockKey]int)

	blockIndex := -1
	itemInBlock := 0
	inItemList := false
	currentIsEn := false
	bracketLevel := 0
	braceLevel := 0

	lineNum := 0
	sc := newLineScanner(data)
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		openBrackets := strings.Count(line, "[")
		closeBrackets := strings.Count(line, "]")

		if openBrackets > 0 {
			if bracketLevel == 1 {
				inItemList = true
				blockIndex++
				itemInBlock = 0
				currentIsEn = false
				braceLevel = 0
			}
			bracketLevel += openBrackets
		}

		if inItemList {
			if strings.Contains(line, "{") && braceLevel == 0 {
				itemInBlock++
			}
			braceLevel += strings.Count(line, "{")
			braceLevel -= strings.Count(line, "}")
			if braceLevel < 0 {
				braceLevel = 0
			}

			if itemInBlock == 1 && langEnRe.MatchString(line) {
				currentIsEn = true
			}
			stringItem := itemInBlock - 1
			if currentIsEn && stringItem > 0 && stringKeyRe.MatchString(line) {
				key := BlockKey{Block: blockIndex, Item: stringItem}
				if _, seen := lineMap[key]; !seen {
					lineMap[key] = lineNum
				}
			}
		}

		if closeBrackets > 0 {
			before := bracketLevel
			bracketLevel -= closeBrackets
			if bracketLevel < 0 {
				bracketLevel = 0
			}
			if before == 2 && bracketLevel == 1 {
				inItemList = false
				currentIsEn = false
			}
		}
	}
	if sc.Err() != nil {
		return map[BlockKey]int{}
	}
	return lineMap
}

// newLineScanner tolerates long single lines, which minified tables
// would otherwise trip on.
func newLineScanner(data []byte) *bufio.Scanner {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return sc
}
