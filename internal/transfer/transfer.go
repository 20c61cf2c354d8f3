// Package transfer moves rows in and out of the editor as tab-separated
// text, the interchange format used to hand strings to translators and
// take their work back. Lines starting with '#' are comments; two of
// them carry recognized metadata about the export's origin.
package transfer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	metaSourceFolder = "SourceInputFolder:"
	metaAppVersion   = "ExportedFromAppVersion:"
)

// Row is one exported line: a stable row ID and the display-form text.
type Row struct {
	ID      string
	Display string
}

// Metadata is what the comment header of an export records about where
// it came from. Either field may be empty on hand-edited files.
type Metadata struct {
	SourceFolder string
	AppVersion   string
}

// Export writes rows as TSV preceded by a comment header. Fields that
// contain tabs or quotes are quoted CSV-style so the file survives a
// round trip through spreadsheet tools.
func Export(w io.Writer, rows []Row, meta Metadata) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# TreeItemID\tDialogueText\n")
	fmt.Fprintf(bw, "# %s %s\n", metaAppVersion, meta.AppVersion)
	fmt.Fprintf(bw, "# %s %s\n", metaSourceFolder, meta.SourceFolder)
	fmt.Fprintf(bw, "# Note: DialogueText is in editor-escaped format (e.g., \\n for newline).\n")

	cw := csv.NewWriter(bw)
	cw.Comma = '\t'
	for _, r := range rows {
		if err := cw.Write([]string{r.ID, r.Display}); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return bw.Flush()
}

// Import reads a TSV export back. Comment lines are skipped, with the
// two known metadata keys captured; malformed data lines are skipped
// individually and named in the returned list rather than failing the
// whole file.
func Import(r io.Reader) ([]Row, Metadata, []string, error) {
	var (
		rows    []Row
		meta    Metadata
		skipped []string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			readMeta(line, &meta)
			continue
		}

		id, display, err := parseDataLine(line)
		if err != nil {
			log.Warn().Int("line", lineNum).Err(err).Msg("Skipping malformed row")
			skipped = append(skipped, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}
		rows = append(rows, Row{ID: id, Display: display})
	}
	if err := sc.Err(); err != nil {
		return nil, meta, skipped, fmt.Errorf("read transfer file: %w", err)
	}
	return rows, meta, skipped, nil
}

func readMeta(line string, meta *Metadata) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if v, ok := strings.CutPrefix(body, metaSourceFolder); ok {
		meta.SourceFolder = strings.TrimSpace(v)
	} else if v, ok := strings.CutPrefix(body, metaAppVersion); ok {
		meta.AppVersion = strings.TrimSpace(v)
	}
}

// parseDataLine parses one row through the CSV reader so quoted fields
// written by Export (or a spreadsheet) come back intact. Parsing per
// line keeps one bad row from poisoning the rest of the file.
func parseDataLine(line string) (string, string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = '\t'
	fields, err := cr.Read()
	if err != nil {
		return "", "", err
	}
	if len(fields) != 2 {
		return "", "", fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	if fields[0] == "" {
		return "", "", fmt.Errorf("empty row id")
	}
	return fields[0], fields[1], nil
}
