package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"locedit/internal/escape"
	"locedit/internal/filewalker"
	"locedit/internal/jsontree"
	"locedit/internal/lineloc"
	"locedit/internal/segment"

	"github.com/rs/zerolog/log"
)

// LoadSummary accumulates the outcome of a folder load. Nothing in the
// load pass is fatal: unparseable or unrecognized files are skipped and
// named here.
type LoadSummary struct {
	FilesScanned int
	FilesLoaded  int
	Records      int
	Rows         int
	Unsupported  []string
	Errors       []string
}

// LoadFolder loads every table file under dir. Files that fail to parse,
// match neither format, or contain no "en" strings are excluded from the
// returned set. The context is checked between files so a signal can cut
// a long load short.
func LoadFolder(ctx context.Context, dir string) ([]*Document, *LoadSummary, error) {
	paths, err := filewalker.ListTables(dir)
	if err != nil {
		return nil, nil, err
	}

	sum := &LoadSummary{}
	var docs []*Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		sum.FilesScanned++

		doc, err := LoadFile(path, len(docs))
		if err != nil {
			log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("Skipping file")
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s (%v)", filepath.Base(path), err))
			continue
		}
		if doc.Format == FormatUnknown {
			log.Warn().Str("file", filepath.Base(path)).Msg("Unrecognized table structure, skipping")
			sum.Unsupported = append(sum.Unsupported, filepath.Base(path))
			continue
		}
		if len(doc.Records) == 0 {
			// No "en" strings: processed but not part of the working set.
			continue
		}

		docs = append(docs, doc)
		sum.FilesLoaded++
		sum.Records += len(doc.Records)
		for _, r := range doc.Records {
			sum.Rows += len(r.Segments)
		}
	}

	log.Info().
		Int("scanned", sum.FilesScanned).
		Int("loaded", sum.FilesLoaded).
		Int("records", sum.Records).
		Msg("Folder load complete")
	return docs, sum, nil
}

// LoadFile parses one table file and extracts its "en" records. fileIdx
// is the document's position in the working set and is baked into the
// row IDs. A file in neither known format comes back with FormatUnknown
// and no records.
func LoadFile(path string, fileIdx int) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return parseTable(path, fileIdx, data)
}

func parseTable(path string, fileIdx int, data []byte) (*Document, error) {
	root, err := jsontree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	doc := &Document{Path: path, Root: root, Format: DetectFormat(root)}
	switch doc.Format {
	case FormatDLGE:
		doc.Records = extractDialogue(root, fileIdx, lineloc.ScanDialogue(data))
	case FormatLOCR:
		doc.Records = extractBlocks(root, fileIdx, lineloc.ScanBlocks(data))
	}
	return doc, nil
}

// extractDialogue builds one record per "en"-tagged item, splitting the
// composite string on its position markers so each spoken fragment is a
// separate editable row.
func extractDialogue(root *jsontree.Node, fileIdx int, lines map[int]int) []*Record {
	var records []*Record
	for itemIdx, item := range root.Items {
		lang, ok := item.Field("Language")
		if !ok || lang.Text() != "en" {
			continue
		}
		strNode, _ := item.Field("String")
		raw := strNode.Text()

		rec := &Record{
			Item:     itemIdx,
			Block:    -1,
			Line:     lines[itemIdx],
			Baseline: raw,
		}
		for segIdx, p := range segment.Split(raw) {
			rec.Segments = append(rec.Segments, Segment{
				RowID:   dialogueRowID(fileIdx, itemIdx, segIdx),
				Prefix:  p.Prefix,
				Display: escape.ToDisplay(p.Text),
			})
		}
		records = append(records, rec)
	}
	return records
}

// extractBlocks builds one record per string item of each "en" language
// block. LOCR strings carry no position markers, so every record is a
// single un-split segment.
func extractBlocks(root *jsontree.Node, fileIdx int, lines map[lineloc.BlockKey]int) []*Record {
	var records []*Record
	for blockIdx, block := range root.Items {
		tag, ok := block.Index(0)
		if !ok {
			continue
		}
		lang, ok := tag.Field("Language")
		if !ok || lang.Text() != "en" {
			continue
		}
		for itemIdx := 1; itemIdx < len(block.Items); itemIdx++ {
			item := block.Items[itemIdx]
			strNode, ok := item.Field("String")
			if !ok {
				continue
			}
			raw := strNode.Text()
			hash := ""
			if h, ok := item.Field("StringHash"); ok {
				hash = h.Literal()
			}
			records = append(records, &Record{
				Item:     itemIdx,
				Block:    blockIdx,
				Hash:     hash,
				Line:     lines[lineloc.BlockKey{Block: blockIdx, Item: itemIdx}],
				Baseline: raw,
				Segments: []Segment{{
					RowID:   blockRowID(fileIdx, blockIdx, itemIdx),
					Display: escape.ToDisplay(raw),
				}},
			})
		}
	}
	return records
}
