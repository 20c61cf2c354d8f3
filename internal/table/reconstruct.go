package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"locedit/internal/jsontree"

	"github.com/rs/zerolog/log"
)

// SaveSummary accumulates the outcome of a save pass. A failing record
// or file never aborts the pass; it is skipped and named here.
type SaveSummary struct {
	FilesProcessed int
	FilesSaved     int
	// Mismatches lists records whose locator no longer resolved in the
	// live tree ("file: detail"); those leaves were left untouched.
	Mismatches []string
	// Errors lists per-file write failures.
	Errors []string
}

// Render serializes doc with every record's current value written into
// its leaf. Records whose locator fails verification are reported and
// their leaves left exactly as loaded. The returned map carries the raw
// value pending per record index, to refresh baselines once the bytes
// are actually on disk.
func Render(doc *Document) ([]byte, []string, map[int]string) {
	_, data, mismatches, pending := render(doc)
	return data, mismatches, pending
}

// render works on a clone of the document's tree and hands the clone
// back so a successful save can adopt it as the new on-disk state.
func render(doc *Document) (*jsontree.Node, []byte, []string, map[int]string) {
	work := doc.Root.Clone()
	var mismatches []string
	pending := make(map[int]string)

	for i, rec := range doc.Records {
		raw := rec.CurrentRaw()
		target, detail := resolveLeaf(work, doc.Format, rec)
		if target == nil {
			mismatches = append(mismatches, detail)
			continue
		}
		target.Kind = jsontree.String
		target.StrVal = raw
		target.NumVal = ""
		target.Items = nil
		target.Members = nil
		pending[i] = raw
	}

	return work, jsontree.Encode(work), mismatches, pending
}

// resolveLeaf locates the "String" leaf a record addresses and verifies
// the surrounding structure still matches what extraction saw. A nil
// node means structural mismatch; the detail string names the failure.
func resolveLeaf(root *jsontree.Node, format Format, rec *Record) (*jsontree.Node, string) {
	switch format {
	case FormatDLGE:
		item, ok := root.Index(rec.Item)
		if !ok {
			return nil, fmt.Sprintf("item %d out of range", rec.Item)
		}
		leaf, ok := item.Field("String")
		if !ok {
			return nil, fmt.Sprintf("item %d has no String field", rec.Item)
		}
		return leaf, ""
	case FormatLOCR:
		block, ok := root.Index(rec.Block)
		if !ok || block.Kind != jsontree.Array {
			return nil, fmt.Sprintf("block %d out of range", rec.Block)
		}
		item, ok := block.Index(rec.Item)
		if !ok {
			return nil, fmt.Sprintf("block %d item %d out of range", rec.Block, rec.Item)
		}
		leaf, ok := item.Field("String")
		if !ok {
			return nil, fmt.Sprintf("block %d item %d has no String field", rec.Block, rec.Item)
		}
		liveHash := ""
		if h, ok := item.Field("StringHash"); ok {
			liveHash = h.Literal()
		}
		if liveHash != rec.Hash {
			return nil, fmt.Sprintf("block %d item %d hash mismatch (stored %s, live %s)",
				rec.Block, rec.Item, rec.Hash, liveHash)
		}
		return leaf, ""
	}
	return nil, "unknown format"
}

// SaveAll writes every document to outDir under its original filename.
// Each file is rendered and written in isolation: a structural mismatch
// skips only the offending record, a write failure skips only that file.
// Baselines are refreshed per record only after its file is on disk.
func SaveAll(ctx context.Context, docs []*Document, outDir string) (*SaveSummary, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	sum := &SaveSummary{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.FilesProcessed++
		name := filepath.Base(doc.Path)

		work, data, mismatches, pending := render(doc)
		for _, m := range mismatches {
			log.Warn().Str("file", name).Str("record", m).Msg("Structural mismatch, record not saved")
			sum.Mismatches = append(sum.Mismatches, fmt.Sprintf("%s: %s", name, m))
		}

		outPath := filepath.Join(outDir, name)
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			log.Error().Err(err).Str("path", outPath).Msg("Write failed")
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s (%v)", name, err))
			continue
		}

		// The bytes on disk came from the work tree, so it becomes the
		// document's saved state alongside the refreshed baselines.
		doc.Root = work
		for i, raw := range pending {
			doc.Records[i].Baseline = raw
		}
		sum.FilesSaved++
	}

	log.Info().
		Int("processed", sum.FilesProcessed).
		Int("saved", sum.FilesSaved).
		Int("mismatches", len(sum.Mismatches)).
		Str("output", outDir).
		Msg("Save complete")
	return sum, nil
}
