package transfer

import (
	"bytes"
	"strings"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	rows := []Row{
		{ID: "f0_i0_s0", Display: "Hello there."},
		{ID: "f0_i0_s1", Display: `Line1\nLine2`},
		{ID: "f0_lb0_si1", Display: `He said "now".`},
	}
	var buf bytes.Buffer
	err := Export(&buf, rows, Metadata{SourceFolder: "/data/tables", AppVersion: "2.1.0"})
	if err != nil {
		t.Fatal(err)
	}

	got, meta, skipped, err := Import(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped: %v", skipped)
	}
	if meta.SourceFolder != "/data/tables" || meta.AppVersion != "2.1.0" {
		t.Errorf("metadata = %+v", meta)
	}
	if len(got) != len(rows) {
		t.Fatalf("rows = %d, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestExportHeaderShape(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, nil, Metadata{SourceFolder: "in", AppVersion: "1.0"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "# TreeItemID\tDialogueText" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "# ExportedFromAppVersion: 1.0" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "# SourceInputFolder: in" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "# Note:") {
		t.Errorf("line 3 = %q", lines[3])
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	in := strings.Join([]string{
		"# TreeItemID\tDialogueText",
		"f0_i0_s0\tgood",
		"no-tab-here",
		"\tmissing id",
		"",
		"f0_i1_s0\talso good",
	}, "\n")

	rows, _, skipped, err := Import(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].ID != "f0_i0_s0" || rows[1].ID != "f0_i1_s0" {
		t.Errorf("ids = %s, %s", rows[0].ID, rows[1].ID)
	}
	if len(skipped) != 2 {
		t.Errorf("skipped = %v", skipped)
	}
}

func TestImportHandEditedFileWithoutMetadata(t *testing.T) {
	in := "f0_i0_s0\ttext\n"
	rows, meta, _, err := Import(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Display != "text" {
		t.Fatalf("rows = %+v", rows)
	}
	if meta.SourceFolder != "" || meta.AppVersion != "" {
		t.Errorf("metadata should be empty: %+v", meta)
	}
}

func TestImportEmptyDisplayIsValid(t *testing.T) {
	rows, _, skipped, err := Import(strings.NewReader("f0_i0_s0\t\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 0 || len(rows) != 1 || rows[0].Display != "" {
		t.Fatalf("rows = %+v skipped = %v", rows, skipped)
	}
}
