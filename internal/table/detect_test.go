package table

import (
	"testing"

	"locedit/internal/jsontree"
)

func mustDecode(t *testing.T, src string) *jsontree.Node {
	t.Helper()
	root, err := jsontree.Decode([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return root
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Format
	}{
		{
			name: "dialogue list",
			src:  `[{"Language": "en", "String": "a"}, {"Language": "fr", "String": "b"}]`,
			want: FormatDLGE,
		},
		{
			name: "language blocks",
			src:  `[[{"Language": "en"}, {"String": "a", "StringHash": 42}]]`,
			want: FormatLOCR,
		},
		{
			name: "tag-only block",
			src:  `[[{"Language": "xx"}]]`,
			want: FormatLOCR,
		},
		{
			name: "object root",
			src:  `{"Language": "en", "String": "a"}`,
			want: FormatUnknown,
		},
		{
			name: "empty list",
			src:  `[]`,
			want: FormatUnknown,
		},
		{
			name: "list of scalars",
			src:  `[1, 2, 3]`,
			want: FormatUnknown,
		},
		{
			name: "dialogue item missing String",
			src:  `[{"Language": "en", "String": "a"}, {"Language": "fr"}]`,
			want: FormatUnknown,
		},
		{
			name: "block without language tag",
			src:  `[[{"String": "a", "StringHash": 1}]]`,
			want: FormatUnknown,
		},
		{
			name: "second block not a list",
			src:  `[[{"Language": "en"}, {"String": "a", "StringHash": 1}], {"Language": "fr"}]`,
			want: FormatUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(mustDecode(t, tt.src)); got != tt.want {
				t.Errorf("DetectFormat = %v, want %v", got, tt.want)
			}
		})
	}
}
