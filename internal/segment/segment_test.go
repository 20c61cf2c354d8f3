package segment

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Piece
	}{
		{
			name: "no markers",
			raw:  "Hello there.",
			want: []Piece{{Text: "Hello there."}},
		},
		{
			name: "empty string",
			raw:  "",
			want: []Piece{{Text: ""}},
		},
		{
			name: "two markers",
			raw:  `//(0,5)\\Hello//(5,10)\\World`,
			want: []Piece{
				{Prefix: `//(0,5)\\`, Text: "Hello"},
				{Prefix: `//(5,10)\\`, Text: "World"},
			},
		},
		{
			name: "leading text before first marker",
			raw:  `intro//(1,2)\\body`,
			want: []Piece{
				{Text: "intro"},
				{Prefix: `//(1,2)\\`, Text: "body"},
			},
		},
		{
			name: "marker with empty text",
			raw:  `//(0,1)\\//(1,2)\\tail`,
			want: []Piece{
				{Prefix: `//(0,1)\\`, Text: ""},
				{Prefix: `//(1,2)\\`, Text: "tail"},
			},
		},
		{
			name: "text spanning newlines",
			raw:  "//(0,9)\\\\first line\nsecond line//(9,14)\\\\after",
			want: []Piece{
				{Prefix: `//(0,9)\\`, Text: "first line\nsecond line"},
				{Prefix: `//(9,14)\\`, Text: "after"},
			},
		},
		{
			name: "unterminated paren is not a marker",
			raw:  `//(0,5 no close`,
			want: []Piece{{Text: `//(0,5 no close`}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestJoinInverse(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`//(0,5)\\Hello//(5,10)\\World`,
		`prefix text //(3,4)\\mid//(4,5)\\`,
		"//(0,1)\\\\multi\nline//(1,2)\\\\tail\twith tab",
	}
	for _, s := range inputs {
		if got := Join(Split(s)); got != s {
			t.Errorf("Join(Split(%q)) = %q", s, got)
		}
	}
}
