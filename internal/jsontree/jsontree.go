// Package jsontree holds parsed JSON documents in a form that survives a
// round trip: object members keep their file order, numbers keep their
// original literal, and serialization writes non-ASCII characters
// literally instead of as \u escapes. The standard map-based decoding
// would scramble key order, which is unacceptable when the edited file
// must stay diffable against the shipped original.
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifies the JSON value held by a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Member is one ordered key/value pair of an object.
type Member struct {
	Key   string
	Value *Node
}

// Node is a single JSON value. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Node struct {
	Kind    Kind
	BoolVal bool
	NumVal  json.Number
	StrVal  string
	Items   []*Node
	Members []Member
}

// Decode parses data into a Node tree. Trailing non-whitespace content
// after the top-level value is an error.
func Decode(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing content after top-level JSON value")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{Kind: Object}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Members = append(n.Members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: Array}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return &Node{Kind: String, StrVal: t}, nil
	case json.Number:
		return &Node{Kind: Number, NumVal: t}, nil
	case bool:
		return &Node{Kind: Bool, BoolVal: t}, nil
	case nil:
		return &Node{Kind: Null}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// Field returns the value of the named object member.
func (n *Node) Field(key string) (*Node, bool) {
	if n == nil || n.Kind != Object {
		return nil, false
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Index returns the i-th array element.
func (n *Node) Index(i int) (*Node, bool) {
	if n == nil || n.Kind != Array || i < 0 || i >= len(n.Items) {
		return nil, false
	}
	return n.Items[i], true
}

// Text returns the node's value as a string. Non-string leaves are
// coerced to their compact literal form.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	if n.Kind == String {
		return n.StrVal
	}
	return n.Literal()
}

// Literal renders the node as compact JSON, used for value comparisons
// such as the stored-hash check at save time.
func (n *Node) Literal() string {
	var b strings.Builder
	writeCompact(&b, n)
	return b.String()
}

func writeCompact(b *strings.Builder, n *Node) {
	switch n.Kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if n.BoolVal {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(string(n.NumVal))
	case String:
		writeString(b, n.StrVal)
	case Array:
		b.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeCompact(b, item)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, m := range n.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			writeString(b, m.Key)
			b.WriteString(": ")
			writeCompact(b, m.Value)
		}
		b.WriteByte('}')
	}
}

// Clone returns a deep copy of the tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, BoolVal: n.BoolVal, NumVal: n.NumVal, StrVal: n.StrVal}
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			c.Items[i] = item.Clone()
		}
	}
	if n.Members != nil {
		c.Members = make([]Member, len(n.Members))
		for i, m := range n.Members {
			c.Members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return c
}

// Encode serializes the tree with 4-space indentation, members in their
// original order, and non-ASCII characters written literally.
func Encode(n *Node) []byte {
	var b bytes.Buffer
	writeIndented(&b, n, 0)
	return b.Bytes()
}

const indentUnit = "    "

func writeIndented(b *bytes.Buffer, n *Node, depth int) {
	switch n.Kind {
	case Null, Bool, Number, String:
		var sb strings.Builder
		writeCompact(&sb, n)
		b.WriteString(sb.String())
	case Array:
		if len(n.Items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range n.Items {
			writeIndent(b, depth+1)
			writeIndented(b, item, depth+1)
			if i < len(n.Items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte(']')
	case Object:
		if len(n.Members) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, m := range n.Members {
			writeIndent(b, depth+1)
			var sb strings.Builder
			writeString(&sb, m.Key)
			b.WriteString(sb.String())
			b.WriteString(": ")
			writeIndented(b, m.Value, depth+1)
			if i < len(n.Members)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte('}')
	}
}

func writeIndent(b *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}

// writeString emits a JSON string literal. Control characters get their
// short escapes; everything else, multi-byte UTF-8 included, passes
// through untouched.
func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			case '\b':
				b.WriteString(`\b`)
			case '\f':
				b.WriteString(`\f`)
			default:
				if c < 0x20 {
					fmt.Fprintf(b, `\u%04x`, c)
				} else {
					b.WriteByte(c)
				}
			}
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	b.WriteByte('"')
}
