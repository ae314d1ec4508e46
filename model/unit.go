package model

import "strings"

// TOCEntry is one rendered table-of-contents line
type TOCEntry struct {
	Label string
	Page  string
	Depth int
}

// Unit is a typed renderable produced by linearizing a block
type Unit struct {
	Type    BlockType
	Rank    int // Heading rank
	Depth   int // List depth
	Ordered bool
	Marker  string
	Lines   [][]Segment
	Entries []TOCEntry
}

// Text joins the unit's lines with sep, dropping styling
func (u Unit) Text(sep string) string {
	parts := make([]string, len(u.Lines))
	for i, segs := range u.Lines {
		var sb strings.Builder
		for _, s := range segs {
			sb.WriteString(s.Text)
		}
		parts[i] = sb.String()
	}
	return strings.Join(parts, sep)
}
