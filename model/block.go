package model

// BlockType is the structural role of a block
type BlockType int

const (
	BlockParagraph BlockType = iota
	BlockHeading
	BlockListItem
	BlockCode
	BlockQuote
	BlockTOC
)

// String returns a string representation of the block type
func (t BlockType) String() string {
	switch t {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockListItem:
		return "list-item"
	case BlockCode:
		return "code"
	case BlockQuote:
		return "quote"
	case BlockTOC:
		return "toc"
	default:
		return "unknown"
	}
}

// Block is an ordered group of lines with one structural role
type Block struct {
	Type    BlockType
	Lines   []Line
	Heading int    // Rank for heading blocks
	Ordered bool   // For list items
	Marker  string // For list items
	Depth   int    // List nesting depth, 0 for top level
	Indent  float64
	BBox    BBox

	Removed    bool
	Annotation string
}

// NewBlock creates a block of the given type from lines
func NewBlock(t BlockType, lines ...Line) Block {
	b := Block{Type: t}
	for _, l := range lines {
		b.Add(l)
	}
	return b
}

// Add appends a line and grows the bounding box
func (b *Block) Add(l Line) {
	if len(b.Lines) == 0 {
		b.BBox = l.BBox
		b.Indent = l.Indent
	} else {
		b.BBox = b.BBox.Union(l.BBox)
	}
	b.Lines = append(b.Lines, l)
}

// Last returns the last line of the block, or nil when empty
func (b *Block) Last() *Line {
	if len(b.Lines) == 0 {
		return nil
	}
	return &b.Lines[len(b.Lines)-1]
}
