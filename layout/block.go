package layout

import (
	"math"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// BlockGatherer groups classified lines into blocks
type BlockGatherer struct {
	pipeline.Base
	cfg Config
}

// NewBlockGatherer creates the block gathering stage
func NewBlockGatherer(cfg Config) *BlockGatherer {
	return &BlockGatherer{cfg: cfg}
}

// Name returns the stage name
func (g *BlockGatherer) Name() string {
	return "blocks"
}

// Apply builds each page's blocks from its live lines
func (g *BlockGatherer) Apply(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		p := &doc.Pages[i]
		var blocks []model.Block
		for _, l := range p.Lines {
			if l.Removed {
				continue
			}
			var last *model.Block
			if n := len(blocks); n > 0 {
				last = &blocks[n-1]
			}

			switch {
			case l.Heading > 0:
				if last != nil && last.Type == model.BlockHeading && last.Heading == l.Heading && g.near(*last.Last(), l, 2*l.Size) {
					last.Add(l)
					continue
				}
				b := model.NewBlock(model.BlockHeading, l)
				b.Heading = l.Heading
				blocks = append(blocks, b)

			case l.TOC:
				if last != nil && last.Type == model.BlockTOC {
					last.Add(l)
					continue
				}
				blocks = append(blocks, model.NewBlock(model.BlockTOC, l))

			case l.List != model.ListNone:
				b := model.NewBlock(model.BlockListItem, l)
				b.Ordered = l.List == model.ListOrdered
				b.Marker = l.Marker
				blocks = append(blocks, b)

			default:
				if last != nil && last.Type == model.BlockListItem && g.continuesItem(doc.Globals, *last, l) {
					last.Add(l)
					continue
				}
				if last != nil && last.Type == model.BlockParagraph && g.compatible(doc.Globals, *last, l) {
					last.Add(l)
					continue
				}
				blocks = append(blocks, model.NewBlock(model.BlockParagraph, l))
			}
		}
		p.Blocks = blocks
	}
	return doc, nil
}

// near reports whether next sits below prev within limit
func (g *BlockGatherer) near(prev, next model.Line, limit float64) bool {
	d := prev.Baseline - next.Baseline
	return d > 0 && d <= limit
}

// gapLimit is the largest baseline distance inside a paragraph of size-sized
// text; larger text gets proportionally more room
func (g *BlockGatherer) gapLimit(gl model.Globals, size float64) float64 {
	dist := gl.LineDistance
	if gl.BodySize > 0 && size > gl.BodySize {
		dist *= size / gl.BodySize
	}
	if dist <= 0 {
		dist = size * 1.2
	}
	return g.cfg.ParagraphGapRatio * dist
}

func (g *BlockGatherer) compatible(gl model.Globals, b model.Block, l model.Line) bool {
	prev := b.Last()
	if prev.Vertical || l.Vertical {
		return false
	}
	if math.Abs(prev.Size-l.Size) > g.cfg.SizeTolerance || prev.Style.Monospace != l.Style.Monospace {
		return false
	}
	if !g.near(*prev, l, g.gapLimit(gl, l.Size)) {
		return false
	}
	if math.Abs(prev.Left()-l.Left()) <= g.cfg.IndentTolerance {
		return true
	}
	// a first-line indent is followed by lines starting further left
	return len(b.Lines) == 1 && l.Left() < prev.Left()
}

// continuesItem reports whether an unmarked line is the wrapped text of the
// list item above it
func (g *BlockGatherer) continuesItem(gl model.Globals, b model.Block, l model.Line) bool {
	prev := b.Last()
	if l.Vertical || !g.near(*prev, l, g.gapLimit(gl, l.Size)) {
		return false
	}
	return l.Left() > b.Lines[0].Left()+g.cfg.IndentTolerance
}
