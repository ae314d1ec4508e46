package layout

import (
	"math"
	"slices"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// Linearizer flattens each page's blocks into renderable units
type Linearizer struct {
	pipeline.Base
	cfg Config
}

// NewLinearizer creates the linearization stage
func NewLinearizer(cfg Config) *Linearizer {
	return &Linearizer{cfg: cfg}
}

// Name returns the stage name
func (z *Linearizer) Name() string {
	return "linearize"
}

// Apply replaces each page's units
func (z *Linearizer) Apply(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		p := &doc.Pages[i]
		units := make([]model.Unit, 0, len(p.Blocks))
		for _, b := range p.Blocks {
			if b.Removed || len(b.Lines) == 0 {
				continue
			}
			units = append(units, z.unit(b))
		}
		p.Units = units
	}
	return doc, nil
}

func (z *Linearizer) unit(b model.Block) model.Unit {
	u := model.Unit{
		Type:    b.Type,
		Rank:    b.Heading,
		Depth:   b.Depth,
		Ordered: b.Ordered,
		Marker:  b.Marker,
	}
	if b.Type == model.BlockTOC {
		u.Entries = z.entries(b.Lines)
		return u
	}
	u.Lines = make([][]model.Segment, 0, len(b.Lines))
	for _, l := range b.Lines {
		u.Lines = append(u.Lines, segmentsOf(l))
	}
	return u
}

// entries ranks TOC lines by distinct left edge, leftmost first
func (z *Linearizer) entries(lines []model.Line) []model.TOCEntry {
	var levels []float64
	for _, l := range lines {
		if !slices.ContainsFunc(levels, func(x float64) bool { return math.Abs(x-l.Left()) <= z.cfg.IndentTolerance }) {
			levels = append(levels, l.Left())
		}
	}
	slices.Sort(levels)

	out := make([]model.TOCEntry, 0, len(lines))
	for _, l := range lines {
		depth := slices.IndexFunc(levels, func(x float64) bool { return math.Abs(x-l.Left()) <= z.cfg.IndentTolerance })
		out = append(out, model.TOCEntry{Label: l.TOCLabel, Page: l.TOCPage, Depth: max(depth, 0)})
	}
	return out
}
