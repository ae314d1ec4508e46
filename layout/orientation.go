package layout

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// minStack is the number of single-glyph lines that form a stacked word
const minStack = 3

// OrientationNormalizer restores reading order for rotated and stacked text
type OrientationNormalizer struct {
	pipeline.Base
	cfg Config
}

// NewOrientationNormalizer creates the orientation stage
func NewOrientationNormalizer(cfg Config) *OrientationNormalizer {
	return &OrientationNormalizer{cfg: cfg}
}

// Name returns the stage name
func (o *OrientationNormalizer) Name() string {
	return "orientation"
}

// Apply reorders vertical lines and merges glyph stacks. Page lines are
// re-sorted top to bottom.
func (o *OrientationNormalizer) Apply(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		p := &doc.Pages[i]
		for j := range p.Lines {
			if p.Lines[j].Vertical {
				o.orderVertical(doc, &p.Lines[j])
			}
		}
		p.Lines = o.mergeStacks(doc, p.Lines)
		sortLines(p.Lines)
	}
	return doc, nil
}

// orderVertical sorts fragments bottom to top for text rotated
// counter-clockwise and top to bottom for clockwise text
func (o *OrientationNormalizer) orderVertical(doc *model.Document, l *model.Line) {
	up := l.Rotation > 0
	frags := slices.Clone(l.Fragments)
	slices.SortStableFunc(frags, func(x, y model.Fragment) int {
		if up {
			return cmp.Compare(x.Y, y.Y)
		}
		return cmp.Compare(y.Y, x.Y)
	})
	gap := func(prev, next model.Fragment) float64 {
		if up {
			return next.Y - (prev.Y + prev.Width)
		}
		return (prev.Y - prev.Width) - next.Y
	}

	rebuilt := model.NewLine(frags)
	rebuilt.Text, rebuilt.Segments = compose(doc, frags, o.cfg.SpaceGapRatio, gap)
	rebuilt.Vertical = true
	rebuilt.Baseline = rebuilt.BBox.Top()
	finishLine(doc, &rebuilt)
	rebuilt.Removed = l.Removed
	*l = rebuilt
}

// mergeStacks joins runs of consecutive single-glyph lines sharing a left
// edge into one horizontal line read top to bottom
func (o *OrientationNormalizer) mergeStacks(doc *model.Document, lines []model.Line) []model.Line {
	out := make([]model.Line, 0, len(lines))
	for i := 0; i < len(lines); {
		j := i + 1
		if o.singleGlyph(lines[i]) {
			for j < len(lines) && o.singleGlyph(lines[j]) && o.stacked(lines[j-1], lines[j]) {
				j++
			}
		}
		if j-i < minStack {
			out = append(out, lines[i])
			i++
			continue
		}

		var frags []model.Fragment
		for _, l := range lines[i:j] {
			frags = append(frags, l.Fragments...)
		}
		merged := model.NewLine(frags)
		merged.Text, merged.Segments = compose(doc, frags, o.cfg.SpaceGapRatio, nil)
		finishLine(doc, &merged)
		merged.Annotation = "stack"
		out = append(out, merged)
		i = j
	}
	return out
}

func (o *OrientationNormalizer) singleGlyph(l model.Line) bool {
	return !l.Vertical && !l.Removed && utf8.RuneCountInString(strings.TrimSpace(l.Text)) == 1
}

// stacked reports whether lower sits in upper's column, at most 1.5 line
// heights below it. The column test lifts lower onto upper's baseline and
// checks the boxes overlap.
func (o *OrientationNormalizer) stacked(upper, lower model.Line) bool {
	size := max(upper.Size, lower.Size)
	d := upper.Baseline - lower.Baseline
	if d <= 0 || d > size*1.5 {
		return false
	}
	lifted := lower.BBox
	lifted.Y = upper.BBox.Y
	return upper.BBox.Intersects(lifted)
}
