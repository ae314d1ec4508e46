package layout

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// LineAssembler groups the fragments of each page into lines
type LineAssembler struct {
	pipeline.Base
	cfg Config
}

// NewLineAssembler creates the line assembly stage
func NewLineAssembler(cfg Config) *LineAssembler {
	return &LineAssembler{cfg: cfg}
}

// Name returns the stage name
func (a *LineAssembler) Name() string {
	return "line-assembly"
}

// Apply replaces each page's lines with lines built from its fragments
func (a *LineAssembler) Apply(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		p := &doc.Pages[i]
		var upright, inverted, rotated []model.Fragment
		for _, f := range p.Fragments {
			switch {
			case f.Upright():
				upright = append(upright, f)
			case f.Inverted():
				inverted = append(inverted, f)
			default:
				rotated = append(rotated, f)
			}
		}

		lines := make([]model.Line, 0, len(upright))
		for _, group := range a.clusterBaselines(upright) {
			lines = append(lines, a.horizontalLine(doc, group))
		}
		for _, group := range a.clusterBaselines(inverted) {
			lines = append(lines, a.invertedLine(doc, group))
		}
		for _, group := range a.clusterColumns(rotated) {
			lines = append(lines, a.verticalLine(doc, group))
		}
		sortLines(lines)
		p.Lines = lines
		p.Assembled = true
	}
	return doc, nil
}

// clusterBaselines groups fragments whose baselines are within
// BaselineRatio × the smaller height of the group's first fragment
func (a *LineAssembler) clusterBaselines(frags []model.Fragment) [][]model.Fragment {
	frags = slices.Clone(frags)
	slices.SortStableFunc(frags, func(x, y model.Fragment) int {
		if c := cmp.Compare(y.Y, x.Y); c != 0 {
			return c
		}
		return cmp.Compare(x.X, y.X)
	})

	var groups [][]model.Fragment
	for _, f := range frags {
		if n := len(groups); n > 0 {
			anchor := groups[n-1][0]
			tol := a.cfg.BaselineRatio * min(anchor.Height, f.Height)
			if math.Abs(anchor.Y-f.Y) <= tol {
				groups[n-1] = append(groups[n-1], f)
				continue
			}
		}
		groups = append(groups, []model.Fragment{f})
	}
	return groups
}

// clusterColumns groups rotated fragments sharing an X position, keeping
// their content-stream order
func (a *LineAssembler) clusterColumns(frags []model.Fragment) [][]model.Fragment {
	var groups [][]model.Fragment
	for _, f := range frags {
		placed := false
		for i, g := range groups {
			anchor := g[0]
			tol := a.cfg.BaselineRatio * min(anchor.Height, f.Height)
			if anchor.Rotation == f.Rotation && math.Abs(anchor.X-f.X) <= tol {
				groups[i] = append(g, f)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []model.Fragment{f})
		}
	}
	return groups
}

func (a *LineAssembler) horizontalLine(doc *model.Document, frags []model.Fragment) model.Line {
	slices.SortStableFunc(frags, func(x, y model.Fragment) int {
		return cmp.Compare(x.X, y.X)
	})
	l := model.NewLine(frags)
	l.Text, l.Segments = compose(doc, frags, a.cfg.SpaceGapRatio, horizontalGap)
	finishLine(doc, &l)
	return l
}

// invertedLine builds a line from upside-down fragments, which read from
// right to left
func (a *LineAssembler) invertedLine(doc *model.Document, frags []model.Fragment) model.Line {
	slices.SortStableFunc(frags, func(x, y model.Fragment) int {
		return cmp.Compare(y.X, x.X)
	})
	l := model.NewLine(frags)
	l.Text, l.Segments = compose(doc, frags, a.cfg.SpaceGapRatio, invertedGap)
	finishLine(doc, &l)
	return l
}

func (a *LineAssembler) verticalLine(doc *model.Document, frags []model.Fragment) model.Line {
	l := model.NewLine(frags)
	l.Text, l.Segments = compose(doc, frags, a.cfg.SpaceGapRatio, nil)
	l.Vertical = true
	l.Baseline = l.BBox.Top()
	finishLine(doc, &l)
	return l
}

// gapFunc measures the distance between the end of prev and the start of next
// along the reading direction
type gapFunc func(prev, next model.Fragment) float64

func horizontalGap(prev, next model.Fragment) float64 {
	return next.X - (prev.X + prev.Width)
}

func invertedGap(prev, next model.Fragment) float64 {
	return (prev.X - prev.Width) - next.X
}

// compose concatenates fragment text, inserting a space where the gap exceeds
// ratio × height, and builds the matching style segments. A nil gap function
// never inserts spaces.
func compose(doc *model.Document, frags []model.Fragment, ratio float64, gap gapFunc) (string, []model.Segment) {
	var sb strings.Builder
	var segs []model.Segment
	for i, f := range frags {
		style := doc.Style(f.Font)
		if i > 0 && gap != nil {
			prev := frags[i-1]
			h := max(prev.Height, f.Height)
			if gap(prev, f) > ratio*h && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(f.Text, " ") {
				sb.WriteByte(' ')
				space := model.Segment{Text: " "}
				if n := len(segs); n > 0 {
					space.Bold, space.Italic = segs[n-1].Bold, segs[n-1].Italic
				}
				segs = appendSegment(segs, space)
			}
		}
		sb.WriteString(f.Text)
		segs = appendSegment(segs, model.Segment{Text: f.Text, Bold: style.Bold, Italic: style.Italic})
	}
	return trimSegments(sb.String(), segs)
}

// finishLine sets the style and indentation derived from document globals
func finishLine(doc *model.Document, l *model.Line) {
	l.Style = doc.Style(l.Font)
	l.Indent = l.Left() - doc.Globals.BodyLeft
}

// sortLines orders lines top to bottom, then left to right
func sortLines(lines []model.Line) {
	slices.SortStableFunc(lines, func(x, y model.Line) int {
		if c := cmp.Compare(y.Baseline, x.Baseline); c != 0 {
			return c
		}
		return cmp.Compare(x.Left(), y.Left())
	})
}

// appendSegment merges s into the last segment when the styles match
func appendSegment(segs []model.Segment, s model.Segment) []model.Segment {
	if s.Text == "" {
		return segs
	}
	if n := len(segs); n > 0 && segs[n-1].Bold == s.Bold && segs[n-1].Italic == s.Italic {
		segs[n-1].Text += s.Text
		return segs
	}
	return append(segs, s)
}

// trimSegments trims surrounding whitespace from text and its segments alike
func trimSegments(text string, segs []model.Segment) (string, []model.Segment) {
	lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	segs = dropPrefix(segs, lead)
	text = strings.TrimSpace(text)
	for n := len(segs); n > 0; n = len(segs) {
		segs[n-1].Text = strings.TrimRightFunc(segs[n-1].Text, unicode.IsSpace)
		if segs[n-1].Text != "" {
			break
		}
		segs = segs[:n-1]
	}
	return text, segs
}

// dropPrefix removes the first n bytes of the segments' joined text
func dropPrefix(segs []model.Segment, n int) []model.Segment {
	out := slices.Clone(segs)
	for n > 0 && len(out) > 0 {
		if len(out[0].Text) <= n {
			n -= len(out[0].Text)
			out = out[1:]
			continue
		}
		out[0].Text = out[0].Text[n:]
		n = 0
	}
	return out
}

// segmentsOf returns the line's segments, or its text as one plain segment
func segmentsOf(l model.Line) []model.Segment {
	if len(l.Segments) > 0 {
		return l.Segments
	}
	if l.Text == "" {
		return nil
	}
	return []model.Segment{{Text: l.Text}}
}
