package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/tsawler/pagemark/font"
	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// Statistics computes the document-wide Globals every later stage relies on
type Statistics struct {
	pipeline.Base
}

// NewStatistics creates the statistics stage
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Name returns the stage name
func (s *Statistics) Name() string {
	return "statistics"
}

// Apply fills doc.Globals. Running it twice is a violation.
func (s *Statistics) Apply(doc *model.Document) (*model.Document, error) {
	if doc.Globals.Ready {
		return nil, pipeline.Violation("globals already computed")
	}

	sizes := newTally[float64]()
	for _, p := range doc.Pages {
		for _, f := range p.Fragments {
			sizes.add(model.Round(f.Height, 1), runeCount(f.Text))
		}
	}
	body, _ := sizes.best()

	fonts := newTally[string]()
	styles := make(map[string]font.Style)
	g := model.Globals{Ready: true, BodySize: body}
	for _, p := range doc.Pages {
		for _, f := range p.Fragments {
			if _, ok := styles[f.Font]; !ok {
				styles[f.Font] = doc.Fonts.Style(f.Font)
			}
			if f.Height > g.MaxSize {
				g.MaxSize, g.MaxSizeFont = f.Height, f.Font
			}
			if model.Round(f.Height, 1) == body {
				fonts.add(f.Font, runeCount(f.Text))
			}
		}
	}
	g.BodyFont, _ = fonts.best()
	g.Styles = styles
	g.LineDistance, g.BodyLeft = bodyMetrics(doc.Pages, body)
	if g.LineDistance == 0 {
		g.LineDistance = body * 1.2
	}

	doc.Globals = g
	if g.MaxSize > 0 {
		doc.Annotate(fmt.Sprintf("statistics: body %.1f (%s), largest %.1f (%s)", g.BodySize, g.BodyFont, g.MaxSize, g.MaxSizeFont))
	}
	return doc, nil
}

// bodyMetrics returns the most common baseline distance and the most common
// left edge of body-size text
func bodyMetrics(pages []model.Page, body float64) (float64, float64) {
	dist := newTally[float64]()
	left := newTally[float64]()
	for _, p := range pages {
		starts := make(map[float64]float64)
		var baselines []float64
		for _, f := range p.Fragments {
			if !f.Upright() || model.Round(f.Height, 1) != body {
				continue
			}
			y := model.Round(f.Y, 0)
			x, ok := starts[y]
			if !ok {
				baselines = append(baselines, y)
				starts[y] = f.X
			} else if f.X < x {
				starts[y] = f.X
			}
		}
		for _, y := range baselines {
			left.add(model.Round(starts[y], 0), 1)
		}
		slices.SortFunc(baselines, func(a, b float64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			}
			return 0
		})
		for i := 1; i < len(baselines); i++ {
			d := baselines[i-1] - baselines[i]
			if d > 0 && d <= body*3 {
				dist.add(model.Round(d, 1), 1)
			}
		}
	}
	d, _ := dist.best()
	l, _ := left.best()
	return d, l
}

// tally counts weighted keys, breaking ties by first occurrence
type tally[K comparable] struct {
	order  []K
	counts map[K]int
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{counts: make(map[K]int)}
}

func (t *tally[K]) add(k K, n int) {
	if _, ok := t.counts[k]; !ok {
		t.order = append(t.order, k)
	}
	t.counts[k] += n
}

func (t *tally[K]) best() (K, int) {
	var best K
	n := math.MinInt
	for _, k := range t.order {
		if c := t.counts[k]; c > n {
			best, n = k, c
		}
	}
	if n == math.MinInt {
		n = 0
	}
	return best, n
}

func runeCount(s string) int {
	return len([]rune(s))
}
