package layout

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// maxRank is the deepest heading level
const maxRank = 6

// HeadingDetector ranks lines set noticeably larger than body text
type HeadingDetector struct {
	pipeline.Base
	cfg Config
}

// NewHeadingDetector creates the heading detection stage
func NewHeadingDetector(cfg Config) *HeadingDetector {
	return &HeadingDetector{cfg: cfg}
}

// Name returns the stage name
func (d *HeadingDetector) Name() string {
	return "headings"
}

type lineRef struct {
	page, line int
}

// Apply sets Heading on qualifying lines. Sizes within SizeTolerance share a
// rank; the largest size is rank 1.
func (d *HeadingDetector) Apply(doc *model.Document) (*model.Document, error) {
	if !doc.Globals.Ready {
		return nil, pipeline.Violation("heading detection before statistics")
	}
	for _, p := range doc.Pages {
		if len(p.Fragments) > 0 && !p.Assembled {
			return nil, pipeline.Violation("page %d has fragments but was never assembled into lines", p.Index+1)
		}
	}

	// no fragment is large enough, so no line can be
	if !d.sizeQualifies(doc.Globals, doc.Globals.MaxSize) {
		return doc, nil
	}

	var sizes []float64 // cluster representatives, first seen first
	var refs []lineRef
	var cluster []int
	for i, p := range doc.Pages {
		for j, l := range p.Lines {
			if !d.candidate(doc.Globals, l) {
				continue
			}
			c := slices.IndexFunc(sizes, func(s float64) bool {
				return math.Abs(s-l.Size) <= d.cfg.SizeTolerance
			})
			if c < 0 {
				c = len(sizes)
				sizes = append(sizes, l.Size)
			}
			refs = append(refs, lineRef{i, j})
			cluster = append(cluster, c)
		}
	}

	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case sizes[a] > sizes[b]:
			return -1
		case sizes[a] < sizes[b]:
			return 1
		}
		return 0
	})
	rank := make([]int, len(sizes))
	for pos, c := range order {
		rank[c] = min(pos+1, maxRank)
	}

	for k, ref := range refs {
		doc.Pages[ref.page].Lines[ref.line].Heading = rank[cluster[k]]
	}
	if len(sizes) > 0 {
		doc.Annotate(fmt.Sprintf("headings: %d lines in %d sizes", len(refs), len(sizes)))
	}
	return doc, nil
}

func (d *HeadingDetector) candidate(g model.Globals, l model.Line) bool {
	if l.Removed || l.TOC || l.Vertical || g.BodySize <= 0 {
		return false
	}
	text := strings.TrimSpace(l.Text)
	if text == "" || utf8.RuneCountInString(text) > d.cfg.MaxHeadingChars {
		return false
	}
	return d.sizeQualifies(g, l.Size)
}

func (d *HeadingDetector) sizeQualifies(g model.Globals, size float64) bool {
	return size >= g.BodySize*d.cfg.HeadingMinRatio && size-g.BodySize >= d.cfg.HeadingMinDelta
}
