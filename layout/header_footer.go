package layout

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// BoilerplateRemover removes headers, footers and page numbers: lines that
// repeat at the same vertical position on most pages
type BoilerplateRemover struct {
	pipeline.Base
	cfg Config
}

// NewBoilerplateRemover creates the boilerplate removal stage
func NewBoilerplateRemover(cfg Config) *BoilerplateRemover {
	return &BoilerplateRemover{cfg: cfg}
}

// Name returns the stage name
func (r *BoilerplateRemover) Name() string {
	return "boilerplate"
}

type repeatKey struct {
	text   string
	bucket int
}

// Apply marks repeated lines Removed; the finalizer sweeps them
func (r *BoilerplateRemover) Apply(doc *model.Document) (*model.Document, error) {
	total := len(doc.Pages)
	if total < r.cfg.MinPages {
		return doc, nil
	}

	present := make([]map[repeatKey]bool, total)
	for i, p := range doc.Pages {
		present[i] = make(map[repeatKey]bool)
		for _, l := range p.Lines {
			if k, ok := r.key(l); ok {
				present[i][k] = true
			}
		}
	}

	// a key counts on a page when the text appears in the same or an adjacent
	// bucket, absorbing jitter at bucket edges
	pagesWith := func(k repeatKey) int {
		n := 0
		for _, keys := range present {
			for d := -1; d <= 1; d++ {
				if keys[repeatKey{k.text, k.bucket + d}] {
					n++
					break
				}
			}
		}
		return n
	}

	need := max(r.cfg.MinPages, int(math.Ceil(r.cfg.MinPageFraction*float64(total)-1e-9)))
	verdict := make(map[repeatKey]bool)
	removed := 0
	for i := range doc.Pages {
		p := &doc.Pages[i]
		for j := range p.Lines {
			l := &p.Lines[j]
			k, ok := r.key(*l)
			if !ok {
				continue
			}
			rep, seen := verdict[k]
			if !seen {
				rep = pagesWith(k) >= need
				verdict[k] = rep
			}
			if rep {
				l.Removed = true
				l.Annotation = "boilerplate"
				removed++
			}
		}
	}
	if removed > 0 {
		doc.Annotate(fmt.Sprintf("boilerplate: %d lines removed", removed))
	}
	return doc, nil
}

func (r *BoilerplateRemover) key(l model.Line) (repeatKey, bool) {
	text := normalizeForComparison(l.Text)
	if text == "" {
		return repeatKey{}, false
	}
	tol := r.cfg.PositionTolerance
	if tol <= 0 {
		tol = 1
	}
	return repeatKey{text: text, bucket: int(math.Round(l.Baseline / tol))}, true
}

var (
	digitRun = regexp.MustCompile(`\d+`)
	spaceRun = regexp.MustCompile(`\s+`)
)

// normalizeForComparison folds compatibility forms and case, collapses digit
// runs to '#' so running page numbers compare equal, and collapses whitespace
func normalizeForComparison(text string) string {
	s := strings.ToLower(norm.NFKC.String(text))
	s = digitRun.ReplaceAllString(s, "#")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
