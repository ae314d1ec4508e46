package layout

import (
	"regexp"
	"strings"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

var (
	// glyph bullets may touch the text
	bulletPattern = regexp.MustCompile(`^([•◦▪‣●○■·])\s*`)

	// typewriter bullets need a space to tell them from a hyphen or a sign
	dashPattern = regexp.MustCompile(`^([-–—*])\s+`)

	// 1. 1) a. a) iv. iv)
	orderedPattern = regexp.MustCompile(`^(\d{1,3}|[a-zA-Z]|[ivxlcdm]{1,6}|[IVXLCDM]{1,6})([.)])\s+`)
	romanPattern   = regexp.MustCompile(`^(?i:m{0,3}(cm|cd|d?c{0,3})(xc|xl|l?x{0,3})(ix|iv|v?i{0,3}))$`)
)

// ListDetector marks lines that start with a bullet or an enumerator
type ListDetector struct {
	pipeline.Base
}

// NewListDetector creates the list item detection stage
func NewListDetector() *ListDetector {
	return &ListDetector{}
}

// Name returns the stage name
func (d *ListDetector) Name() string {
	return "list-items"
}

// Apply sets List and Marker and strips the marker from the line text.
// Headings and TOC entries are skipped.
func (d *ListDetector) Apply(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		lines := doc.Pages[i].Lines
		for j := range lines {
			l := &lines[j]
			if l.Removed || l.Vertical || !l.Plain() {
				continue
			}
			kind, marker, n := detectMarker(l.Text)
			if kind == model.ListNone {
				continue
			}
			l.List, l.Marker = kind, marker
			l.Text, l.Segments = trimSegments(l.Text[n:], dropPrefix(l.Segments, n))
		}
	}
	return doc, nil
}

// detectMarker returns the list kind, the marker and the byte length of the
// marker prefix
func detectMarker(text string) (model.ListKind, string, int) {
	for _, re := range []*regexp.Regexp{bulletPattern, dashPattern} {
		if m := re.FindStringSubmatchIndex(text); m != nil && hasText(text[m[1]:]) {
			return model.ListUnordered, text[m[2]:m[3]], m[1]
		}
	}
	if m := orderedPattern.FindStringSubmatchIndex(text); m != nil && hasText(text[m[1]:]) {
		label := text[m[2]:m[3]]
		if isLetters(label) && len(label) > 1 && !romanPattern.MatchString(label) {
			return model.ListNone, "", 0
		}
		return model.ListOrdered, text[m[2]:m[5]], m[1]
	}
	return model.ListNone, "", 0
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

func isLetters(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < 'A' || r > 'z' }) < 0
}

// ListLevelDetector assigns nesting depth to consecutive list items
type ListLevelDetector struct {
	pipeline.Base
	cfg Config
}

// NewListLevelDetector creates the list level stage
func NewListLevelDetector(cfg Config) *ListLevelDetector {
	return &ListLevelDetector{cfg: cfg}
}

// Name returns the stage name
func (d *ListLevelDetector) Name() string {
	return "list-levels"
}

// Apply sets Depth on list item blocks. A list continues across a page break
// and ends at the first non-list block.
func (d *ListLevelDetector) Apply(doc *model.Document) (*model.Document, error) {
	var stack []float64
	for i := range doc.Pages {
		blocks := doc.Pages[i].Blocks
		for j := range blocks {
			b := &blocks[j]
			if b.Removed {
				continue
			}
			if b.Type != model.BlockListItem {
				stack = stack[:0]
				continue
			}
			b.Depth, stack = d.depth(stack, b.Indent)
		}
	}
	return doc, nil
}

// depth applies one item to the indentation stack, where stack[d] is the
// indentation of the latest item at depth d
func (d *ListLevelDetector) depth(stack []float64, indent float64) (int, []float64) {
	tol := d.cfg.ListIndentTolerance
	if n := len(stack); n == 0 || indent > stack[n-1]+tol {
		return n, append(stack, indent)
	}
	for depth, x := range stack {
		if x >= indent-tol {
			stack = stack[:depth+1]
			stack[depth] = indent
			return depth, stack
		}
	}
	return len(stack) - 1, stack
}
