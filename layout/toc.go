package layout

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// leaderPattern matches "label .... 12" with dot, middle dot, ellipsis or
// underscore leaders
var leaderPattern = regexp.MustCompile(`^(.*?\S)\s*(?:(?:[.·_]\s*){3,}|…+\s*)\s*(\d+|[ivxlcdmIVXLCDM]+)$`)

var pageNumber = regexp.MustCompile(`^(\d+|[ivxlcdmIVXLCDM]+)$`)

// wideGapRatio is the gap, as a multiple of line size, separating a label from
// its page number when no leader is drawn
const wideGapRatio = 3.0

// TOCDetector flags table-of-contents entries
type TOCDetector struct {
	pipeline.Base
	cfg Config
}

// NewTOCDetector creates the TOC detection stage
func NewTOCDetector(cfg Config) *TOCDetector {
	return &TOCDetector{cfg: cfg}
}

// Name returns the stage name
func (d *TOCDetector) Name() string {
	return "toc"
}

// Apply sets TOC, TOCLabel and TOCPage on matching lines
func (d *TOCDetector) Apply(doc *model.Document) (*model.Document, error) {
	found := 0
	for i := range doc.Pages {
		lines := doc.Pages[i].Lines
		for j := range lines {
			l := &lines[j]
			if l.Removed || l.Vertical {
				continue
			}
			label, page, ok := d.match(*l)
			if !ok {
				continue
			}
			l.TOC, l.TOCLabel, l.TOCPage = true, label, page
			found++
		}
	}
	if found > 0 {
		doc.Annotate(fmt.Sprintf("toc: %d entries", found))
	}
	return doc, nil
}

func (d *TOCDetector) match(l model.Line) (string, string, bool) {
	if m := leaderPattern.FindStringSubmatch(l.Text); m != nil {
		return d.accept(m[1], m[2])
	}

	n := len(l.Fragments)
	if n < 2 {
		return "", "", false
	}
	last := l.Fragments[n-1]
	num := strings.TrimSpace(last.Text)
	if !pageNumber.MatchString(num) {
		return "", "", false
	}
	prev := l.Fragments[n-2]
	if horizontalGap(prev, last) <= wideGapRatio*l.Size {
		return "", "", false
	}
	label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(l.Text), num))
	return d.accept(label, num)
}

// accept checks the label is short and carries words
func (d *TOCDetector) accept(label, page string) (string, string, bool) {
	label = strings.TrimSpace(label)
	if label == "" || utf8.RuneCountInString(label) > d.cfg.MaxTOCLabelChars {
		return "", "", false
	}
	if strings.IndexFunc(label, unicode.IsLetter) < 0 {
		return "", "", false
	}
	return label, page, true
}
