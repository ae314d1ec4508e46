package layout

import (
	"math"
	"strings"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// CodeQuoteDetector reclassifies paragraph blocks as code or quotes
type CodeQuoteDetector struct {
	pipeline.Base
	cfg Config
}

// NewCodeQuoteDetector creates the code and quote detection stage
func NewCodeQuoteDetector(cfg Config) *CodeQuoteDetector {
	return &CodeQuoteDetector{cfg: cfg}
}

// Name returns the stage name
func (d *CodeQuoteDetector) Name() string {
	return "code-quote"
}

// Apply changes the type of matching paragraph blocks
func (d *CodeQuoteDetector) Apply(doc *model.Document) (*model.Document, error) {
	g := doc.Globals
	bodyMono := doc.Style(g.BodyFont).Monospace
	for i := range doc.Pages {
		blocks := doc.Pages[i].Blocks
		for j := range blocks {
			b := &blocks[j]
			if b.Removed || b.Type != model.BlockParagraph {
				continue
			}
			switch {
			case !bodyMono && allLines(*b, func(l model.Line) bool { return l.Style.Monospace }):
				b.Type = model.BlockCode
				b.Annotation = "monospace"
			case allLines(*b, func(l model.Line) bool { return strings.HasPrefix(l.Text, ">") }):
				b.Type = model.BlockQuote
				b.Annotation = "quote mark"
				for k := range b.Lines {
					stripQuoteMark(&b.Lines[k])
				}
			case d.indentedQuote(g, *b):
				b.Type = model.BlockQuote
				b.Annotation = "indented"
			}
		}
	}
	return doc, nil
}

// indentedQuote reports a multi-line block aligned on its own margin well
// inside the body margin
func (d *CodeQuoteDetector) indentedQuote(g model.Globals, b model.Block) bool {
	if len(b.Lines) < 2 || g.BodySize <= 0 {
		return false
	}
	left := b.Lines[0].Left()
	aligned := allLines(b, func(l model.Line) bool {
		return math.Abs(l.Left()-left) <= d.cfg.IndentTolerance
	})
	return aligned && b.Indent >= d.cfg.QuoteIndentRatio*g.BodySize
}

func allLines(b model.Block, pred func(model.Line) bool) bool {
	if len(b.Lines) == 0 {
		return false
	}
	for _, l := range b.Lines {
		if !pred(l) {
			return false
		}
	}
	return true
}

func stripQuoteMark(l *model.Line) {
	n := 1
	if strings.HasPrefix(l.Text[1:], " ") {
		n = 2
	}
	l.Text, l.Segments = trimSegments(l.Text[n:], dropPrefix(l.Segments, n))
}
