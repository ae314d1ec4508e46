package markdown

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// TOCStyle selects how table-of-contents entries are written
type TOCStyle int

const (
	// TOCLinks writes entries as a list of links to heading anchors
	TOCLinks TOCStyle = iota
	// TOCPlain writes entries as a plain list with page numbers
	TOCPlain
)

// String returns a string representation of the TOC style
func (s TOCStyle) String() string {
	if s == TOCPlain {
		return "plain"
	}
	return "links"
}

// ParseTOCStyle parses "links" or "plain"
func ParseTOCStyle(v string) (TOCStyle, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "links":
		return TOCLinks, nil
	case "plain":
		return TOCPlain, nil
	}
	return TOCLinks, fmt.Errorf("unknown toc style %q", v)
}

// UnmarshalYAML accepts the style name
func (s *TOCStyle) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	v, err := ParseTOCStyle(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalYAML writes the style name
func (s TOCStyle) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Options controls Markdown generation
type Options struct {
	// TOCStyle selects link or plain TOC entries
	// Default: TOCLinks
	TOCStyle TOCStyle `yaml:"toc_style"`

	// Emphasis wraps bold and italic text in ** and *
	// Default: true
	Emphasis bool `yaml:"emphasis"`

	// JoinParagraphLines joins the lines of a paragraph with spaces instead
	// of newlines
	// Default: false
	JoinParagraphLines bool `yaml:"join_paragraph_lines"`
}

// DefaultOptions returns sensible default options
func DefaultOptions() Options {
	return Options{TOCStyle: TOCLinks, Emphasis: true}
}

// Renderer is the final stage: it writes each page's units as Markdown into
// Page.Output
type Renderer struct {
	pipeline.Base
	opts Options
}

// NewRenderer creates the rendering stage
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Name returns the stage name
func (r *Renderer) Name() string {
	return "markdown"
}

// Apply renders every page
func (r *Renderer) Apply(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		doc.Pages[i].Output = r.Page(doc.Pages[i].Units)
	}
	return doc, nil
}

// Page renders units. Blocks are separated by a blank line; consecutive list
// items are kept tight. Non-empty output ends with a newline.
func (r *Renderer) Page(units []model.Unit) string {
	var sb strings.Builder
	var counters []int
	for i, u := range units {
		if i > 0 {
			if u.Type == model.BlockListItem && units[i-1].Type == model.BlockListItem {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		if u.Type != model.BlockListItem {
			counters = counters[:0]
		}

		switch u.Type {
		case model.BlockHeading:
			sb.WriteString(strings.Repeat("#", max(u.Rank, 1)))
			sb.WriteString(" ")
			sb.WriteString(u.Text(" "))

		case model.BlockListItem:
			counters = advance(counters, u.Depth)
			sb.WriteString(strings.Repeat("  ", u.Depth))
			if u.Ordered {
				sb.WriteString(ordinal(u.Marker, counters[u.Depth]))
				sb.WriteString(". ")
			} else {
				sb.WriteString("- ")
			}
			sb.WriteString(r.lines(u.Lines, " "))

		case model.BlockCode:
			sb.WriteString("```\n")
			sb.WriteString(u.Text("\n"))
			sb.WriteString("\n```")

		case model.BlockQuote:
			for j, segs := range u.Lines {
				if j > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString("> ")
				sb.WriteString(r.inline(segs))
			}

		case model.BlockTOC:
			for j, e := range u.Entries {
				if j > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(strings.Repeat("  ", e.Depth))
				if r.opts.TOCStyle == TOCPlain {
					sb.WriteString("- " + e.Label + " (" + e.Page + ")")
				} else {
					sb.WriteString("- [" + e.Label + "](#" + Slug(e.Label) + ")")
				}
			}

		default:
			sep := "\n"
			if r.opts.JoinParagraphLines {
				sep = " "
			}
			sb.WriteString(r.lines(u.Lines, sep))
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) lines(lines [][]model.Segment, sep string) string {
	parts := make([]string, len(lines))
	for i, segs := range lines {
		parts[i] = r.inline(segs)
	}
	return strings.Join(parts, sep)
}

// inline writes segments, wrapping styled ones in emphasis markers. Spaces at
// segment edges stay outside the markers.
func (r *Renderer) inline(segs []model.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		mark := ""
		if r.opts.Emphasis {
			switch {
			case s.Bold && s.Italic:
				mark = "***"
			case s.Bold:
				mark = "**"
			case s.Italic:
				mark = "*"
			}
		}
		core := strings.TrimSpace(s.Text)
		if mark == "" || core == "" {
			sb.WriteString(s.Text)
			continue
		}
		start := strings.Index(s.Text, core)
		sb.WriteString(s.Text[:start])
		sb.WriteString(mark + core + mark)
		sb.WriteString(s.Text[start+len(core):])
	}
	return sb.String()
}

// advance counts an item at depth, dropping deeper counters
func advance(counters []int, depth int) []int {
	for len(counters) <= depth {
		counters = append(counters, 0)
	}
	counters = counters[:depth+1]
	counters[depth]++
	return counters
}

// ordinal keeps a numeric marker and numbers letters and roman numerals by
// position
func ordinal(marker string, position int) string {
	digits := strings.TrimRightFunc(marker, func(r rune) bool { return !unicode.IsDigit(r) })
	if n, err := strconv.Atoi(digits); err == nil {
		return strconv.Itoa(n)
	}
	return strconv.Itoa(position)
}

// Slug returns the anchor a heading gets on common Markdown hosts: lower case
// letters, digits, hyphens and underscores, spaces turned into hyphens
func Slug(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

// Text joins the rendered pages of a document, skipping empty pages
func Text(doc *model.Document) string {
	parts := make([]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if p.Output != "" {
			parts = append(parts, p.Output)
		}
	}
	return strings.Join(parts, "\n")
}
