package pagemark

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tsawler/pagemark/config"
	"github.com/tsawler/pagemark/extract"
	"github.com/tsawler/pagemark/layout"
	"github.com/tsawler/pagemark/markdown"
	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
	"github.com/tsawler/pagemark/source"
)

// Converter provides a fluent interface for converting documents.
// Each configuration method returns a new Converter, making it safe for
// concurrent use and allowing method chaining.
type Converter struct {
	// Source
	filename string
	name     string
	data     []byte
	decoder  source.Decoder

	// Configuration
	options options

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Converter with a deep copy of options
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		name:     c.name,
		data:     c.data,
		decoder:  c.decoder,
		options:  c.options.clone(),
		err:      c.err,
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// WithConfig applies a loaded configuration
//
// Example:
//
//	cfg, err := config.Load("pagemark.yaml")
//	md, err := pagemark.Open("doc.pdf").WithConfig(cfg).Markdown(ctx)
func (c *Converter) WithConfig(cfg *config.Config) *Converter {
	n := c.clone()
	n.options.extract = cfg.Extraction
	n.options.layout = cfg.Layout
	n.options.render = cfg.Render.Markdown
	n.options.frontMatter = cfg.Render.FrontMatter
	return n
}

// WithDecoder overrides the decoder chosen by DecoderFor
func (c *Converter) WithDecoder(d source.Decoder) *Converter {
	n := c.clone()
	n.decoder = d
	return n
}

// WithLogger sets the logger used by extraction and the stage driver
func (c *Converter) WithLogger(l zerolog.Logger) *Converter {
	n := c.clone()
	n.options.logger = l
	return n
}

// WithObserver receives extraction progress
func (c *Converter) WithObserver(obs extract.Observer) *Converter {
	n := c.clone()
	n.options.observer = obs
	return n
}

// WithTracer observes the document after every stage
//
// Example:
//
//	md, err := pagemark.Open("doc.pdf").WithTracer(func(stage string, doc *model.Document) {
//	    fmt.Println(stage, len(doc.Pages))
//	}).Markdown(ctx)
func (c *Converter) WithTracer(t pipeline.Tracer) *Converter {
	n := c.clone()
	n.options.tracer = t
	return n
}

// Pages restricts the output to the given pages (1-indexed). Every page is
// still analyzed so repeated headers and footers are detected document-wide.
// Multiple calls are cumulative.
//
// Example:
//
//	md, err := pagemark.Open("doc.pdf").Pages(1, 3).Markdown(ctx)
func (c *Converter) Pages(pages ...int) *Converter {
	n := c.clone()
	n.options.pages = append(n.options.pages, pages...)
	return n
}

// MaxPages rejects documents with more than n pages
func (c *Converter) MaxPages(n int) *Converter {
	next := c.clone()
	if n < 0 {
		next.err = fmt.Errorf("pagemark: negative page limit %d", n)
		return next
	}
	next.options.extract.MaxPages = n
	return next
}

// KeepBoilerplate disables removal of repeated headers and footers
//
// Example:
//
//	md, err := pagemark.Open("doc.pdf").KeepBoilerplate().Markdown(ctx)
func (c *Converter) KeepBoilerplate() *Converter {
	n := c.clone()
	n.options.layout.KeepBoilerplate = true
	return n
}

// JoinParagraphs joins the lines of a paragraph with spaces instead of
// newlines. This produces cleaner Markdown where soft line breaks within
// paragraphs are removed.
func (c *Converter) JoinParagraphs() *Converter {
	n := c.clone()
	n.options.render.JoinParagraphLines = true
	return n
}

// PlainTOC writes table-of-contents entries as "Label (page)" instead of
// links to heading anchors
func (c *Converter) PlainTOC() *Converter {
	n := c.clone()
	n.options.render.TOCStyle = markdown.TOCPlain
	return n
}

// NoEmphasis drops bold and italic markers
func (c *Converter) NoEmphasis() *Converter {
	n := c.clone()
	n.options.render.Emphasis = false
	return n
}

// FrontMatter prefixes the Markdown with a YAML block holding the document
// metadata
func (c *Converter) FrontMatter() *Converter {
	n := c.clone()
	n.options.frontMatter = true
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document runs extraction and every stage, returning the final document.
// Page.Output holds each page's Markdown.
func (c *Converter) Document(ctx context.Context) (*model.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	data, err := c.load()
	if err != nil {
		return nil, err
	}

	dec := c.decoder
	if dec == nil {
		dec = DecoderFor(c.name, data)
	}
	coord, err := extract.New(dec, c.options.extract, extract.WithLogger(c.options.logger))
	if err != nil {
		return nil, err
	}
	extracted, err := coord.Extract(ctx, c.name, data, c.options.observer)
	if err != nil {
		return nil, err
	}

	driver := c.Driver()
	doc, err := driver.Run(ctx, extracted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	if err := c.selectPages(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Markdown converts the document to Markdown
func (c *Converter) Markdown(ctx context.Context) (string, error) {
	doc, err := c.Document(ctx)
	if err != nil {
		return "", err
	}
	text := markdown.Text(doc)
	if !c.options.frontMatter {
		return text, nil
	}
	fm, err := markdown.FrontMatter(doc)
	if err != nil {
		return "", err
	}
	return fm + text, nil
}

// HTML converts the document to sanitized HTML by way of Markdown. Front
// matter is never included.
func (c *Converter) HTML(ctx context.Context) (string, error) {
	doc, err := c.Document(ctx)
	if err != nil {
		return "", err
	}
	out, err := markdown.ToHTML([]byte(markdown.Text(doc)))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Driver returns the stage driver built from this Converter's options
func (c *Converter) Driver() *pipeline.Driver {
	stages := append(layout.Stages(c.options.layout), markdown.NewRenderer(c.options.render))
	d := pipeline.New(stages...).WithLogger(c.options.logger)
	if c.options.tracer != nil {
		d = d.WithTracer(c.options.tracer)
	}
	return d
}

func (c *Converter) load() ([]byte, error) {
	if c.data != nil {
		return c.data, nil
	}
	if c.filename == "" {
		return nil, ErrNoInput
	}
	data, err := os.ReadFile(c.filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.filename, err)
	}
	return data, nil
}

// selectPages blanks the output of pages outside the selection
func (c *Converter) selectPages(doc *model.Document) error {
	if len(c.options.pages) == 0 {
		return nil
	}
	keep := make(map[int]bool, len(c.options.pages))
	for _, p := range c.options.pages {
		if p < 1 || p > len(doc.Pages) {
			return fmt.Errorf("page %d out of range (document has %d pages)", p, len(doc.Pages))
		}
		keep[p-1] = true
	}
	for i := range doc.Pages {
		if !keep[i] {
			doc.Pages[i].Output = ""
		}
	}
	return nil
}
