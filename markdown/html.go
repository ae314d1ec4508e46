package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// HTMLConverter turns rendered Markdown into sanitized HTML. It is safe for
// concurrent use.
type HTMLConverter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLConverter creates a converter with GitHub-flavoured extensions and
// heading anchors matching Slug
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Convert renders source and strips anything outside the user-content policy
func (c *HTMLConverter) Convert(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return c.policy.SanitizeBytes(buf.Bytes()), nil
}

var defaultConverter = NewHTMLConverter()

// ToHTML converts Markdown with the default converter
func ToHTML(source []byte) ([]byte, error) {
	return defaultConverter.Convert(source)
}
