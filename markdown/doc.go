// Package markdown renders linearized document units as Markdown.
//
// The [Renderer] is the last pipeline stage. It writes each page's Markdown
// into Page.Output; [Text] joins the pages:
//
//	driver := pipeline.New(append(layout.Stages(cfg), markdown.NewRenderer(markdown.DefaultOptions()))...)
//	doc, err := driver.Run(ctx, extracted)
//	text := markdown.Text(doc)
//
// [ToHTML] converts the result to sanitized HTML, and [FrontMatter] builds an
// optional YAML header from the document metadata.
package markdown
