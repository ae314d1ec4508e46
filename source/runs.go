package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tsawler/pagemark/font"
	"github.com/tsawler/pagemark/model"
)

// Dump is the JSON form of a document read by the Runs decoder
type Dump struct {
	Info  DumpMetadata               `json:"metadata"`
	Fonts map[string]font.Descriptor `json:"fonts,omitempty"`
	Pages []DumpPage                 `json:"pages"`
}

// DumpMetadata mirrors model.Metadata
type DumpMetadata struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// DumpPage is one page of a Dump
type DumpPage struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	ViewMatrix *model.Matrix `json:"view,omitempty"`
	Runs       []DumpRun     `json:"runs"`
}

// DumpRun is one text run of a DumpPage
type DumpRun struct {
	Text      string       `json:"text"`
	Transform model.Matrix `json:"transform"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Font      string       `json:"font,omitempty"`
}

// Runs decodes JSON run dumps
type Runs struct{}

// Open parses a JSON Dump
func (Runs) Open(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse run dump: %w", err)
	}
	return &d, nil
}

// Encode returns the JSON form of the dump
func (d *Dump) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// PageCount returns the number of pages
func (d *Dump) PageCount() int {
	return len(d.Pages)
}

// Page returns one page
func (d *Dump) Page(ctx context.Context, index int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range", index+1)
	}
	return &d.Pages[index], nil
}

// Metadata returns the document metadata
func (d *Dump) Metadata(ctx context.Context) (model.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return model.Metadata{}, err
	}
	m := d.Info
	return model.Metadata{
		Title:    m.Title,
		Author:   m.Author,
		Subject:  m.Subject,
		Keywords: m.Keywords,
		Creator:  m.Creator,
		Producer: m.Producer,
		Custom:   make(map[string]string),
	}, nil
}

// ResolveFont returns the dumped descriptor. Unknown references resolve to a
// descriptor carrying only the reference as base font name.
func (d *Dump) ResolveFont(ctx context.Context, ref string) (font.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return font.Descriptor{}, err
	}
	if desc, ok := d.Fonts[ref]; ok {
		desc.Ref = ref
		return desc, nil
	}
	return font.Descriptor{Ref: ref, BaseFont: ref}, nil
}

// TextRuns returns the page runs in dump order
func (p *DumpPage) TextRuns(ctx context.Context) ([]TextRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runs := make([]TextRun, len(p.Runs))
	for i, r := range p.Runs {
		runs[i] = TextRun{Text: r.Text, Transform: r.Transform, Width: r.Width, Height: r.Height, Font: r.Font}
	}
	return runs, nil
}

// View returns the page view matrix, identity when not dumped
func (p *DumpPage) View() model.Matrix {
	if p.ViewMatrix == nil {
		return model.Identity()
	}
	return *p.ViewMatrix
}

// Size returns the page size
func (p *DumpPage) Size() (float64, float64) {
	return p.Width, p.Height
}
