package source

import (
	"context"

	"github.com/tsawler/pagemark/font"
	"github.com/tsawler/pagemark/model"
)

// TextRun is one string shown on a page with a single text state
type TextRun struct {
	Text      string
	Transform model.Matrix // Text rendering matrix in user space
	Width     float64      // Advance in user space
	Height    float64      // Font size before transforms
	Font      string       // Font reference
}

// Decoder opens raw document bytes
type Decoder interface {
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an opened source document
type Document interface {
	PageCount() int
	Page(ctx context.Context, index int) (Page, error)
	Metadata(ctx context.Context) (model.Metadata, error)
	ResolveFont(ctx context.Context, ref string) (font.Descriptor, error)
}

// Page is one page of an opened document
type Page interface {
	TextRuns(ctx context.Context) ([]TextRun, error)
	// View maps user space to page space with the origin at the bottom left
	View() model.Matrix
	Size() (width, height float64)
}
