package model

import (
	"maps"
	"slices"

	"github.com/tsawler/pagemark/font"
)

// Document is the value threaded through every transformation stage
type Document struct {
	Name     string
	Metadata Metadata
	Pages    []Page
	Fonts    font.Map
	Globals  Globals

	// Messages collects stage annotations, cleared on finalize
	Messages []string
}

// Metadata contains document-level information
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// Custom metadata
	Custom map[string]string
}

// Globals holds corpus-wide statistics computed once by the first stage
type Globals struct {
	Ready        bool
	BodySize     float64 // Dominant glyph height weighted by characters
	BodyFont     string
	LineDistance float64 // Most common baseline distance between body lines
	MaxSize      float64
	MaxSizeFont  string
	BodyLeft     float64 // Most common left edge of body text
	Styles       map[string]font.Style
}

// NewDocument creates an empty document
func NewDocument(name string) *Document {
	return &Document{
		Name:     name,
		Metadata: Metadata{Custom: make(map[string]string)},
		Fonts:    make(font.Map),
	}
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Style returns the style of a font reference, using Globals when ready
func (d *Document) Style(ref string) font.Style {
	if s, ok := d.Globals.Styles[ref]; ok {
		return s
	}
	return d.Fonts.Style(ref)
}

// Clone returns a deep copy. Stages may mutate the copy freely.
func (d *Document) Clone() *Document {
	c := *d
	c.Metadata.Custom = maps.Clone(d.Metadata.Custom)
	c.Fonts = d.Fonts.Clone()
	c.Globals.Styles = maps.Clone(d.Globals.Styles)
	c.Messages = slices.Clone(d.Messages)
	c.Pages = make([]Page, len(d.Pages))
	for i := range d.Pages {
		c.Pages[i] = d.Pages[i].Clone()
	}
	return &c
}

// Annotate records a stage message
func (d *Document) Annotate(msg string) {
	d.Messages = append(d.Messages, msg)
}
