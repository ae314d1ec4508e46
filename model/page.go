package model

import "slices"

// Page holds one page at every granularity derived so far
type Page struct {
	Index  int // 0-based
	Width  float64
	Height float64

	// Fragments are in arrival order, not reading order
	Fragments []Fragment
	Lines     []Line
	Blocks    []Block
	Units     []Unit
	Output    string

	// Assembled is set by line assembly. It stays set when every line is
	// later swept, so an emptied page is told apart from an unassembled one.
	Assembled bool
}

// Clone returns a deep copy of the page
func (p Page) Clone() Page {
	c := p
	c.Fragments = slices.Clone(p.Fragments)
	if p.Lines != nil {
		c.Lines = make([]Line, len(p.Lines))
		for i, l := range p.Lines {
			c.Lines[i] = l.clone()
		}
	}
	if p.Blocks != nil {
		c.Blocks = make([]Block, len(p.Blocks))
		for i, b := range p.Blocks {
			c.Blocks[i] = b
			c.Blocks[i].Lines = make([]Line, len(b.Lines))
			for j, l := range b.Lines {
				c.Blocks[i].Lines[j] = l.clone()
			}
		}
	}
	if p.Units != nil {
		c.Units = make([]Unit, len(p.Units))
		for i, u := range p.Units {
			c.Units[i] = u
			c.Units[i].Entries = slices.Clone(u.Entries)
			c.Units[i].Lines = make([][]Segment, len(u.Lines))
			for j, segs := range u.Lines {
				c.Units[i].Lines[j] = slices.Clone(segs)
			}
		}
	}
	return c
}

func (l Line) clone() Line {
	l.Fragments = slices.Clone(l.Fragments)
	l.Segments = slices.Clone(l.Segments)
	return l
}

// Text returns the text of all live lines joined by newlines
func (p *Page) Text() string {
	var out []byte
	for i, l := range p.Lines {
		if l.Removed {
			continue
		}
		if i > 0 && len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, l.Text...)
	}
	return string(out)
}
