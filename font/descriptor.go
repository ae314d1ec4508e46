package font

import (
	"maps"
	"strings"
)

// Font descriptor flags (PDF 32000-1, table 123)
const (
	FlagFixedPitch  = 1 << 0
	FlagSerif       = 1 << 1
	FlagSymbolic    = 1 << 2
	FlagScript      = 1 << 3
	FlagNonsymbolic = 1 << 5
	FlagItalic      = 1 << 6
	FlagAllCap      = 1 << 16
	FlagSmallCap    = 1 << 17
	FlagForceBold   = 1 << 18
)

// Style is the visual style of a font as far as rendering is concerned
type Style struct {
	Bold      bool
	Italic    bool
	Monospace bool
}

// Descriptor holds the resolved metrics of one font reference
type Descriptor struct {
	Ref          string  // Reference as reported by the source decoder
	BaseFont     string  // PostScript name, subset prefix removed
	Subtype      string  // Type1, TrueType, Type0, Type3...
	Encoding     string  // Encoding name, empty when unknown
	Flags        int     // FontDescriptor /Flags
	Ascent       float64 // In glyph space units (1/1000 em)
	Descent      float64
	ItalicAngle  float64
	Weight       float64 // FontWeight or StemV-derived estimate, 0 when unknown
	AvgWidth     float64
	MissingWidth float64
}

// Style derives the rendering style from the descriptor flags, then from
// the base font name.
func (d Descriptor) Style() Style {
	s := StyleFromName(d.BaseFont)
	if d.Flags&FlagFixedPitch != 0 {
		s.Monospace = true
	}
	if d.Flags&FlagItalic != 0 || d.ItalicAngle != 0 {
		s.Italic = true
	}
	if d.Flags&FlagForceBold != 0 || d.Weight >= 600 {
		s.Bold = true
	}
	return s
}

var (
	boldMarkers   = []string{"bold", "black", "heavy", "semibold", "demibold", "extrabold"}
	italicMarkers = []string{"italic", "oblique", "slanted"}
	monoMarkers   = []string{"mono", "courier", "consola", "menlo", "inconsolata", "typewriter", "fixed", "code"}
)

// StyleFromName guesses a style from a font name such as
// "ABCDEF+Helvetica-BoldOblique".
func StyleFromName(name string) Style {
	n := strings.ToLower(StripSubset(name))
	var s Style
	for _, m := range boldMarkers {
		if strings.Contains(n, m) {
			s.Bold = true
			break
		}
	}
	for _, m := range italicMarkers {
		if strings.Contains(n, m) {
			s.Italic = true
			break
		}
	}
	// ",It" and "-It" suffixes as used by Adobe naming
	if strings.HasSuffix(n, "-it") || strings.HasSuffix(n, ",it") || strings.HasSuffix(n, "-boldit") {
		s.Italic = true
	}
	for _, m := range monoMarkers {
		if strings.Contains(n, m) {
			s.Monospace = true
			break
		}
	}
	return s
}

// StripSubset removes a six letter subset tag ("ABCDEF+") from a font name.
func StripSubset(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}

// Map holds resolved descriptors keyed by font reference
type Map map[string]Descriptor

// Clone returns an independent copy of the map
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Style returns the style for a reference. Unresolved references fall back to
// name heuristics on the reference itself.
func (m Map) Style(ref string) Style {
	if d, ok := m[ref]; ok {
		return d.Style()
	}
	return StyleFromName(ref)
}
