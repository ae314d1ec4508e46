package source

import (
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/pagemark/font"
)

// glyph is one decoded character code
type glyph struct {
	text  string
	width float64 // Glyph space units (1/1000 em)
	space bool    // Single-byte code 32, subject to word spacing
}

// fontProgram decodes strings shown with one font
type fontProgram struct {
	ref          string
	composite    bool
	cmap         *font.CMap
	encoding     string
	diffs        map[byte]string
	firstChar    int
	widths       []float64
	cidWidths    map[uint32]float64
	defaultWidth float64
}

// glyphs decodes a shown string. A nil program decodes bytes as
// Windows-1252 with a nominal width.
func (f *fontProgram) glyphs(b []byte) []glyph {
	if f == nil {
		out := make([]glyph, 0, len(b))
		for _, c := range b {
			out = append(out, glyph{text: font.DecodeSimple([]byte{c}, ""), width: 500, space: c == ' '})
		}
		return out
	}

	step := 1
	if f.composite {
		step = 2
	}
	out := make([]glyph, 0, len(b)/step)
	for i := 0; i+step <= len(b); i += step {
		var code uint32
		for _, c := range b[i : i+step] {
			code = code<<8 | uint32(c)
		}
		g := glyph{width: f.width(code), space: step == 1 && code == 32}
		switch {
		case f.cmap != nil:
			if s, ok := f.cmap.Lookup(code); ok {
				g.text = s
				break
			}
			if !f.composite {
				g.text = f.simpleText(byte(code))
			}
		case !f.composite:
			g.text = f.simpleText(byte(code))
		}
		out = append(out, g)
	}
	return out
}

func (f *fontProgram) simpleText(c byte) string {
	if n, ok := f.diffs[c]; ok {
		if s := glyphText(n); s != "" {
			return s
		}
	}
	return font.DecodeSimple([]byte{c}, f.encoding)
}

func (f *fontProgram) width(code uint32) float64 {
	if f.composite {
		if w, ok := f.cidWidths[code]; ok {
			return w
		}
		return f.defaultWidth
	}
	if i := int(code) - f.firstChar; i >= 0 && i < len(f.widths) && f.widths[i] > 0 {
		return f.widths[i]
	}
	if code == 32 {
		return 250
	}
	return f.defaultWidth
}

// newFontProgram reads encoding, widths and ToUnicode from a font dictionary
func (d *pdfDocument) newFontProgram(ref string, dict types.Dict) *fontProgram {
	f := &fontProgram{ref: ref, defaultWidth: 500}
	subtype := nameOf(dict["Subtype"])
	f.composite = subtype == "Type0"

	if sd := d.stream(dict["ToUnicode"]); sd != nil {
		f.cmap = font.ParseCMap(sd.Content)
	}

	switch enc := d.deref(dict["Encoding"]).(type) {
	case types.Name:
		f.encoding = string(enc)
	case types.Dict:
		f.encoding = nameOf(enc["BaseEncoding"])
		f.diffs = d.differences(enc["Differences"])
	}

	if f.composite {
		f.defaultWidth = 1000
		if desc := d.descendant(dict); desc != nil {
			if dw, ok := number(d.deref(desc["DW"])); ok {
				f.defaultWidth = dw
			}
			f.cidWidths = d.cidWidths(desc["W"])
		}
		return f
	}

	if fc, ok := number(d.deref(dict["FirstChar"])); ok {
		f.firstChar = int(fc)
	}
	for _, w := range d.array(dict["Widths"]) {
		v, _ := number(d.deref(w))
		f.widths = append(f.widths, v)
	}
	if fd := d.dict(dict["FontDescriptor"]); fd != nil {
		if mw, ok := number(d.deref(fd["MissingWidth"])); ok && mw > 0 {
			f.defaultWidth = mw
		}
	}
	return f
}

func (d *pdfDocument) differences(obj types.Object) map[byte]string {
	arr := d.array(obj)
	if len(arr) == 0 {
		return nil
	}
	diffs := make(map[byte]string)
	code := 0
	for _, o := range arr {
		switch v := d.deref(o).(type) {
		case types.Integer:
			code = int(v)
		case types.Float:
			code = int(v)
		case types.Name:
			if code >= 0 && code < 256 {
				diffs[byte(code)] = string(v)
			}
			code++
		}
	}
	return diffs
}

// cidWidths parses a /W array: c [w1 w2 ...] or c_first c_last w
func (d *pdfDocument) cidWidths(obj types.Object) map[uint32]float64 {
	arr := d.array(obj)
	widths := make(map[uint32]float64)
	for i := 0; i < len(arr); {
		first, ok := number(d.deref(arr[i]))
		if !ok || i+1 >= len(arr) {
			break
		}
		if list, ok := d.deref(arr[i+1]).(types.Array); ok {
			for j, w := range list {
				if v, ok := number(d.deref(w)); ok {
					widths[uint32(first)+uint32(j)] = v
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		last, ok1 := number(d.deref(arr[i+1]))
		w, ok2 := number(d.deref(arr[i+2]))
		if ok1 && ok2 && last >= first && last-first < 1<<16 {
			for c := uint32(first); c <= uint32(last); c++ {
				widths[c] = w
			}
		}
		i += 3
	}
	return widths
}

func (d *pdfDocument) descendant(dict types.Dict) types.Dict {
	arr := d.array(dict["DescendantFonts"])
	if len(arr) == 0 {
		return nil
	}
	return d.dict(arr[0])
}

// descriptor builds the font descriptor for a font dictionary
func (d *pdfDocument) descriptor(ref string, dict types.Dict) font.Descriptor {
	desc := font.Descriptor{
		Ref:      ref,
		BaseFont: font.StripSubset(nameOf(dict["BaseFont"])),
		Subtype:  nameOf(dict["Subtype"]),
	}
	if n, ok := d.deref(dict["Encoding"]).(types.Name); ok {
		desc.Encoding = string(n)
	}

	fd := d.dict(dict["FontDescriptor"])
	if fd == nil && desc.Subtype == "Type0" {
		if child := d.descendant(dict); child != nil {
			fd = d.dict(child["FontDescriptor"])
		}
	}
	if fd == nil {
		return desc
	}

	if v, ok := number(d.deref(fd["Flags"])); ok {
		desc.Flags = int(v)
	}
	desc.Ascent, _ = number(d.deref(fd["Ascent"]))
	desc.Descent, _ = number(d.deref(fd["Descent"]))
	desc.ItalicAngle, _ = number(d.deref(fd["ItalicAngle"]))
	desc.Weight, _ = number(d.deref(fd["FontWeight"]))
	desc.AvgWidth, _ = number(d.deref(fd["AvgWidth"]))
	desc.MissingWidth, _ = number(d.deref(fd["MissingWidth"]))
	return desc
}

var namedGlyphs = map[string]string{
	"space": " ", "exclam": "!", "quotedbl": "\"", "numbersign": "#", "dollar": "$",
	"percent": "%", "ampersand": "&", "quotesingle": "'", "parenleft": "(", "parenright": ")",
	"asterisk": "*", "plus": "+", "comma": ",", "hyphen": "-", "period": ".", "slash": "/",
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4", "five": "5", "six": "6",
	"seven": "7", "eight": "8", "nine": "9", "colon": ":", "semicolon": ";", "less": "<",
	"equal": "=", "greater": ">", "question": "?", "at": "@", "bracketleft": "[",
	"backslash": "\\", "bracketright": "]", "underscore": "_", "braceleft": "{", "bar": "|",
	"braceright": "}", "quoteleft": "‘", "quoteright": "’", "quotedblleft": "“",
	"quotedblright": "”", "bullet": "•", "endash": "–", "emdash": "—", "ellipsis": "…",
	"fi": "fi", "fl": "fl", "ff": "ff", "ffi": "ffi", "ffl": "ffl", "periodcentered": "·",
}

// glyphText maps a glyph name to text
func glyphText(n string) string {
	if s, ok := namedGlyphs[n]; ok {
		return s
	}
	if len(n) == 1 {
		return n
	}
	if strings.HasPrefix(n, "uni") && len(n) == 7 {
		if v, err := strconv.ParseUint(n[3:], 16, 32); err == nil {
			return string(rune(v))
		}
	}
	return ""
}

func nameOf(obj types.Object) string {
	if n, ok := obj.(types.Name); ok {
		return string(n)
	}
	return ""
}

func number(obj types.Object) (float64, bool) {
	switch v := obj.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}
