package font

import (
	"encoding/hex"
	"strings"
)

// CMap maps character codes to Unicode text, as read from a ToUnicode stream
type CMap struct {
	single map[uint32]string
	ranges []cmapRange
	width  int // bytes per character code
}

type cmapRange struct {
	lo, hi uint32
	dst    []rune
}

// ParseCMap parses the bfchar, bfrange and codespacerange sections of a
// ToUnicode CMap. Malformed entries are skipped.
func ParseCMap(data []byte) *CMap {
	cm := &CMap{single: make(map[uint32]string)}
	toks := tokenizeCMap(data)

	section := ""
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok {
		case "begincodespacerange", "beginbfchar", "beginbfrange":
			section = tok
			continue
		case "endcodespacerange", "endbfchar", "endbfrange":
			section = ""
			continue
		}

		switch section {
		case "begincodespacerange":
			if i+1 < len(toks) && isHexToken(tok) {
				cm.noteWidth(tok)
				i++
			}
		case "beginbfchar":
			if i+1 >= len(toks) || !isHexToken(tok) || !isHexToken(toks[i+1]) {
				continue
			}
			src, ok := hexCode(tok)
			if ok {
				cm.noteWidth(tok)
				cm.single[src] = string(utf16Runes(toks[i+1]))
			}
			i++
		case "beginbfrange":
			if i+2 >= len(toks) || !isHexToken(tok) || !isHexToken(toks[i+1]) {
				continue
			}
			lo, ok1 := hexCode(tok)
			hi, ok2 := hexCode(toks[i+1])
			cm.noteWidth(tok)
			if toks[i+2] == "[" {
				j := i + 3
				code := lo
				for ; j < len(toks) && toks[j] != "]"; j++ {
					if ok1 && ok2 && code <= hi && isHexToken(toks[j]) {
						cm.single[code] = string(utf16Runes(toks[j]))
					}
					code++
				}
				i = j
				continue
			}
			if ok1 && ok2 && lo <= hi && isHexToken(toks[i+2]) {
				cm.ranges = append(cm.ranges, cmapRange{lo: lo, hi: hi, dst: utf16Runes(toks[i+2])})
			}
			i += 2
		}
	}

	if cm.width == 0 {
		cm.width = 1
	}
	return cm
}

func (cm *CMap) noteWidth(tok string) {
	n := (len(tok) - 2 + 1) / 2
	if n > cm.width {
		cm.width = n
	}
}

// Width returns the number of bytes per character code
func (cm *CMap) Width() int {
	if cm == nil {
		return 1
	}
	return cm.width
}

// Lookup returns the Unicode text for one code
func (cm *CMap) Lookup(code uint32) (string, bool) {
	if s, ok := cm.single[code]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if code < r.lo || code > r.hi || len(r.dst) == 0 {
			continue
		}
		out := append([]rune(nil), r.dst...)
		out[len(out)-1] += rune(code - r.lo)
		return string(out), true
	}
	return "", false
}

// Decode converts a string of character codes to Unicode text
func (cm *CMap) Decode(data []byte) string {
	w := cm.Width()
	var b strings.Builder
	for i := 0; i < len(data); i += w {
		end := min(i+w, len(data))
		var code uint32
		for _, c := range data[i:end] {
			code = code<<8 | uint32(c)
		}
		if s, ok := cm.Lookup(code); ok {
			b.WriteString(s)
			continue
		}
		if w == 1 && code >= 0x20 {
			b.WriteRune(rune(code))
		}
	}
	return b.String()
}

func tokenizeCMap(data []byte) []string {
	var toks []string
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '<':
			j := i + 1
			for j < len(data) && data[j] != '>' {
				j++
			}
			toks = append(toks, "<"+stripSpace(string(data[i+1:min(j, len(data))]))+">")
			i = j + 1
		case c == '[' || c == ']':
			toks = append(toks, string(c))
			i++
		case isSpace(c):
			i++
		default:
			j := i
			for j < len(data) && !isSpace(data[j]) && data[j] != '<' && data[j] != '[' && data[j] != ']' {
				j++
			}
			toks = append(toks, string(data[i:j]))
			i = j
		}
	}
	return toks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

func isHexToken(tok string) bool {
	return len(tok) >= 2 && tok[0] == '<' && tok[len(tok)-1] == '>'
}

func hexBytes(tok string) []byte {
	h := tok[1 : len(tok)-1]
	if len(h)%2 != 0 {
		h += "0"
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil
	}
	return b
}

func hexCode(tok string) (uint32, bool) {
	b := hexBytes(tok)
	if len(b) == 0 || len(b) > 4 {
		return 0, false
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, true
}

func utf16Runes(tok string) []rune {
	b := hexBytes(tok)
	if len(b) == 1 {
		return []rune{rune(b[0])}
	}
	return []rune(DecodeUTF16BE(b))
}
