package source

import (
	"bytes"
	"strconv"
)

// name is a PDF name operand without the leading slash
type name string

// operation is one content stream operator with its operands.
// Operands are float64, []byte (strings), name, []any (arrays) or nil.
type operation struct {
	op   string
	args []any
}

// lexer splits a content stream into operations
type lexer struct {
	data []byte
	pos  int
}

// parseContent parses a content stream. Malformed tokens are skipped rather
// than failing the whole page.
func parseContent(data []byte) []operation {
	lx := &lexer{data: data}
	var ops []operation
	var stack []any

	for {
		lx.skipSpace()
		if lx.pos >= len(lx.data) {
			break
		}
		c := lx.data[lx.pos]
		if isRegular(c) && !isNumberStart(c) {
			word := lx.word()
			switch word {
			case "true", "false", "null":
				stack = append(stack, nil)
				continue
			case "BI":
				lx.skipInlineImage()
				stack = stack[:0]
				continue
			}
			ops = append(ops, operation{op: word, args: stack})
			stack = nil
			continue
		}
		v, ok := lx.operand()
		if ok {
			stack = append(stack, v)
		}
	}
	return ops
}

func (lx *lexer) operand() (any, bool) {
	c := lx.data[lx.pos]
	switch {
	case isNumberStart(c):
		w := lx.word()
		f, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case c == '(':
		return lx.literal(), true
	case c == '<' && lx.peek(1) == '<':
		lx.dict()
		return nil, true
	case c == '<':
		return lx.hexString(), true
	case c == '/':
		lx.pos++
		return name(unescapeName(lx.word())), true
	case c == '[':
		lx.pos++
		var arr []any
		for {
			lx.skipSpace()
			if lx.pos >= len(lx.data) {
				return arr, true
			}
			if lx.data[lx.pos] == ']' {
				lx.pos++
				return arr, true
			}
			if c := lx.data[lx.pos]; isRegular(c) && !isNumberStart(c) {
				lx.word()
				continue
			}
			if v, ok := lx.operand(); ok {
				arr = append(arr, v)
			}
		}
	default:
		// stray delimiter
		lx.pos++
		return nil, false
	}
}

func (lx *lexer) word() string {
	start := lx.pos
	for lx.pos < len(lx.data) && isRegular(lx.data[lx.pos]) {
		lx.pos++
	}
	if lx.pos == start {
		lx.pos++
	}
	return string(lx.data[start:lx.pos])
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.data) {
		return lx.data[lx.pos+n]
	}
	return 0
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		if c == '%' {
			for lx.pos < len(lx.data) && lx.data[lx.pos] != '\n' && lx.data[lx.pos] != '\r' {
				lx.pos++
			}
			continue
		}
		if !isWhite(c) {
			return
		}
		lx.pos++
	}
}

// literal reads a (string) with escapes and balanced parentheses
func (lx *lexer) literal() []byte {
	lx.pos++
	var out []byte
	depth := 1
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		lx.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out
			}
		case '\\':
			if lx.pos >= len(lx.data) {
				return out
			}
			e := lx.data[lx.pos]
			lx.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if lx.pos < len(lx.data) && lx.data[lx.pos] == '\n' {
					lx.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && lx.pos < len(lx.data); i++ {
					d := lx.data[lx.pos]
					if d < '0' || d > '7' {
						break
					}
					v = v*8 + int(d-'0')
					lx.pos++
				}
				out = append(out, byte(v))
			default:
				out = append(out, e)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func (lx *lexer) hexString() []byte {
	lx.pos++
	var out []byte
	var hi byte
	half := false
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		lx.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

// dict skips a << >> dictionary (marked content properties)
func (lx *lexer) dict() {
	depth := 0
	for lx.pos+1 < len(lx.data) {
		switch {
		case lx.data[lx.pos] == '<' && lx.data[lx.pos+1] == '<':
			depth++
			lx.pos += 2
		case lx.data[lx.pos] == '>' && lx.data[lx.pos+1] == '>':
			depth--
			lx.pos += 2
			if depth == 0 {
				return
			}
		case lx.data[lx.pos] == '(':
			lx.literal()
		default:
			lx.pos++
		}
	}
	lx.pos = len(lx.data)
}

// skipInlineImage moves past BI ... ID <data> EI
func (lx *lexer) skipInlineImage() {
	idx := bytes.Index(lx.data[lx.pos:], []byte("ID"))
	if idx < 0 {
		lx.pos = len(lx.data)
		return
	}
	lx.pos += idx + 2
	for lx.pos+2 <= len(lx.data) {
		if lx.data[lx.pos] == 'E' && lx.data[lx.pos+1] == 'I' &&
			lx.pos > 0 && isWhite(lx.data[lx.pos-1]) &&
			(lx.pos+2 == len(lx.data) || isWhite(lx.data[lx.pos+2])) {
			lx.pos += 2
			return
		}
		lx.pos++
	}
	lx.pos = len(lx.data)
}

func unescapeName(s string) string {
	if !bytes.ContainsRune([]byte(s), '#') {
		return s
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && i+2 < len(s) {
			h, ok1 := hexValue(s[i+1])
			l, ok2 := hexValue(s[i+2])
			if ok1 && ok2 {
				out = append(out, h<<4|l)
				i += 2
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhite(c) && !isDelimiter(c)
}

func isNumberStart(c byte) bool {
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
