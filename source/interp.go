package source

import (
	"math"
	"strings"

	"github.com/tsawler/pagemark/model"
)

// maxFormDepth bounds nested form XObjects
const maxFormDepth = 8

// spaceThreshold is the TJ adjustment, in thousandths of an em, treated as a
// word gap
const spaceThreshold = 250

// resources are the fonts and forms visible to a content stream
type resources struct {
	fonts map[string]*fontProgram
	forms map[string]*formXObject
}

type formXObject struct {
	content []byte
	matrix  model.Matrix
	res     *resources
}

// textState is the part of the graphics state relevant to text (q/Q saved)
type textState struct {
	ctm     model.Matrix
	font    *fontProgram
	fontRef string
	size    float64
	charSp  float64
	wordSp  float64
	hScale  float64
	leading float64
	rise    float64
}

type interpreter struct {
	gs    textState
	stack []textState
	tm    model.Matrix
	tlm   model.Matrix
	runs  []TextRun
}

// interpret runs a content stream and returns its text runs in stream order
func interpret(content []byte, res *resources, base model.Matrix) []TextRun {
	in := &interpreter{
		gs: textState{ctm: base, size: 1, hScale: 1},
		tm: model.Identity(), tlm: model.Identity(),
	}
	in.run(content, res, 0)
	return in.runs
}

func (in *interpreter) run(content []byte, res *resources, depth int) {
	for _, op := range parseContent(content) {
		a := op.args
		switch op.op {
		case "q":
			in.stack = append(in.stack, in.gs)
		case "Q":
			if n := len(in.stack); n > 0 {
				in.gs = in.stack[n-1]
				in.stack = in.stack[:n-1]
			}
		case "cm":
			if m, ok := matrixArgs(a); ok {
				in.gs.ctm = m.Multiply(in.gs.ctm)
			}
		case "BT":
			in.tm, in.tlm = model.Identity(), model.Identity()
		case "Tf":
			if len(a) == 2 {
				if n, ok := a[0].(name); ok {
					in.gs.fontRef = string(n)
					in.gs.font = nil
					if res != nil {
						if f := res.fonts[string(n)]; f != nil {
							in.gs.font = f
							in.gs.fontRef = f.ref
						}
					}
				}
				in.gs.size = num(a[1])
			}
		case "Tc":
			in.gs.charSp = lastNum(a)
		case "Tw":
			in.gs.wordSp = lastNum(a)
		case "Tz":
			in.gs.hScale = lastNum(a) / 100
		case "TL":
			in.gs.leading = lastNum(a)
		case "Ts":
			in.gs.rise = lastNum(a)
		case "Td":
			if len(a) == 2 {
				in.moveLine(num(a[0]), num(a[1]))
			}
		case "TD":
			if len(a) == 2 {
				in.gs.leading = -num(a[1])
				in.moveLine(num(a[0]), num(a[1]))
			}
		case "Tm":
			if m, ok := matrixArgs(a); ok {
				in.tm, in.tlm = m, m
			}
		case "T*":
			in.moveLine(0, -in.gs.leading)
		case "Tj":
			if len(a) == 1 {
				in.show([]any{a[0]})
			}
		case "'":
			in.moveLine(0, -in.gs.leading)
			if len(a) == 1 {
				in.show([]any{a[0]})
			}
		case "\"":
			if len(a) == 3 {
				in.gs.wordSp, in.gs.charSp = num(a[0]), num(a[1])
				in.moveLine(0, -in.gs.leading)
				in.show([]any{a[2]})
			}
		case "TJ":
			if len(a) == 1 {
				if arr, ok := a[0].([]any); ok {
					in.show(arr)
				}
			}
		case "Do":
			if len(a) == 1 && res != nil && depth < maxFormDepth {
				n, _ := a[0].(name)
				if form := res.forms[string(n)]; form != nil {
					saved, savedStack := in.gs, len(in.stack)
					in.gs.ctm = form.matrix.Multiply(in.gs.ctm)
					sub := form.res
					if sub == nil {
						sub = res
					}
					in.run(form.content, sub, depth+1)
					in.gs, in.stack = saved, in.stack[:min(savedStack, len(in.stack))]
				}
			}
		}
	}
}

func (in *interpreter) moveLine(tx, ty float64) {
	in.tlm = model.Translate(tx, ty).Multiply(in.tlm)
	in.tm = in.tlm
}

// show emits one run for a Tj/TJ operand list. Numbers are TJ adjustments.
func (in *interpreter) show(parts []any) {
	gs := in.gs
	start := in.renderMatrix()
	var sb strings.Builder

	for _, p := range parts {
		switch v := p.(type) {
		case float64:
			tx := -v / 1000 * gs.size * gs.hScale
			in.tm = model.Translate(tx, 0).Multiply(in.tm)
			if v < -spaceThreshold && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		case []byte:
			for _, g := range gs.font.glyphs(v) {
				sb.WriteString(g.text)
				adv := g.width/1000*gs.size + gs.charSp
				if g.space {
					adv += gs.wordSp
				}
				in.tm = model.Translate(adv*gs.hScale, 0).Multiply(in.tm)
			}
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return
	}
	end := in.renderMatrix()
	in.runs = append(in.runs, TextRun{
		Text:      text,
		Transform: start,
		Width:     math.Hypot(end[4]-start[4], end[5]-start[5]),
		Height:    gs.size,
		Font:      gs.fontRef,
	})
}

// renderMatrix is [size*Th 0 0 size 0 rise] × Tm × CTM
func (in *interpreter) renderMatrix() model.Matrix {
	gs := in.gs
	m := model.Matrix{gs.size * gs.hScale, 0, 0, gs.size, 0, gs.rise}
	return m.Multiply(in.tm).Multiply(gs.ctm)
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}

func lastNum(a []any) float64 {
	if len(a) == 0 {
		return 0
	}
	return num(a[len(a)-1])
}

func matrixArgs(a []any) (model.Matrix, bool) {
	if len(a) != 6 {
		return model.Matrix{}, false
	}
	var m model.Matrix
	for i, v := range a {
		f, ok := v.(float64)
		if !ok {
			return model.Matrix{}, false
		}
		m[i] = f
	}
	return m, true
}
