package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/pagemark/font"
	"github.com/tsawler/pagemark/model"
)

// PDF decodes PDF files with pdfcpu
type PDF struct {
	// Config is the pdfcpu configuration; nil uses pdfcpu defaults
	Config *pdfmodel.Configuration
}

// Open reads and validates a PDF. Encrypted files without a configured
// password are rejected.
func (p PDF) Open(ctx context.Context, data []byte) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conf := p.Config
	if conf == nil {
		conf = pdfmodel.NewDefaultConfiguration()
	}

	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdfcpu read: %v", r)
		}
	}()

	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfDocument{
		ctx:   pctx,
		dicts: make(map[string]types.Dict),
		progs: make(map[string]*fontProgram),
		forms: make(map[string]*formXObject),
	}, nil
}

// pdfDocument serializes access to the pdfcpu context. Content stream
// interpretation happens outside the lock.
type pdfDocument struct {
	mu    sync.Mutex
	ctx   *pdfmodel.Context
	dicts map[string]types.Dict
	progs map[string]*fontProgram
	forms map[string]*formXObject
}

func (d *pdfDocument) PageCount() int {
	return d.ctx.PageCount
}

func (d *pdfDocument) Metadata(ctx context.Context) (model.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return model.Metadata{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	x := d.ctx.XRefTable
	return model.Metadata{
		Title:    x.Title,
		Author:   x.Author,
		Subject:  x.Subject,
		Keywords: x.Keywords,
		Creator:  x.Creator,
		Producer: x.Producer,
		Custom:   make(map[string]string),
	}, nil
}

func (d *pdfDocument) Page(ctx context.Context, index int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range", index+1)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pageNr := index + 1
	pageDict, _, inh, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNr, err)
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d: missing page dictionary", pageNr)
	}

	page := &pdfPage{width: 612, height: 792}
	if box := d.rect(pageDict["MediaBox"]); box != nil {
		page.llx, page.lly = box[0], box[1]
		page.width, page.height = box[2]-box[0], box[3]-box[1]
	} else if inh != nil && inh.MediaBox != nil {
		page.llx, page.lly = inh.MediaBox.LL.X, inh.MediaBox.LL.Y
		page.width, page.height = inh.MediaBox.Width(), inh.MediaBox.Height()
	}

	r, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", pageNr, err)
	}
	if r != nil {
		if page.content, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("page %d content: %w", pageNr, err)
		}
	}

	var resObj types.Object
	if o, ok := pageDict.Find("Resources"); ok {
		resObj = o
	} else if inh != nil && inh.Resources != nil {
		resObj = inh.Resources
	}
	page.res = d.loadResources(resObj, "p"+strconv.Itoa(pageNr)+"_", 0)
	return page, nil
}

var indirectRef = regexp.MustCompile(`^f(\d+)_(\d+)$`)

func (d *pdfDocument) ResolveFont(ctx context.Context, ref string) (font.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return font.Descriptor{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	dict, ok := d.dicts[ref]
	if !ok {
		m := indirectRef.FindStringSubmatch(ref)
		if m == nil {
			return font.Descriptor{}, fmt.Errorf("unknown font %s", ref)
		}
		obj, _ := strconv.Atoi(m[1])
		gen, _ := strconv.Atoi(m[2])
		dict = d.dict(types.IndirectRef{ObjectNumber: types.Integer(obj), GenerationNumber: types.Integer(gen)})
		if dict == nil {
			return font.Descriptor{}, fmt.Errorf("font %s is not a dictionary", ref)
		}
		d.dicts[ref] = dict
	}
	return d.descriptor(ref, dict), nil
}

// loadResources collects fonts and form XObjects; caller holds d.mu
func (d *pdfDocument) loadResources(obj types.Object, prefix string, depth int) *resources {
	res := &resources{
		fonts: make(map[string]*fontProgram),
		forms: make(map[string]*formXObject),
	}
	dict := d.dict(obj)
	if dict == nil {
		return res
	}

	for key, fo := range d.dict(dict["Font"]) {
		ref := prefix + key
		if ir, ok := fo.(types.IndirectRef); ok {
			ref = fmt.Sprintf("f%d_%d", int(ir.ObjectNumber), int(ir.GenerationNumber))
		}
		if prog, ok := d.progs[ref]; ok {
			res.fonts[key] = prog
			continue
		}
		fd := d.dict(fo)
		if fd == nil {
			continue
		}
		d.dicts[ref] = fd
		prog := d.newFontProgram(ref, fd)
		d.progs[ref] = prog
		res.fonts[key] = prog
	}

	if depth >= maxFormDepth {
		return res
	}
	for key, xo := range d.dict(dict["XObject"]) {
		cacheKey := ""
		if ir, ok := xo.(types.IndirectRef); ok {
			cacheKey = fmt.Sprintf("%d_%d", int(ir.ObjectNumber), int(ir.GenerationNumber))
			if form, ok := d.forms[cacheKey]; ok {
				res.forms[key] = form
				continue
			}
		}
		sd := d.stream(xo)
		if sd == nil || nameOf(sd.Dict["Subtype"]) != "Form" {
			continue
		}
		form := &formXObject{content: sd.Content, matrix: model.Identity()}
		if m := d.numbers(sd.Dict["Matrix"]); len(m) == 6 {
			copy(form.matrix[:], m)
		}
		if cacheKey != "" {
			// placeholder guards against self-referencing forms
			d.forms[cacheKey] = form
		}
		if sub, ok := sd.Dict.Find("Resources"); ok {
			form.res = d.loadResources(sub, prefix, depth+1)
		}
		res.forms[key] = form
	}
	return res
}

func (d *pdfDocument) deref(obj types.Object) types.Object {
	if obj == nil {
		return nil
	}
	o, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil
	}
	return o
}

func (d *pdfDocument) dict(obj types.Object) types.Dict {
	switch v := d.deref(obj).(type) {
	case types.Dict:
		return v
	case types.StreamDict:
		return v.Dict
	}
	return nil
}

func (d *pdfDocument) array(obj types.Object) types.Array {
	a, _ := d.deref(obj).(types.Array)
	return a
}

// stream returns a decoded stream, or nil
func (d *pdfDocument) stream(obj types.Object) *types.StreamDict {
	o := d.deref(obj)
	if o == nil {
		return nil
	}
	sd, _, err := d.ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return nil
	}
	if len(sd.Content) == 0 && len(sd.Raw) > 0 {
		if err := sd.Decode(); err != nil {
			return nil
		}
	}
	return sd
}

func (d *pdfDocument) numbers(obj types.Object) []float64 {
	var out []float64
	for _, o := range d.array(obj) {
		v, ok := number(d.deref(o))
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// rect returns a normalized [llx lly urx ury] rectangle
func (d *pdfDocument) rect(obj types.Object) []float64 {
	r := d.numbers(obj)
	if len(r) != 4 {
		return nil
	}
	return []float64{min(r[0], r[2]), min(r[1], r[3]), max(r[0], r[2]), max(r[1], r[3])}
}

type pdfPage struct {
	content  []byte
	res      *resources
	llx, lly float64
	width    float64
	height   float64
}

func (p *pdfPage) TextRuns(ctx context.Context) ([]TextRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return interpret(p.content, p.res, model.Identity()), nil
}

func (p *pdfPage) View() model.Matrix {
	return model.Translate(-p.llx, -p.lly)
}

func (p *pdfPage) Size() (float64, float64) {
	return p.width, p.height
}
