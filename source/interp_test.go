package source

import (
	"math"
	"testing"

	"github.com/tsawler/pagemark/model"
)

func testResources() *resources {
	return &resources{
		fonts: map[string]*fontProgram{
			"F1": {ref: "f5_0", defaultWidth: 500},
		},
		forms: map[string]*formXObject{
			"Fm1": {content: []byte("BT /F1 8 Tf (z) Tj ET"), matrix: model.Translate(100, 0)},
		},
	}
}

func TestInterpretTj(t *testing.T) {
	runs := interpret([]byte("BT /F1 10 Tf 1 0 0 1 72 700 Tm (Hi) Tj ET"), testResources(), model.Identity())
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.Text != "Hi" || r.Font != "f5_0" || r.Height != 10 {
		t.Errorf("run = %+v", r)
	}
	if want := (model.Matrix{10, 0, 0, 10, 72, 700}); r.Transform != want {
		t.Errorf("Transform = %v, want %v", r.Transform, want)
	}
	if math.Abs(r.Width-10) > 1e-9 {
		t.Errorf("Width = %v, want 10", r.Width)
	}
}

func TestInterpretTJSpacing(t *testing.T) {
	runs := interpret([]byte("BT /F1 10 Tf [(A) -300 (B) -20 (C)] TJ ET"), testResources(), model.Identity())
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Text != "A BC" {
		t.Errorf("Text = %q, want %q", runs[0].Text, "A BC")
	}
	// 3 glyphs of 5 plus 3 and 0.2 of adjustment
	if math.Abs(runs[0].Width-18.2) > 1e-9 {
		t.Errorf("Width = %v, want 18.2", runs[0].Width)
	}
}

func TestInterpretStateStack(t *testing.T) {
	content := "q 2 0 0 2 0 0 cm BT /F1 10 Tf 10 10 Td (x) Tj ET Q BT /F1 10 Tf (y) Tj ET"
	runs := interpret([]byte(content), testResources(), model.Identity())
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if want := (model.Matrix{20, 0, 0, 20, 20, 20}); runs[0].Transform != want {
		t.Errorf("first Transform = %v, want %v", runs[0].Transform, want)
	}
	if want := (model.Matrix{10, 0, 0, 10, 0, 0}); runs[1].Transform != want {
		t.Errorf("second Transform = %v, want %v", runs[1].Transform, want)
	}
}

func TestInterpretLeading(t *testing.T) {
	runs := interpret([]byte("BT /F1 10 Tf 12 TL 0 100 Td (a) Tj T* (b) Tj (c) ' ET"), testResources(), model.Identity())
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, wantY := range []float64{100, 88, 76} {
		if runs[i].Transform[5] != wantY {
			t.Errorf("run %d y = %v, want %v", i, runs[i].Transform[5], wantY)
		}
	}
}

func TestInterpretFormXObject(t *testing.T) {
	runs := interpret([]byte("/Fm1 Do"), testResources(), model.Identity())
	if len(runs) != 1 || runs[0].Text != "z" {
		t.Fatalf("runs = %+v", runs)
	}
	if want := (model.Matrix{8, 0, 0, 8, 100, 0}); runs[0].Transform != want {
		t.Errorf("Transform = %v, want %v", runs[0].Transform, want)
	}
}

func TestInterpretUnknownFont(t *testing.T) {
	runs := interpret([]byte("BT /F9 12 Tf (ab) Tj ( ) Tj ET"), testResources(), model.Identity())
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1 (blank runs dropped)", len(runs))
	}
	if runs[0].Text != "ab" || runs[0].Font != "F9" {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestFontProgramComposite(t *testing.T) {
	f := &fontProgram{
		ref:          "f7_0",
		composite:    true,
		defaultWidth: 1000,
		cidWidths:    map[uint32]float64{0x24: 600},
	}
	gs := f.glyphs([]byte{0x00, 0x24, 0x00, 0x25})
	if len(gs) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(gs))
	}
	if gs[0].width != 600 || gs[1].width != 1000 {
		t.Errorf("widths = %v/%v, want 600/1000", gs[0].width, gs[1].width)
	}
}

func TestGlyphText(t *testing.T) {
	tests := map[string]string{
		"A":          "A",
		"space":      " ",
		"uni2022":    "•",
		"quoteright": "’",
		"g123":       "",
	}
	for in, want := range tests {
		if got := glyphText(in); got != want {
			t.Errorf("glyphText(%q) = %q, want %q", in, got, want)
		}
	}
}
