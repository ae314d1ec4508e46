package layout

import (
	"context"
	"testing"

	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/pipeline"
)

// frag creates an upright fragment set in a regular font
func frag(x, y, w, h float64, text string) model.Fragment {
	return model.Fragment{Text: text, X: x, Y: y, Width: w, Height: h, Font: "Helvetica"}
}

// styled creates an upright fragment in the named font
func styled(x, y, w, h float64, text, font string) model.Fragment {
	f := frag(x, y, w, h, text)
	f.Font = font
	return f
}

// bodyLine creates a body-size fragment whose width follows its text
func bodyLine(x, y float64, text string) model.Fragment {
	return frag(x, y, float64(len(text))*6, 12, text)
}

func makeDoc(pages ...[]model.Fragment) *model.Document {
	doc := model.NewDocument("test.pdf")
	for i, frags := range pages {
		doc.Pages = append(doc.Pages, model.Page{Index: i, Width: 612, Height: 792, Fragments: frags})
	}
	return doc
}

// run applies the first n default stages
func run(t *testing.T, doc *model.Document, n int) *model.Document {
	t.Helper()
	stages := Stages(DefaultConfig())
	out, err := pipeline.New(stages[:n]...).Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return out
}

// stage counts for run
const (
	throughLines       = 2
	throughBoilerplate = 3
	throughHeadings    = 6
	throughBlocks      = 8
	throughLevels      = 10
	allStages          = 11
)

func texts(lines []model.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
