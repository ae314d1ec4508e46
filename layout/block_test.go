package layout

import (
	"slices"
	"testing"

	"github.com/tsawler/pagemark/model"
)

func blockTypes(blocks []model.Block) []model.BlockType {
	out := make([]model.BlockType, len(blocks))
	for i, b := range blocks {
		out[i] = b.Type
	}
	return out
}

func TestBlockGatherer_Paragraphs(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		frag(72, 740, 60, 24, "Title"),
		bodyLine(72, 700, "line one of the paragraph"),
		bodyLine(72, 686, "line two of the paragraph"),
		bodyLine(72, 672, "line three"),
		bodyLine(72, 630, "a new paragraph after a gap"),
		bodyLine(72, 616, "which continues here"),
	})
	out := run(t, doc, throughBlocks+1)

	blocks := out.Pages[0].Blocks
	want := []model.BlockType{model.BlockHeading, model.BlockParagraph, model.BlockParagraph}
	if got := blockTypes(blocks); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	if blocks[0].Heading != 1 {
		t.Errorf("heading rank = %d", blocks[0].Heading)
	}
	if len(blocks[1].Lines) != 3 || len(blocks[2].Lines) != 2 {
		t.Errorf("paragraph sizes = %d, %d", len(blocks[1].Lines), len(blocks[2].Lines))
	}
}

func TestBlockGatherer_FirstLineIndent(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		bodyLine(90, 700, "an indented opening line of text"),
		bodyLine(72, 686, "followed by flush left lines that"),
		bodyLine(72, 672, "belong to the same paragraph"),
	})
	out := run(t, doc, throughBlocks+1)
	if n := len(out.Pages[0].Blocks); n != 1 {
		t.Errorf("expected 1 block, got %d", n)
	}
}

func TestBlockGatherer_ListItemsAndContinuation(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		bodyLine(72, 700, "• first item that wraps"),
		bodyLine(84, 686, "onto a second line"),
		bodyLine(72, 672, "• second item"),
		bodyLine(72, 658, "closing paragraph text"),
	})
	out := run(t, doc, throughBlocks+1)

	blocks := out.Pages[0].Blocks
	want := []model.BlockType{model.BlockListItem, model.BlockListItem, model.BlockParagraph}
	if got := blockTypes(blocks); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	if len(blocks[0].Lines) != 2 {
		t.Errorf("expected continuation line in first item, got %d lines", len(blocks[0].Lines))
	}
	if blocks[0].Ordered || blocks[0].Marker != "•" {
		t.Errorf("unexpected item %+v", blocks[0])
	}
}

func TestBlockGatherer_TOCLinesShareBlock(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		bodyLine(72, 700, "Introduction ........ 1"),
		bodyLine(90, 686, "Scope ........ 2"),
		bodyLine(72, 672, "Methods ........ 5"),
	})
	out := run(t, doc, throughBlocks+1)

	blocks := out.Pages[0].Blocks
	if len(blocks) != 1 || blocks[0].Type != model.BlockTOC || len(blocks[0].Lines) != 3 {
		t.Fatalf("blocks = %+v", blockTypes(blocks))
	}
}

func TestCodeQuoteDetector(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		bodyLine(72, 700, "Some ordinary prose sets the body font and the size of text"),
		bodyLine(72, 686, "with a second line so the paragraph is long enough"),
		styled(72, 650, 120, 12, "func main() {", "Courier"),
		styled(72, 636, 120, 12, "    run()", "Courier"),
		styled(72, 622, 120, 12, "}", "Courier"),
		bodyLine(72, 580, "> quoted words"),
		bodyLine(72, 566, "> and more"),
		bodyLine(72, 530, "Closing prose paragraph before the indented quote"),
		bodyLine(110, 490, "an indented passage that"),
		bodyLine(110, 476, "spans two aligned lines"),
	})
	out := run(t, doc, throughLevels)

	blocks := out.Pages[0].Blocks
	want := []model.BlockType{
		model.BlockParagraph,
		model.BlockCode,
		model.BlockQuote,
		model.BlockParagraph,
		model.BlockQuote,
	}
	if got := blockTypes(blocks); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	if got := texts(blocks[2].Lines); !slices.Equal(got, []string{"quoted words", "and more"}) {
		t.Errorf("quote lines = %q", got)
	}

	// annotations survive until the next stage finalizes
	marked := run(t, doc, throughBlocks+1).Pages[0].Blocks
	var notes []string
	for _, b := range marked {
		notes = append(notes, b.Annotation)
	}
	if want := []string{"", "monospace", "quote mark", "", "indented"}; !slices.Equal(notes, want) {
		t.Errorf("annotations = %q, want %q", notes, want)
	}
}

func TestLinearizer_Units(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		frag(72, 740, 60, 24, "Title"),
		bodyLine(72, 700, "Chapter one ........ 3"),
		bodyLine(90, 686, "Section ........ 4"),
		bodyLine(72, 640, "paragraph text line"),
		bodyLine(72, 600, "• top item"),
		bodyLine(90, 586, "• nested item"),
	})
	out := run(t, doc, allStages)

	units := out.Pages[0].Units
	if len(units) != 5 {
		t.Fatalf("expected 5 units, got %d", len(units))
	}
	if units[0].Type != model.BlockHeading || units[0].Rank != 1 || units[0].Text(" ") != "Title" {
		t.Errorf("heading unit = %+v", units[0])
	}
	toc := units[1]
	if toc.Type != model.BlockTOC || len(toc.Entries) != 2 {
		t.Fatalf("toc unit = %+v", toc)
	}
	if toc.Entries[0] != (model.TOCEntry{Label: "Chapter one", Page: "3", Depth: 0}) ||
		toc.Entries[1] != (model.TOCEntry{Label: "Section", Page: "4", Depth: 1}) {
		t.Errorf("entries = %+v", toc.Entries)
	}
	if units[2].Type != model.BlockParagraph || units[2].Text("\n") != "paragraph text line" {
		t.Errorf("paragraph unit = %+v", units[2])
	}
	if units[3].Depth != 0 || units[4].Depth != 1 || units[4].Text(" ") != "nested item" {
		t.Errorf("list units = %+v %+v", units[3], units[4])
	}
}

func TestStages_Order(t *testing.T) {
	var names []string
	for _, s := range Stages(DefaultConfig()) {
		names = append(names, s.Name())
	}
	want := []string{
		"statistics", "line-assembly", "boilerplate", "orientation", "toc", "headings",
		"list-items", "blocks", "code-quote", "list-levels", "linearize",
	}
	if !slices.Equal(names, want) {
		t.Errorf("stages = %v, want %v", names, want)
	}
}
