package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tsawler/pagemark/model"
)

// recordingStage logs every call and tags the document it produces
type recordingStage struct {
	name     string
	log      *[]string
	applyErr error
	finalErr error
	produced *model.Document
	received *model.Document
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Apply(doc *model.Document) (*model.Document, error) {
	*s.log = append(*s.log, "apply:"+s.name)
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	out := doc.Clone()
	out.Annotate(s.name)
	s.produced = out
	return out, nil
}

func (s *recordingStage) Finalize(doc *model.Document) (*model.Document, error) {
	*s.log = append(*s.log, "finalize:"+s.name)
	s.received = doc
	if s.finalErr != nil {
		return nil, s.finalErr
	}
	return doc, nil
}

func TestDriverProtocolOrder(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", log: &log}
	b := &recordingStage{name: "b", log: &log}
	c := &recordingStage{name: "c", log: &log}

	out, err := New(a, b, c).Run(context.Background(), model.NewDocument("x"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"apply:a", "finalize:a", "apply:b", "finalize:b", "apply:c"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
	if a.received != a.produced || b.received != b.produced {
		t.Error("finalize must receive the document its own apply produced")
	}
	if c.received != nil {
		t.Error("the last stage must never be finalized")
	}
	if out != c.produced {
		t.Error("Run() should return the last apply's document")
	}
}

func TestDriverAbortsOnError(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", log: &log}
	b := &recordingStage{name: "b", log: &log, applyErr: Violation("page %d has no lines", 2)}
	c := &recordingStage{name: "c", log: &log}

	out, err := New(a, b, c).Run(context.Background(), model.NewDocument("x"))
	if out != nil {
		t.Error("expected no document on failure")
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != "b" || se.Phase != PhaseApply {
		t.Fatalf("error = %v, want StageError for b apply", err)
	}
	if !errors.Is(err, model.ErrStageViolation) {
		t.Errorf("error = %v, want ErrStageViolation", err)
	}
	if len(log) != 3 {
		t.Errorf("calls = %v, want the run to stop at b", log)
	}
}

func TestDriverFinalizeError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	a := &recordingStage{name: "a", log: &log, finalErr: boom}
	b := &recordingStage{name: "b", log: &log}

	_, err := New(a, b).Run(context.Background(), model.NewDocument("x"))
	var se *StageError
	if !errors.As(err, &se) || se.Stage != "a" || se.Phase != PhaseFinalize || !errors.Is(err, boom) {
		t.Errorf("error = %v, want finalize error for a", err)
	}
}

func TestDriverDoesNotMutateInput(t *testing.T) {
	var log []string
	doc := model.NewDocument("x")
	doc.Pages = []model.Page{{Fragments: []model.Fragment{{Text: "keep"}}}}

	mutate := &mutatingStage{}
	if _, err := New(mutate, &recordingStage{name: "b", log: &log}).Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if doc.Pages[0].Fragments[0].Text != "keep" {
		t.Error("Run() mutated the caller's document")
	}
}

type mutatingStage struct{ Base }

func (*mutatingStage) Name() string { return "mutate" }

func (*mutatingStage) Apply(doc *model.Document) (*model.Document, error) {
	doc.Pages[0].Fragments[0].Text = "changed"
	return doc, nil
}

func TestDriverTracerAndCancel(t *testing.T) {
	var log, traced []string
	d := New(&recordingStage{name: "a", log: &log}, &recordingStage{name: "b", log: &log}).
		WithTracer(func(stage string, _ *model.Document) { traced = append(traced, stage) })

	if _, err := d.Run(context.Background(), model.NewDocument("x")); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(traced, []string{"a", "b"}) {
		t.Errorf("traced = %v", traced)
	}
	if !reflect.DeepEqual(d.Stages(), []string{"a", "b"}) {
		t.Errorf("Stages() = %v", d.Stages())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Run(ctx, model.NewDocument("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBaseFinalizeSweeps(t *testing.T) {
	doc := model.NewDocument("x")
	doc.Annotate("note")
	doc.Pages = []model.Page{{
		Lines:  []model.Line{{Text: "header", Removed: true}, {Text: "body", Annotation: "tmp"}},
		Blocks: []model.Block{{Removed: true}, {Annotation: "tmp"}},
	}}

	out, err := Base{}.Finalize(doc)
	if err != nil {
		t.Fatal(err)
	}
	p := out.Pages[0]
	if len(p.Lines) != 1 || p.Lines[0].Text != "body" || p.Lines[0].Annotation != "" {
		t.Errorf("lines = %+v", p.Lines)
	}
	if len(p.Blocks) != 1 || p.Blocks[0].Annotation != "" {
		t.Errorf("blocks = %+v", p.Blocks)
	}
	if out.Messages != nil {
		t.Errorf("messages = %v, want cleared", out.Messages)
	}
}

func TestDriverNilDocument(t *testing.T) {
	if _, err := New().Run(context.Background(), nil); err == nil {
		t.Error("expected error for nil document")
	}
}
