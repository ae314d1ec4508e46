package pipeline

import (
	"fmt"
	"slices"

	"github.com/tsawler/pagemark/model"
)

// Stage is one deterministic pass over the document model
type Stage interface {
	Name() string
	Apply(doc *model.Document) (*model.Document, error)
	Finalize(doc *model.Document) (*model.Document, error)
}

// Base provides the default Finalize: it sweeps lines and blocks marked
// Removed and clears annotations and messages. Embed it in a stage.
type Base struct{}

// Finalize removes marked lines and blocks and clears stage bookkeeping
func (Base) Finalize(doc *model.Document) (*model.Document, error) {
	for i := range doc.Pages {
		p := &doc.Pages[i]
		if p.Lines != nil {
			p.Lines = slices.DeleteFunc(p.Lines, func(l model.Line) bool { return l.Removed })
			for j := range p.Lines {
				p.Lines[j].Annotation = ""
			}
		}
		if p.Blocks != nil {
			p.Blocks = slices.DeleteFunc(p.Blocks, func(b model.Block) bool { return b.Removed })
			for j := range p.Blocks {
				p.Blocks[j].Annotation = ""
			}
		}
	}
	doc.Messages = nil
	return doc, nil
}

// Phase names the protocol step a stage failed in
type Phase string

const (
	PhaseApply    Phase = "apply"
	PhaseFinalize Phase = "finalize"
)

// StageError reports a failed stage
type StageError struct {
	Stage string
	Phase Phase
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, e.Phase, e.Err)
}

// Unwrap returns the underlying error
func (e *StageError) Unwrap() error {
	return e.Err
}

// Violation returns an error wrapping model.ErrStageViolation
func Violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrStageViolation, fmt.Sprintf(format, args...))
}
