package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tsawler/pagemark/model"
)

// Tracer observes the document after each apply. It must not modify it.
type Tracer func(stage string, doc *model.Document)

// Driver runs a fixed list of stages
type Driver struct {
	stages []Stage
	tracer Tracer
	logger zerolog.Logger
}

// New creates a driver for stages in order
func New(stages ...Stage) *Driver {
	return &Driver{stages: stages, logger: zerolog.Nop()}
}

// WithTracer returns a copy of the driver calling t after each apply
func (d *Driver) WithTracer(t Tracer) *Driver {
	c := *d
	c.tracer = t
	return &c
}

// WithLogger returns a copy of the driver logging to l
func (d *Driver) WithLogger(l zerolog.Logger) *Driver {
	c := *d
	c.logger = l
	return &c
}

// Stages returns the stage names in order
func (d *Driver) Stages() []string {
	names := make([]string, len(d.stages))
	for i, s := range d.stages {
		names[i] = s.Name()
	}
	return names
}

// Run applies every stage to a clone of doc. The caller's document is never
// modified.
func (d *Driver) Run(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil {
		return nil, &StageError{Stage: "input", Phase: PhaseApply, Err: errors.New("nil document")}
	}
	cur := doc.Clone()

	for i, stage := range d.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			prev := d.stages[i-1]
			next, err := prev.Finalize(cur)
			if err != nil {
				return nil, &StageError{Stage: prev.Name(), Phase: PhaseFinalize, Err: err}
			}
			cur = next
		}

		next, err := stage.Apply(cur)
		if err != nil {
			d.logger.Debug().Str("stage", stage.Name()).Err(err).Msg("stage failed")
			return nil, &StageError{Stage: stage.Name(), Phase: PhaseApply, Err: err}
		}
		if next == nil {
			return nil, &StageError{Stage: stage.Name(), Phase: PhaseApply, Err: errors.New("stage returned no document")}
		}
		cur = next
		if d.tracer != nil {
			d.tracer(stage.Name(), cur)
		}
	}
	return cur, nil
}
