package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tsawler/pagemark/extract"
)

// Status is the lifecycle of one file in a batch
type Status int

const (
	StatusPending Status = iota
	StatusLoading
	StatusProcessing
	StatusDone
	StatusError
)

// String returns a string representation of the status
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoading:
		return "loading"
	case StatusProcessing:
		return "processing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Input is one file of a batch. When Data is nil, Load is called right before
// the file is processed so only one file is held in memory at a time.
type Input struct {
	Name string
	Data []byte
	Load func(ctx context.Context) ([]byte, error)
}

// Result is the outcome of one file
type Result struct {
	Name       string
	OutputName string
	Status     Status
	Output     string
	Err        error
	Elapsed    time.Duration
}

// Event reports batch progress
type Event struct {
	BatchID string
	Index   int // File position, 0-based
	Total   int // Files in the batch
	File    string
	Status  Status
	Percent int // Overall batch percent

	// Stage is the active extraction counter with its done and total steps
	Stage      string
	StageDone  int
	StageTotal int

	Err error
}

// Observer receives batch events. Calls are serialized.
type Observer interface {
	BatchEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(Event)

// BatchEvent calls f(e)
func (f ObserverFunc) BatchEvent(e Event) {
	f(e)
}

// ConvertFunc converts one file, reporting extraction progress to obs
type ConvertFunc func(ctx context.Context, name string, data []byte, obs extract.Observer) (string, error)

// Processor converts files one after another
type Processor struct {
	convert ConvertFunc
	ext     string
	logger  zerolog.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithExtension sets the output file extension (default ".md")
func WithExtension(ext string) Option {
	return func(p *Processor) {
		p.ext = ext
	}
}

// NewProcessor creates a sequential batch processor
func NewProcessor(convert ConvertFunc, opts ...Option) *Processor {
	p := &Processor{convert: convert, ext: ".md", logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes inputs in order. A failed file is marked StatusError and the
// batch continues; overall progress still advances. Run returns an error only
// when ctx is cancelled, together with the results collected so far.
func (p *Processor) Run(ctx context.Context, inputs []Input, obs Observer) ([]Result, error) {
	id := uuid.NewString()
	log := p.logger.With().Str("batch_id", id).Int("files", len(inputs)).Logger()
	log.Info().Msg("batch started")

	emit := func(e Event) {
		if obs != nil {
			e.BatchID = id
			e.Total = len(inputs)
			obs.BatchEvent(e)
		}
	}

	results := make([]Result, len(inputs))
	for i, in := range inputs {
		results[i] = Result{Name: in.Name, OutputName: OutputName(in.Name, p.ext), Status: StatusPending}
		emit(Event{Index: i, File: in.Name, Status: StatusPending})
	}

	failed := 0
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("batch cancelled")
			return results[:i], err
		}
		res := &results[i]
		start := time.Now()
		p.process(ctx, i, len(inputs), in, res, emit)
		res.Elapsed = time.Since(start)

		ev := Event{Index: i, File: in.Name, Status: res.Status, Percent: overall(i+1, 0, len(inputs)), Err: res.Err}
		emit(ev)
		if res.Err != nil {
			failed++
			log.Warn().Err(res.Err).Str("file", in.Name).Msg("file failed")
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return results[:i+1], res.Err
			}
			continue
		}
		log.Debug().Str("file", in.Name).Dur("elapsed", res.Elapsed).Msg("file done")
	}

	log.Info().Int("failed", failed).Msg("batch complete")
	return results, nil
}

func (p *Processor) process(ctx context.Context, i, n int, in Input, res *Result, emit func(Event)) {
	res.Status = StatusLoading
	emit(Event{Index: i, File: in.Name, Status: StatusLoading, Percent: overall(i, 0, n)})

	data := in.Data
	if data == nil && in.Load != nil {
		var err error
		if data, err = in.Load(ctx); err != nil {
			res.Status, res.Err = StatusError, fmt.Errorf("load %s: %w", in.Name, err)
			return
		}
	}

	res.Status = StatusProcessing
	emit(Event{Index: i, File: in.Name, Status: StatusProcessing, Percent: overall(i, 0, n)})

	out, err := p.convert(ctx, in.Name, data, extract.ObserverFunc(func(s extract.Snapshot) {
		emit(Event{
			Index:      i,
			File:       in.Name,
			Status:     StatusProcessing,
			Percent:    overall(i, s.Percent, n),
			Stage:      s.Active.Name,
			StageDone:  s.Active.Done,
			StageTotal: s.Active.Total,
		})
	}))
	if err != nil {
		res.Status, res.Err = StatusError, err
		return
	}
	res.Status, res.Output = StatusDone, out
}

// overall is the batch percent with done files finished and the current file
// at filePercent
func overall(done, filePercent, total int) int {
	if total == 0 {
		return 100
	}
	return (done*100 + filePercent) / total
}
