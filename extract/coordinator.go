package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pagemark/font"
	"github.com/tsawler/pagemark/model"
	"github.com/tsawler/pagemark/source"
)

// Config controls extraction concurrency and limits
type Config struct {
	// PageWorkers bounds concurrent page retrievals (default: 8)
	PageWorkers int `yaml:"page_workers"`

	// FontWorkers bounds concurrent font resolutions (default: 4)
	FontWorkers int `yaml:"font_workers"`

	// MaxPages rejects larger documents; 0 means unlimited
	MaxPages int `yaml:"max_pages"`

	// FontRefPattern selects the font references that are resolved
	FontRefPattern string `yaml:"font_ref_pattern"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		PageWorkers:    8,
		FontWorkers:    4,
		FontRefPattern: font.DefaultRefPattern,
	}
}

// Snapshot is the progress of one file at a point in time
type Snapshot struct {
	File    string
	State   State
	Percent int
	Active  StageProgress
	Stages  []StageProgress
}

// Observer receives progress snapshots. Calls for one file are serialized.
type Observer interface {
	Progress(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(Snapshot)

// Progress calls f(s)
func (f ObserverFunc) Progress(s Snapshot) {
	f(s)
}

// Coordinator extracts documents through a source decoder
type Coordinator struct {
	decoder source.Decoder
	cfg     Config
	accept  font.Predicate
	logger  zerolog.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithPredicate overrides the font reference predicate built from
// Config.FontRefPattern
func WithPredicate(p font.Predicate) Option {
	return func(c *Coordinator) {
		c.accept = p
	}
}

// New creates a coordinator. Zero worker counts take their defaults.
func New(dec source.Decoder, cfg Config, opts ...Option) (*Coordinator, error) {
	def := DefaultConfig()
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = def.PageWorkers
	}
	if cfg.FontWorkers <= 0 {
		cfg.FontWorkers = def.FontWorkers
	}
	if cfg.FontRefPattern == "" {
		cfg.FontRefPattern = def.FontRefPattern
	}

	c := &Coordinator{decoder: dec, cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.accept == nil {
		p, err := font.PatternPredicate(cfg.FontRefPattern)
		if err != nil {
			return nil, err
		}
		c.accept = p
	}
	return c, nil
}

// Config returns the effective configuration
func (c *Coordinator) Config() Config {
	return c.cfg
}

// fileRun is the working state of one file, created fresh per Extract call
type fileRun struct {
	name     string
	progress *Progress
	obs      Observer
	notifyMu sync.Mutex
	closed   bool // a terminal snapshot was delivered

	mu    sync.Mutex
	pages []model.Page
}

func (r *fileRun) notify() {
	if r.obs == nil {
		return
	}
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if r.closed {
		return
	}
	state := r.progress.State()
	r.closed = state.Terminal()
	r.obs.Progress(Snapshot{
		File:    r.name,
		State:   state,
		Percent: r.progress.Percent(),
		Active:  r.progress.Active(),
		Stages:  r.progress.Stages(),
	})
}

func (r *fileRun) setPage(i int, p model.Page) {
	r.mu.Lock()
	r.pages[i] = p
	r.mu.Unlock()
}

func (r *fileRun) fail(op string, kind, err error) error {
	r.progress.Fail()
	r.notify()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = nil
	}
	return &FileError{File: r.name, Op: op, Kind: kind, Err: err}
}

// Extract opens data and returns the fragment-level document. obs may be nil.
// On failure no document is returned and the error is a *FileError.
func (c *Coordinator) Extract(ctx context.Context, name string, data []byte, obs Observer) (*model.Document, error) {
	start := time.Now()
	log := c.logger.With().Str("file", name).Logger()

	run := &fileRun{name: name, progress: NewProgress(), obs: obs}
	run.progress.Start()
	run.notify()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := c.decoder.Open(runCtx, data)
	if err != nil {
		log.Warn().Err(err).Msg("open failed")
		return nil, run.fail("open", model.ErrDecode, err)
	}
	run.progress.Step(StageMetadata)

	n := src.PageCount()
	if c.cfg.MaxPages > 0 && n > c.cfg.MaxPages {
		return nil, run.fail("open", model.ErrResourceExhausted,
			fmt.Errorf("%d pages exceeds limit of %d", n, c.cfg.MaxPages))
	}
	run.pages = make([]model.Page, n)
	run.progress.SetTotal(StagePages, n)
	run.notify()

	meta, err := src.Metadata(runCtx)
	if err != nil {
		return nil, run.fail("metadata", model.ErrDecode, err)
	}
	run.progress.Step(StageMetadata)
	run.notify()
	log.Debug().Int("pages", n).Str("title", meta.Title).Msg("document opened")

	resolver := font.NewResolver(runCtx, src, c.accept, c.cfg.FontWorkers)
	resolver.OnAccept = func(string) {
		run.progress.AddTotal(StageFonts, 1)
	}
	resolver.OnResolved = func(string) {
		run.progress.Step(StageFonts)
		run.notify()
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(c.cfg.PageWorkers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			page, err := c.extractPage(gctx, src, i, resolver)
			if err != nil {
				return err
			}
			run.setPage(i, page)
			run.progress.Step(StagePages)
			run.notify()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cancel()
		resolver.Wait()
		log.Warn().Err(err).Msg("page extraction failed")
		return nil, run.fail("page", model.ErrDecode, err)
	}

	fonts, err := resolver.Wait()
	if err != nil {
		log.Warn().Err(err).Msg("font resolution failed")
		return nil, run.fail("font", model.ErrDecode, err)
	}

	if !run.progress.Complete() {
		return nil, run.fail("complete", model.ErrStageViolation, errors.New("progress incomplete after extraction"))
	}
	run.notify()

	doc := model.NewDocument(name)
	doc.Metadata = meta
	if doc.Metadata.Custom == nil {
		doc.Metadata.Custom = make(map[string]string)
	}
	doc.Pages = run.pages
	doc.Fonts = fonts

	log.Info().
		Int("pages", n).
		Int("fonts", len(fonts)).
		Int("font_refs", resolver.Seen()).
		Dur("elapsed", time.Since(start)).
		Msg("extraction complete")
	return doc, nil
}

func (c *Coordinator) extractPage(ctx context.Context, src source.Document, i int, resolver *font.Resolver) (model.Page, error) {
	page, err := src.Page(ctx, i)
	if err != nil {
		return model.Page{}, fmt.Errorf("page %d: %w", i+1, err)
	}
	runs, err := page.TextRuns(ctx)
	if err != nil {
		return model.Page{}, fmt.Errorf("page %d text: %w", i+1, err)
	}

	w, h := page.Size()
	view := page.View()
	out := model.Page{Index: i, Width: w, Height: h, Fragments: make([]model.Fragment, 0, len(runs))}
	for _, r := range runs {
		resolver.Observe(r.Font)
		out.Fragments = append(out.Fragments, Normalize(r, view))
	}
	return out, nil
}
