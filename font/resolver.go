package font

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultRefPattern matches the references the PDF decoder gives to fonts
// stored as indirect objects (f<object>_<generation>).
const DefaultRefPattern = `^f\d+_\d+$`

// Predicate decides whether a font reference must be resolved
type Predicate func(ref string) bool

// PatternPredicate returns a Predicate accepting references that match expr.
func PatternPredicate(expr string) (Predicate, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("font ref pattern %q: %w", expr, err)
	}
	return re.MatchString, nil
}

// DefaultPredicate accepts references matching DefaultRefPattern.
func DefaultPredicate() Predicate {
	return regexp.MustCompile(DefaultRefPattern).MatchString
}

// Lookup fetches the descriptor for one font reference
type Lookup interface {
	ResolveFont(ctx context.Context, ref string) (Descriptor, error)
}

// LookupFunc adapts a function to the Lookup interface
type LookupFunc func(ctx context.Context, ref string) (Descriptor, error)

// ResolveFont calls f(ctx, ref)
func (f LookupFunc) ResolveFont(ctx context.Context, ref string) (Descriptor, error) {
	return f(ctx, ref)
}

// Resolver deduplicates font resolution for a single file.
//
// References are offered with Observe from any number of goroutines. Every
// accepted reference is looked up exactly once, with at most the configured
// number of lookups in flight. A Resolver must not be reused across files.
type Resolver struct {
	lookup Lookup
	accept Predicate
	sem    *semaphore.Weighted
	g      *errgroup.Group
	ctx    context.Context

	mu    sync.Mutex
	seen  map[string]struct{}
	fonts Map

	// OnAccept is called once for every newly accepted reference
	OnAccept func(ref string)
	// OnResolved is called once for every successfully resolved reference
	OnResolved func(ref string)
}

// NewResolver creates a resolver bound to ctx. workers < 1 means 1.
func NewResolver(ctx context.Context, lookup Lookup, accept Predicate, workers int) *Resolver {
	if workers < 1 {
		workers = 1
	}
	if accept == nil {
		accept = DefaultPredicate()
	}
	g, gctx := errgroup.WithContext(ctx)
	return &Resolver{
		lookup: lookup,
		accept: accept,
		sem:    semaphore.NewWeighted(int64(workers)),
		g:      g,
		ctx:    gctx,
		seen:   make(map[string]struct{}),
		fonts:  make(Map),
	}
}

// Observe offers a reference. It reports whether the reference was accepted
// for the first time and a lookup was scheduled.
func (r *Resolver) Observe(ref string) bool {
	if !r.accept(ref) {
		return false
	}

	r.mu.Lock()
	if _, ok := r.seen[ref]; ok {
		r.mu.Unlock()
		return false
	}
	r.seen[ref] = struct{}{}
	r.mu.Unlock()

	if r.OnAccept != nil {
		r.OnAccept(ref)
	}

	r.g.Go(func() error {
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return err
		}
		defer r.sem.Release(1)

		desc, err := r.lookup.ResolveFont(r.ctx, ref)
		if err != nil {
			return fmt.Errorf("resolve font %s: %w", ref, err)
		}
		if desc.Ref == "" {
			desc.Ref = ref
		}

		r.mu.Lock()
		r.fonts[ref] = desc
		r.mu.Unlock()

		if r.OnResolved != nil {
			r.OnResolved(ref)
		}
		return nil
	})
	return true
}

// Seen returns the number of distinct accepted references so far
func (r *Resolver) Seen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Wait blocks until every scheduled lookup finished and returns a copy of the
// resolved map. Call it only after the last Observe.
func (r *Resolver) Wait() (Map, error) {
	if err := r.g.Wait(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fonts.Clone(), nil
}
