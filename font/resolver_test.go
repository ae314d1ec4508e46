package font

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPatternPredicate(t *testing.T) {
	p, err := PatternPredicate(DefaultRefPattern)
	if err != nil {
		t.Fatalf("PatternPredicate() error = %v", err)
	}
	for ref, want := range map[string]bool{
		"f12_0":   true,
		"f1_3":    true,
		"p1_F1":   false,
		"g_d0_f1": false,
		"f12":     false,
	} {
		if got := p(ref); got != want {
			t.Errorf("predicate(%q) = %v, want %v", ref, got, want)
		}
	}

	if _, err := PatternPredicate("("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestResolverDeduplicates(t *testing.T) {
	var calls atomic.Int32
	lookup := LookupFunc(func(ctx context.Context, ref string) (Descriptor, error) {
		calls.Add(1)
		return Descriptor{BaseFont: "Base-" + ref}, nil
	})

	r := NewResolver(context.Background(), lookup, DefaultPredicate(), 4)
	var accepted, resolved atomic.Int32
	r.OnAccept = func(string) { accepted.Add(1) }
	r.OnResolved = func(string) { resolved.Add(1) }

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Observe("f1_0")
			r.Observe("f2_0")
			r.Observe("p1_F1")
		}()
	}
	wg.Wait()

	fonts, err := r.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("lookup called %d times, want 2", calls.Load())
	}
	if accepted.Load() != 2 || resolved.Load() != 2 {
		t.Errorf("accepted=%d resolved=%d, want 2/2", accepted.Load(), resolved.Load())
	}
	if r.Seen() != 2 {
		t.Errorf("Seen() = %d, want 2", r.Seen())
	}
	if len(fonts) != 2 {
		t.Fatalf("got %d fonts, want 2", len(fonts))
	}
	if d := fonts["f1_0"]; d.Ref != "f1_0" || d.BaseFont != "Base-f1_0" {
		t.Errorf("fonts[f1_0] = %+v", d)
	}
}

func TestResolverBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	lookup := LookupFunc(func(ctx context.Context, ref string) (Descriptor, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return Descriptor{}, nil
	})

	r := NewResolver(context.Background(), lookup, nonEmpty, 2)
	for i := 0; i < 10; i++ {
		r.Observe(fmt.Sprintf("f%d_0", i))
	}
	if _, err := r.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestResolverError(t *testing.T) {
	boom := errors.New("boom")
	lookup := LookupFunc(func(ctx context.Context, ref string) (Descriptor, error) {
		return Descriptor{}, boom
	})

	r := NewResolver(context.Background(), lookup, nonEmpty, 1)
	r.Observe("f1_0")
	if _, err := r.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait() error = %v, want %v", err, boom)
	}
}

func nonEmpty(ref string) bool {
	return ref != ""
}
