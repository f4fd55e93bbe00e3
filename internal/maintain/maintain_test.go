package maintain

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/engram/internal/observe"
)

type countingPasser struct {
	calls int64
	err   error
}

func (c *countingPasser) DecayPass(ctx context.Context) error {
	atomic.AddInt64(&c.calls, 1)
	return c.err
}

func (c *countingPasser) count() int64 {
	return atomic.LoadInt64(&c.calls)
}

func TestNew_DefaultInterval(t *testing.T) {
	m := New(&countingPasser{}, observe.New(io.Discard, false), 0)
	if m.Interval() != DefaultInterval {
		t.Errorf("expected default interval, got %v", m.Interval())
	}

	m = New(&countingPasser{}, observe.New(io.Discard, false), time.Minute)
	if m.Interval() != time.Minute {
		t.Errorf("expected 1m, got %v", m.Interval())
	}
}

func TestMaintainer_Pass(t *testing.T) {
	p := &countingPasser{}
	m := New(p, observe.New(io.Discard, false), time.Minute)

	if err := m.Pass(context.Background()); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	if p.count() != 1 {
		t.Errorf("expected 1 pass, got %d", p.count())
	}
}

func TestMaintainer_RunTicks(t *testing.T) {
	p := &countingPasser{}
	m := New(p, observe.New(io.Discard, false), 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p.count() < 2 {
		t.Errorf("expected at least 2 passes, got %d", p.count())
	}
}

func TestMaintainer_RunSurvivesFailingPass(t *testing.T) {
	p := &countingPasser{err: errors.New("mirror offline")}
	m := New(p, observe.New(io.Discard, false), 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p.count() < 2 {
		t.Errorf("expected the loop to continue after errors, got %d passes", p.count())
	}
}
