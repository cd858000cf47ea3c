package session

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestRegistry(budget int) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	return NewRegistry(NewMemoryStore(), budget).WithClock(clock.now), clock
}

func TestStartReplacesPriorDialogue(t *testing.T) {
	r, _ := newTestRegistry(3)
	ctx := context.Background()

	d, _ := r.Start(ctx, 1, 1, "gift", "select_recipient")
	d.Set("recipient", "2")
	_ = r.Save(ctx, d)

	if _, err := r.Start(ctx, 1, 1, "task", "select_assignee"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := r.Active(ctx, 1)
	if got.Kind != "task" || got.Get("recipient") != "" {
		t.Fatalf("expected a fresh task dialogue, got %+v", got)
	}
	n, _ := r.Count(ctx)
	if n != 1 {
		t.Fatalf("expected 1 dialogue, got %d", n)
	}
}

func TestActiveReturnsCopies(t *testing.T) {
	r, _ := newTestRegistry(3)
	ctx := context.Background()

	d, _ := r.Start(ctx, 1, 1, "gift", "enter_amount")
	d.Set("amount", "5")

	got, _ := r.Active(ctx, 1)
	if got.Get("amount") != "" {
		t.Fatal("expected unsaved mutation to stay local")
	}
}

func TestFailExhaustsBudget(t *testing.T) {
	r, _ := newTestRegistry(3)
	ctx := context.Background()
	d, _ := r.Start(ctx, 1, 1, "gift", "enter_amount")

	for i := 1; i <= 2; i++ {
		exhausted, err := r.Fail(ctx, d)
		if err != nil || exhausted {
			t.Fatalf("attempt %d: expected budget left, got %v %v", i, exhausted, err)
		}
	}
	exhausted, _ := r.Fail(ctx, d)
	if !exhausted {
		t.Fatal("expected budget to be exhausted on third failure")
	}
	if got, _ := r.Active(ctx, 1); got != nil {
		t.Fatalf("expected dialogue cleared, got %+v", got)
	}
}

func TestAdvanceResetsFailures(t *testing.T) {
	d := &Dialogue{Step: "a", Failures: 2}
	d.Advance("b")
	if d.Step != "b" || d.Failures != 0 {
		t.Fatalf("expected step b with 0 failures, got %s %d", d.Step, d.Failures)
	}
}

func TestSweepRemovesIdle(t *testing.T) {
	r, clock := newTestRegistry(3)
	ctx := context.Background()

	_, _ = r.Start(ctx, 1, 1, "gift", "enter_amount")
	clock.t = clock.t.Add(2 * time.Hour)
	_, _ = r.Start(ctx, 2, 2, "gift", "enter_amount")
	clock.t = clock.t.Add(30 * time.Minute)

	n, err := r.Sweep(ctx, time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 swept, got %d %v", n, err)
	}
	if got, _ := r.Active(ctx, 1); got != nil {
		t.Fatal("expected idle dialogue removed")
	}
	if got, _ := r.Active(ctx, 2); got == nil {
		t.Fatal("expected recent dialogue kept")
	}
}

func TestNavigation(t *testing.T) {
	n := NewNavigation()
	n.Push(1, "root")
	n.Push(1, "fun")
	n.Push(1, "fun")

	if n.Current(1) != "fun" {
		t.Fatalf("expected fun, got %q", n.Current(1))
	}
	if got := n.Pop(1); got != "root" {
		t.Fatalf("expected root, got %q", got)
	}
	if got := n.Pop(1); got != "" {
		t.Fatalf("expected empty at bottom, got %q", got)
	}
	if n.Len() != 0 {
		t.Fatalf("expected an emptied stack to be forgotten, got %d", n.Len())
	}
	n.Push(2, "tasks")
	n.Reset(2)
	if n.Current(2) != "" {
		t.Fatal("expected reset to clear the stack")
	}
}

func TestNavigationSweepRemovesIdle(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	n := NewNavigation().WithClock(func() time.Time { return now })
	n.Push(1, "root")
	n.Push(1, "fun")
	now = now.Add(20 * time.Minute)
	n.Push(2, "tasks")
	now = now.Add(15 * time.Minute)

	if removed := n.Sweep(30 * time.Minute); removed != 1 {
		t.Fatalf("expected one stale stack removed, got %d", removed)
	}
	if n.Current(1) != "" || n.Current(2) != "tasks" {
		t.Fatalf("expected only chat 2 to remain, got %q and %q", n.Current(1), n.Current(2))
	}
	if n.Len() != 1 {
		t.Fatalf("expected one stack, got %d", n.Len())
	}
}
