package loop

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTick_RunsOnlyQueuedTasks(t *testing.T) {
	l := New()
	var order []string

	l.Post(func() {
		order = append(order, "a")
		l.Post(func() { order = append(order, "c") })
	})
	l.Post(func() { order = append(order, "b") })

	if ran := l.Tick(); ran != 2 {
		t.Fatalf("expected 2 tasks in first tick, got %d", ran)
	}
	if diff := cmp.Diff([]string{"a", "b"}, order); diff != "" {
		t.Fatalf("first tick mismatch (-want +got):\n%s", diff)
	}

	l.Tick()
	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Fatalf("second tick mismatch (-want +got):\n%s", diff)
	}
}

func TestTask_CancelBeforeRun(t *testing.T) {
	l := New()
	fired := false
	task := l.Post(func() { fired = true })

	if !task.Cancel() {
		t.Fatalf("expected cancel to succeed before tick")
	}
	l.Drain(0)
	if fired {
		t.Fatalf("cancelled task should not run")
	}
	if task.Cancel() != true {
		t.Fatalf("repeated cancel of an unstarted task should still report true")
	}
}

func TestTask_CancelAfterRun(t *testing.T) {
	l := New()
	task := l.Post(func() {})
	l.Tick()
	if task.Cancel() {
		t.Fatalf("cancel after execution should report false")
	}
	var nilTask *Task
	if nilTask.Cancel() {
		t.Fatalf("nil task cancel should report false")
	}
}

func TestDrain_RespectsMax(t *testing.T) {
	l := New()
	var reschedule func()
	count := 0
	reschedule = func() {
		count++
		l.Post(reschedule)
	}
	l.Post(reschedule)

	if ticks := l.Drain(3); ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
	if count != 3 {
		t.Fatalf("expected 3 executions, got %d", count)
	}
}

func TestTick_RecoversPanics(t *testing.T) {
	l := New()
	ran := false
	l.Post(func() { panic("boom") })
	l.Post(func() { ran = true })

	l.Tick()
	if !ran {
		t.Fatalf("task after a panicking task should still run")
	}
}

func TestRunUntil_StopsOnCondition(t *testing.T) {
	l := New()
	done := false
	go func() {
		l.Post(func() { done = true })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := l.RunUntil(ctx, func() bool { return done }); err != nil {
		t.Fatalf("run until: %v", err)
	}
}

func TestRun_ReturnsContextError(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
