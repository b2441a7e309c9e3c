package device

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler(t *testing.T) {
	t.Run("Runs Task Periodically", func(t *testing.T) {
		s := NewScheduler(testLogger())
		defer s.Shutdown()

		var ticks int64
		s.Start("poll", 5*time.Millisecond, func(ctx context.Context) {
			atomic.AddInt64(&ticks, 1)
		})

		time.Sleep(60 * time.Millisecond)
		if atomic.LoadInt64(&ticks) == 0 {
			t.Error("Expected the task to have ticked at least once")
		}
	})

	t.Run("Stop Halts The Task", func(t *testing.T) {
		s := NewScheduler(testLogger())
		defer s.Shutdown()

		var ticks int64
		s.Start("poll", 5*time.Millisecond, func(ctx context.Context) {
			atomic.AddInt64(&ticks, 1)
		})
		time.Sleep(30 * time.Millisecond)
		s.Stop("poll")

		if s.IsRunning("poll") {
			t.Error("Expected task not running after Stop")
		}

		// One tick may already be in flight when Stop lands.
		time.Sleep(10 * time.Millisecond)
		before := atomic.LoadInt64(&ticks)
		time.Sleep(30 * time.Millisecond)
		after := atomic.LoadInt64(&ticks)
		if after != before {
			t.Errorf("Expected no ticks after stop, got %d more", after-before)
		}
	})

	t.Run("Restart Replaces The Task", func(t *testing.T) {
		s := NewScheduler(testLogger())
		defer s.Shutdown()

		var first, second int64
		s.Start("poll", 5*time.Millisecond, func(ctx context.Context) {
			atomic.AddInt64(&first, 1)
		})
		s.Start("poll", 5*time.Millisecond, func(ctx context.Context) {
			atomic.AddInt64(&second, 1)
		})

		time.Sleep(40 * time.Millisecond)
		if atomic.LoadInt64(&second) == 0 {
			t.Error("Expected the replacement task to tick")
		}
		if !s.IsRunning("poll") {
			t.Error("Expected task running after restart")
		}
	})

	t.Run("Stop Unknown Name Is A NoOp", func(t *testing.T) {
		s := NewScheduler(testLogger())
		defer s.Shutdown()
		s.Stop("no-such-task")
	})

	t.Run("Shutdown Stops Everything", func(t *testing.T) {
		s := NewScheduler(testLogger())

		s.Start("a", 5*time.Millisecond, func(ctx context.Context) {})
		s.Start("b", 5*time.Millisecond, func(ctx context.Context) {})
		s.Shutdown()

		if s.IsRunning("a") || s.IsRunning("b") {
			t.Error("Expected no tasks running after shutdown")
		}
	})
}
