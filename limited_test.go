package gtimer

import (
	"testing"
	"time"

	"github.com/godyy/gtimer/sched"
)

type limitedProbe struct {
	calls      int
	limitCalls int
}

func newLimitedProbe(t *testing.T, sys sched.TimerSystem, limit int) (*Limited, *limitedProbe) {
	t.Helper()
	p := &limitedProbe{}
	timer, err := NewLimited("l", sys, func() { p.calls++ }, 10*time.Millisecond, limit, func() { p.limitCalls++ })
	if err != nil {
		t.Fatalf("new limited: %v", err)
	}
	return timer, p
}

func TestLimitedReachesLimit(t *testing.T) {
	sys := sched.NewManual()
	timer, p := newLimitedProbe(t, sys, 5)
	if err := timer.Start(); err != nil {
		t.Fatal(err)
	}
	if timer.State() != LimitedRunning {
		t.Fatalf("state=%s, want running", timer.State())
	}

	sys.Advance(50 * time.Millisecond)
	if p.calls != 5 || p.limitCalls != 0 {
		t.Fatalf("after 5 ticks calls=%d limitCalls=%d", p.calls, p.limitCalls)
	}
	if timer.Count() != 5 || !timer.IsActive() {
		t.Fatalf("count=%d active=%v", timer.Count(), timer.IsActive())
	}

	sys.Advance(time.Second)
	if p.calls != 5 || p.limitCalls != 1 {
		t.Fatalf("calls=%d limitCalls=%d, want 5 and 1", p.calls, p.limitCalls)
	}
	if timer.IsActive() {
		t.Fatal("limited still active after limit reached")
	}
	if timer.Count() != 0 {
		t.Fatalf("count=%d after limit reached", timer.Count())
	}
	if timer.State() != LimitedLimitReached {
		t.Fatalf("state=%s, want limit_reached", timer.State())
	}
	if sys.Len() != 0 {
		t.Fatalf("schedule not released, pending=%d", sys.Len())
	}
}

func TestLimitedZeroLimit(t *testing.T) {
	sys := sched.NewManual()
	timer, p := newLimitedProbe(t, sys, 0)
	_ = timer.Start()

	sys.Advance(10 * time.Millisecond)
	if p.calls != 0 || p.limitCalls != 1 {
		t.Fatalf("calls=%d limitCalls=%d, want 0 and 1", p.calls, p.limitCalls)
	}
	if timer.IsActive() {
		t.Fatal("limited active after limit reached")
	}
}

func TestLimitedRestartAfterLimit(t *testing.T) {
	sys := sched.NewManual()
	timer, p := newLimitedProbe(t, sys, 2)
	_ = timer.Start()
	sys.Advance(time.Second)

	if err := timer.Start(); err != nil {
		t.Fatal(err)
	}
	if timer.State() != LimitedRunning || timer.Count() != 0 {
		t.Fatalf("state=%s count=%d after restart", timer.State(), timer.Count())
	}
	sys.Advance(time.Second)
	if p.calls != 4 || p.limitCalls != 2 {
		t.Fatalf("calls=%d limitCalls=%d, want 4 and 2", p.calls, p.limitCalls)
	}
}

func TestLimitedRestartFromLimitCallback(t *testing.T) {
	sys := sched.NewManual()
	cycles := 0
	var timer *Limited
	timer, err := NewLimited("l", sys, nil, 10*time.Millisecond, 1, func() {
		cycles++
		if cycles < 3 {
			_ = timer.Start()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = timer.Start()

	sys.Advance(time.Second)
	if cycles != 3 {
		t.Fatalf("cycles=%d, want 3", cycles)
	}
	if timer.IsActive() {
		t.Fatal("limited active after final cycle")
	}
}

func TestLimitedCancelResetsCount(t *testing.T) {
	sys := sched.NewManual()
	timer, p := newLimitedProbe(t, sys, 5)
	_ = timer.Start()

	sys.Advance(30 * time.Millisecond)
	if timer.Count() != 3 {
		t.Fatalf("count=%d, want 3", timer.Count())
	}

	timer.Cancel()
	if timer.Count() != 0 || timer.IsActive() || timer.State() != LimitedIdle {
		t.Fatalf("after cancel count=%d active=%v state=%s", timer.Count(), timer.IsActive(), timer.State())
	}

	sys.Advance(time.Second)
	if p.calls != 3 || p.limitCalls != 0 {
		t.Fatalf("calls=%d limitCalls=%d after cancel", p.calls, p.limitCalls)
	}

	// 取消后重新开始完整周期.
	_ = timer.Start()
	sys.Advance(time.Second)
	if p.calls != 8 || p.limitCalls != 1 {
		t.Fatalf("calls=%d limitCalls=%d, want 8 and 1", p.calls, p.limitCalls)
	}
}

func TestLimitedCancelInCallback(t *testing.T) {
	sys := sched.NewManual()
	var timer *Limited
	timer, _ = NewLimited("l", sys, func() { timer.Cancel() }, 10*time.Millisecond, 5, nil)
	_ = timer.Start()

	sys.Advance(10 * time.Millisecond)
	if timer.Count() != 0 {
		t.Fatalf("count=%d, cancelled cycle must not be counted", timer.Count())
	}
}

func TestLimitedPanicDoesNotCount(t *testing.T) {
	sys := sched.NewManual()
	calls := 0
	timer, _ := NewLimited("l", sys, func() {
		calls++
		if calls == 2 {
			panic("boom")
		}
	}, 10*time.Millisecond, 5, nil)
	_ = timer.Start()

	sys.Advance(10 * time.Millisecond)
	if r := advanceRecover(sys, 10*time.Millisecond); r == nil {
		t.Fatal("panic not propagated")
	}
	if timer.Count() != 1 {
		t.Fatalf("count=%d after panicking callback, want 1", timer.Count())
	}
	if !timer.IsActive() {
		t.Fatal("limited stopped by panicking callback")
	}

	sys.Advance(10 * time.Millisecond)
	if timer.Count() != 2 {
		t.Fatalf("count=%d, want 2", timer.Count())
	}
}

func TestLimitedZeroDelay(t *testing.T) {
	sys := sched.NewManual()
	p := &limitedProbe{}
	timer, _ := NewLimited("z", sys, func() { p.calls++ }, 0, 3, func() { p.limitCalls++ })
	_ = timer.Start()

	for i := 0; i < 10; i++ {
		sys.Advance(0)
	}
	if p.calls != 3 || p.limitCalls != 1 {
		t.Fatalf("calls=%d limitCalls=%d, want 3 and 1", p.calls, p.limitCalls)
	}
}

func advanceRecover(sys *sched.Manual, d time.Duration) (r any) {
	defer func() {
		r = recover()
	}()
	sys.Advance(d)
	return nil
}
