package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/godyy/glog"
	"go.uber.org/goleak"
)

func newTestLogger() glog.Logger {
	return glog.NewLogger(&glog.Config{
		Level:        glog.DebugLevel,
		EnableCaller: true,
		CallerSkip:   0,
		Development:  true,
		Cores:        []glog.CoreConfig{glog.NewStdCoreConfig()},
	})
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTimerHeapTimeout(t *testing.T) {
	logger := newTestLogger()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	th := NewTimerHeap(WithTimerHeapLogger(logger))
	defer th.Stop()

	var calls atomic.Int32
	fired := make(chan TimerId, 1)
	tid := th.StartTimer(20*time.Millisecond, false, nil, func(args *TimerArgs) {
		calls.Add(1)
		fired <- args.TID
	})
	if tid == TimerIdNone {
		t.Fatal("start timer failed")
	}

	select {
	case got := <-fired:
		if got != tid {
			t.Fatalf("fired tid=%d, want %d", got, tid)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer not fired")
	}

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Fatalf("calls=%d, want 1", calls.Load())
	}
	if th.Len() != 0 {
		t.Fatalf("pending=%d", th.Len())
	}
}

func TestTimerHeapPeriodicStop(t *testing.T) {
	logger := newTestLogger()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	th := NewTimerHeap(WithTimerHeapLogger(logger))
	defer th.Stop()

	var calls atomic.Int32
	tid := th.StartTimer(5*time.Millisecond, true, nil, func(*TimerArgs) { calls.Add(1) })
	waitFor(t, 5*time.Second, func() bool { return calls.Load() >= 3 })

	th.StopTimer(tid)
	// 停止前可能已有一次投递正在进行.
	time.Sleep(20 * time.Millisecond)
	n := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != n {
		t.Fatalf("periodic timer ticked after stop: %d -> %d", n, calls.Load())
	}
}

func TestTimerHeapZeroDelayPeriodic(t *testing.T) {
	logger := newTestLogger()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	th := NewTimerHeap(WithTimerHeapLogger(logger))
	defer th.Stop()

	var zero, other atomic.Int32
	zid := th.StartTimer(0, true, nil, func(*TimerArgs) { zero.Add(1) })
	th.StartTimer(10*time.Millisecond, false, nil, func(*TimerArgs) { other.Add(1) })

	waitFor(t, 5*time.Second, func() bool { return zero.Load() >= 10 && other.Load() == 1 })
	th.StopTimer(zid)
}

func TestTimerHeapCallbackPanic(t *testing.T) {
	logger := newTestLogger()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	th := NewTimerHeap(WithTimerHeapLogger(logger))
	defer th.Stop()

	var calls atomic.Int32
	th.StartTimer(time.Millisecond, false, nil, func(*TimerArgs) { panic("boom") })
	th.StartTimer(10*time.Millisecond, false, nil, func(*TimerArgs) { calls.Add(1) })

	waitFor(t, 5*time.Second, func() bool { return calls.Load() == 1 })
}

func TestTimerHeapStop(t *testing.T) {
	logger := newTestLogger()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	th := NewTimerHeap(WithTimerHeapLogger(logger))

	var calls atomic.Int32
	tid := th.StartTimer(20*time.Millisecond, false, nil, func(*TimerArgs) { calls.Add(1) })
	th.Stop()
	th.Stop()
	th.StopTimer(tid)

	if got := th.StartTimer(time.Millisecond, false, nil, func(*TimerArgs) {}); got != TimerIdNone {
		t.Fatalf("start after stop returned %d", got)
	}
	if th.Len() != 0 {
		t.Fatalf("pending=%d after stop", th.Len())
	}

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("timer fired after stop")
	}
}
