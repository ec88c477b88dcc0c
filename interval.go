package gtimer

import (
	"time"

	"github.com/godyy/gtimer/sched"
)

// Interval 周期定时器, 每隔 delay 执行一次回调, 直到被取消.
type Interval struct {
	baseTimer
}

// NewInterval 构造 Interval. cb 为 nil 时使用空回调.
func NewInterval(id string, sys sched.TimerSystem, cb func(), delay time.Duration) (*Interval, error) {
	t := &Interval{}
	if err := t.init("Interval", id, sys, cb, delay, true); err != nil {
		return nil, err
	}
	return t, nil
}

// Start 启动定时器.
func (t *Interval) Start() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.unschedule()
	return t.schedule(t.fire)
}

// Cancel 取消定时器.
func (t *Interval) Cancel() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.unschedule()
}

func (t *Interval) fire(args *sched.TimerArgs) {
	t.mtx.Lock()
	if !t.current(args) {
		t.mtx.Unlock()
		return
	}
	cb := t.cb
	t.mtx.Unlock()

	cb()
}
