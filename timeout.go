package gtimer

import (
	"time"

	"github.com/godyy/gtimer/sched"
)

// Timeout 一次性定时器, 启动后延迟 delay 执行一次回调.
type Timeout struct {
	baseTimer
}

// NewTimeout 构造 Timeout. cb 为 nil 时使用空回调.
func NewTimeout(id string, sys sched.TimerSystem, cb func(), delay time.Duration) (*Timeout, error) {
	t := &Timeout{}
	if err := t.init("Timeout", id, sys, cb, delay, false); err != nil {
		return nil, err
	}
	return t, nil
}

// Start 启动定时器.
func (t *Timeout) Start() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.unschedule()
	return t.schedule(t.fire)
}

// Cancel 取消定时器.
func (t *Timeout) Cancel() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.unschedule()
}

// fire 到期处理. 定时器系统已回收该调度, 先清除句柄再执行回调.
func (t *Timeout) fire(args *sched.TimerArgs) {
	t.mtx.Lock()
	if !t.current(args) {
		t.mtx.Unlock()
		return
	}
	t.handle = sched.TimerIdNone
	cb := t.cb
	t.mtx.Unlock()

	cb()
}
