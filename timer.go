// Package gtimer 命名定时器.
//
// Registry 以调用方指定的ID管理 Timeout, Interval, Limited 三种定时器, 负责
// ID 唯一性以及启动/取消. 定时器在 sched.TimerSystem 上调度, 核心不依赖任何
// 全局状态, 进程级默认 Registry 见 provider 包.
package gtimer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/godyy/gtimer/sched"
	pkgerrors "github.com/pkg/errors"
)

// DefaultDelay 默认延迟时间.
const DefaultDelay = time.Second

// Timer 命名定时器.
// 具体类型只有 *Timeout, *Interval, *Limited 三种.
type Timer interface {
	// ID 定时器ID, 在所属 Registry 中唯一.
	ID() string

	// Delay 延迟时间.
	Delay() time.Duration

	// Start 启动定时器. 定时器已启动时先取消再重新启动.
	Start() error

	// Cancel 取消定时器. 未启动时什么都不做.
	Cancel()

	// IsActive 定时器当前是否已被调度.
	IsActive() bool

	// Registry 所属 Registry, 未加入任何 Registry 时返回 nil.
	Registry() *Registry

	// String 返回 "Kind(id)".
	String() string

	base() *baseTimer
}

func noop() {}

// baseTimer 定时器公共部分.
type baseTimer struct {
	kind     string                   // 类型名.
	id       string                   // 定时器ID.
	cb       func()                   // 回调函数.
	delay    time.Duration            // 延迟时间.
	periodic bool                     // 是否周期性.
	sys      sched.TimerSystem        // 定时器系统.
	registry atomic.Pointer[Registry] // 所属 Registry.

	mtx    sync.Mutex    // Mutex for following.
	handle sched.TimerId // 调度句柄, 未调度时为 TimerIdNone.
}

func (t *baseTimer) init(kind, id string, sys sched.TimerSystem, cb func(), delay time.Duration, periodic bool) error {
	if id == "" {
		return ErrEmptyId
	}

	if sys == nil {
		return pkgerrors.WithMessagef(ErrNilTimerSystem, "%s(%s)", kind, id)
	}

	if delay < 0 {
		return pkgerrors.WithMessagef(ErrInvalidDelay, "%s(%s)", kind, id)
	}

	if cb == nil {
		cb = noop
	}

	t.kind = kind
	t.id = id
	t.cb = cb
	t.delay = delay
	t.periodic = periodic
	t.sys = sys
	return nil
}

func (t *baseTimer) base() *baseTimer { return t }

func (t *baseTimer) ID() string { return t.id }

func (t *baseTimer) Delay() time.Duration { return t.delay }

func (t *baseTimer) Registry() *Registry { return t.registry.Load() }

func (t *baseTimer) String() string { return t.kind + "(" + t.id + ")" }

func (t *baseTimer) IsActive() bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.handle != sched.TimerIdNone
}

// schedule 向定时器系统申请调度. 调用方需持有 mtx 且定时器未被调度.
func (t *baseTimer) schedule(f sched.TimerFunc) error {
	tid := t.sys.StartTimer(t.delay, t.periodic, nil, f)
	if tid == sched.TimerIdNone {
		return pkgerrors.WithMessage(ErrScheduleFailed, t.String())
	}
	t.handle = tid
	return nil
}

// unschedule 释放调度句柄. 调用方需持有 mtx.
func (t *baseTimer) unschedule() {
	if t.handle == sched.TimerIdNone {
		return
	}
	t.sys.StopTimer(t.handle)
	t.handle = sched.TimerIdNone
}

// current 判断到期事件是否属于当前调度. 调用方需持有 mtx.
func (t *baseTimer) current(args *sched.TimerArgs) bool {
	return t.handle != sched.TimerIdNone && t.handle == args.TID
}
