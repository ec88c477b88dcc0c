package gtimer

import (
	"context"
	"time"

	"github.com/godyy/gtimer/sched"
	pkgerrors "github.com/pkg/errors"
	"github.com/qmuntal/stateless"
)

// DefaultLimit 默认次数上限.
const DefaultLimit = 10

// LimitedState Limited 状态.
type LimitedState string

const (
	// LimitedIdle 未启动或已取消.
	LimitedIdle LimitedState = "idle"
	// LimitedRunning 运行中.
	LimitedRunning LimitedState = "running"
	// LimitedLimitReached 达到次数上限, 调度已取消.
	LimitedLimitReached LimitedState = "limit_reached"
)

const (
	limitedTrgStart  = "start"
	limitedTrgLimit  = "limit"
	limitedTrgCancel = "cancel"
)

// Limited 限次周期定时器.
// 每隔 delay 执行一次回调; 回调执行 limit 次后, 下一次到期时取消自身并执行
// onLimitReached, 不再执行常规回调. 重新 Start 开始新的周期.
type Limited struct {
	baseTimer
	limit          int                     // 次数上限.
	onLimitReached func()                  // 达到上限回调.
	count          int                     // 本周期已执行次数, 受 mtx 保护.
	fsm            *stateless.StateMachine // 状态机, 受 mtx 保护.
}

// NewLimited 构造 Limited. cb, onLimitReached 为 nil 时使用空回调.
// limit 为 0 时首次到期即触发 onLimitReached.
func NewLimited(id string, sys sched.TimerSystem, cb func(), delay time.Duration, limit int, onLimitReached func()) (*Limited, error) {
	t := &Limited{}
	if err := t.init("Limited", id, sys, cb, delay, true); err != nil {
		return nil, err
	}

	if limit < 0 {
		return nil, pkgerrors.WithMessagef(ErrInvalidLimit, "%s limit %d", t, limit)
	}

	if onLimitReached == nil {
		onLimitReached = noop
	}

	t.limit = limit
	t.onLimitReached = onLimitReached
	t.initFSM()
	return t, nil
}

func (t *Limited) initFSM() {
	t.fsm = stateless.NewStateMachine(LimitedIdle)

	t.fsm.Configure(LimitedIdle).
		OnEntry(t.actResetCount).
		Permit(limitedTrgStart, LimitedRunning).
		Ignore(limitedTrgCancel)

	t.fsm.Configure(LimitedRunning).
		OnEntry(t.actResetCount).
		Permit(limitedTrgLimit, LimitedLimitReached).
		Permit(limitedTrgCancel, LimitedIdle)

	t.fsm.Configure(LimitedLimitReached).
		OnEntry(t.actResetCount).
		Permit(limitedTrgStart, LimitedRunning).
		Permit(limitedTrgCancel, LimitedIdle)
}

func (t *Limited) actResetCount(_ context.Context, _ ...any) error {
	t.count = 0
	return nil
}

// mustFire 触发状态转换. 所有触发器在当前状态下都是允许的, 失败即为内部错误.
func (t *Limited) mustFire(trigger string) {
	if err := t.fsm.Fire(trigger); err != nil {
		panic(pkgerrors.WithMessagef(err, "%s fire %s", t, trigger))
	}
}

// Limit 次数上限.
func (t *Limited) Limit() int { return t.limit }

// Count 本周期常规回调已执行次数.
func (t *Limited) Count() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.count
}

// State 当前状态.
func (t *Limited) State() LimitedState {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.fsm.MustState().(LimitedState)
}

// Start 启动定时器, 计数归零.
func (t *Limited) Start() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.cancel()
	if err := t.schedule(t.fire); err != nil {
		return err
	}
	t.mustFire(limitedTrgStart)
	return nil
}

// Cancel 取消定时器, 计数归零.
func (t *Limited) Cancel() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.cancel()
}

// cancel 调用方需持有 mtx.
func (t *Limited) cancel() {
	t.mustFire(limitedTrgCancel)
	t.unschedule()
}

func (t *Limited) fire(args *sched.TimerArgs) {
	t.mtx.Lock()
	if !t.current(args) {
		t.mtx.Unlock()
		return
	}

	if t.count >= t.limit {
		t.unschedule()
		t.mustFire(limitedTrgLimit)
		onLimitReached := t.onLimitReached
		t.mtx.Unlock()

		onLimitReached()
		return
	}

	cb := t.cb
	t.mtx.Unlock()

	// 回调 panic 时不计数.
	cb()

	t.mtx.Lock()
	if t.current(args) {
		t.count++
	}
	t.mtx.Unlock()
}
