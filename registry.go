package gtimer

import (
	"container/list"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/godyy/glog"
	"github.com/godyy/gtimer/sched"
	pkgerrors "github.com/pkg/errors"
)

// RegistryConfig Registry 配置.
type RegistryConfig struct {
	// TimerSystem 定时器系统, 由 Registry 创建的定时器都在其上调度.
	TimerSystem sched.TimerSystem
}

func (c *RegistryConfig) init() error {
	if c == nil {
		return errors.New("RegistryConfig nil")
	}

	if c.TimerSystem == nil {
		return pkgerrors.WithMessage(ErrNilTimerSystem, "RegistryConfig.TimerSystem not specified")
	}

	return nil
}

// Registry 命名定时器集合.
// 以ID索引定时器, 同一ID最多对应一个定时器. 替换或移除定时器时总是先取消其
// 调度, 再移除映射. 遍历顺序为加入顺序.
type Registry struct {
	cfg        *RegistryConfig // 配置.
	rootLogger glog.Logger     // 根日志工具.
	logger     glog.Logger     // 日志工具.

	mtx    sync.Mutex               // Mutex for following.
	timers map[string]*list.Element // 定时器映射.
	order  *list.List               // 加入顺序, 元素为 Timer.
}

// NewRegistry 构造 Registry.
func NewRegistry(cfg *RegistryConfig, options ...Option) (*Registry, error) {
	if err := cfg.init(); err != nil {
		return nil, err
	}

	r := &Registry{
		cfg:    cfg,
		timers: make(map[string]*list.Element),
		order:  list.New(),
	}

	for _, opt := range options {
		opt(r)
	}

	r.initLogger()

	return r, nil
}

// TimerSystem 返回 Registry 使用的定时器系统.
func (r *Registry) TimerSystem() sched.TimerSystem {
	return r.cfg.TimerSystem
}

// AddTimeout 添加一次性定时器. start 为 true 时立即启动.
func (r *Registry) AddTimeout(id string, cb func(), delay time.Duration, start bool) (*Timeout, error) {
	t, err := NewTimeout(id, r.cfg.TimerSystem, cb, delay)
	if err != nil {
		return nil, err
	}
	if _, err := r.Add(t, start); err != nil {
		return t, err
	}
	return t, nil
}

// AddInterval 添加周期定时器. start 为 true 时立即启动.
func (r *Registry) AddInterval(id string, cb func(), delay time.Duration, start bool) (*Interval, error) {
	t, err := NewInterval(id, r.cfg.TimerSystem, cb, delay)
	if err != nil {
		return nil, err
	}
	if _, err := r.Add(t, start); err != nil {
		return t, err
	}
	return t, nil
}

// AddLimitedInterval 添加限次周期定时器. start 为 true 时立即启动.
func (r *Registry) AddLimitedInterval(id string, cb func(), delay time.Duration, start bool, limit int, onLimitReached func()) (*Limited, error) {
	t, err := NewLimited(id, r.cfg.TimerSystem, cb, delay, limit, onLimitReached)
	if err != nil {
		return nil, err
	}
	if _, err := r.Add(t, start); err != nil {
		return t, err
	}
	return t, nil
}

// Add 添加定时器.
// 已存在相同ID的定时器时, 先取消并移除旧定时器. start 为 true 时启动新定时器;
// 启动失败时定时器仍保留在 Registry 中(未激活), 并返回错误.
func (r *Registry) Add(timer Timer, start bool) (Timer, error) {
	if timer == nil {
		return nil, ErrNilTimer
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	// 先占有定时器, 占有失败时不修改 Registry.
	b := timer.base()
	if !b.registry.CompareAndSwap(nil, r) && b.registry.Load() != r {
		return nil, pkgerrors.WithMessage(ErrTimerOwned, timer.String())
	}

	if e, ok := r.timers[timer.ID()]; ok {
		old := e.Value.(Timer)
		r.unlink(e)
		if old != timer {
			old.base().registry.CompareAndSwap(r, nil)
		}
		r.logger.WithFields(lfdTimerId(timer.ID()), lfdTimerKind(old.base().kind)).Debug("timer replaced")
	}

	r.timers[timer.ID()] = r.order.PushBack(timer)

	r.logger.WithFields(lfdTimerId(timer.ID()), lfdTimerKind(b.kind), lfdStart(start)).Debug("timer added")

	if start {
		if err := timer.Start(); err != nil {
			r.logger.ErrorFields("start timer failed", lfdTimerId(timer.ID()), lfdError(err))
			return timer, err
		}
	}

	return timer, nil
}

// Get 获取ID对应的定时器.
func (r *Registry) Get(id string) (Timer, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.timers[id]
	if !ok {
		return nil, false
	}
	return e.Value.(Timer), true
}

// Has 是否存在ID对应的定时器.
func (r *Registry) Has(id string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	_, ok := r.timers[id]
	return ok
}

// Remove 取消并移除ID对应的定时器, 返回是否移除.
func (r *Registry) Remove(id string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.timers[id]
	if !ok {
		return false
	}

	r.cancelAndDelete(e)
	r.logger.WithFields(lfdTimerId(id)).Debug("timer removed")
	return true
}

// Delete 同 Remove.
func (r *Registry) Delete(id string) bool {
	return r.Remove(id)
}

// Count 返回定时器数量, 包括未激活的定时器.
func (r *Registry) Count() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.timers)
}

// IDs 按加入顺序返回所有定时器ID.
func (r *Registry) IDs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ids := make([]string, 0, len(r.timers))
	for e := r.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(Timer).ID())
	}
	return ids
}

// ActiveTimers 按加入顺序返回当前已调度的定时器. 每次调用重新计算.
func (r *Registry) ActiveTimers() []Timer {
	var active []Timer
	for _, t := range r.snapshot() {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	return active
}

// All 按加入顺序遍历 (id, 定时器).
// 每次遍历开始时读取 Registry 当前内容, 遍历过程中可以修改 Registry.
func (r *Registry) All() iter.Seq2[string, Timer] {
	return func(yield func(string, Timer) bool) {
		for _, t := range r.snapshot() {
			if !yield(t.ID(), t) {
				return
			}
		}
	}
}

// Clear 取消并移除所有定时器.
func (r *Registry) Clear() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	n := len(r.timers)
	for e := r.order.Front(); e != nil; {
		next := e.Next()
		r.cancelAndDelete(e)
		e = next
	}

	r.logger.WithFields(lfdCount(n)).Debug("registry cleared")
}

// snapshot 按加入顺序复制所有定时器.
func (r *Registry) snapshot() []Timer {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	timers := make([]Timer, 0, len(r.timers))
	for e := r.order.Front(); e != nil; e = e.Next() {
		timers = append(timers, e.Value.(Timer))
	}
	return timers
}

// cancelAndDelete 先取消定时器, 再移除映射, 最后释放占有. 调用方需持有 mtx.
func (r *Registry) cancelAndDelete(e *list.Element) {
	t := r.unlink(e)
	t.base().registry.CompareAndSwap(r, nil)
}

// unlink 取消定时器并移除映射, 不释放占有. 调用方需持有 mtx.
func (r *Registry) unlink(e *list.Element) Timer {
	t := e.Value.(Timer)
	t.Cancel()
	delete(r.timers, t.ID())
	r.order.Remove(e)
	return t
}

// initLogger 初始化日志工具.
func (r *Registry) initLogger() {
	if r.logger != nil {
		return
	}

	r.rootLogger = createStdLogger(glog.InfoLevel)
	r.logger = r.rootLogger.Named("Registry")
}

// setLogger 设置日志工具.
func (r *Registry) setLogger(logger glog.Logger) {
	r.rootLogger = logger.Named("gtimer")
	r.logger = r.rootLogger.Named("Registry")
}
