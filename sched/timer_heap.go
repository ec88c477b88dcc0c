package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/godyy/glog"
	"github.com/godyy/gutils/container/heap"
)

// timerOfTimerHeap TimerHeap 定时器.
type timerOfTimerHeap struct {
	id        TimerId       // 定时器ID.
	heapIndex int           // 堆索引.
	delay     time.Duration // 延迟时间.
	periodic  bool          // 是否周期性定时器.
	args      any           // 参数.
	cb        TimerFunc     // 回调函数.
	expireAt  int64         // 到期时间.
}

func (t *timerOfTimerHeap) HeapLess(other *timerOfTimerHeap) bool {
	if n := t.expireAt - other.expireAt; n == 0 {
		return t.id < other.id
	} else {
		return n < 0
	}
}

func (t *timerOfTimerHeap) HeapIndex() int {
	return t.heapIndex
}

func (t *timerOfTimerHeap) SetHeapIndex(index int) {
	t.heapIndex = index
}

// TimerHeapOption TimerHeap 选项.
type TimerHeapOption func(*TimerHeap)

// WithTimerHeapLogger 日志工具选项.
func WithTimerHeapLogger(logger glog.Logger) TimerHeapOption {
	return func(th *TimerHeap) {
		th.logger = logger.Named("TimerHeap")
	}
}

// TimerHeap 最小堆定时器系统.
// 所有回调都在内部唯一的投递 goroutine 中顺序执行.
type TimerHeap struct {
	mtx        sync.Mutex                    // 互斥锁.
	sysTimer   *time.Timer                   // 系统定时器.
	timerIdGen uint64                        // 定时器ID生成自增键.
	timerHeap  *heap.Heap[*timerOfTimerHeap] // 定时器最小堆.
	timerMap   map[TimerId]*timerOfTimerHeap // 定时器映射.
	stopped    bool                          // 是否已停止.
	cStopped   chan struct{}                 // 已停止信号.
	cExited    chan struct{}                 // 投递 goroutine 已退出信号.
	logger     glog.Logger                   // 日志工具.
}

// NewTimerHeap 构造 TimerHeap.
func NewTimerHeap(options ...TimerHeapOption) *TimerHeap {
	th := &TimerHeap{
		sysTimer:  time.NewTimer(0),
		timerHeap: heap.NewHeap[*timerOfTimerHeap](),
		timerMap:  make(map[TimerId]*timerOfTimerHeap),
		stopped:   false,
		cStopped:  make(chan struct{}),
		cExited:   make(chan struct{}),
	}

	for _, opt := range options {
		opt(th)
	}

	if th.logger == nil {
		th.logger = createStdLogger(glog.InfoLevel).Named("TimerHeap")
	}

	go th.loop()

	return th
}

// genTimerId 生成定时器ID.
func (th *TimerHeap) genTimerId() TimerId {
	timerId := atomic.AddUint64(&th.timerIdGen, 1)
	if timerId == TimerIdNone {
		timerId = atomic.AddUint64(&th.timerIdGen, 1)
	}
	return timerId
}

// addTimer 添加定时器.
func (th *TimerHeap) addTimer(t *timerOfTimerHeap) {
	th.timerHeap.Push(t)
	th.timerMap[t.id] = t
}

// remTimer 移除定时器.
func (th *TimerHeap) remTimer(t *timerOfTimerHeap) {
	th.timerHeap.Remove(t.heapIndex)
	delete(th.timerMap, t.id)
}

// resetSysTimer 重置系统定时器.
func (th *TimerHeap) resetSysTimer(expireAt int64) {
	th.stopSysTimer()
	th.sysTimer.Reset(time.Duration(expireAt - time.Now().UnixNano()))
}

// stopSysTimer 停止系统定时器.
func (th *TimerHeap) stopSysTimer() {
	if !th.sysTimer.Stop() {
		select {
		case <-th.sysTimer.C:
		default:
		}
	}
}

// Stop 停止 TimerHeap. 停止后 StartTimer 总是返回 TimerIdNone.
// Stop 会等待投递 goroutine 退出, 因此不可在回调中调用.
func (th *TimerHeap) Stop() {
	th.mtx.Lock()
	if th.stopped {
		th.mtx.Unlock()
		return
	}

	th.stopSysTimer()
	th.timerHeap = nil
	th.timerMap = nil
	close(th.cStopped)
	th.stopped = true
	th.mtx.Unlock()

	<-th.cExited
}

// Len 返回等待中的定时器数量.
func (th *TimerHeap) Len() int {
	th.mtx.Lock()
	defer th.mtx.Unlock()

	if th.stopped {
		return 0
	}
	return th.timerHeap.Len()
}

// StartTimer 启动定时器.
func (th *TimerHeap) StartTimer(delay time.Duration, periodic bool, args any, cb TimerFunc) TimerId {
	if delay < 0 {
		panic("delay must >= 0")
	}

	if cb == nil {
		panic("callback func is nil")
	}

	// 创建定时器.
	t := &timerOfTimerHeap{
		heapIndex: -1,
		delay:     delay,
		periodic:  periodic,
		args:      args,
		cb:        cb,
		expireAt:  time.Now().Add(delay).UnixNano(),
	}

	th.mtx.Lock()
	defer th.mtx.Unlock()

	// 检查是否已停止.
	if th.stopped {
		return TimerIdNone
	}

	// 添加定时器.
	t.id = th.genTimerId()
	th.addTimer(t)
	if t == th.timerHeap.Top() {
		th.resetSysTimer(t.expireAt)
	}

	return t.id
}

// StopTimer 停止定时器.
func (th *TimerHeap) StopTimer(tid TimerId) {
	th.mtx.Lock()
	defer th.mtx.Unlock()

	// 检查是否已停止.
	if th.stopped {
		return
	}

	// 获取定时器.
	t, exists := th.timerMap[tid]
	if !exists {
		return
	}

	// 检查是否为堆顶定时器.
	top := t == th.timerHeap.Top()

	// 移除定时器.
	th.remTimer(t)

	// 更新系统定时器.
	if top {
		if th.timerHeap.Len() == 0 {
			th.stopSysTimer()
		} else {
			th.resetSysTimer(th.timerHeap.Top().expireAt)
		}
	}
}

// update 投递一轮到期定时器.
// 周期定时器错过的周期会被合并, 下次到期时间至少为本轮时间之后,
// 零延迟周期定时器因此每轮只投递一次.
func (th *TimerHeap) update() {
	var (
		t    *timerOfTimerHeap
		cb   TimerFunc
		args TimerArgs
	)

	now := time.Now().UnixNano()
	for {
		// 获取并更新堆顶定时器.
		th.mtx.Lock()
		if th.stopped || th.timerHeap.Len() == 0 {
			th.mtx.Unlock()
			return
		}
		t = th.timerHeap.Top()
		if t.expireAt > now {
			th.resetSysTimer(t.expireAt)
			th.mtx.Unlock()
			return
		}
		cb = t.cb
		args.TID = t.id
		args.Args = t.args
		if t.periodic {
			t.expireAt += int64(t.delay)
			if t.expireAt <= now {
				t.expireAt = now + 1
			}
			th.timerHeap.Fix(t.heapIndex)
		} else {
			th.remTimer(t)
		}
		th.mtx.Unlock()

		// 调用回调函数.
		th.invokeCallback(cb, &args)
	}
}

// invokeCallback 调用回调函数. 回调 panic 会被记录, 投递循环继续运行.
func (th *TimerHeap) invokeCallback(cb TimerFunc, args *TimerArgs) {
	defer func() {
		if r := recover(); r != nil {
			th.logger.ErrorFields("timer callback panic", lfdTimerId(args.TID), lfdPanic(r))
		}
	}()
	cb(args)
}

// loop 主循环逻辑.
func (th *TimerHeap) loop() {
	defer close(th.cExited)

	for {
		select {
		case <-th.sysTimer.C:
			th.update()
		case <-th.cStopped:
			return
		}
	}
}
