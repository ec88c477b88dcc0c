package sched

import (
	"sync"
	"time"

	"github.com/godyy/gutils/container/heap"
)

// manualTimer Manual 定时器.
type manualTimer struct {
	id        TimerId       // 定时器ID.
	heapIndex int           // 堆索引.
	delay     time.Duration // 延迟时间.
	periodic  bool          // 是否周期性定时器.
	args      any           // 参数.
	cb        TimerFunc     // 回调函数.
	expireAt  time.Duration // 到期的虚拟时间.
	heldRound uint64        // 零延迟周期定时器被推迟到的轮次.
}

func (t *manualTimer) HeapLess(other *manualTimer) bool {
	if t.expireAt != other.expireAt {
		return t.expireAt < other.expireAt
	}
	if t.heldRound != other.heldRound {
		return t.heldRound < other.heldRound
	}
	return t.id < other.id
}

func (t *manualTimer) HeapIndex() int {
	return t.heapIndex
}

func (t *manualTimer) SetHeapIndex(index int) {
	t.heapIndex = index
}

// Manual 虚拟时钟定时器系统.
// 时间只在调用 Advance 时前进, 到期回调在调用 Advance 的 goroutine 中按到期
// 时间顺序投递. 每次 Advance 为一轮, 零延迟周期定时器每轮最多投递一次.
type Manual struct {
	mtx        sync.Mutex               // 互斥锁.
	now        time.Duration            // 当前虚拟时间.
	round      uint64                   // 当前轮次.
	timerIdGen TimerId                  // 定时器ID生成自增键.
	timerHeap  *heap.Heap[*manualTimer] // 定时器最小堆.
	timerMap   map[TimerId]*manualTimer // 定时器映射.
	stopped    bool                     // 是否已停止.
	capacity   int                      // 最大定时器数量, 0 表示不限制.
}

// NewManual 构造 Manual.
func NewManual() *Manual {
	return &Manual{
		timerHeap: heap.NewHeap[*manualTimer](),
		timerMap:  make(map[TimerId]*manualTimer),
	}
}

// SetCapacity 设置最大定时器数量. 超出后 StartTimer 返回 TimerIdNone,
// 用于模拟平台定时器资源耗尽.
func (m *Manual) SetCapacity(n int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.capacity = n
}

// Now 返回当前虚拟时间.
func (m *Manual) Now() time.Duration {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.now
}

// Len 返回等待中的定时器数量.
func (m *Manual) Len() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.timerMap)
}

// Stop 停止 Manual, 丢弃所有定时器.
func (m *Manual) Stop() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.stopped = true
	m.timerHeap = heap.NewHeap[*manualTimer]()
	m.timerMap = make(map[TimerId]*manualTimer)
}

// StartTimer 启动定时器.
func (m *Manual) StartTimer(delay time.Duration, periodic bool, args any, cb TimerFunc) TimerId {
	if delay < 0 {
		panic("delay must >= 0")
	}

	if cb == nil {
		panic("callback func is nil")
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.stopped {
		return TimerIdNone
	}

	if m.capacity > 0 && len(m.timerMap) >= m.capacity {
		return TimerIdNone
	}

	m.timerIdGen++
	t := &manualTimer{
		id:        m.timerIdGen,
		heapIndex: -1,
		delay:     delay,
		periodic:  periodic,
		args:      args,
		cb:        cb,
		expireAt:  m.now + delay,
	}
	m.timerHeap.Push(t)
	m.timerMap[t.id] = t

	return t.id
}

// StopTimer 停止定时器.
func (m *Manual) StopTimer(tid TimerId) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	t, exists := m.timerMap[tid]
	if !exists {
		return
	}

	m.timerHeap.Remove(t.heapIndex)
	delete(m.timerMap, tid)
}

// Advance 将虚拟时间推进 d, 并投递期间到期的定时器.
// 返回本次投递的回调数量. 回调 panic 会传播给调用方.
func (m *Manual) Advance(d time.Duration) int {
	if d < 0 {
		panic("advance duration must >= 0")
	}

	m.mtx.Lock()
	m.round++
	round := m.round
	target := m.now + d
	m.mtx.Unlock()

	var (
		cb    TimerFunc
		args  TimerArgs
		fired int
	)
	for {
		m.mtx.Lock()
		if m.timerHeap.Len() == 0 {
			m.now = target
			m.mtx.Unlock()
			return fired
		}
		t := m.timerHeap.Top()
		if t.expireAt > target || t.heldRound >= round {
			m.now = target
			m.mtx.Unlock()
			return fired
		}

		if t.expireAt > m.now {
			m.now = t.expireAt
		}
		cb = t.cb
		args.TID = t.id
		args.Args = t.args
		if t.periodic {
			if t.delay == 0 {
				t.expireAt = target
				t.heldRound = round
			} else {
				t.expireAt += t.delay
			}
			m.timerHeap.Fix(t.heapIndex)
		} else {
			m.timerHeap.Remove(t.heapIndex)
			delete(m.timerMap, t.id)
		}
		m.mtx.Unlock()

		fired++
		cb(&args)
	}
}
