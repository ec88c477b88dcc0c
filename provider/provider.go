// Package provider 提供进程级默认 Registry.
//
// gtimer 核心不依赖本包. 需要"全局" Registry 的代码在启动时调用 Setup,
// 退出时调用 Teardown; 其余代码通过 Default 或嵌入 Aware 获取.
// 未 Setup 时 Default 返回 (nil, false), 这是正常结果而非错误.
package provider

import (
	"errors"
	"sync"

	"github.com/godyy/gtimer"
	"github.com/godyy/gtimer/sched"
)

// ErrAlreadySetup 默认 Registry 已存在.
var ErrAlreadySetup = errors.New("default registry already setup")

var (
	mtx             sync.RWMutex
	defaultRegistry *gtimer.Registry
	ownedHeap       *sched.TimerHeap
)

// Setup 创建默认 Registry.
// cfg 为 nil 或未指定 TimerSystem 时, 创建一个 TimerHeap 并由 Teardown 负责停止.
func Setup(cfg *gtimer.RegistryConfig, options ...Option) (*gtimer.Registry, error) {
	mtx.Lock()
	defer mtx.Unlock()

	if defaultRegistry != nil {
		return nil, ErrAlreadySetup
	}

	var optSet optionSet
	for _, opt := range options {
		opt(&optSet)
	}

	var c gtimer.RegistryConfig
	if cfg != nil {
		c = *cfg
	}

	var heap *sched.TimerHeap
	if c.TimerSystem == nil {
		heap = sched.NewTimerHeap(optSet.heapOptions...)
		c.TimerSystem = heap
	}

	r, err := gtimer.NewRegistry(&c, optSet.registryOptions...)
	if err != nil {
		if heap != nil {
			heap.Stop()
		}
		return nil, err
	}

	defaultRegistry = r
	ownedHeap = heap
	return r, nil
}

// Default 返回默认 Registry. 未 Setup 时返回 (nil, false).
func Default() (*gtimer.Registry, bool) {
	mtx.RLock()
	defer mtx.RUnlock()

	return defaultRegistry, defaultRegistry != nil
}

// Teardown 清空并卸载默认 Registry, 停止 Setup 创建的 TimerHeap.
// 未 Setup 时什么都不做.
// Teardown 会等待 TimerHeap 的投递 goroutine 退出, 因此不可在定时器回调中调用.
func Teardown() {
	mtx.Lock()
	r, heap := defaultRegistry, ownedHeap
	defaultRegistry, ownedHeap = nil, nil
	mtx.Unlock()

	if r != nil {
		r.Clear()
	}

	if heap != nil {
		heap.Stop()
	}
}
