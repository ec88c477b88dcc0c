// Package sched 提供定时器投递机制.
//
// TimerSystem 是 gtimer 的"平台定时器": 负责在延迟到达后投递回调. 同一个
// TimerSystem 上的所有回调都在单个逻辑线程中顺序执行, 不会相互重叠.
//
// 提供两种实现:
//   - TimerHeap: 基于最小堆和真实时钟, 由后台 goroutine 投递.
//   - Manual: 虚拟时钟, 由调用方通过 Advance 推进并在调用方 goroutine 中投递.
package sched

import "time"

//go:generate mockgen -destination=../internal/schedmock/mock_timer_system.go -package=schedmock github.com/godyy/gtimer/sched TimerSystem

// TimerSystem 定时器系统.
type TimerSystem interface {
	// StartTimer 启动定时器.
	// 返回 TimerIdNone 表示无法分配定时器 (例如定时器系统已停止).
	StartTimer(delay time.Duration, periodic bool, args any, f TimerFunc) TimerId

	// StopTimer 停止定时器. 定时器不存在时什么都不做.
	StopTimer(tid TimerId)
}

// TimerId 定时器ID.
type TimerId = uint64

// TimerIdNone 定时器ID为0.
const TimerIdNone = 0

// TimerArgs 定时器参数.
type TimerArgs struct {
	TID  TimerId // 定时器ID.
	Args any     // 参数.
}

// TimerFunc 定时器回调函数.
type TimerFunc func(*TimerArgs)
