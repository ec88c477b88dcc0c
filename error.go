package gtimer

import "errors"

// ErrEmptyId 定时器ID为空.
var ErrEmptyId = errors.New("timer id empty")

// ErrInvalidDelay 延迟时间非法.
var ErrInvalidDelay = errors.New("timer delay must >= 0")

// ErrInvalidLimit 次数上限非法.
var ErrInvalidLimit = errors.New("timer limit must >= 0")

// ErrNilTimerSystem 未指定定时器系统.
var ErrNilTimerSystem = errors.New("timer system nil")

// ErrNilTimer 定时器为空.
var ErrNilTimer = errors.New("timer nil")

// ErrTimerOwned 定时器已属于其它 Registry.
var ErrTimerOwned = errors.New("timer owned by another registry")

// ErrScheduleFailed 定时器系统无法分配定时器.
var ErrScheduleFailed = errors.New("schedule timer failed")
