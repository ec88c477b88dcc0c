package sched

import (
	"github.com/godyy/glog"
	"go.uber.org/zap"
)

// createStdLogger 创建面向标准输出的 logger.
func createStdLogger(level glog.Level) glog.Logger {
	return glog.NewLogger(&glog.Config{
		Level:        level,
		EnableCaller: true,
		CallerSkip:   0,
		Development:  true,
		Cores:        []glog.CoreConfig{glog.NewStdCoreConfig()},
	}).Named("sched")
}

func lfdTimerId(tid TimerId) zap.Field {
	return zap.Uint64("timerId", tid)
}

func lfdPanic(v any) zap.Field {
	return zap.Any("panic", v)
}
