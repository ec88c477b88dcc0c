package gtimer

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
	}).Named("gtimer")
}

func lfdError(err error) zap.Field {
	return zap.NamedError("error", err)
}

func lfdTimerId(id string) zap.Field {
	return zap.String("timerId", id)
}

func lfdTimerKind(kind string) zap.Field {
	return zap.String("timerKind", kind)
}

func lfdStart(start bool) zap.Field {
	return zap.Bool("start", start)
}

func lfdCount(n int) zap.Field {
	return zap.Int("count", n)
}
