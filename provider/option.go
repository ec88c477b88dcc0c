package provider

import (
	"github.com/godyy/glog"
	"github.com/godyy/gtimer"
	"github.com/godyy/gtimer/sched"
)

// optionSet 选项集合.
type optionSet struct {
	registryOptions []gtimer.Option         // Registry 选项.
	heapOptions     []sched.TimerHeapOption // TimerHeap 选项.
}

// Option 选项.
type Option func(*optionSet)

// WithLogger 日志工具选项, 同时作用于 Registry 和 Setup 创建的 TimerHeap.
func WithLogger(logger glog.Logger) Option {
	return func(opts *optionSet) {
		opts.registryOptions = append(opts.registryOptions, gtimer.WithLogger(logger))
		opts.heapOptions = append(opts.heapOptions, sched.WithTimerHeapLogger(logger.Named("gtimer")))
	}
}

// WithRegistryOptions Registry 选项.
func WithRegistryOptions(options ...gtimer.Option) Option {
	return func(opts *optionSet) {
		opts.registryOptions = append(opts.registryOptions, options...)
	}
}

// WithTimerHeapOptions TimerHeap 选项.
func WithTimerHeapOptions(options ...sched.TimerHeapOption) Option {
	return func(opts *optionSet) {
		opts.heapOptions = append(opts.heapOptions, options...)
	}
}
