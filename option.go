package gtimer

import "github.com/godyy/glog"

// Option Registry 选项.
type Option func(*Registry)

// WithLogger 日志工具选项.
func WithLogger(logger glog.Logger) Option {
	return func(r *Registry) {
		r.setLogger(logger)
	}
}
