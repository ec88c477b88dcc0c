package provider

import (
	"sync"

	"github.com/godyy/gtimer"
)

// Locator 定位默认 Registry.
type Locator interface {
	// Locate 返回默认 Registry, 不存在时返回 (nil, false).
	Locate() (*gtimer.Registry, bool)
}

// LocatorFunc 函数形式的 Locator.
type LocatorFunc func() (*gtimer.Registry, bool)

// Locate 实现 Locator.
func (f LocatorFunc) Locate() (*gtimer.Registry, bool) { return f() }

// DefaultLocator 通过 Default 定位.
var DefaultLocator Locator = LocatorFunc(Default)

// Aware 可嵌入的 Registry 持有者.
// 优先使用 SetRegistry 显式注入的 Registry, 未注入时在首次访问时通过
// Locator 获取并缓存.
type Aware struct {
	mtx      sync.Mutex
	registry *gtimer.Registry
	locator  Locator
}

// SetRegistry 设置 Registry, nil 表示清除.
func (a *Aware) SetRegistry(r *gtimer.Registry) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.registry = r
}

// SetLocator 设置 Locator, nil 表示使用 DefaultLocator.
func (a *Aware) SetLocator(l Locator) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.locator = l
}

// HasRegistry 是否已设置 Registry.
func (a *Aware) HasRegistry() bool {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.registry != nil
}

// Registry 返回 Registry. 未设置时通过 Locator 获取, 仍不存在时返回 nil.
func (a *Aware) Registry() *gtimer.Registry {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.registry == nil {
		l := a.locator
		if l == nil {
			l = DefaultLocator
		}
		if r, ok := l.Locate(); ok {
			a.registry = r
		}
	}
	return a.registry
}
