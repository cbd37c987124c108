package fixture

import (
	"errors"
	"sync"
)

// ErrNoFixture is returned by Execute when asked to run with a nil fixture.
var ErrNoFixture = errors.New("fixture: nil fixture")

// Context owns the reference to the current fixture and delivers posted events.
//
// The zero value is usable and has no current fixture. Context implements Supplier,
// so it is the usual value handed to the injection handler.
type Context struct {
	mu          sync.RWMutex
	current     Fixture
	subscribers []func(event any)
}

// NewContext returns a Context whose current fixture is initial (may be nil).
func NewContext(initial Fixture) *Context {
	return &Context{current: initial}
}

// Get returns the current fixture.
func (c *Context) Get() Fixture {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set replaces the current fixture.
func (c *Context) Set(f Fixture) {
	c.mu.Lock()
	c.current = f
	c.mu.Unlock()
}

// Execute makes f current while fn runs and restores the previous fixture afterwards,
// including when fn panics. It returns fn's error unchanged.
func (c *Context) Execute(f Fixture, fn func() error) error {
	if f == nil {
		return ErrNoFixture
	}
	if fn == nil {
		return nil
	}

	c.mu.Lock()
	previous := c.current
	c.current = f
	c.mu.Unlock()

	defer c.Set(previous)
	return fn()
}

// Subscribe registers fn to receive events passed to Post. Nil is ignored.
func (c *Context) Subscribe(fn func(event any)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Post delivers event synchronously to every subscriber in subscription order.
func (c *Context) Post(event any) {
	c.mu.RLock()
	subs := make([]func(any), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
