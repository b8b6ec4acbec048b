package agent

import (
	"sync"

	"stocksense/pkg/logger"
)

// Subscriber receives dispatched actions synchronously
type Subscriber func(Action)

type subscription struct {
	id uint64
	fn Subscriber
}

// Dispatcher fans actions out to subscribers in registration order.
// Delivery is synchronous on the dispatching goroutine; a panicking
// subscriber is recovered and logged and the remaining subscribers
// still receive the action.
type Dispatcher struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64
	log    *logger.Logger
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		log: logger.Get().With("component", "dispatcher"),
	}
}

// Subscribe registers a subscriber and returns its disposer. The same
// function may be registered more than once; each registration is
// delivered and disposed independently.
func (d *Dispatcher) Subscribe(fn Subscriber) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, fn: fn})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers an action to every current subscriber
func (d *Dispatcher) Dispatch(action Action) {
	d.mu.Lock()
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, s := range subs {
		d.deliver(s, action)
	}
}

func (d *Dispatcher) deliver(s subscription, action Action) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("subscriber panicked",
				"subscription", s.id,
				"action_kind", action.Kind,
				"panic", r,
			)
		}
	}()
	s.fn(action)
}

// Len returns the number of active subscriptions
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}
