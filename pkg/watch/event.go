// Package watch relays filesystem changes as a payload-free "changed" signal.
//
// A Subscriber delivers create/delete/change events for paths matching a
// glob. A Trigger subscribes to the markdown and sidecar globs and fires its
// Signal once per observed event; consumers respond by rebuilding the tree
// from scratch.
package watch

import "sync"

// Op is the kind of change observed on a path.
type Op int

const (
	Create Op = iota + 1
	Delete
	Change
)

func (o Op) String() string {
	switch o {
	case Create:
		return "create"
	case Delete:
		return "delete"
	case Change:
		return "change"
	default:
		return "unknown"
	}
}

// Event describes a change to a single path. Path is slash-separated and
// relative to the watched root.
type Event struct {
	Op   Op
	Path string
}

// Subscription detaches a listener when closed. Close is idempotent.
type Subscription interface {
	Close() error
}

// Subscriber delivers events for paths matching a doublestar glob.
type Subscriber interface {
	Subscribe(glob string, fn func(Event)) (Subscription, error)
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func() error

func (f SubscriptionFunc) Close() error { return f() }

// onceSubscription runs its close function at most once.
func onceSubscription(fn func()) Subscription {
	var once sync.Once
	return SubscriptionFunc(func() error {
		once.Do(fn)
		return nil
	})
}

// Nop is a Subscriber that never delivers events. It suits one-shot builds
// where nothing listens for invalidation.
var Nop Subscriber = nopSubscriber{}

type nopSubscriber struct{}

func (nopSubscriber) Subscribe(string, func(Event)) (Subscription, error) {
	return onceSubscription(func() {}), nil
}
