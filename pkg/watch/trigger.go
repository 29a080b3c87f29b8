package watch

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Trigger turns change events on the content and sidecar globs into a single
// changed signal. It holds no state besides its subscriptions.
type Trigger struct {
	signal *Signal
	logger logrus.FieldLogger

	mu       sync.Mutex
	subs     []Subscription
	disposed bool
}

// NewTrigger subscribes to every glob on sub. If any subscription fails, the
// ones already made are closed and the error is returned.
func NewTrigger(sub Subscriber, logger logrus.FieldLogger, globs ...string) (*Trigger, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	t := &Trigger{signal: NewSignal(), logger: logger}

	for _, glob := range globs {
		s, err := sub.Subscribe(glob, func(evt Event) {
			t.logger.WithFields(logrus.Fields{
				"op":   evt.Op.String(),
				"path": evt.Path,
				"glob": glob,
			}).Debug("change observed")
			t.signal.Fire()
		})
		if err != nil {
			t.Dispose()
			return nil, fmt.Errorf("subscribe %q: %w", glob, err)
		}
		t.subs = append(t.subs, s)
	}
	return t, nil
}

// OnChanged registers fn to run on every invalidation.
func (t *Trigger) OnChanged(fn func()) Subscription {
	return t.signal.On(fn)
}

// Refresh fires the changed signal without a filesystem event.
func (t *Trigger) Refresh() {
	t.signal.Fire()
}

// Dispose detaches both feeds and releases the signal. Safe to call twice.
func (t *Trigger) Dispose() error {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return nil
	}
	t.disposed = true
	subs := t.subs
	t.subs = nil
	t.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.signal.Close()
	return errors.Join(errs...)
}
