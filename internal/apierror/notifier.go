package apierror

import "sync"

// Observer receives every normalized UNAUTHORIZED failure.
type Observer func(*Error)

type subscription struct {
	id uint64
	fn Observer
}

// Notifier keeps the observers interested in authentication failures.
// The zero value is ready to use.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// Subscribe registers fn and returns a function removing it again. Calling
// the returned function more than once is harmless.
func (n *Notifier) Subscribe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i, s := range n.subs {
				if s.id == id {
					n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Normalize maps err like the package-level Normalize and, when the result is
// UNAUTHORIZED, invokes each current observer once in subscription order.
func (n *Notifier) Normalize(err error) *Error {
	normalized := Normalize(err)
	if normalized != nil && normalized.Code == CodeUnauthorized {
		n.notify(normalized)
	}
	return normalized
}

func (n *Notifier) notify(e *Error) {
	n.mu.Lock()
	subs := append([]subscription(nil), n.subs...)
	n.mu.Unlock()

	// Observers run outside the lock so they may unsubscribe themselves.
	for _, s := range subs {
		s.fn(e)
	}
}
