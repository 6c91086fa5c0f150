package utils

import (
	"sync"
	"time"
)

// DefaultOperationTimeout is used when Begin is called with a
// non-positive timeout.
const DefaultOperationTimeout = 300 * time.Second

type namedOperation struct {
	startedAt time.Time
	timer     *time.Timer
}

// OperationLock serializes privileged multi-step operations invoked
// across the process boundary. It is cooperative: holders are expected
// to call End, and the timeout only covers a crashed holder.
type OperationLock struct {
	mutex      sync.Mutex
	operations map[string]*namedOperation
}

func NewOperationLock() *OperationLock {
	return &OperationLock{
		operations: make(map[string]*namedOperation),
	}
}

// Begin registers the identifier and schedules automatic release after
// timeout. It returns false if the identifier is already held, in
// which case the caller must decline to proceed.
func (l *OperationLock) Begin(identifier string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, held := l.operations[identifier]; held {
		return false
	}

	op := &namedOperation{startedAt: time.Now()}
	op.timer = time.AfterFunc(timeout, func() {
		l.evict(identifier, op)
	})
	l.operations[identifier] = op
	return true
}

// evict releases an expired registration. The identity check guards
// against a timer that fired just as its registration was ended and
// the identifier re-registered: the stale timer must not release the
// fresh holder.
func (l *OperationLock) evict(identifier string, op *namedOperation) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if current, held := l.operations[identifier]; held && current == op {
		current.timer.Stop()
		delete(l.operations, identifier)
	}
}

// End removes the registration unconditionally.
func (l *OperationLock) End(identifier string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if op, held := l.operations[identifier]; held {
		op.timer.Stop()
		delete(l.operations, identifier)
	}
}

// Held reports whether the identifier is currently registered.
func (l *OperationLock) Held(identifier string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	_, held := l.operations[identifier]
	return held
}
