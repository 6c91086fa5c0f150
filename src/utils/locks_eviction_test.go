package utils

import (
	"testing"
	"time"
)

func TestEvictIgnoresStaleRegistration(t *testing.T) {
	locks := NewOperationLock()

	if !locks.Begin("enroll-device", time.Hour) {
		t.Fatal("begin should succeed")
	}
	stale := locks.operations["enroll-device"]

	// The holder finishes and a new invocation starts just as the old
	// timer fires.
	locks.End("enroll-device")
	if !locks.Begin("enroll-device", time.Hour) {
		t.Fatal("re-begin should succeed after end")
	}

	locks.evict("enroll-device", stale)
	if !locks.Held("enroll-device") {
		t.Error("a stale timer must not release the fresh registration")
	}

	current := locks.operations["enroll-device"]
	locks.evict("enroll-device", current)
	if locks.Held("enroll-device") {
		t.Error("evicting the current registration must release it")
	}
}
