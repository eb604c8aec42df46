package insight

import (
	"sync"
	"testing"
	"time"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	locks := newKeyLocks()

	var order []int
	var mu sync.Mutex
	record := func(n int) {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
	}

	unlock := locks.lock("a")

	done := make(chan struct{})
	go func() {
		defer close(done)
		u := locks.lock("a")
		record(2)
		u()
	}()

	time.Sleep(20 * time.Millisecond)
	record(1)
	unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second locker never ran")
	}

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("unexpected execution order %v", order)
	}
}

func TestKeyLockIndependentKeys(t *testing.T) {
	locks := newKeyLocks()

	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		defer close(done)
		u := locks.lock("b")
		u()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different key should not block")
	}
}

func TestKeyLockReclaimsIdleEntries(t *testing.T) {
	locks := newKeyLocks()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%3))
			for j := 0; j < 50; j++ {
				u := locks.lock(key)
				u()
			}
		}(i)
	}
	wg.Wait()

	if got := locks.size(); got != 0 {
		t.Errorf("expected all lock entries reclaimed, %d remain", got)
	}
}
