package insight

import "sync"

// keyLocks serializes work per string key. Entries are created lazily on
// first use and reclaimed once no goroutine holds or waits for them, so the
// map does not grow with the total number of keys ever seen.
type keyLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{entries: make(map[string]*lockEntry)}
}

// lock acquires the mutex for key, blocking while another holder has it.
// The returned function releases the mutex and drops the entry when it was
// the last reference.
func (k *keyLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// size reports how many keys currently have live entries.
func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
