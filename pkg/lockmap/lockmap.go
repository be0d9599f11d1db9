// Package lockmap provides a mutex per string key.
// Entries are reference counted and dropped once the last holder unlocks,
// so the map never grows with the number of distinct keys seen.
package lockmap

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Map is a set of keyed mutexes. The zero value is not usable; call New.
type Map struct {
	entries *xsync.MapOf[string, *entry]
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: xsync.NewMapOf[string, *entry]()}
}

// Lock blocks until key is held and returns the matching unlock func.
func (m *Map) Lock(key string) func() {
	e, _ := m.entries.Compute(key, func(old *entry, loaded bool) (*entry, bool) {
		if !loaded {
			old = &entry{}
		}
		old.refs++
		return old, false
	})

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.entries.Compute(key, func(old *entry, loaded bool) (*entry, bool) {
				if !loaded {
					return nil, true
				}
				old.refs--
				return old, old.refs == 0
			})
		})
	}
}

// Len returns the number of keys currently held or waited on.
func (m *Map) Len() int {
	return m.entries.Size()
}
