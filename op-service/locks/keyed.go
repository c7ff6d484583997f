package locks

import "sync"

// KeyedMutex hands out one mutex per key.
// Mutexes are created on first use and retained for the lifetime of the KeyedMutex.
type KeyedMutex[K comparable] struct {
	locks RWMap[K, *sync.Mutex]
}

// Lock blocks until the mutex of the given key is acquired, and returns the function to release it.
func (k *KeyedMutex[K]) Lock(key K) (unlock func()) {
	mu := k.locks.CreateIfMissing(key, func() *sync.Mutex { return new(sync.Mutex) })
	mu.Lock()
	var once sync.Once
	return func() {
		once.Do(mu.Unlock)
	}
}
