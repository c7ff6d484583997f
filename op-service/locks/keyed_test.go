package locks

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var k KeyedMutex[string]
	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("alice")
			defer unlock()
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), maxActive.Load())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	var k KeyedMutex[string]
	unlockA := k.Lock("alice")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("bob")
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyedMutexUnlockTwice(t *testing.T) {
	var k KeyedMutex[string]
	unlock := k.Lock("alice")
	unlock()
	require.NotPanics(t, unlock)
	unlock = k.Lock("alice")
	unlock()
}
