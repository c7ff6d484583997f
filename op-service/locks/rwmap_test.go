package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRWMap(t *testing.T) {
	var m RWMap[string, int64]

	v, ok := m.Get("alice")
	require.False(t, ok)
	require.Zero(t, v)
	require.Zero(t, m.Len())

	m.Set("alice", 42)
	v, ok = m.Get("alice")
	require.True(t, ok)
	require.Equal(t, int64(42), v)

	m.Set("alice", -42)
	v, _ = m.Get("alice")
	require.Equal(t, int64(-42), v, "overwritten")

	m.Set("bob", 100)
	require.Equal(t, 2, m.Len())
}

func TestRWMapCreateIfMissing(t *testing.T) {
	var m RWMap[string, int]
	calls := 0
	create := func() int {
		calls++
		return 7
	}
	require.Equal(t, 7, m.CreateIfMissing("a", create))
	require.Equal(t, 7, m.CreateIfMissing("a", func() int { return 8 }), "existing value is kept")
	require.Equal(t, 1, calls)
}

func TestRWMapConcurrentCreate(t *testing.T) {
	var m RWMap[int, *int]
	var wg sync.WaitGroup
	results := make([]*int, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = m.CreateIfMissing(1, func() *int { return new(int) })
		}()
	}
	wg.Wait()
	for _, r := range results {
		require.Same(t, results[0], r, "all callers observe the same value")
	}
	require.Equal(t, 1, m.Len())
}
