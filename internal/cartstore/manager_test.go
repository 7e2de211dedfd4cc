package cartstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SameSessionSameStore(t *testing.T) {
	m := NewManager(newMockMirror())
	defer m.Close()

	a := m.Get(context.Background(), "s1")
	b := m.Get(context.Background(), "s1")
	assert.Same(t, a, b)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(newMockMirror())
	defer m.Close()

	a := m.Get(context.Background(), "s1")
	b := m.Get(context.Background(), "s2")
	require.NotSame(t, a, b)

	a.Add(book("b1", "Mine", "10.00"))
	assert.Len(t, a.Items(), 1)
	assert.Empty(t, b.Items())
}

func TestManager_ConcurrentGetLoadsOnce(t *testing.T) {
	m := NewManager(newMockMirror())
	defer m.Close()

	const workers = 16
	stores := make([]*Store, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			stores[i] = m.Get(context.Background(), "s1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, stores[0], stores[i])
	}
	assert.True(t, stores[0].Ready())
}
