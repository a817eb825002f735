package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	rec := contact.Record{ID: "m-1", FirstName: "john", LastName: "doe"}

	require.NoError(t, s.Put(context.Background(), rec))

	got, ok := s.Get("m-1")
	assert.True(t, ok)
	assert.Equal(t, rec, got)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStore_ConcurrentPuts(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Put(context.Background(), contact.Record{ID: fmt.Sprintf("id-%d", i), FirstName: "a", LastName: "b"})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Put(ctx, contact.Record{ID: "x", FirstName: "a", LastName: "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())
}
