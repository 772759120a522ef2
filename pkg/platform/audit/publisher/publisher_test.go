package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "statusreg/pkg/domain"
	audit "statusreg/pkg/platform/audit"
	"statusreg/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	ownerID := id.NewOwnerID()
	err := pub.Emit(context.Background(), audit.Event{
		OwnerID: ownerID,
		Action:  string(audit.EventStatusListCreated),
	})
	require.NoError(t, err)

	events, err := store.ListByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventStatusListCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	ownerID := id.NewOwnerID()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			OwnerID: ownerID,
			Action:  string(audit.EventEntryToggled),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFullDoesNotBlock(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	ownerID := id.NewOwnerID()
	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			_ = pub.Emit(context.Background(), audit.Event{
				OwnerID: ownerID,
				Action:  string(audit.EventEntryToggled),
			})
		})
	}
	wg.Wait()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	ownerID := id.NewOwnerID()
	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		OwnerID: ownerID,
		Action:  string(audit.EventEntryRead),
	}))
	after := time.Now()

	events, err := store.ListByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	ownerID := id.NewOwnerID()
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		OwnerID:   ownerID,
		Action:    string(audit.EventEntryToggled),
		Timestamp: customTime,
	}))

	events, err := store.ListByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_KeepsOwnersApart(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	first, second := id.NewOwnerID(), id.NewOwnerID()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{OwnerID: first, Action: string(audit.EventStatusListCreated)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{OwnerID: second, Action: string(audit.EventEntryToggled)}))

	events, err := store.ListByOwner(context.Background(), first)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventStatusListCreated), events[0].Action)
	assert.Len(t, store.ListAll(), 2)
}
