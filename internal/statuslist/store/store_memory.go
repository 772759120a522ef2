package store

import (
	"context"
	"sync"

	"statusreg/internal/statuslist/models"
	id "statusreg/pkg/domain"
	"statusreg/pkg/platform/sentinel"
	psync "statusreg/pkg/platform/sync"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when no list exists for the owner
// - Return sentinel.ErrConflict when creating a list for an owner that has one
// - Return errors from the Execute callback unchanged, with nothing persisted
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps status lists in a map keyed by owner. Mutations of one
// owner are serialized through a sharded mutex; the map itself is guarded by
// an RWMutex held only for the copy in or out.
type InMemoryStore struct {
	mu     sync.RWMutex
	lists  map[id.OwnerID]*models.StatusList
	owners *psync.ShardedMutex
}

// New constructs an empty in-memory status list store.
func New() *InMemoryStore {
	return &InMemoryStore{
		lists:  make(map[id.OwnerID]*models.StatusList),
		owners: psync.NewShardedMutex(),
	}
}

func (s *InMemoryStore) Create(_ context.Context, list *models.StatusList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[list.OwnerID]; ok {
		return sentinel.ErrConflict
	}
	s.lists[list.OwnerID] = list.Clone()
	return nil
}

func (s *InMemoryStore) FindByOwner(_ context.Context, ownerID id.OwnerID) (*models.StatusList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[ownerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return list.Clone(), nil
}

// Execute runs mutate on a copy of the owner's list and stores the copy only
// when mutate succeeds.
func (s *InMemoryStore) Execute(ctx context.Context, ownerID id.OwnerID, mutate func(*models.StatusList) error) (*models.StatusList, error) {
	key := ownerID.String()
	s.owners.Lock(key)
	defer s.owners.Unlock(key)

	working, err := s.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := mutate(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lists[ownerID] = working.Clone()
	s.mu.Unlock()
	return working, nil
}

// Delete waits for any in-flight Execute on the owner so a mutation cannot
// write the list back after it is gone.
func (s *InMemoryStore) Delete(_ context.Context, ownerID id.OwnerID) error {
	key := ownerID.String()
	s.owners.Lock(key)
	defer s.owners.Unlock(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[ownerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.lists, ownerID)
	return nil
}

// CountByPurpose returns the number of lists per purpose; purposes without
// lists are reported as zero.
func (s *InMemoryStore) CountByPurpose(_ context.Context, purposes []models.Purpose) (map[models.Purpose]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Purpose]int, len(purposes))
	for _, p := range purposes {
		counts[p] = 0
	}
	for _, list := range s.lists {
		if _, ok := counts[list.Purpose]; ok {
			counts[list.Purpose]++
		}
	}
	return counts, nil
}
