package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"statusreg/internal/statuslist/models"
	"statusreg/internal/statuslist/store"
	"statusreg/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	storeContractSuite
	memory *store.InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &InMemoryStoreSuite{storeContractSuite: storeContractSuite{concurrency: 256}})
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.memory = store.New()
	s.store = s.memory
}

func (s *InMemoryStoreSuite) TestReturnedListsDoNotAliasStoredState() {
	ctx := context.Background()
	list := newList(models.PurposeSuspension, 2)
	s.Require().NoError(s.memory.Create(ctx, list))

	list.List[0] = 0xFF
	found, err := s.memory.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	s.Equal([]byte{0, 0}, found.List)

	found.List[1] = 0xFF
	again, err := s.memory.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	s.Equal([]byte{0, 0}, again.List)
}

func (s *InMemoryStoreSuite) TestCountByPurposeReportsZeroes() {
	counts, err := s.memory.CountByPurpose(context.Background(), models.Purposes())
	s.Require().NoError(err)
	s.Equal(map[models.Purpose]int{
		models.PurposeRevocation: 0,
		models.PurposeSuspension: 0,
	}, counts)
}

func (s *InMemoryStoreSuite) TestDeleteDuringExecuteIsNotUndone() {
	ctx := context.Background()
	list := newList(models.PurposeSuspension, 1)
	s.Require().NoError(s.memory.Create(ctx, list))

	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Go(func() {
		_, err := s.memory.Execute(ctx, list.OwnerID, func(l *models.StatusList) error {
			close(entered)
			<-release
			return l.Toggle(0)
		})
		s.NoError(err)
	})

	<-entered
	deleted := make(chan error, 1)
	wg.Go(func() {
		deleted <- s.memory.Delete(ctx, list.OwnerID)
	})

	select {
	case <-deleted:
		s.Fail("delete finished while a mutation was in flight")
		close(release)
		wg.Wait()
		return
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	wg.Wait()

	s.NoError(<-deleted)
	_, err := s.memory.FindByOwner(ctx, list.OwnerID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
