package store_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/suite"

	"statusreg/internal/statuslist/models"
	id "statusreg/pkg/domain"
	"statusreg/pkg/platform/sentinel"
)

type statusListStore interface {
	Create(ctx context.Context, list *models.StatusList) error
	FindByOwner(ctx context.Context, ownerID id.OwnerID) (*models.StatusList, error)
	Execute(ctx context.Context, ownerID id.OwnerID, mutate func(*models.StatusList) error) (*models.StatusList, error)
	Delete(ctx context.Context, ownerID id.OwnerID) error
	CountByPurpose(ctx context.Context, purposes []models.Purpose) (map[models.Purpose]int, error)
}

// storeContractSuite holds the behaviour every backend shares. Backend
// suites embed it and assign store in SetupTest.
type storeContractSuite struct {
	suite.Suite
	store statusListStore
	// concurrency is the number of writers racing on one owner.
	concurrency int
}

var equateStoredTime = cmpopts.EquateApproxTime(time.Millisecond)

func newList(purpose models.Purpose, size uint16) *models.StatusList {
	list, err := models.New(size, purpose)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	list.OwnerID = id.NewOwnerID()
	list.CreatedAt = now
	list.UpdatedAt = now
	return list
}

func toggle(location uint32) func(*models.StatusList) error {
	return func(l *models.StatusList) error {
		if err := l.Toggle(location); err != nil {
			return err
		}
		l.UpdatedAt = time.Now().UTC()
		return nil
	}
}

func (s *storeContractSuite) TestCreateAndFind() {
	ctx := context.Background()
	list := newList(models.PurposeSuspension, 8)

	s.Require().NoError(s.store.Create(ctx, list))

	found, err := s.store.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	if diff := cmp.Diff(list, found, equateStoredTime); diff != "" {
		s.Failf("stored list mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *storeContractSuite) TestCreateTwiceConflicts() {
	ctx := context.Background()
	list := newList(models.PurposeRevocation, 4)
	s.Require().NoError(s.store.Create(ctx, list))

	again := newList(models.PurposeSuspension, 16)
	again.OwnerID = list.OwnerID
	s.ErrorIs(s.store.Create(ctx, again), sentinel.ErrConflict)

	found, err := s.store.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	s.Equal(models.PurposeRevocation, found.Purpose)
	s.Equal(uint16(4), found.Size)
}

func (s *storeContractSuite) TestFindMissing() {
	_, err := s.store.FindByOwner(context.Background(), id.NewOwnerID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestExecutePersistsMutation() {
	ctx := context.Background()
	list := newList(models.PurposeSuspension, 8)
	s.Require().NoError(s.store.Create(ctx, list))

	updated, err := s.store.Execute(ctx, list.OwnerID, toggle(0))
	s.Require().NoError(err)
	s.Equal(byte(1), updated.List[0])

	_, err = s.store.Execute(ctx, list.OwnerID, toggle(50))
	s.Require().NoError(err)

	found, err := s.store.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	want := []byte{0b00000001, 0, 0, 0, 0, 0, 0b00000100, 0}
	if diff := cmp.Diff(want, found.List); diff != "" {
		s.Failf("buffer mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *storeContractSuite) TestExecuteErrorPersistsNothing() {
	ctx := context.Background()
	list := newList(models.PurposeSuspension, 2)
	s.Require().NoError(s.store.Create(ctx, list))

	_, err := s.store.Execute(ctx, list.OwnerID, func(l *models.StatusList) error {
		l.List[0] = 0xFF
		return models.ErrOutOfBounds
	})
	s.ErrorIs(err, models.ErrOutOfBounds)

	found, err := s.store.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	s.Equal([]byte{0, 0}, found.List)
}

func (s *storeContractSuite) TestExecuteMissing() {
	called := false
	_, err := s.store.Execute(context.Background(), id.NewOwnerID(), func(*models.StatusList) error {
		called = true
		return nil
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.False(called)
}

func (s *storeContractSuite) TestDelete() {
	ctx := context.Background()
	list := newList(models.PurposeRevocation, 1)
	s.Require().NoError(s.store.Create(ctx, list))

	s.Require().NoError(s.store.Delete(ctx, list.OwnerID))
	_, err := s.store.FindByOwner(ctx, list.OwnerID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, list.OwnerID), sentinel.ErrNotFound)

	// the owner may create a fresh list once the old one is gone
	s.NoError(s.store.Create(ctx, newListFor(list.OwnerID)))
}

func newListFor(ownerID id.OwnerID) *models.StatusList {
	list := newList(models.PurposeSuspension, 8)
	list.OwnerID = ownerID
	return list
}

func (s *storeContractSuite) TestCountByPurpose() {
	ctx := context.Background()
	for range 3 {
		s.Require().NoError(s.store.Create(ctx, newList(models.PurposeRevocation, 8)))
	}
	s.Require().NoError(s.store.Create(ctx, newList(models.PurposeSuspension, 8)))

	counts, err := s.store.CountByPurpose(ctx, models.Purposes())
	s.Require().NoError(err)
	s.Equal(map[models.Purpose]int{
		models.PurposeRevocation: 3,
		models.PurposeSuspension: 1,
	}, counts)
}

func (s *storeContractSuite) TestConcurrentTogglesAreSerialized() {
	ctx := context.Background()
	writers := s.concurrency
	if writers == 0 {
		writers = 32
	}
	// one location per writer
	list := newList(models.PurposeSuspension, uint16((writers+7)/8))
	s.Require().NoError(s.store.Create(ctx, list))
	s.Require().GreaterOrEqual(int(list.Capacity()), writers)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		location := uint32(i)
		wg.Go(func() {
			if _, err := s.store.Execute(ctx, list.OwnerID, toggle(location)); err != nil {
				errs <- err
			}
		})
	}
	wg.Wait()
	close(errs)

	var failed []error
	for err := range errs {
		failed = append(failed, err)
	}
	s.Require().NoError(errors.Join(failed...))

	found, err := s.store.FindByOwner(ctx, list.OwnerID)
	s.Require().NoError(err)
	for i := range writers {
		set, err := found.Get(uint32(i))
		s.Require().NoError(err)
		s.True(set, "location %d lost its toggle", i)
	}
}
