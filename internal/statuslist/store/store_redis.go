package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"statusreg/internal/statuslist/models"
	id "statusreg/pkg/domain"
	"statusreg/pkg/platform/sentinel"
)

var (
	redisWatchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statusreg_redis_watch_retries_total",
		Help: "Number of optimistic lock retries on status list mutations",
	})
)

const (
	statusListKeyPrefix = "status_list:"
	purposeSetPrefix    = "status_list:purpose:"

	fieldPurpose   = "purpose"
	fieldSize      = "size"
	fieldList      = "list"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"

	defaultMaxRetries = 8
)

// RedisStore keeps each status list in a hash keyed by owner. Mutations run
// under WATCH so a concurrent writer on the same owner aborts and retries.
type RedisStore struct {
	client     *redis.Client
	maxRetries int
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithMaxRetries bounds the optimistic lock retries of Execute.
func WithMaxRetries(n int) RedisStoreOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// NewRedis constructs a Redis-backed status list store.
func NewRedis(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:     client,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func listKey(ownerID id.OwnerID) string {
	return statusListKeyPrefix + ownerID.String()
}

func purposeKey(p models.Purpose) string {
	return purposeSetPrefix + string(p)
}

func (s *RedisStore) Create(ctx context.Context, list *models.StatusList) error {
	if list == nil {
		return fmt.Errorf("status list is required")
	}
	key := listKey(list.OwnerID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return sentinel.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeStatusList(list))
			pipe.SAdd(ctx, purposeKey(list.Purpose), list.OwnerID.String())
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return err
		}
		if errors.Is(err, redis.TxFailedErr) {
			// another writer created the key between WATCH and EXEC
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create status list: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByOwner(ctx context.Context, ownerID id.OwnerID) (*models.StatusList, error) {
	fields, err := s.client.HGetAll(ctx, listKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("find status list: %w", err)
	}
	return decodeStatusList(ownerID, fields)
}

// Execute applies mutate under WATCH and retries when another writer touched
// the same list. Exhausted retries surface as sentinel.ErrUnavailable.
func (s *RedisStore) Execute(ctx context.Context, ownerID id.OwnerID, mutate func(*models.StatusList) error) (*models.StatusList, error) {
	key := listKey(ownerID)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var result *models.StatusList
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			fields, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			list, err := decodeStatusList(ownerID, fields)
			if err != nil {
				return err
			}
			if err := mutate(list); err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key,
					fieldList, list.List,
					fieldUpdatedAt, list.UpdatedAt.UTC().Format(time.RFC3339Nano),
				)
				return nil
			})
			if err != nil {
				return err
			}
			result = list
			return nil
		}, key)

		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			redisWatchRetries.Inc()
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("status list %s: retries exhausted: %w", ownerID, sentinel.ErrUnavailable)
}

func (s *RedisStore) Delete(ctx context.Context, ownerID id.OwnerID) error {
	list, err := s.FindByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, listKey(ownerID))
		pipe.SRem(ctx, purposeKey(list.Purpose), ownerID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete status list: %w", err)
	}
	return nil
}

func (s *RedisStore) CountByPurpose(ctx context.Context, purposes []models.Purpose) (map[models.Purpose]int, error) {
	counts := make(map[models.Purpose]int, len(purposes))
	cmds := make(map[models.Purpose]*redis.IntCmd, len(purposes))

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range purposes {
			cmds[p] = pipe.SCard(ctx, purposeKey(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count status lists: %w", err)
	}
	for p, cmd := range cmds {
		counts[p] = int(cmd.Val())
	}
	return counts, nil
}

func encodeStatusList(list *models.StatusList) map[string]any {
	return map[string]any{
		fieldPurpose:   string(list.Purpose),
		fieldSize:      strconv.FormatUint(uint64(list.Size), 10),
		fieldList:      list.List,
		fieldCreatedAt: list.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt: list.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeStatusList(ownerID id.OwnerID, fields map[string]string) (*models.StatusList, error) {
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	purpose, err := models.ParsePurpose(fields[fieldPurpose])
	if err != nil {
		return nil, fmt.Errorf("stored purpose: %w", err)
	}
	size, err := strconv.ParseUint(fields[fieldSize], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("stored size: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("stored created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("stored updated_at: %w", err)
	}
	return &models.StatusList{
		OwnerID:   ownerID,
		Purpose:   purpose,
		Size:      uint16(size),
		List:      []byte(fields[fieldList]),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
