package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"statusreg/internal/statuslist/models"
	id "statusreg/pkg/domain"
	"statusreg/pkg/platform/sentinel"
	"statusreg/pkg/platform/tx"
)

// PostgresStore persists status lists in PostgreSQL, one row per owner.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed status list store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer joins the caller's transaction when one is carried in ctx.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, list *models.StatusList) error {
	if list == nil {
		return fmt.Errorf("status list is required")
	}
	query := `
		INSERT INTO status_lists (owner_id, purpose, size, list, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id) DO NOTHING
		RETURNING owner_id
	`
	var storedID uuid.UUID
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(list.OwnerID),
		string(list.Purpose),
		int32(list.Size),
		list.List,
		list.CreatedAt,
		list.UpdatedAt,
	).Scan(&storedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create status list: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOwner(ctx context.Context, ownerID id.OwnerID) (*models.StatusList, error) {
	query := `
		SELECT owner_id, purpose, size, list, created_at, updated_at
		FROM status_lists
		WHERE owner_id = $1
	`
	list, err := scanStatusList(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(ownerID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find status list: %w", err)
	}
	return list, nil
}

// Execute locks the owner's row, applies mutate and writes the buffer back in
// the same transaction. A mutate error rolls the transaction back.
func (s *PostgresStore) Execute(ctx context.Context, ownerID id.OwnerID, mutate func(*models.StatusList) error) (*models.StatusList, error) {
	var result *models.StatusList
	err := tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		query := `
			SELECT owner_id, purpose, size, list, created_at, updated_at
			FROM status_lists
			WHERE owner_id = $1
			FOR UPDATE
		`
		list, err := scanStatusList(sqlTx.QueryRowContext(ctx, query, uuid.UUID(ownerID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock status list: %w", err)
		}

		if err := mutate(list); err != nil {
			return err
		}

		res, err := sqlTx.ExecContext(ctx, `
			UPDATE status_lists
			SET list = $2, updated_at = $3
			WHERE owner_id = $1
		`, uuid.UUID(ownerID), list.List, list.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update status list: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update status list rows: %w", err)
		}
		if rows == 0 {
			return sentinel.ErrNotFound
		}
		result = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID id.OwnerID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM status_lists WHERE owner_id = $1`, uuid.UUID(ownerID))
	if err != nil {
		return fmt.Errorf("delete status list: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete status list rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByPurpose(ctx context.Context, purposes []models.Purpose) (map[models.Purpose]int, error) {
	counts := make(map[models.Purpose]int, len(purposes))
	names := make([]string, 0, len(purposes))
	for _, p := range purposes {
		counts[p] = 0
		names = append(names, string(p))
	}
	if len(names) == 0 {
		return counts, nil
	}

	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT purpose, COUNT(*)
		FROM status_lists
		WHERE purpose = ANY($1::text[])
		GROUP BY purpose
	`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("count status lists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var purpose string
		var count int
		if err := rows.Scan(&purpose, &count); err != nil {
			return nil, fmt.Errorf("scan status list count: %w", err)
		}
		counts[models.Purpose(purpose)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status list counts: %w", err)
	}
	return counts, nil
}

type statusListRow interface {
	Scan(dest ...any) error
}

func scanStatusList(row statusListRow) (*models.StatusList, error) {
	var list models.StatusList
	var ownerID uuid.UUID
	var purpose string
	var size int32
	if err := row.Scan(&ownerID, &purpose, &size, &list.List, &list.CreatedAt, &list.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := models.ParsePurpose(purpose)
	if err != nil {
		return nil, fmt.Errorf("stored purpose: %w", err)
	}
	list.OwnerID = id.OwnerID(ownerID)
	list.Purpose = parsed
	list.Size = uint16(size)
	return &list, nil
}
