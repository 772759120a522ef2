package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "statusreg/pkg/domain"
	audit "statusreg/pkg/platform/audit"
	txcontext "statusreg/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// caller's transaction when ctx carries one.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	var location sql.NullInt64
	if event.Location != nil {
		location = sql.NullInt64{Int64: int64(*event.Location), Valid: true}
	}
	var value sql.NullInt16
	if event.Value != nil {
		value = sql.NullInt16{Int16: int16(*event.Value), Valid: true}
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, owner_id, action, purpose, size,
			location, value, reason, request_id, client_ip, client
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		uuid.UUID(event.OwnerID),
		event.Action,
		event.Purpose,
		int32(event.Size),
		location,
		value,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.Client,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByOwner returns an owner's events, oldest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID id.OwnerID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, owner_id, action, purpose, size,
			   location, value, reason, request_id, client_ip, client
		FROM audit_events
		WHERE owner_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
			owner    uuid.UUID
			size     int32
			location sql.NullInt64
			value    sql.NullInt16
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&owner,
			&event.Action,
			&event.Purpose,
			&size,
			&location,
			&value,
			&event.Reason,
			&event.RequestID,
			&event.ClientIP,
			&event.Client,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.OwnerID = id.OwnerID(owner)
		event.Size = uint16(size)
		if location.Valid {
			loc := uint32(location.Int64)
			event.Location = &loc
		}
		if value.Valid {
			v := uint8(value.Int16)
			event.Value = &v
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

var (
	_ audit.Store  = (*Store)(nil)
	_ audit.Lister = (*Store)(nil)
)
