package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

type AuditRepository interface {
	EnsureSchema(ctx context.Context) error
	Record(ctx context.Context, entry *domain.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGAuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &PGAuditRepository{db: db}
}

// OpenDB opens a pgx pool and exposes it through database/sql. The
// returned func closes both.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	closeFn := func() {
		_ = db.Close()
		pool.Close()
	}
	if err := db.PingContext(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, closeFn, nil
}

const auditSchema = `CREATE TABLE IF NOT EXISTS console_audit (
	id          BIGSERIAL PRIMARY KEY,
	event_type  TEXT NOT NULL,
	resource    TEXT NOT NULL DEFAULT '',
	actor       TEXT NOT NULL,
	role        TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (r *PGAuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("create console_audit: %w", err)
	}
	return nil
}

func (r *PGAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	row := r.db.QueryRowContext(ctx, `INSERT INTO console_audit (event_type, resource, actor, role, message, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, recorded_at`,
		entry.EventType, entry.Resource, entry.Actor, entry.Role, entry.Message, entry.RequestID, entry.OccurredAt)
	if err := row.Scan(&entry.ID, &entry.RecordedAt); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *PGAuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, event_type, resource, actor, role, message, request_id, occurred_at, recorded_at
		FROM console_audit ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.Resource, &e.Actor, &e.Role, &e.Message, &e.RequestID, &e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PGAuditRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM console_audit WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return res.RowsAffected()
}
