package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (AuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditRepository(db), mock
}

func TestAuditRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS console_audit").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_Record(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recorded := at.Add(time.Second)

	mock.ExpectQuery("INSERT INTO console_audit").
		WithArgs("resource_created", "buses", "a@b.com", "Super Admin", "Bus created successfully", "req-1", at).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recorded_at"}).AddRow(42, recorded))

	entry := &domain.AuditEntry{
		EventType:  "resource_created",
		Resource:   "buses",
		Actor:      "a@b.com",
		Role:       "Super Admin",
		Message:    "Bus created successfully",
		RequestID:  "req-1",
		OccurredAt: at,
	}
	require.NoError(t, repo.Record(context.Background(), entry))
	assert.Equal(t, int64(42), entry.ID)
	assert.True(t, recorded.Equal(entry.RecordedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_RecordError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO console_audit").WillReturnError(errors.New("conn reset"))

	err := repo.Record(context.Background(), &domain.AuditEntry{EventType: "login"})
	assert.ErrorContains(t, err, "insert audit entry")
}

func TestAuditRepository_Recent(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM console_audit ORDER BY").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "resource", "actor", "role", "message", "request_id", "occurred_at", "recorded_at"}).
			AddRow(2, "logout", "", "a@b.com", "Admin", "", "req-2", at, at).
			AddRow(1, "login", "", "a@b.com", "Admin", "", "req-1", at, at))

	entries, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "logout", entries[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_PruneBefore(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM console_audit WHERE occurred_at <").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.PruneBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
