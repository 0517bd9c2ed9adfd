package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/kafka"
	"github.com/SivaTeja36/Bus-reservation/internal/repository"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
	kafkaGo "github.com/segmentio/kafka-go"
)

type AuditUseCase interface {
	HandleMessage(ctx context.Context, msg kafkaGo.Message) error
	Prune(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type AuditService struct {
	repo      repository.AuditRepository
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

type AuditServiceOption func(*AuditService)

func WithLogger(logger *slog.Logger) AuditServiceOption {
	return func(s *AuditService) {
		s.logger = logger
	}
}

func NewAuditService(repo repository.AuditRepository, retention time.Duration, opts ...AuditServiceOption) *AuditService {
	s := &AuditService{
		repo:      repo,
		retention: retention,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage records one console event. Malformed messages are logged
// and skipped so they do not block the partition; storage errors are
// returned and the message is redelivered.
func (s *AuditService) HandleMessage(ctx context.Context, msg kafkaGo.Message) error {
	event, err := kafka.DecodeEvent(msg)
	if err != nil {
		s.logger.Warn("skipping malformed event", "offset", msg.Offset, "partition", msg.Partition, "error", err)
		return nil
	}

	occurred := event.At
	if occurred.IsZero() {
		occurred = msg.Time
	}
	if occurred.IsZero() {
		occurred = s.now()
	}

	entry := &domain.AuditEntry{
		EventType:  event.Type,
		Resource:   event.Resource,
		Actor:      event.Actor,
		Role:       event.Role,
		Message:    event.Message,
		RequestID:  event.RequestID,
		OccurredAt: occurred.UTC(),
	}
	if err := s.repo.Record(ctx, entry); err != nil {
		return fmt.Errorf("record %s event: %w", event.Type, err)
	}
	s.logger.Debug("audit entry recorded", "id", entry.ID, "type", entry.EventType, "actor", entry.Actor)
	return nil
}

// Prune deletes entries older than the retention window.
func (s *AuditService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.repo.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return n, nil
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return s.repo.Recent(ctx, limit)
}

// Columns lays out audit entries for table.Text.
var Columns = []table.Column[domain.AuditEntry]{
	{Header: "When", Accessor: table.Derived(func(e domain.AuditEntry) string {
		return e.OccurredAt.UTC().Format(time.RFC3339)
	})},
	{Header: "Event", Accessor: table.Field[domain.AuditEntry]("EventType")},
	{Header: "Resource", Accessor: table.Field[domain.AuditEntry]("Resource")},
	{Header: "Actor", Accessor: table.Field[domain.AuditEntry]("Actor")},
	{Header: "Role", Accessor: table.Field[domain.AuditEntry]("Role")},
	{Header: "Request", Accessor: table.Field[domain.AuditEntry]("RequestID")},
}

var _ AuditUseCase = (*AuditService)(nil)
