package resources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/kafka"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
)

// ErrNotListable is returned for resources without a list endpoint.
var ErrNotListable = errors.New("resource has no list view")

type ResourceUseCase interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	ListBuses(ctx context.Context) ([]domain.Bus, error)
	ListTickets(ctx context.Context) ([]domain.Ticket, error)

	CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.MessageData, error)
	CreateCompany(ctx context.Context, req domain.CompanyRequest) (*domain.MessageData, error)
	CreateBus(ctx context.Context, req domain.BusRequest) (*domain.MessageData, error)
	CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.MessageData, error)
	CreateUser(ctx context.Context, req domain.UserCreationRequest) (*domain.MessageData, error)

	Snapshot(ctx context.Context, r domain.Resource, wait bool) (cache.Snapshot, error)
	Table(ctx context.Context, r domain.Resource) (table.Table, error)
	Dashboard(ctx context.Context) (*Stats, error)
}

// API is the upstream gateway, satisfied by *apiclient.Client.
type API interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.MessageData, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CreateCompany(ctx context.Context, req domain.CompanyRequest) (*domain.MessageData, error)
	ListBuses(ctx context.Context) ([]domain.Bus, error)
	CreateBus(ctx context.Context, req domain.BusRequest) (*domain.MessageData, error)
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.MessageData, error)
	CreateUser(ctx context.Context, req domain.UserCreationRequest) (*domain.MessageData, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ResourceService struct {
	api         API
	cache       *cache.Cache
	producer    Producer
	eventsTopic string
	logger      *slog.Logger
	now         func() time.Time
}

type ResourceServiceOption func(*ResourceService)

// WithEvents publishes a console event to topic after every successful
// create.
func WithEvents(producer Producer, topic string) ResourceServiceOption {
	return func(s *ResourceService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithLogger(logger *slog.Logger) ResourceServiceOption {
	return func(s *ResourceService) {
		s.logger = logger
	}
}

func NewResourceService(api API, c *cache.Cache, opts ...ResourceServiceOption) *ResourceService {
	s := &ResourceService{
		api:    api,
		cache:  c,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key is the cache key of r for the session bound to ctx.
func Key(ctx context.Context, r domain.Resource) string {
	return cache.Key(session.IDFromContext(ctx), string(r))
}

func (s *ResourceService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return cache.Get(ctx, s.cache, Key(ctx, domain.ResourceBranches), s.api.ListBranches)
}

func (s *ResourceService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	return cache.Get(ctx, s.cache, Key(ctx, domain.ResourceCompanies), s.api.ListCompanies)
}

func (s *ResourceService) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	return cache.Get(ctx, s.cache, Key(ctx, domain.ResourceBuses), s.api.ListBuses)
}

func (s *ResourceService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return cache.Get(ctx, s.cache, Key(ctx, domain.ResourceTickets), s.api.ListTickets)
}

func (s *ResourceService) CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.MessageData, error) {
	return create(ctx, s, domain.ResourceBranches, req, s.api.CreateBranch)
}

func (s *ResourceService) CreateCompany(ctx context.Context, req domain.CompanyRequest) (*domain.MessageData, error) {
	return create(ctx, s, domain.ResourceCompanies, req, s.api.CreateCompany)
}

func (s *ResourceService) CreateBus(ctx context.Context, req domain.BusRequest) (*domain.MessageData, error) {
	return create(ctx, s, domain.ResourceBuses, req, s.api.CreateBus)
}

func (s *ResourceService) CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.MessageData, error) {
	return create(ctx, s, domain.ResourceTickets, req, s.api.CreateTicket)
}

func (s *ResourceService) CreateUser(ctx context.Context, req domain.UserCreationRequest) (*domain.MessageData, error) {
	return create(ctx, s, domain.ResourceUsers, req, s.api.CreateUser)
}

// create posts req and, only on success, invalidates the resource's cache
// entry and publishes a console event.
func create[Req any](ctx context.Context, s *ResourceService, r domain.Resource, req Req,
	post func(context.Context, Req) (*domain.MessageData, error)) (*domain.MessageData, error) {
	log := logging.FromContext(ctx, s.logger).With("resource", string(r))

	msg, err := post(ctx, req)
	if err != nil {
		log.Warn("create failed", "error", err)
		var reqErr domain.RequestError
		if errors.As(err, &reqErr) {
			return nil, err
		}
		return nil, domain.RequestError{Resource: r, Action: domain.ActionCreate, Err: err}
	}

	s.cache.Invalidate(Key(ctx, r))
	log.Info("resource created")

	message := r.CreatedMessage()
	if msg != nil && msg.Message != "" {
		message = msg.Message
	}
	s.publish(ctx, kafka.EventResourceCreated, r, message)
	return msg, nil
}

func (s *ResourceService) publish(ctx context.Context, eventType string, r domain.Resource, message string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.ConsoleEvent{
		Type:      eventType,
		Resource:  string(r),
		Message:   message,
		RequestID: logging.RequestIDFromContext(ctx),
		At:        s.now().UTC(),
	}
	if u := session.UserFromContext(ctx); u != nil {
		event.Actor = u.Email
		event.Role = string(u.Role)
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, event.Actor, event); err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to publish console event", "type", eventType, "error", err)
	}
}

// fetcher returns the untyped upstream read for r, storing the same
// typed slice the List methods do.
func (s *ResourceService) fetcher(r domain.Resource) (cache.Fetcher, error) {
	switch r {
	case domain.ResourceBranches:
		return untyped(s.api.ListBranches), nil
	case domain.ResourceCompanies:
		return untyped(s.api.ListCompanies), nil
	case domain.ResourceBuses:
		return untyped(s.api.ListBuses), nil
	case domain.ResourceTickets:
		return untyped(s.api.ListTickets), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotListable, r)
	}
}

func untyped[T any](fetch func(context.Context) (T, error)) cache.Fetcher {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

// Snapshot reports the cached state of r. With wait it blocks until the
// list is loaded; without it a fetch is started in the background and the
// current state is returned at once.
func (s *ResourceService) Snapshot(ctx context.Context, r domain.Resource, wait bool) (cache.Snapshot, error) {
	fetch, err := s.fetcher(r)
	if err != nil {
		return cache.Snapshot{}, err
	}
	key := Key(ctx, r)
	if !wait {
		return s.cache.Prefetch(ctx, key, fetch), nil
	}
	if _, err := s.cache.Read(ctx, key, fetch); err != nil {
		return cache.Snapshot{State: cache.StateFailed, Err: err}, nil
	}
	return s.cache.Peek(key), nil
}

var _ ResourceUseCase = (*ResourceService)(nil)
