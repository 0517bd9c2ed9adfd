package api

import (
	"context"

	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
	"github.com/stretchr/testify/mock"
)

type MockResourceUseCase struct {
	mock.Mock
}

func (m *MockResourceUseCase) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Branch), args.Error(1)
}

func (m *MockResourceUseCase) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockResourceUseCase) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Bus), args.Error(1)
}

func (m *MockResourceUseCase) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockResourceUseCase) CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.MessageData, error) {
	return messageResult(m.Called(ctx, req))
}

func (m *MockResourceUseCase) CreateCompany(ctx context.Context, req domain.CompanyRequest) (*domain.MessageData, error) {
	return messageResult(m.Called(ctx, req))
}

func (m *MockResourceUseCase) CreateBus(ctx context.Context, req domain.BusRequest) (*domain.MessageData, error) {
	return messageResult(m.Called(ctx, req))
}

func (m *MockResourceUseCase) CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.MessageData, error) {
	return messageResult(m.Called(ctx, req))
}

func (m *MockResourceUseCase) CreateUser(ctx context.Context, req domain.UserCreationRequest) (*domain.MessageData, error) {
	return messageResult(m.Called(ctx, req))
}

func (m *MockResourceUseCase) Snapshot(ctx context.Context, r domain.Resource, wait bool) (cache.Snapshot, error) {
	args := m.Called(ctx, r, wait)
	return args.Get(0).(cache.Snapshot), args.Error(1)
}

func (m *MockResourceUseCase) Table(ctx context.Context, r domain.Resource) (table.Table, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(table.Table), args.Error(1)
}

func (m *MockResourceUseCase) Dashboard(ctx context.Context) (*resources.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resources.Stats), args.Error(1)
}

func messageResult(args mock.Arguments) (*domain.MessageData, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageData), args.Error(1)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Login(ctx context.Context, sessionID, email, password string) (*domain.User, error) {
	args := m.Called(ctx, sessionID, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUseCase) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// fakeSessions maps session IDs to signed-in users.
type fakeSessions map[string]*domain.User

func (f fakeSessions) CurrentUser(_ context.Context, id string) (*domain.User, error) {
	return f[id], nil
}
