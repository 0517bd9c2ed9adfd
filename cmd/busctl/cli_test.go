package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SivaTeja36/Bus-reservation/internal/cache"
	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Login(ctx context.Context, sessionID, email, password string) (*domain.User, error) {
	args := m.Called(ctx, sessionID, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuth) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockResources struct {
	mock.Mock
}

func (m *MockResources) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Branch), args.Error(1)
}

func (m *MockResources) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockResources) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Bus), args.Error(1)
}

func (m *MockResources) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockResources) CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.MessageData, error) {
	return created(m.Called(ctx, req))
}

func (m *MockResources) CreateCompany(ctx context.Context, req domain.CompanyRequest) (*domain.MessageData, error) {
	return created(m.Called(ctx, req))
}

func (m *MockResources) CreateBus(ctx context.Context, req domain.BusRequest) (*domain.MessageData, error) {
	return created(m.Called(ctx, req))
}

func (m *MockResources) CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.MessageData, error) {
	return created(m.Called(ctx, req))
}

func (m *MockResources) CreateUser(ctx context.Context, req domain.UserCreationRequest) (*domain.MessageData, error) {
	return created(m.Called(ctx, req))
}

func (m *MockResources) Snapshot(ctx context.Context, r domain.Resource, wait bool) (cache.Snapshot, error) {
	args := m.Called(ctx, r, wait)
	return args.Get(0).(cache.Snapshot), args.Error(1)
}

func (m *MockResources) Table(ctx context.Context, r domain.Resource) (table.Table, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(table.Table), args.Error(1)
}

func (m *MockResources) Dashboard(ctx context.Context) (*resources.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resources.Stats), args.Error(1)
}

func created(args mock.Arguments) (*domain.MessageData, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageData), args.Error(1)
}

type staticSession struct {
	user *domain.User
}

func (s staticSession) CurrentUser(context.Context, string) (*domain.User, error) {
	return s.user, nil
}

var admin = &domain.User{Name: "B", Email: "b@b.com", Role: domain.RoleAdmin, Contact: "456"}

func newTestCLI(user *domain.User, stdin string) (*cli, *MockAuth, *MockResources, *bytes.Buffer) {
	a, r := &MockAuth{}, &MockResources{}
	out := &bytes.Buffer{}
	c := &cli{
		auth:      a,
		resources: r,
		sessions:  staticSession{user: user},
		in:        strings.NewReader(stdin),
		out:       out,
		errOut:    &bytes.Buffer{},
	}
	c.readPassword = c.promptPassword
	return c, a, r, out
}

func boundToDefaultSlot(ctx context.Context) bool {
	return session.IDFromContext(ctx) == session.DefaultSlot
}

func TestCLI_LoginReadsPasswordFromStdin(t *testing.T) {
	c, a, _, out := newTestCLI(nil, "s3cret\n")
	a.On("Login", mock.MatchedBy(boundToDefaultSlot), session.DefaultSlot, "b@b.com", "s3cret").Return(admin, nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"login", "b@b.com"}))

	assert.Equal(t, "Logged in as B (Admin)\n", out.String())
	a.AssertExpectations(t)
}

func TestCLI_LoginPasswordFile(t *testing.T) {
	c, a, _, _ := newTestCLI(nil, "")
	path := filepath.Join(t.TempDir(), "pw")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	a.On("Login", mock.Anything, session.DefaultSlot, "b@b.com", "from-file").Return(admin, nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"login", "b@b.com", "--password-file", path}))
	a.AssertExpectations(t)
}

func TestCLI_LoginRejected(t *testing.T) {
	c, a, _, _ := newTestCLI(nil, "wrong\n")
	a.On("Login", mock.Anything, session.DefaultSlot, "b@b.com", "wrong").Return(nil, domain.AuthenticationError{}).Once()

	err := c.run(context.Background(), []string{"login", "b@b.com"})
	assert.EqualError(t, err, "Invalid credentials")
}

func TestCLI_Usage(t *testing.T) {
	c, _, _, _ := newTestCLI(admin, "")

	assert.ErrorIs(t, c.run(context.Background(), []string{"fly"}), errUsage)
	assert.ErrorIs(t, c.run(context.Background(), []string{"login"}), errUsage)
	assert.ErrorIs(t, c.run(context.Background(), []string{"list", "routes"}), errUsage)
	assert.ErrorIs(t, c.run(context.Background(), []string{"create", "buses"}), errUsage)
}

func TestCLI_RequiresSession(t *testing.T) {
	c, _, r, _ := newTestCLI(nil, "")

	assert.ErrorIs(t, c.run(context.Background(), []string{"whoami"}), errNotLoggedIn)
	assert.ErrorIs(t, c.run(context.Background(), []string{"list", "buses"}), errNotLoggedIn)
	r.AssertNotCalled(t, "Table", mock.Anything, mock.Anything)
}

func TestCLI_AdminCannotReachBranches(t *testing.T) {
	c, _, r, _ := newTestCLI(admin, `{"city":"Pune"}`)

	err := c.run(context.Background(), []string{"list", "branches"})
	assert.ErrorContains(t, err, "access denied")

	err = c.run(context.Background(), []string{"create", "users", "--from-file", "-"})
	assert.ErrorContains(t, err, "access denied")

	r.AssertNotCalled(t, "Table", mock.Anything, mock.Anything)
	r.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCLI_ListPrintsTable(t *testing.T) {
	c, _, r, out := newTestCLI(admin, "")
	r.On("Table", mock.MatchedBy(func(ctx context.Context) bool {
		return session.UserFromContext(ctx) == admin
	}), domain.ResourceBuses).Return(table.Table{
		Headers: []string{"Bus Number", "Company"},
		Rows:    [][]string{{"B-12", "VRL"}},
	}, nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"list", "buses"}))

	assert.Contains(t, out.String(), "Bus Number")
	assert.Contains(t, out.String(), "B-12")
	r.AssertExpectations(t)
}

func TestCLI_ListEmpty(t *testing.T) {
	c, _, r, out := newTestCLI(admin, "")
	r.On("Table", mock.Anything, domain.ResourceTickets).Return(table.Table{Headers: []string{"Passenger Name"}}, nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"list", "tickets"}))
	assert.Equal(t, "No tickets yet\n", out.String())
}

func TestCLI_ListJSON(t *testing.T) {
	c, _, r, out := newTestCLI(admin, "")
	r.On("Snapshot", mock.Anything, domain.ResourceCompanies, true).
		Return(cache.Snapshot{State: cache.StateReady, Value: []domain.Company{{ID: 3, Name: "VRL"}}}, nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"list", "companies", "--json"}))
	assert.Contains(t, out.String(), `"name": "VRL"`)
}

func TestCLI_CreateFromStdin(t *testing.T) {
	c, _, r, out := newTestCLI(admin, `{"company_id":1,"bus_number":"B-12","bus_type":"AC","total_seats":40}`)
	r.On("CreateBus", mock.Anything, domain.BusRequest{
		CompanyID: 1, BusNumber: "B-12", BusType: domain.BusTypeAC, TotalSeats: 40,
	}).Return(&domain.MessageData{Message: "ok"}, nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"create", "buses", "--from-file", "-"}))

	assert.Equal(t, "Bus created successfully\n", out.String())
	r.AssertExpectations(t)
}

func TestCLI_CreateRejectsUnknownFields(t *testing.T) {
	c, _, r, _ := newTestCLI(admin, `{"bus_numbr":"B-12"}`)

	err := c.run(context.Background(), []string{"create", "buses", "-f", "-"})

	assert.ErrorContains(t, err, "parse payload")
	r.AssertNotCalled(t, "CreateBus", mock.Anything, mock.Anything)
}

func TestCLI_CreateFailure(t *testing.T) {
	c, _, r, _ := newTestCLI(admin, `{"bus_id":2,"seat_number":4,"passenger_name":"Ravi","status":"Booked"}`)
	r.On("CreateTicket", mock.Anything, mock.Anything).
		Return(nil, domain.RequestError{Resource: domain.ResourceTickets, Action: domain.ActionCreate, Status: 409}).Once()

	err := c.run(context.Background(), []string{"create", "tickets", "-f", "-"})
	assert.EqualError(t, err, "Failed to create ticket")
}

func TestCLI_ExportWritesPDF(t *testing.T) {
	c, _, r, out := newTestCLI(admin, "")
	r.On("Table", mock.Anything, domain.ResourceBuses).Return(table.Table{
		Headers: []string{"Bus Number"},
		Rows:    [][]string{{"B-12"}, {"B-13"}},
	}, nil).Once()
	path := filepath.Join(t.TempDir(), "fleet.pdf")

	require.NoError(t, c.run(context.Background(), []string{"export", "buses", "--out", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "Wrote 2 buses to "+path+"\n", out.String())
}

func TestCLI_Whoami(t *testing.T) {
	c, _, _, out := newTestCLI(admin, "")

	require.NoError(t, c.run(context.Background(), []string{"whoami"}))
	assert.Equal(t, "B <b@b.com>\nRole: Admin\nContact: 456\n", out.String())
}

func TestCLI_Logout(t *testing.T) {
	c, a, _, out := newTestCLI(admin, "")
	a.On("Logout", mock.Anything, session.DefaultSlot).Return(nil).Once()

	require.NoError(t, c.run(context.Background(), []string{"logout"}))
	assert.Equal(t, "Logged out\n", out.String())
}

func TestRun_NoCommand(t *testing.T) {
	var stderr bytes.Buffer
	code := run(context.Background(), nil, strings.NewReader(""), &bytes.Buffer{}, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Usage: busctl")
}
