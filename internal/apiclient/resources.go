package apiclient

import (
	"context"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
)

const (
	pathBranches  = "/admin/branches"
	pathCompanies = "/companies"
	pathBuses     = "/buses"
	pathTickets   = "/tickets"
	pathUsers     = "/admin/users"
)

func (c *Client) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return list[domain.Branch](ctx, c, domain.ResourceBranches, pathBranches)
}

func (c *Client) CreateBranch(ctx context.Context, req domain.BranchRequest) (*domain.MessageData, error) {
	return create(ctx, c, domain.ResourceBranches, pathBranches, req)
}

func (c *Client) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	return list[domain.Company](ctx, c, domain.ResourceCompanies, pathCompanies)
}

func (c *Client) CreateCompany(ctx context.Context, req domain.CompanyRequest) (*domain.MessageData, error) {
	return create(ctx, c, domain.ResourceCompanies, pathCompanies, req)
}

func (c *Client) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	return list[domain.Bus](ctx, c, domain.ResourceBuses, pathBuses)
}

func (c *Client) CreateBus(ctx context.Context, req domain.BusRequest) (*domain.MessageData, error) {
	return create(ctx, c, domain.ResourceBuses, pathBuses, req)
}

func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return list[domain.Ticket](ctx, c, domain.ResourceTickets, pathTickets)
}

func (c *Client) CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.MessageData, error) {
	return create(ctx, c, domain.ResourceTickets, pathTickets, req)
}

func (c *Client) CreateUser(ctx context.Context, req domain.UserCreationRequest) (*domain.MessageData, error) {
	return create(ctx, c, domain.ResourceUsers, pathUsers, req)
}
