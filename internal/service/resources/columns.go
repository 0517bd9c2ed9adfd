package resources

import (
	"context"
	"fmt"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/table"
)

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

var BranchColumns = []table.Column[domain.Branch]{
	{Header: "City", Accessor: table.Field[domain.Branch]("city")},
	{Header: "Domain Name", Accessor: table.Field[domain.Branch]("domain_name")},
	{Header: "Created At", Accessor: table.Derived(func(b domain.Branch) string { return b.CreatedAt.Date() })},
	{Header: "Status", Accessor: table.Derived(func(b domain.Branch) string { return activeLabel(b.IsActive) })},
}

var CompanyColumns = []table.Column[domain.Company]{
	{Header: "Name", Accessor: table.Field[domain.Company]("name")},
	{Header: "Contact Person", Accessor: table.Field[domain.Company]("contact_person_name")},
	{Header: "Email", Accessor: table.Field[domain.Company]("email")},
	{Header: "Phone", Accessor: table.Field[domain.Company]("phone_number")},
	{Header: "Address", Accessor: table.Field[domain.Company]("address")},
	{Header: "Status", Accessor: table.Derived(func(c domain.Company) string { return activeLabel(c.IsActive) })},
}

var BusColumns = []table.Column[domain.Bus]{
	{Header: "Bus Number", Accessor: table.Field[domain.Bus]("bus_number")},
	{Header: "Type", Accessor: table.Field[domain.Bus]("bus_type")},
	{Header: "Total Seats", Accessor: table.Field[domain.Bus]("total_seats")},
	{Header: "Company", Accessor: table.Field[domain.Bus]("company_data.name")},
	{Header: "Status", Accessor: table.Derived(func(b domain.Bus) string { return activeLabel(b.IsActive) })},
}

var TicketColumns = []table.Column[domain.Ticket]{
	{Header: "Passenger Name", Accessor: table.Field[domain.Ticket]("passenger_name")},
	{Header: "Contact", Accessor: table.Field[domain.Ticket]("passenger_contact")},
	{Header: "Email", Accessor: table.Field[domain.Ticket]("passenger_email")},
	{Header: "Seat Number", Accessor: table.Field[domain.Ticket]("seat_number")},
	{Header: "Status", Accessor: table.Field[domain.Ticket]("status")},
	{Header: "Bus", Accessor: table.Derived(func(t domain.Ticket) string {
		if t.BusData == nil {
			return table.Placeholder
		}
		return fmt.Sprintf("%s (%s)", t.BusData.BusNumber, t.BusData.BusType)
	})},
	{Header: "Company", Accessor: table.Field[domain.Ticket]("company_data.name")},
}

// Table loads r through the cache and renders it with its columns.
func (s *ResourceService) Table(ctx context.Context, r domain.Resource) (table.Table, error) {
	switch r {
	case domain.ResourceBranches:
		return render(ctx, s.ListBranches, BranchColumns)
	case domain.ResourceCompanies:
		return render(ctx, s.ListCompanies, CompanyColumns)
	case domain.ResourceBuses:
		return render(ctx, s.ListBuses, BusColumns)
	case domain.ResourceTickets:
		return render(ctx, s.ListTickets, TicketColumns)
	default:
		return table.Table{}, fmt.Errorf("%w: %s", ErrNotListable, r)
	}
}

func render[T any](ctx context.Context, list func(context.Context) ([]T, error), columns []table.Column[T]) (table.Table, error) {
	records, err := list(ctx)
	if err != nil {
		return table.Table{}, err
	}
	return table.Render(records, columns), nil
}
