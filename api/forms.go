package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/service/resources"
)

type option struct {
	Value string
	Label string
}

type formField struct {
	Name     string
	Label    string
	Type     string // text, email, number, password, select
	Required bool
	Options  []option
}

// formValues holds what the operator typed, keyed by field name.
type formValues map[string]string

func (v formValues) Get(name string) string { return v[name] }

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func atoi64(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

var (
	busTypeOptions      = []option{{string(domain.BusTypeAC), "AC"}, {string(domain.BusTypeNonAC), "Non AC"}}
	ticketStatusOptions = []option{{string(domain.TicketStatusBooked), "Booked"}, {string(domain.TicketStatusCancelled), "Cancelled"}}
	roleOptions         = []option{{string(domain.RoleAdmin), "Admin"}, {string(domain.RoleSuperAdmin), "Super Admin"}}
)

// formFields describes the create form of r. Select options that depend
// on other resources come from the cache; a failed lookup leaves the
// select empty.
func formFields(ctx context.Context, svc resources.ResourceUseCase, r domain.Resource) []formField {
	switch r {
	case domain.ResourceBranches:
		return []formField{
			{Name: "city", Label: "City", Type: "text", Required: true},
			{Name: "domain_name", Label: "Domain Name", Type: "text", Required: true},
			{Name: "logo", Label: "Logo URL", Type: "text"},
		}
	case domain.ResourceCompanies:
		return []formField{
			{Name: "name", Label: "Name", Type: "text", Required: true},
			{Name: "contact_person_name", Label: "Contact Person", Type: "text", Required: true},
			{Name: "email", Label: "Email", Type: "email", Required: true},
			{Name: "phone_number", Label: "Phone", Type: "text", Required: true},
			{Name: "address", Label: "Address", Type: "text", Required: true},
		}
	case domain.ResourceBuses:
		var companies []option
		if list, err := svc.ListCompanies(ctx); err == nil {
			for _, co := range list {
				companies = append(companies, option{Value: strconv.FormatInt(co.ID, 10), Label: co.Name})
			}
		}
		return []formField{
			{Name: "company_id", Label: "Company", Type: "select", Required: true, Options: companies},
			{Name: "bus_number", Label: "Bus Number", Type: "text", Required: true},
			{Name: "bus_type", Label: "Type", Type: "select", Required: true, Options: busTypeOptions},
			{Name: "total_seats", Label: "Total Seats", Type: "number", Required: true},
		}
	case domain.ResourceTickets:
		var buses []option
		if list, err := svc.ListBuses(ctx); err == nil {
			for _, b := range list {
				buses = append(buses, option{Value: strconv.FormatInt(b.ID, 10), Label: fmt.Sprintf("%s (%s)", b.BusNumber, b.BusType)})
			}
		}
		return []formField{
			{Name: "bus_id", Label: "Bus", Type: "select", Required: true, Options: buses},
			{Name: "seat_number", Label: "Seat Number", Type: "number", Required: true},
			{Name: "passenger_name", Label: "Passenger Name", Type: "text", Required: true},
			{Name: "passenger_contact", Label: "Contact", Type: "text", Required: true},
			{Name: "passenger_email", Label: "Email", Type: "email", Required: true},
			{Name: "status", Label: "Status", Type: "select", Required: true, Options: ticketStatusOptions},
		}
	case domain.ResourceUsers:
		var branches []option
		if list, err := svc.ListBranches(ctx); err == nil {
			for _, b := range list {
				branches = append(branches, option{Value: strconv.FormatInt(b.ID, 10), Label: b.City})
			}
		}
		return []formField{
			{Name: "name", Label: "Name", Type: "text", Required: true},
			{Name: "email", Label: "Email", Type: "email", Required: true},
			{Name: "password", Label: "Password", Type: "password", Required: true},
			{Name: "role", Label: "Role", Type: "select", Required: true, Options: roleOptions},
			{Name: "contact", Label: "Contact", Type: "text", Required: true},
			{Name: "branch_id", Label: "Branch", Type: "select", Required: true, Options: branches},
		}
	default:
		return nil
	}
}

// submit builds r's create request from the posted values and sends it.
// Numeric fields that do not parse are sent as 0.
func submit(ctx context.Context, svc resources.ResourceUseCase, r domain.Resource, v formValues) error {
	var err error
	switch r {
	case domain.ResourceBranches:
		_, err = svc.CreateBranch(ctx, domain.BranchRequest{
			City:       v.Get("city"),
			DomainName: v.Get("domain_name"),
			Logo:       optionalString(v.Get("logo")),
		})
	case domain.ResourceCompanies:
		_, err = svc.CreateCompany(ctx, domain.CompanyRequest{
			Name:              v.Get("name"),
			ContactPersonName: v.Get("contact_person_name"),
			Email:             v.Get("email"),
			Address:           v.Get("address"),
			PhoneNumber:       v.Get("phone_number"),
		})
	case domain.ResourceBuses:
		_, err = svc.CreateBus(ctx, domain.BusRequest{
			CompanyID:  atoi64(v.Get("company_id")),
			BusNumber:  v.Get("bus_number"),
			BusType:    domain.BusType(v.Get("bus_type")),
			TotalSeats: atoi(v.Get("total_seats")),
		})
	case domain.ResourceTickets:
		_, err = svc.CreateTicket(ctx, domain.TicketRequest{
			BusID:            atoi64(v.Get("bus_id")),
			SeatNumber:       atoi(v.Get("seat_number")),
			PassengerName:    v.Get("passenger_name"),
			PassengerContact: v.Get("passenger_contact"),
			PassengerEmail:   v.Get("passenger_email"),
			Status:           domain.TicketStatus(v.Get("status")),
		})
	case domain.ResourceUsers:
		_, err = svc.CreateUser(ctx, domain.UserCreationRequest{
			Name:     v.Get("name"),
			Email:    v.Get("email"),
			Password: v.Get("password"),
			Role:     domain.Role(v.Get("role")),
			Contact:  v.Get("contact"),
			BranchID: atoi64(v.Get("branch_id")),
		})
	default:
		err = fmt.Errorf("unknown resource %q", r)
	}
	return err
}
