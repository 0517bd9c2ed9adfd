package domain

import "strings"

// Resource names a server-managed entity type. The value doubles as the
// cache key suffix and the console route segment.
type Resource string

const (
	ResourceBranches  Resource = "branches"
	ResourceCompanies Resource = "companies"
	ResourceBuses     Resource = "buses"
	ResourceTickets   Resource = "tickets"
	ResourceUsers     Resource = "users"
)

// Singular is used in user-facing messages ("Failed to create bus").
func (r Resource) Singular() string {
	switch r {
	case ResourceBranches:
		return "branch"
	case ResourceCompanies:
		return "company"
	case ResourceBuses:
		return "bus"
	case ResourceTickets:
		return "ticket"
	case ResourceUsers:
		return "user"
	default:
		return string(r)
	}
}

// SuperAdminOnly reports whether the resource is hidden from plain admins.
func (r Resource) SuperAdminOnly() bool {
	return r == ResourceBranches || r == ResourceUsers
}

// AllowedFor reports whether u may see and manage the resource.
func (r Resource) AllowedFor(u *User) bool {
	if u == nil {
		return false
	}
	return !r.SuperAdminOnly() || u.IsSuperAdmin()
}

// Listable is false for users, which have no list endpoint.
func (r Resource) Listable() bool {
	return r != ResourceUsers
}

// Label is the page title, e.g. "Buses".
func (r Resource) Label() string {
	return capitalize(string(r))
}

// CreatedMessage is the notice shown after a successful create.
func (r Resource) CreatedMessage() string {
	return capitalize(r.Singular()) + " created successfully"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Resources lists every resource in menu order.
func Resources() []Resource {
	return []Resource{ResourceTickets, ResourceBuses, ResourceCompanies, ResourceBranches, ResourceUsers}
}

func ParseResource(s string) (Resource, bool) {
	switch r := Resource(s); r {
	case ResourceBranches, ResourceCompanies, ResourceBuses, ResourceTickets, ResourceUsers:
		return r, true
	default:
		return "", false
	}
}

type BusType string

const (
	BusTypeAC    BusType = "AC"
	BusTypeNonAC BusType = "NON_AC"
)

type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "Booked"
	TicketStatusCancelled TicketStatus = "Cancelled"
)

type Branch struct {
	ID         int64     `json:"id"`
	City       string    `json:"city"`
	DomainName string    `json:"domain_name"`
	LogoPath   *string   `json:"logo_path"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
	IsActive   bool      `json:"is_active"`
}

type BranchRequest struct {
	City       string  `json:"city"`
	DomainName string  `json:"domain_name"`
	Logo       *string `json:"logo"`
}

type Company struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ContactPersonName string    `json:"contact_person_name"`
	Email             string    `json:"email"`
	Address           string    `json:"address"`
	PhoneNumber       string    `json:"phone_number"`
	CreatedAt         Timestamp `json:"created_at"`
	UpdatedAt         Timestamp `json:"updated_at"`
	IsActive          bool      `json:"is_active"`
}

type CompanyRequest struct {
	Name              string `json:"name"`
	ContactPersonName string `json:"contact_person_name"`
	Email             string `json:"email"`
	Address           string `json:"address"`
	PhoneNumber       string `json:"phone_number"`
}

// Bus carries its owning company as a read-only embed.
type Bus struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	BusNumber   string    `json:"bus_number"`
	BusType     BusType   `json:"bus_type"`
	TotalSeats  int       `json:"total_seats"`
	CreatedAt   Timestamp `json:"created_at"`
	IsActive    bool      `json:"is_active"`
	CompanyData *Company  `json:"company_data"`
}

type BusRequest struct {
	CompanyID  int64   `json:"company_id"`
	BusNumber  string  `json:"bus_number"`
	BusType    BusType `json:"bus_type"`
	TotalSeats int     `json:"total_seats"`
}

type Ticket struct {
	ID               int64        `json:"id"`
	BusID            int64        `json:"bus_id"`
	SeatNumber       int          `json:"seat_number"`
	PassengerName    string       `json:"passenger_name"`
	PassengerContact string       `json:"passenger_contact"`
	PassengerEmail   string       `json:"passenger_email"`
	Status           TicketStatus `json:"status"`
	CreatedAt        Timestamp    `json:"created_at"`
	UpdatedAt        Timestamp    `json:"updated_at"`
	BusData          *Bus         `json:"bus_data"`
	CompanyData      *Company     `json:"company_data"`
}

type TicketRequest struct {
	BusID            int64        `json:"bus_id"`
	SeatNumber       int          `json:"seat_number"`
	PassengerName    string       `json:"passenger_name"`
	PassengerContact string       `json:"passenger_contact"`
	PassengerEmail   string       `json:"passenger_email"`
	Status           TicketStatus `json:"status"`
}

// UserCreationRequest creates an operator account. Users are write-only
// from the console.
type UserCreationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Contact  string `json:"contact"`
	BranchID int64  `json:"branch_id"`
}
