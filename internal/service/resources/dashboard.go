package resources

import (
	"context"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Stats are the dashboard counters, computed from the cached lists.
type Stats struct {
	Tickets     int
	Booked      int
	Cancelled   int
	Buses       int
	ActiveBuses int
	Companies   int
}

func (s *ResourceService) Dashboard(ctx context.Context) (*Stats, error) {
	var (
		tickets   []domain.Ticket
		buses     []domain.Bus
		companies []domain.Company
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tickets, err = s.ListTickets(gctx)
		return err
	})
	g.Go(func() (err error) {
		buses, err = s.ListBuses(gctx)
		return err
	})
	g.Go(func() (err error) {
		companies, err = s.ListCompanies(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{
		Tickets:   len(tickets),
		Buses:     len(buses),
		Companies: len(companies),
	}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusBooked:
			stats.Booked++
		case domain.TicketStatusCancelled:
			stats.Cancelled++
		}
	}
	for _, b := range buses {
		if b.IsActive {
			stats.ActiveBuses++
		}
	}
	return stats, nil
}
