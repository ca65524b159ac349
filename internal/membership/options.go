package membership

import (
	"log/slog"
	"time"

	"courtdesk/internal/events"
	"courtdesk/internal/lock"
)

// Option configures the ledger service.
type Option func(*service)

// WithLocation sets the club's time zone. Dates are interpreted in it.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocker replaces the in-process lock, e.g. with a Redis lock shared
// between replicas.
func WithLocker(l lock.Locker) Option {
	return func(s *service) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOrganization tags memberships registered from custom plans.
func WithOrganization(id int64) Option {
	return func(s *service) { s.orgID = id }
}
