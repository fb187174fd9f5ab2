// file: internals/features/finance/billings/service/service.go
package service

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"schoolku_backend/internals/helpers/dbtime"
)

// Service implements the fee office operations on top of a Store.
type Service struct {
	store   Store
	gateway Gateway
	now     func() time.Time
	loc     *time.Location
	log     zerolog.Logger
}

type Option func(*Service)

// WithClock overrides time.Now, for tests and back-dated runs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithGateway enables online checkout.
func WithGateway(g Gateway) Option {
	return func(s *Service) { s.gateway = g }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		loc:   dbtime.DefaultLocation,
		log:   log.Logger.With().Str("component", "fees").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today is the school's calendar date.
func (s *Service) Today() time.Time {
	return dbtime.Today(s.now(), s.loc)
}

func (s *Service) currentYear() int {
	return s.now().In(s.loc).Year()
}

func (s *Service) CheckoutEnabled() bool { return s.gateway != nil }
