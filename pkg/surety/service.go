// Package surety is the protocol façade: airline governance, the flight
// registry, the oracle consensus engine and the insurance ledger.
//
// Every operation checks the operational flag and its business preconditions,
// then delegates durable mutation to the store under the service's own
// identity. Operations are serialized end to end so each one observes the
// state left by the previous one.
package surety

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/entropy"
	"github.com/canopy-network/flightsurety/pkg/gate"
	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/store"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// Config wires a Service. Store, Self and Entropy are required.
type Config struct {
	Store *store.Store
	// Self is the identity the service presents to the store. It must be on
	// the gate's authorization list for mutations to succeed.
	Self      types.Address
	Directory identity.Directory
	Entropy   entropy.Source
	Treasury  Treasury
	Publisher notify.Publisher
	Params    types.Params
	Logger    *zap.Logger
}

// Service is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	store     *store.Store
	gate      *gate.Gate
	self      types.Address
	directory identity.Directory
	generator *entropy.Generator
	treasury  Treasury
	publisher notify.Publisher
	params    types.Params
	logger    *zap.Logger
}

// New validates cfg and returns a Service. Zero Params fall back to
// types.DefaultParams.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("surety: store is required")
	}
	if cfg.Self.IsZero() {
		return nil, errors.New("surety: service identity is required")
	}
	if cfg.Entropy == nil {
		return nil, errors.New("surety: entropy source is required")
	}
	if cfg.Params == (types.Params{}) {
		cfg.Params = types.DefaultParams()
	}
	if cfg.Directory == nil {
		cfg.Directory = identity.NewRelayDirectory()
	}
	if cfg.Treasury == nil {
		cfg.Treasury = NewMemoryTreasury(0)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = notify.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{
		store:     cfg.Store,
		gate:      cfg.Store.Gate(),
		self:      cfg.Self,
		directory: cfg.Directory,
		generator: entropy.NewGenerator(cfg.Entropy, cfg.Params),
		treasury:  cfg.Treasury,
		publisher: cfg.Publisher,
		params:    cfg.Params,
		logger:    cfg.Logger,
	}, nil
}

// Params returns the protocol constants in use.
func (s *Service) Params() types.Params { return s.params }

// Self returns the identity the service presents to the store.
func (s *Service) Self() types.Address { return s.self }

// Store returns the underlying store for read-only inspection.
func (s *Service) Store() *store.Store { return s.store }

// IsOperational reports the gate's operational flag.
func (s *Service) IsOperational() bool { return s.gate.IsOperational() }

// SetOperatingStatus flips the operational flag. It is the one mutation that
// works while the service is halted.
func (s *Service) SetOperatingStatus(ctx context.Context, caller types.Address, mode bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate.SetOperatingStatus(caller, mode); err != nil {
		return err
	}
	s.logger.Info("Operating status changed", zap.Bool("operational", mode))
	s.publisher.Publish(ctx, notify.Event{Kind: notify.KindGateStatus, Account: caller, Operational: &mode})
	return nil
}

// Authorize adds target to the store's authorization list.
func (s *Service) Authorize(caller, target types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate.Authorize(caller, target); err != nil {
		return err
	}
	s.logger.Info("Authorized store caller", zap.Stringer("address", target))
	return nil
}

// Deauthorize removes target from the store's authorization list.
func (s *Service) Deauthorize(caller, target types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate.Deauthorize(caller, target); err != nil {
		return err
	}
	s.logger.Info("Deauthorized store caller", zap.Stringer("address", target))
	return nil
}

// ready fails unless the service may mutate the store. Value is received
// only after it passes.
func (s *Service) ready() error {
	if err := s.gate.RequireOperational(); err != nil {
		return err
	}
	return s.gate.RequireAuthorized(s.self)
}
