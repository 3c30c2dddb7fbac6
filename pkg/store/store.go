// Package store owns all durable protocol state: airlines, votes, flights,
// insurance policies, oracle registrations and oracle response records.
//
// Reads are open to everyone. Every mutator takes the identity of its
// immediate caller and fails unless the gate is operational and the caller is
// on the gate's authorization list.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/canopy-network/flightsurety/pkg/gate"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// Store is safe for concurrent use. Multi-step protocol operations must be
// serialized by the caller; each mutator on its own is atomic.
type Store struct {
	gate *gate.Gate
	now  func() time.Time

	mu              sync.RWMutex
	airlines        map[types.Address]types.Airline
	registeredCount int
	votes           map[types.Address][]types.Address
	flights         map[types.Key]types.Flight
	policies        map[types.Key]types.Policy
	oracles         map[types.Address]types.OracleRegistration
	responses       map[types.Key]types.ResponseRecord
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp response records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store with genesis registered as the first airline.
func New(g *gate.Gate, genesis types.Address, opts ...Option) *Store {
	s := &Store{
		gate:      g,
		now:       time.Now,
		airlines:  make(map[types.Address]types.Airline),
		votes:     make(map[types.Address][]types.Address),
		flights:   make(map[types.Key]types.Flight),
		policies:  make(map[types.Key]types.Policy),
		oracles:   make(map[types.Address]types.OracleRegistration),
		responses: make(map[types.Key]types.ResponseRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.airlines[genesis] = types.Airline{Registered: true}
	s.registeredCount = 1
	return s
}

// Gate returns the gate guarding this store.
func (s *Store) Gate() *gate.Gate { return s.gate }

func (s *Store) guard(caller types.Address) error {
	if err := s.gate.RequireOperational(); err != nil {
		return err
	}
	return s.gate.RequireAuthorized(caller)
}

// =============================================================================
// Airlines
// =============================================================================

// Airline returns the airline record (zero value when unknown).
func (s *Store) Airline(a types.Address) types.Airline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.airlines[a]
}

// IsAirlineRegistered reports whether a is a registered airline.
func (s *Store) IsAirlineRegistered(a types.Address) bool {
	return s.Airline(a).Registered
}

// RegisteredAirlineCount returns the number of registered airlines.
func (s *Store) RegisteredAirlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registeredCount
}

// RegisterAirline marks a as registered and bumps the count exactly once.
func (s *Store) RegisterAirline(caller, a types.Address) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.airlines[a]
	if rec.Registered {
		return types.ErrAlreadyRegistered
	}
	rec.Registered = true
	s.airlines[a] = rec
	s.registeredCount++
	return nil
}

// AddFunds adds amount to the airline's funds and returns the new total.
func (s *Store) AddFunds(caller, a types.Address, amount types.Amount) (types.Amount, error) {
	if err := s.guard(caller); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.airlines[a]
	total, ok := rec.Funds.AddChecked(amount)
	if !ok {
		return rec.Funds, types.ErrFundsOverflow
	}
	rec.Funds = total
	s.airlines[a] = rec
	return total, nil
}

// HasVoted reports whether voter already voted for candidate.
func (s *Store) HasVoted(candidate, voter types.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.votes[candidate] {
		if v == voter {
			return true
		}
	}
	return false
}

// Votes returns the ordered voters for candidate.
func (s *Store) Votes(candidate types.Address) []types.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Address(nil), s.votes[candidate]...)
}

// AddVote appends voter to candidate's voters and returns the new vote count.
func (s *Store) AddVote(caller, candidate, voter types.Address) (int, error) {
	if err := s.guard(caller); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes[candidate] {
		if v == voter {
			return len(s.votes[candidate]), types.ErrAlreadyVoted
		}
	}
	s.votes[candidate] = append(s.votes[candidate], voter)
	return len(s.votes[candidate]), nil
}

// =============================================================================
// Flights
// =============================================================================

// Flight returns the flight stored under key.
func (s *Store) Flight(key types.Key) (types.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[key]
	return f, ok
}

// RegisterFlight stores f under key. Existing records are never replaced.
func (s *Store) RegisterFlight(caller types.Address, key types.Key, f types.Flight) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.flights[key]; exists {
		return types.ErrDuplicateFlight
	}
	f.Registered = true
	s.flights[key] = f
	return nil
}

// =============================================================================
// Insurance policies
// =============================================================================

// Policy returns the policy stored under key (zero value when absent).
func (s *Store) Policy(key types.Key) types.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies[key]
}

// SetPolicyAmounts overwrites the insured amount under every given key in one step.
func (s *Store) SetPolicyAmounts(caller types.Address, amount types.Amount, keys ...types.Key) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		p := s.policies[key]
		p.Amount = amount
		s.policies[key] = p
	}
	return nil
}

// SetPolicyPayout overwrites the payout under key.
func (s *Store) SetPolicyPayout(caller types.Address, key types.Key, payout types.Amount) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.policies[key]
	p.Payout = payout
	s.policies[key] = p
	return nil
}

// TakePayout zeroes the payout under key and returns what it held. It fails
// with ErrNoEligibleCredit when there is nothing to take.
func (s *Store) TakePayout(caller types.Address, key types.Key) (types.Amount, error) {
	if err := s.guard(caller); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.policies[key]
	if p.Payout == 0 {
		return 0, types.ErrNoEligibleCredit
	}
	payout := p.Payout
	p.Payout = 0
	s.policies[key] = p
	return payout, nil
}

// RestorePayout puts back a payout taken by TakePayout when the transfer that
// followed failed. When a payout was credited in the meantime the larger of
// the two is kept.
// Only the authorization list is checked so a refund is never blocked by the
// operational flag flipping mid-call.
func (s *Store) RestorePayout(caller types.Address, key types.Key, payout types.Amount) error {
	if err := s.gate.RequireAuthorized(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.policies[key]
	if payout > p.Payout {
		p.Payout = payout
		s.policies[key] = p
	}
	return nil
}

// =============================================================================
// Oracles
// =============================================================================

// Oracle returns the registration for a.
func (s *Store) Oracle(a types.Address) (types.OracleRegistration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.oracles[a]
	return o, ok && o.Registered
}

// RegisterOracle stores the index triple for a. Registrations are immutable.
func (s *Store) RegisterOracle(caller, a types.Address, indexes [types.IndexCount]uint8) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.oracles[a]; ok && existing.Registered {
		return types.ErrAlreadyRegistered
	}
	s.oracles[a] = types.OracleRegistration{Registered: true, Indexes: indexes}
	return nil
}

// =============================================================================
// Oracle response records
// =============================================================================

// Response returns a copy of the record under key.
func (s *Store) Response(key types.Key) (types.ResponseRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[key]
	if !ok {
		return types.ResponseRecord{}, false
	}
	return r.Clone(), true
}

// OpenRequest stores a fresh open record under key, replacing any previous one
// together with its partial responses.
func (s *Store) OpenRequest(caller types.Address, key types.Key, rec types.ResponseRecord) error {
	if err := s.guard(caller); err != nil {
		return err
	}
	rec.Open = true
	rec.Responses = make(map[types.StatusCode][]types.Address)
	rec.OpenedAt = s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = rec
	return nil
}

// AddResponse appends reporter under status and returns how many reporters the
// status now has. Repeat submissions by the same reporter are not collapsed.
func (s *Store) AddResponse(caller types.Address, key types.Key, status types.StatusCode, reporter types.Address) (int, error) {
	if err := s.guard(caller); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.responses[key]
	if !ok || !rec.Open {
		return 0, types.ErrRequestNotOpen
	}
	rec.Responses[status] = append(rec.Responses[status], reporter)
	return len(rec.Responses[status]), nil
}

// PendingRequest summarizes an open response record.
type PendingRequest struct {
	Key      types.Key
	Record   types.ResponseRecord
	Reports  int
	OpenedAt time.Time
}

// OpenRequestsBefore lists open records opened before cutoff, oldest first.
func (s *Store) OpenRequestsBefore(cutoff time.Time) []PendingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PendingRequest
	for key, rec := range s.responses {
		if !rec.Open || !rec.OpenedAt.Before(cutoff) {
			continue
		}
		reports := 0
		for _, reporters := range rec.Responses {
			reports += len(reporters)
		}
		out = append(out, PendingRequest{Key: key, Record: rec.Clone(), Reports: reports, OpenedAt: rec.OpenedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}
