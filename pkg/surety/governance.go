package surety

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// Registration is the outcome of a RegisterAirline call.
type Registration struct {
	Registered bool `json:"registered"`
	// Votes is the candidate's vote count after the call; zero when the
	// candidate was admitted without a vote.
	Votes int `json:"votes"`
}

// FundAirline adds amount to the caller's funds. The caller must be a
// registered airline.
func (s *Service) FundAirline(ctx context.Context, caller types.Address, amount types.Amount) (types.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return 0, err
	}
	rec := s.store.Airline(caller)
	if !rec.Registered {
		return 0, types.ErrNotRegistered
	}
	if _, ok := rec.Funds.AddChecked(amount); !ok {
		return 0, types.ErrFundsOverflow
	}
	if err := s.treasury.Receive(ctx, caller, amount); err != nil {
		return 0, fmt.Errorf("receive airline funding: %w", err)
	}
	total, err := s.store.AddFunds(s.self, caller, amount)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Airline funded",
		zap.Stringer("airline", caller),
		zap.Uint64("amount", uint64(amount)),
		zap.Uint64("funds", uint64(total)))
	s.publisher.Publish(ctx, notify.Event{Kind: notify.KindAirlineFunded, Airline: caller, Amount: amount})
	return total, nil
}

// RegisterAirline admits candidate on caller's nomination. Below the
// consensus floor the candidate is admitted outright. From the floor on,
// caller's vote is recorded and the candidate is admitted once the votes
// reach the consensus share of registered airlines. A vote that falls short
// succeeds without registering the candidate.
func (s *Service) RegisterAirline(ctx context.Context, caller, candidate types.Address) (Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Registration{}, err
	}
	if !s.directory.IsEndIdentity(candidate) {
		return Registration{}, types.ErrInvalidIdentity
	}
	if s.store.IsAirlineRegistered(candidate) {
		return Registration{}, types.ErrAlreadyRegistered
	}
	if s.store.HasVoted(candidate, caller) {
		return Registration{}, types.ErrAlreadyVoted
	}
	if s.store.Airline(caller).Funds < s.params.FundingThreshold {
		return Registration{}, types.ErrInsufficientFunding
	}

	count := s.store.RegisteredAirlineCount()
	if count < s.params.MinAirlinesBeforeConsensus {
		if err := s.admit(ctx, candidate, 0); err != nil {
			return Registration{}, err
		}
		return Registration{Registered: true}, nil
	}

	votes, err := s.store.AddVote(s.self, candidate, caller)
	if err != nil {
		return Registration{}, err
	}
	s.publisher.Publish(ctx, notify.Event{Kind: notify.KindAirlineVoted, Airline: candidate, Account: caller, Votes: votes})

	if !s.reachedConsensus(votes, count) {
		s.logger.Debug("Airline vote recorded",
			zap.Stringer("candidate", candidate),
			zap.Stringer("voter", caller),
			zap.Int("votes", votes),
			zap.Int("registered", count))
		return Registration{Votes: votes}, nil
	}
	if err := s.admit(ctx, candidate, votes); err != nil {
		return Registration{}, err
	}
	return Registration{Registered: true, Votes: votes}, nil
}

// reachedConsensus reports whether votes make up at least the consensus share
// of registered airlines.
func (s *Service) reachedConsensus(votes, registered int) bool {
	if registered == 0 {
		return true
	}
	return votes*100 >= registered*s.params.ConsensusThresholdPercent
}

func (s *Service) admit(ctx context.Context, candidate types.Address, votes int) error {
	if err := s.store.RegisterAirline(s.self, candidate); err != nil {
		return err
	}
	s.logger.Info("Airline registered",
		zap.Stringer("airline", candidate),
		zap.Int("votes", votes),
		zap.Int("registered", s.store.RegisteredAirlineCount()))
	s.publisher.Publish(ctx, notify.Event{Kind: notify.KindAirlineRegistered, Airline: candidate, Votes: votes})
	return nil
}

// IsAirlineRegistered reports whether account is a registered airline.
func (s *Service) IsAirlineRegistered(account types.Address) (bool, error) {
	if account.IsZero() {
		return false, types.ErrInvalidIdentity
	}
	return s.store.IsAirlineRegistered(account), nil
}

// Airline returns the airline record for account.
func (s *Service) Airline(account types.Address) types.Airline {
	return s.store.Airline(account)
}

// RegisteredAirlineCount returns the number of registered airlines.
func (s *Service) RegisteredAirlineCount() int {
	return s.store.RegisteredAirlineCount()
}

// Votes returns the voters recorded for candidate, in voting order.
func (s *Service) Votes(candidate types.Address) []types.Address {
	return s.store.Votes(candidate)
}
