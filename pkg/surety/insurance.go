package surety

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// BuyInsurance sets the caller's insured amount for a flight, replacing any
// earlier purchase. The amount is also written to the flight's pool record,
// which is what crediting and claims read.
func (s *Service) BuyInsurance(ctx context.Context, caller, airline types.Address, flight string, timestamp uint64, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	if err := s.treasury.Receive(ctx, caller, amount); err != nil {
		return fmt.Errorf("receive premium: %w", err)
	}
	purchase := identity.PurchaseKey(airline, flight, timestamp, caller)
	pool := identity.CreditKey(airline, flight, timestamp)
	if err := s.store.SetPolicyAmounts(s.self, amount, purchase, pool); err != nil {
		return err
	}

	s.logger.Debug("Insurance purchased",
		zap.Stringer("passenger", caller),
		zap.Stringer("airline", airline),
		zap.String("flight", flight),
		zap.Uint64("timestamp", timestamp),
		zap.Uint64("amount", uint64(amount)))
	s.publisher.Publish(ctx, notify.Event{
		Kind:      notify.KindInsurancePurchased,
		Account:   caller,
		Airline:   airline,
		Flight:    flight,
		Timestamp: timestamp,
		Amount:    amount,
	})
	return nil
}

// ClaimInsurance pays the credited payout for a flight to the caller. The
// payout is cleared before the transfer and put back if the transfer fails,
// so a claim can succeed at most once per crediting. A payout credited while
// the failed transfer was in flight is kept if it is larger.
func (s *Service) ClaimInsurance(ctx context.Context, caller, airline types.Address, flight string, timestamp uint64) (types.Amount, error) {
	key := identity.CreditKey(airline, flight, timestamp)

	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	payout, err := s.store.TakePayout(s.self, key)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if err := s.treasury.Transfer(ctx, caller, payout); err != nil {
		s.mu.Lock()
		restoreErr := s.store.RestorePayout(s.self, key, payout)
		s.mu.Unlock()
		s.logger.Warn("Insurance payout failed",
			zap.Stringer("passenger", caller),
			zap.String("flight", flight),
			zap.Uint64("payout", uint64(payout)),
			zap.Error(err),
			zap.NamedError("restoreError", restoreErr))
		return 0, fmt.Errorf("%w: %v", types.ErrTransferFailed, err)
	}

	s.logger.Info("Insurance claimed",
		zap.Stringer("passenger", caller),
		zap.Stringer("airline", airline),
		zap.String("flight", flight),
		zap.Uint64("timestamp", timestamp),
		zap.Uint64("payout", uint64(payout)))
	s.publisher.Publish(ctx, notify.Event{
		Kind:      notify.KindInsuranceClaimed,
		Account:   caller,
		Airline:   airline,
		Flight:    flight,
		Timestamp: timestamp,
		Amount:    payout,
	})
	return payout, nil
}

// Policy returns the flight's pool record, which holds the credited payout.
func (s *Service) Policy(airline types.Address, flight string, timestamp uint64) types.Policy {
	return s.store.Policy(identity.CreditKey(airline, flight, timestamp))
}

// Purchase returns buyer's own policy record for the flight.
func (s *Service) Purchase(airline types.Address, flight string, timestamp uint64, buyer types.Address) types.Policy {
	return s.store.Policy(identity.PurchaseKey(airline, flight, timestamp, buyer))
}
