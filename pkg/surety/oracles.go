package surety

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// Report is the outcome of a SubmitOracleResponse call.
type Report struct {
	// Reports is the number of reports now recorded for the submitted status.
	Reports   int  `json:"reports"`
	Finalized bool `json:"finalized"`
	Credited  bool `json:"credited"`
}

// RegisterOracle assigns the caller three distinct indexes for a fee.
func (s *Service) RegisterOracle(ctx context.Context, caller types.Address, fee types.Amount) ([types.IndexCount]uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var none [types.IndexCount]uint8
	if err := s.ready(); err != nil {
		return none, err
	}
	if fee < s.params.OracleRegistrationFee {
		return none, types.ErrInsufficientFee
	}
	if _, ok := s.store.Oracle(caller); ok {
		return none, types.ErrAlreadyRegistered
	}
	mark := s.generator.Counter()
	indexes, err := s.generator.DrawDistinct(caller)
	if err != nil {
		s.generator.Rewind(mark)
		return none, fmt.Errorf("draw oracle indexes: %w", err)
	}
	if err := s.treasury.Receive(ctx, caller, fee); err != nil {
		s.generator.Rewind(mark)
		return none, fmt.Errorf("receive oracle fee: %w", err)
	}
	if err := s.store.RegisterOracle(s.self, caller, indexes); err != nil {
		return none, err
	}

	s.logger.Info("Oracle registered",
		zap.Stringer("oracle", caller),
		zap.Uint8s("indexes", indexes[:]))
	s.publisher.Publish(ctx, notify.Event{Kind: notify.KindOracleRegistered, Account: caller, Amount: fee})
	return indexes, nil
}

// GetMyIndexes returns the caller's assigned indexes.
func (s *Service) GetMyIndexes(caller types.Address) ([types.IndexCount]uint8, error) {
	reg, ok := s.store.Oracle(caller)
	if !ok {
		return [types.IndexCount]uint8{}, types.ErrNotRegistered
	}
	return reg.Indexes, nil
}

// GetOracle returns the indexes assigned to account. Owner only.
func (s *Service) GetOracle(caller, account types.Address) ([types.IndexCount]uint8, error) {
	if err := s.gate.RequireOwner(caller); err != nil {
		return [types.IndexCount]uint8{}, err
	}
	return s.GetMyIndexes(account)
}

// FetchFlightStatus opens a status request for the flight under a freshly
// drawn index and returns that index. A request already open under the same
// key is replaced together with its reports.
func (s *Service) FetchFlightStatus(ctx context.Context, caller, airline types.Address, flight string, timestamp uint64) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return 0, err
	}
	index := s.generator.Draw(caller)
	key := identity.RequestKey(index, airline, flight, timestamp)
	err := s.store.OpenRequest(s.self, key, types.ResponseRecord{
		Requester: caller,
		Index:     index,
		Airline:   airline,
		Flight:    flight,
		Timestamp: timestamp,
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Oracle request opened",
		zap.Uint8("index", index),
		zap.Stringer("airline", airline),
		zap.String("flight", flight),
		zap.Uint64("timestamp", timestamp))
	s.publisher.Publish(ctx, notify.Event{
		Kind:      notify.KindOracleRequest,
		Account:   caller,
		Index:     index,
		Airline:   airline,
		Flight:    flight,
		Timestamp: timestamp,
	})
	return index, nil
}

// SubmitOracleResponse records the caller's status report against the open
// request for (index, airline, flight, timestamp). The report that brings a
// status to quorum finalizes it and, for LATE_AIRLINE, credits insurees.
// The request stays open afterwards.
func (s *Service) SubmitOracleResponse(ctx context.Context, caller types.Address, index uint8, airline types.Address, flight string, timestamp uint64, status types.StatusCode) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Report{}, err
	}
	reg, ok := s.store.Oracle(caller)
	if !ok || !reg.HasIndex(index) {
		return Report{}, types.ErrIndexMismatch
	}
	key := identity.RequestKey(index, airline, flight, timestamp)
	reports, err := s.store.AddResponse(s.self, key, status, caller)
	if err != nil {
		return Report{}, err
	}

	ev := notify.Event{
		Account:   caller,
		Index:     index,
		Airline:   airline,
		Flight:    flight,
		Timestamp: timestamp,
		Status:    status,
		Votes:     reports,
	}
	report := ev
	report.Kind = notify.KindOracleReport
	s.publisher.Publish(ctx, report)

	out := Report{Reports: reports}
	if reports != s.params.QuorumSize {
		return out, nil
	}

	out.Finalized = true
	s.logger.Info("Flight status finalized",
		zap.Stringer("airline", airline),
		zap.String("flight", flight),
		zap.Uint64("timestamp", timestamp),
		zap.Stringer("status", status))
	finalized := ev
	finalized.Kind = notify.KindOracleFinalized
	s.publisher.Publish(ctx, finalized)

	if status == types.StatusLateAirline {
		if err := s.credit(ctx, airline, flight, timestamp); err != nil {
			return out, err
		}
		out.Credited = true
	}
	return out, nil
}

// credit sets the payout for the flight pool to one and a half times the
// insured amount, rounded down.
func (s *Service) credit(ctx context.Context, airline types.Address, flight string, timestamp uint64) error {
	key := identity.CreditKey(airline, flight, timestamp)
	payout := s.store.Policy(key).Amount.Payout()
	if err := s.store.SetPolicyPayout(s.self, key, payout); err != nil {
		return err
	}
	s.logger.Info("Insurees credited",
		zap.Stringer("airline", airline),
		zap.String("flight", flight),
		zap.Uint64("timestamp", timestamp),
		zap.Uint64("payout", uint64(payout)))
	s.publisher.Publish(ctx, notify.Event{
		Kind:      notify.KindInsuranceCredited,
		Airline:   airline,
		Flight:    flight,
		Timestamp: timestamp,
		Amount:    payout,
	})
	return nil
}
