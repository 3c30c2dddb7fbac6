package surety

import (
	"context"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// RegisterFlight records a flight with status UNKNOWN. The flight key covers
// the status at registration, so the same flight can only be registered once.
func (s *Service) RegisterFlight(ctx context.Context, airline types.Address, name string, timestamp uint64) (types.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return types.Key{}, err
	}
	key := identity.FlightKey(airline, name, timestamp, types.StatusUnknown)
	err := s.store.RegisterFlight(s.self, key, types.Flight{
		Airline:          airline,
		Name:             name,
		StatusCode:       types.StatusUnknown,
		UpdatedTimestamp: timestamp,
	})
	if err != nil {
		return types.Key{}, err
	}

	s.logger.Debug("Flight registered",
		zap.Stringer("airline", airline),
		zap.String("flight", name),
		zap.Uint64("timestamp", timestamp))
	s.publisher.Publish(ctx, notify.Event{Kind: notify.KindFlightRegistered, Airline: airline, Flight: name, Timestamp: timestamp})
	return key, nil
}

// Flight returns the flight registered for (airline, name, timestamp).
func (s *Service) Flight(airline types.Address, name string, timestamp uint64) (types.Flight, bool) {
	return s.store.Flight(identity.FlightKey(airline, name, timestamp, types.StatusUnknown))
}
