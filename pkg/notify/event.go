// Package notify is the publish/subscribe channel for protocol notifications.
// Subscribers observe; nothing they do feeds back into protocol state.
package notify

import (
	"context"
	"time"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// Kind names a notification.
type Kind string

const (
	KindAirlineFunded      Kind = "airline.funded"
	KindAirlineRegistered  Kind = "airline.registered"
	KindAirlineVoted       Kind = "airline.voted"
	KindFlightRegistered   Kind = "flight.registered"
	KindInsurancePurchased Kind = "insurance.purchased"
	KindInsuranceCredited  Kind = "insurance.credited"
	KindInsuranceClaimed   Kind = "insurance.claimed"
	KindOracleRegistered   Kind = "oracle.registered"
	KindOracleRequest      Kind = "oracle.request"
	KindOracleReport       Kind = "oracle.report"
	KindOracleFinalized    Kind = "oracle.finalized"
	KindGateStatus         Kind = "gate.status"
)

// Event is a single notification. Fields not relevant to Kind are left zero.
type Event struct {
	Seq  uint64    `json:"seq"`
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`

	Airline     types.Address    `json:"airline"`
	Account     types.Address    `json:"account"`
	Flight      string           `json:"flight,omitempty"`
	Timestamp   uint64           `json:"timestamp,omitempty"`
	Amount      types.Amount     `json:"amount,omitempty"`
	Index       uint8            `json:"index"`
	Status      types.StatusCode `json:"status"`
	Votes       int              `json:"votes,omitempty"`
	Operational *bool            `json:"operational,omitempty"`
}

// Publisher accepts notifications. Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Feed hands out subscriptions that end when ctx is done. With no kinds every
// notification is delivered.
type Feed interface {
	Subscribe(ctx context.Context, buffer int, kinds ...Kind) *Subscription
}

// Nop discards every notification.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) {}
