package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-network/flightsurety/pkg/gate"
	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/types"
)

var (
	owner    = identity.AddressFromLabel("owner")
	service  = identity.AddressFromLabel("service")
	stranger = identity.AddressFromLabel("stranger")
	genesis  = identity.AddressFromLabel("AIR1")
	airline2 = identity.AddressFromLabel("AIR2")
	oracle   = identity.AddressFromLabel("oracle-1")
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	g := gate.New(owner)
	require.NoError(t, g.Authorize(owner, service))
	return New(g, genesis, opts...)
}

func TestGenesisAirline(t *testing.T) {
	s := newStore(t)
	assert.True(t, s.IsAirlineRegistered(genesis))
	assert.Equal(t, 1, s.RegisteredAirlineCount())
	assert.False(t, s.IsAirlineRegistered(airline2))
}

func TestMutatorsRequireAuthorization(t *testing.T) {
	s := newStore(t)
	key := identity.CreditKey(genesis, "ND1309", 1)

	tests := []struct {
		name string
		call func(caller types.Address) error
	}{
		{"RegisterAirline", func(c types.Address) error { return s.RegisterAirline(c, airline2) }},
		{"AddFunds", func(c types.Address) error { _, err := s.AddFunds(c, genesis, 1); return err }},
		{"AddVote", func(c types.Address) error { _, err := s.AddVote(c, airline2, genesis); return err }},
		{"RegisterFlight", func(c types.Address) error { return s.RegisterFlight(c, key, types.Flight{}) }},
		{"SetPolicyAmounts", func(c types.Address) error { return s.SetPolicyAmounts(c, 1, key) }},
		{"SetPolicyPayout", func(c types.Address) error { return s.SetPolicyPayout(c, key, 1) }},
		{"TakePayout", func(c types.Address) error { _, err := s.TakePayout(c, key); return err }},
		{"RegisterOracle", func(c types.Address) error { return s.RegisterOracle(c, oracle, [3]uint8{1, 2, 3}) }},
		{"OpenRequest", func(c types.Address) error { return s.OpenRequest(c, key, types.ResponseRecord{}) }},
		{"AddResponse", func(c types.Address) error { _, err := s.AddResponse(c, key, types.StatusOnTime, oracle); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(stranger), types.ErrNotAuthorized)
		})
	}

	assert.False(t, s.IsAirlineRegistered(airline2), "rejected calls leave no trace")
	assert.Equal(t, types.Amount(0), s.Airline(genesis).Funds)
}

func TestMutatorsRequireOperational(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Gate().SetOperatingStatus(owner, false))

	require.ErrorIs(t, s.RegisterAirline(service, airline2), types.ErrNotOperational)
	_, err := s.AddFunds(service, genesis, 5)
	require.ErrorIs(t, err, types.ErrNotOperational)

	require.NoError(t, s.Gate().SetOperatingStatus(owner, true))
	require.NoError(t, s.RegisterAirline(service, airline2))
}

func TestRegisterAirlineOnce(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.RegisterAirline(service, airline2))
	require.ErrorIs(t, s.RegisterAirline(service, airline2), types.ErrAlreadyRegistered)
	assert.Equal(t, 2, s.RegisteredAirlineCount())
}

func TestAddFundsIsMonotonic(t *testing.T) {
	s := newStore(t)
	var want types.Amount
	for _, x := range []types.Amount{3, 0, 7, 11} {
		total, err := s.AddFunds(service, genesis, x)
		require.NoError(t, err)
		want += x
		assert.Equal(t, want, total)
	}
	assert.Equal(t, types.Amount(21), s.Airline(genesis).Funds)
}

func TestAddVoteRejectsDuplicates(t *testing.T) {
	s := newStore(t)
	n, err := s.AddVote(service, airline2, genesis)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, s.HasVoted(airline2, genesis))

	_, err = s.AddVote(service, airline2, genesis)
	require.ErrorIs(t, err, types.ErrAlreadyVoted)
	assert.Equal(t, []types.Address{genesis}, s.Votes(airline2))
}

func TestRegisterFlightDuplicate(t *testing.T) {
	s := newStore(t)
	key := identity.FlightKey(genesis, "ND1309", 1000, types.StatusUnknown)
	f := types.Flight{Airline: genesis, Name: "ND1309", UpdatedTimestamp: 1000}

	require.NoError(t, s.RegisterFlight(service, key, f))
	require.ErrorIs(t, s.RegisterFlight(service, key, f), types.ErrDuplicateFlight)

	got, ok := s.Flight(key)
	require.True(t, ok)
	assert.True(t, got.Registered)
	assert.Equal(t, "ND1309", got.Name)
}

func TestPayoutLifecycle(t *testing.T) {
	s := newStore(t)
	key := identity.CreditKey(genesis, "ND1309", 1000)

	_, err := s.TakePayout(service, key)
	require.ErrorIs(t, err, types.ErrNoEligibleCredit)

	require.NoError(t, s.SetPolicyAmounts(service, 4, key))
	require.NoError(t, s.SetPolicyPayout(service, key, 6))

	payout, err := s.TakePayout(service, key)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(6), payout)
	assert.Equal(t, types.Policy{Amount: 4}, s.Policy(key))

	_, err = s.TakePayout(service, key)
	require.ErrorIs(t, err, types.ErrNoEligibleCredit)

	t.Run("restore keeps the larger payout", func(t *testing.T) {
		require.NoError(t, s.RestorePayout(service, key, 6))
		assert.Equal(t, types.Amount(6), s.Policy(key).Payout)

		require.NoError(t, s.RestorePayout(service, key, 3))
		assert.Equal(t, types.Amount(6), s.Policy(key).Payout)

		require.NoError(t, s.RestorePayout(service, key, 9))
		assert.Equal(t, types.Amount(9), s.Policy(key).Payout)
	})
}

func TestOracleRegistrationIsImmutable(t *testing.T) {
	s := newStore(t)
	_, ok := s.Oracle(oracle)
	require.False(t, ok)

	require.NoError(t, s.RegisterOracle(service, oracle, [3]uint8{4, 5, 6}))
	require.ErrorIs(t, s.RegisterOracle(service, oracle, [3]uint8{7, 8, 9}), types.ErrAlreadyRegistered)

	o, ok := s.Oracle(oracle)
	require.True(t, ok)
	assert.Equal(t, [3]uint8{4, 5, 6}, o.Indexes)
}

func TestResponseRecords(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newStore(t, WithClock(func() time.Time { return now }))
	key := identity.RequestKey(3, genesis, "ND1309", 1000)

	_, err := s.AddResponse(service, key, types.StatusOnTime, oracle)
	require.ErrorIs(t, err, types.ErrRequestNotOpen)

	require.NoError(t, s.OpenRequest(service, key, types.ResponseRecord{Requester: stranger, Index: 3}))

	n, err := s.AddResponse(service, key, types.StatusOnTime, oracle)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.AddResponse(service, key, types.StatusOnTime, oracle)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "repeat submissions are counted")

	rec, ok := s.Response(key)
	require.True(t, ok)
	assert.True(t, rec.Open)
	assert.Equal(t, stranger, rec.Requester)
	assert.Equal(t, now, rec.OpenedAt)

	t.Run("reopening discards partial responses", func(t *testing.T) {
		require.NoError(t, s.OpenRequest(service, key, types.ResponseRecord{Requester: genesis, Index: 3}))
		rec, ok := s.Response(key)
		require.True(t, ok)
		assert.Empty(t, rec.Responses)
		assert.Equal(t, genesis, rec.Requester)
	})

	t.Run("open requests listing", func(t *testing.T) {
		assert.Empty(t, s.OpenRequestsBefore(now))
		pending := s.OpenRequestsBefore(now.Add(time.Minute))
		require.Len(t, pending, 1)
		assert.Equal(t, key, pending[0].Key)
		assert.Equal(t, 0, pending[0].Reports)
	})
}
