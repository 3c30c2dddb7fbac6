package surety

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// oraclesFor registers oracles until n of them hold index. Oracles left
// from an earlier call are reused.
func (h *harness) oraclesFor(t *testing.T, index uint8, n int) []types.Address {
	t.Helper()
	var out []types.Address
	for i := 0; len(out) < n; i++ {
		require.Less(t, i, 500, "no oracle drew index %d", index)
		o := identity.AddressFromLabel(fmt.Sprintf("oracle-%d-%d", index, i))
		indexes, err := h.svc.GetMyIndexes(o)
		if err != nil {
			indexes, err = h.svc.RegisterOracle(h.ctx, o, h.svc.Params().OracleRegistrationFee)
			require.NoError(t, err)
		}
		for _, idx := range indexes {
			if idx == index {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

func TestRegisterOracle(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 50; i++ {
		o := identity.AddressFromLabel(fmt.Sprintf("oracle-%d", i))
		indexes, err := h.svc.RegisterOracle(h.ctx, o, 1)
		require.NoError(t, err)

		seen := map[uint8]bool{}
		for _, idx := range indexes {
			assert.LessOrEqual(t, idx, uint8(9))
			assert.False(t, seen[idx], "duplicate index in %v", indexes)
			seen[idx] = true
		}

		mine, err := h.svc.GetMyIndexes(o)
		require.NoError(t, err)
		assert.Equal(t, indexes, mine)
	}
	assert.Equal(t, types.Amount(50), h.treasury.Balance())
	assert.Equal(t, 50, h.events.Count(notify.KindOracleRegistered))
}

func TestRegisterOracleFailures(t *testing.T) {
	h := newHarness(t)
	o := identity.AddressFromLabel("oracle")

	_, err := h.svc.RegisterOracle(h.ctx, o, 0)
	require.ErrorIs(t, err, types.ErrInsufficientFee)
	_, err = h.svc.GetMyIndexes(o)
	require.ErrorIs(t, err, types.ErrNotRegistered)

	first, err := h.svc.RegisterOracle(h.ctx, o, 5)
	require.NoError(t, err)
	_, err = h.svc.RegisterOracle(h.ctx, o, 5)
	require.ErrorIs(t, err, types.ErrAlreadyRegistered)

	mine, err := h.svc.GetMyIndexes(o)
	require.NoError(t, err)
	assert.Equal(t, first, mine, "registrations are immutable")
	assert.Equal(t, types.Amount(5), h.treasury.Balance())
}

func TestGetOracleIsOwnerOnly(t *testing.T) {
	h := newHarness(t)
	o := identity.AddressFromLabel("oracle")
	indexes, err := h.svc.RegisterOracle(h.ctx, o, 1)
	require.NoError(t, err)

	_, err = h.svc.GetOracle(o, o)
	require.ErrorIs(t, err, types.ErrNotContractOwner)

	got, err := h.svc.GetOracle(owner, o)
	require.NoError(t, err)
	assert.Equal(t, indexes, got)

	_, err = h.svc.GetOracle(owner, passenger)
	require.ErrorIs(t, err, types.ErrNotRegistered)
}

func TestFetchFlightStatusOpensRequest(t *testing.T) {
	h := newHarness(t)

	index, err := h.svc.FetchFlightStatus(h.ctx, passenger, genesis, flightName, flightTime)
	require.NoError(t, err)
	assert.LessOrEqual(t, index, uint8(9))

	rec, ok := h.store.Response(identity.RequestKey(index, genesis, flightName, flightTime))
	require.True(t, ok)
	assert.True(t, rec.Open)
	assert.Equal(t, passenger, rec.Requester)
	assert.Empty(t, rec.Responses)

	requests := h.events.OfKind(notify.KindOracleRequest)
	require.Len(t, requests, 1)
	assert.Equal(t, index, requests[0].Index)
	assert.Equal(t, genesis, requests[0].Airline)
	assert.Equal(t, flightName, requests[0].Flight)
	assert.Equal(t, flightTime, requests[0].Timestamp)
}

func TestSubmitOracleResponseIndexMismatch(t *testing.T) {
	h := newHarness(t)
	o := identity.AddressFromLabel("oracle")
	indexes, err := h.svc.RegisterOracle(h.ctx, o, 1)
	require.NoError(t, err)

	for idx := uint8(0); idx < 10; idx++ {
		mine := false
		for _, have := range indexes {
			mine = mine || have == idx
		}
		if mine {
			continue
		}
		_, err := h.svc.SubmitOracleResponse(h.ctx, o, idx, genesis, flightName, flightTime, types.StatusOnTime)
		require.ErrorIs(t, err, types.ErrIndexMismatch, "index %d", idx)
	}

	_, err = h.svc.SubmitOracleResponse(h.ctx, passenger, indexes[0], genesis, flightName, flightTime, types.StatusOnTime)
	require.ErrorIs(t, err, types.ErrIndexMismatch, "unregistered reporter")
	assert.Zero(t, h.events.Count(notify.KindOracleReport))
}

func TestSubmitOracleResponseRequiresOpenRequest(t *testing.T) {
	h := newHarness(t)
	o := identity.AddressFromLabel("oracle")
	indexes, err := h.svc.RegisterOracle(h.ctx, o, 1)
	require.NoError(t, err)

	_, err = h.svc.SubmitOracleResponse(h.ctx, o, indexes[0], genesis, flightName, flightTime, types.StatusOnTime)
	require.ErrorIs(t, err, types.ErrRequestNotOpen)
}

func TestQuorumFinalizesExactlyOnce(t *testing.T) {
	h := newHarness(t)
	index, err := h.svc.FetchFlightStatus(h.ctx, passenger, genesis, flightName, flightTime)
	require.NoError(t, err)
	reporters := h.oraclesFor(t, index, 5)

	quorum := h.svc.Params().QuorumSize
	for i, o := range reporters {
		report, err := h.svc.SubmitOracleResponse(h.ctx, o, index, genesis, flightName, flightTime, types.StatusOnTime)
		require.NoError(t, err)
		assert.Equal(t, i+1, report.Reports)
		assert.Equal(t, i+1 == quorum, report.Finalized, "report %d", i+1)
		assert.False(t, report.Credited, "ON_TIME never credits")

		want := 0
		if i+1 >= quorum {
			want = 1
		}
		assert.Equal(t, want, h.events.Count(notify.KindOracleFinalized), "after report %d", i+1)
	}
	assert.Equal(t, len(reporters), h.events.Count(notify.KindOracleReport))

	finalized := h.events.OfKind(notify.KindOracleFinalized)[0]
	assert.Equal(t, types.StatusOnTime, finalized.Status)
	assert.Equal(t, index, finalized.Index)

	rec, ok := h.store.Response(identity.RequestKey(index, genesis, flightName, flightTime))
	require.True(t, ok)
	assert.True(t, rec.Open, "records stay open after quorum")
	assert.Len(t, rec.Responses[types.StatusOnTime], len(reporters))
}

func TestQuorumCountsPerStatus(t *testing.T) {
	h := newHarness(t)
	index, err := h.svc.FetchFlightStatus(h.ctx, passenger, genesis, flightName, flightTime)
	require.NoError(t, err)
	reporters := h.oraclesFor(t, index, 4)

	statuses := []types.StatusCode{types.StatusOnTime, types.StatusLateWeather, types.StatusOnTime, types.StatusLateWeather}
	for i, o := range reporters {
		report, err := h.svc.SubmitOracleResponse(h.ctx, o, index, genesis, flightName, flightTime, statuses[i])
		require.NoError(t, err)
		assert.False(t, report.Finalized)
	}
	assert.Zero(t, h.events.Count(notify.KindOracleFinalized))
}

func TestRepeatSubmissionsAreCounted(t *testing.T) {
	h := newHarness(t)
	index, err := h.svc.FetchFlightStatus(h.ctx, passenger, genesis, flightName, flightTime)
	require.NoError(t, err)
	o := h.oraclesFor(t, index, 1)[0]

	var report Report
	for i := 0; i < 3; i++ {
		report, err = h.svc.SubmitOracleResponse(h.ctx, o, index, genesis, flightName, flightTime, types.StatusLateOther)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, report.Reports)
	assert.True(t, report.Finalized)
}

func TestFetchFlightStatusReplacesPartialReports(t *testing.T) {
	h := newHarness(t)
	index, err := h.svc.FetchFlightStatus(h.ctx, passenger, genesis, flightName, flightTime)
	require.NoError(t, err)
	reporters := h.oraclesFor(t, index, 2)
	for _, o := range reporters {
		_, err := h.svc.SubmitOracleResponse(h.ctx, o, index, genesis, flightName, flightTime, types.StatusOnTime)
		require.NoError(t, err)
	}
	key := identity.RequestKey(index, genesis, flightName, flightTime)

	// Keep fetching until the same index is drawn again.
	for i := 0; ; i++ {
		require.Less(t, i, 500)
		again, err := h.svc.FetchFlightStatus(h.ctx, passenger, genesis, flightName, flightTime)
		require.NoError(t, err)
		if again == index {
			break
		}
	}
	rec, ok := h.store.Response(key)
	require.True(t, ok)
	assert.True(t, rec.Open)
	assert.Empty(t, rec.Responses)
}

func TestRegisterOracleRefusedFeeKeepsDrawCounter(t *testing.T) {
	h := newHarness(t)
	treasury := &countingTreasury{MemoryTreasury: h.treasury, refuse: true}
	h.svc.treasury = treasury
	oracle := identity.AddressFromLabel("oracle-refused")

	_, err := h.svc.RegisterOracle(h.ctx, oracle, h.svc.Params().OracleRegistrationFee)
	require.Error(t, err)
	assert.Equal(t, uint64(0), h.svc.generator.Counter())
	_, err = h.svc.GetMyIndexes(oracle)
	require.ErrorIs(t, err, types.ErrNotRegistered)
	assert.Zero(t, h.events.Count(notify.KindOracleRegistered))

	treasury.refuse = false
	first, err := h.svc.RegisterOracle(h.ctx, oracle, h.svc.Params().OracleRegistrationFee)
	require.NoError(t, err)

	fresh := newHarness(t)
	expected, err := fresh.svc.RegisterOracle(fresh.ctx, oracle, fresh.svc.Params().OracleRegistrationFee)
	require.NoError(t, err)
	assert.Equal(t, expected, first, "a refused registration must not shift later draws")
}
