package entropy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/types"
)

func TestDrawDistinctAlwaysYieldsThreeDistinctIndexes(t *testing.T) {
	g := NewGenerator(NewDeterministic("test-seed"), types.DefaultParams())

	for i := 0; i < 200; i++ {
		account := identity.AddressFromLabel(fmt.Sprintf("oracle-%d", i))
		idx, err := g.DrawDistinct(account)
		require.NoError(t, err)

		seen := map[uint8]bool{}
		for _, v := range idx {
			assert.Less(t, v, uint8(10), "index must be in [0,9]")
			assert.False(t, seen[v], "indexes must be distinct: %v", idx)
			seen[v] = true
		}
	}
}

func TestDrawIsDeterministic(t *testing.T) {
	account := identity.AddressFromLabel("oracle")
	a := NewGenerator(NewDeterministic("same"), types.DefaultParams())
	b := NewGenerator(NewDeterministic("same"), types.DefaultParams())

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Draw(account), b.Draw(account))
	}
}

func TestCounterWraps(t *testing.T) {
	g := NewGenerator(NewDeterministic("wrap"), types.DefaultParams())
	account := identity.AddressFromLabel("oracle")

	for i := 0; i < 250; i++ {
		g.Draw(account)
	}
	assert.Equal(t, uint64(250), g.Counter())

	g.Draw(account)
	assert.Equal(t, uint64(0), g.Counter(), "counter resets once it passes the wrap bound")
}

func TestDegenerateSourceIsBounded(t *testing.T) {
	g := NewGenerator(NewFixed([32]byte{1}), types.DefaultParams())

	_, err := g.DrawDistinct(identity.AddressFromLabel("oracle"))
	require.ErrorIs(t, err, ErrExhausted)
}

func TestFixedSourceCycles(t *testing.T) {
	f := NewFixed([32]byte{1}, [32]byte{2})
	assert.Equal(t, [32]byte{1}, f.Seed(0))
	assert.Equal(t, [32]byte{2}, f.Seed(0))
	assert.Equal(t, [32]byte{1}, f.Seed(0))
}

func TestSmallDomainCannotHoldThreeIndexes(t *testing.T) {
	params := types.DefaultParams()
	params.IndexDomain = 2
	g := NewGenerator(NewDeterministic("small"), params)

	_, err := g.DrawDistinct(identity.AddressFromLabel("oracle"))
	require.ErrorIs(t, err, ErrExhausted)
}
