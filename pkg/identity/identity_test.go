package identity

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-network/flightsurety/pkg/types"
)

func TestKeccak256KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		{
			name:     "abc",
			input:    "abc",
			expected: "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := Keccak256([]byte(tt.input))
			assert.Equal(t, tt.expected, hex.EncodeToString(k[:]))
		})
	}
}

func TestPackerLayout(t *testing.T) {
	airline := types.MustParseAddress("0x00000000000000000000000000000000000000aa")

	p := new(Packer).Uint8(7).Address(airline).String("ND1309").Uint256(258)
	require.Len(t, p.buf, 1+20+6+32)
	assert.Equal(t, byte(7), p.buf[0])
	assert.Equal(t, byte(0xaa), p.buf[20])
	assert.Equal(t, "ND1309", string(p.buf[21:27]))
	assert.Equal(t, []byte{0x01, 0x02}, p.buf[len(p.buf)-2:])
}

func TestKeysSeparateFields(t *testing.T) {
	airline := AddressFromLabel("AIR1")
	buyer := AddressFromLabel("passenger")

	credit := CreditKey(airline, "ND1309", 1000)
	assert.Equal(t, credit, CreditKey(airline, "ND1309", 1000), "keys are deterministic")
	assert.NotEqual(t, credit, CreditKey(airline, "ND1309", 1001))
	assert.NotEqual(t, credit, PurchaseKey(airline, "ND1309", 1000, buyer), "purchase key includes the buyer")

	assert.NotEqual(t,
		FlightKey(airline, "ND1309", 1000, types.StatusUnknown),
		FlightKey(airline, "ND1309", 1000, types.StatusLateAirline))

	assert.NotEqual(t,
		RequestKey(1, airline, "ND1309", 1000),
		RequestKey(2, airline, "ND1309", 1000))
}

func TestAddressFromLabel(t *testing.T) {
	a := AddressFromLabel("AIR1")
	assert.False(t, a.IsZero())
	assert.Equal(t, a, AddressFromLabel("AIR1"))
	assert.NotEqual(t, a, AddressFromLabel("AIR2"))

	parsed, err := types.ParseAddress(a.Hex())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestRelayDirectory(t *testing.T) {
	relay := AddressFromLabel("relay")
	user := AddressFromLabel("user")

	d := NewRelayDirectory(relay)
	assert.False(t, d.IsEndIdentity(relay))
	assert.True(t, d.IsEndIdentity(user))
	assert.False(t, d.IsEndIdentity(types.ZeroAddress), "null identity is never an end identity")

	d.MarkRelay(user)
	assert.False(t, d.IsEndIdentity(user))
}
