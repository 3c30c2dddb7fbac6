package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "prefixed", input: "0x00000000000000000000000000000000000000ff"},
		{name: "bare", input: "00000000000000000000000000000000000000ff"},
		{name: "upper prefix", input: "0X00000000000000000000000000000000000000FF"},
		{name: "too short", input: "0x00ff", wantErr: true},
		{name: "not hex", input: "0xzz000000000000000000000000000000000000ff", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, byte(0xff), a[AddressLength-1])
			assert.Equal(t, "0x00000000000000000000000000000000000000ff", a.Hex())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	in := struct {
		Who Address `json:"who"`
	}{Who: MustParseAddress("0x1111111111111111111111111111111111111111")}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"who":"0x1111111111111111111111111111111111111111"}`, string(raw))

	var out struct {
		Who Address `json:"who"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Who, out.Who)
	assert.False(t, out.Who.IsZero())
	assert.True(t, ZeroAddress.IsZero())
}

func TestAmountPayout(t *testing.T) {
	tests := []struct {
		amount Amount
		payout Amount
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 4},
		{10, 15},
		{math.MaxUint64 / 2, math.MaxUint64/2 + math.MaxUint64/4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("amount_%d", tt.amount), func(t *testing.T) {
			assert.Equal(t, tt.payout, tt.amount.Payout())
		})
	}
}

func TestAmountAddChecked(t *testing.T) {
	sum, ok := Amount(4).AddChecked(6)
	require.True(t, ok)
	assert.Equal(t, Amount(10), sum)

	_, ok = Amount(math.MaxUint64).AddChecked(1)
	assert.False(t, ok)
}

func TestStatusCodeString(t *testing.T) {
	assert.Equal(t, "LATE_AIRLINE", StatusLateAirline.String())
	assert.Equal(t, "STATUS_7", StatusCode(7).String())
	assert.True(t, StatusOnTime.Known())
	assert.False(t, StatusCode(7).Known())
}

func TestErrorsMatchWhenWrapped(t *testing.T) {
	err := fmt.Errorf("register airline: %w", ErrAlreadyVoted)
	assert.True(t, errors.Is(err, ErrAlreadyVoted))
	assert.False(t, errors.Is(err, ErrAlreadyRegistered))

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, CodeAlreadyVoted, perr.Code)
}

func TestResponseRecordClone(t *testing.T) {
	reporter := MustParseAddress("0x2222222222222222222222222222222222222222")
	rec := ResponseRecord{Open: true, Responses: map[StatusCode][]Address{StatusOnTime: {reporter}}}

	cp := rec.Clone()
	cp.Responses[StatusOnTime] = append(cp.Responses[StatusOnTime], reporter)
	assert.Len(t, rec.Responses[StatusOnTime], 1)
	assert.Len(t, cp.Responses[StatusOnTime], 2)
}
