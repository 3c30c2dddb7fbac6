package types

import "math"

// Amount is a quantity of base value units held or moved by the protocol.
type Amount uint64

// AddChecked returns a+b, or false when the sum overflows.
func (a Amount) AddChecked(b Amount) (Amount, bool) {
	if b > math.MaxUint64-a {
		return 0, false
	}
	return a + b, true
}

// Payout returns floor(a * 3 / 2) without overflowing the intermediate product.
func (a Amount) Payout() Amount {
	return a + a/2
}
