// Package identity derives record keys from logical fields and classifies
// account identities.
//
// Keys are Keccak-256 over the packed encoding of their fields, in the order
// the protocol has always used, so they match records persisted by earlier
// deployments.
package identity

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// Packer accumulates fields in packed encoding.
type Packer struct {
	buf []byte
}

// Address appends the 20 raw address bytes.
func (p *Packer) Address(a types.Address) *Packer {
	p.buf = append(p.buf, a[:]...)
	return p
}

// String appends the raw string bytes with no length prefix.
func (p *Packer) String(s string) *Packer {
	p.buf = append(p.buf, s...)
	return p
}

// Uint256 appends v as a 32 byte big-endian word.
func (p *Packer) Uint256(v uint64) *Packer {
	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], v)
	p.buf = append(p.buf, word[:]...)
	return p
}

// Uint8 appends a single byte.
func (p *Packer) Uint8(v uint8) *Packer {
	p.buf = append(p.buf, v)
	return p
}

// Bytes32 appends a 32 byte word verbatim.
func (p *Packer) Bytes32(b [32]byte) *Packer {
	p.buf = append(p.buf, b[:]...)
	return p
}

// Sum returns the Keccak-256 of everything appended so far.
func (p *Packer) Sum() types.Key {
	return Keccak256(p.buf)
}

// Keccak256 hashes data with the legacy (pre-NIST) Keccak padding.
func Keccak256(data ...[]byte) types.Key {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var k types.Key
	h.Sum(k[:0])
	return k
}

// FlightKey identifies a flight: (airline, name, timestamp, status at registration).
func FlightKey(airline types.Address, name string, timestamp uint64, status types.StatusCode) types.Key {
	return new(Packer).Address(airline).String(name).Uint256(timestamp).Uint8(uint8(status)).Sum()
}

// PurchaseKey identifies a passenger's purchase: (airline, flight, timestamp, buyer).
func PurchaseKey(airline types.Address, flight string, timestamp uint64, buyer types.Address) types.Key {
	return new(Packer).Address(airline).String(flight).Uint256(timestamp).Address(buyer).Sum()
}

// CreditKey identifies the per-flight policy credited by consensus: (airline, flight, timestamp).
func CreditKey(airline types.Address, flight string, timestamp uint64) types.Key {
	return new(Packer).Address(airline).String(flight).Uint256(timestamp).Sum()
}

// RequestKey identifies an oracle response record: (index, airline, flight, timestamp).
func RequestKey(index uint8, airline types.Address, flight string, timestamp uint64) types.Key {
	return new(Packer).Uint8(index).Address(airline).String(flight).Uint256(timestamp).Sum()
}

// AddressFromLabel derives a stable address from a human readable label, taking
// the last 20 bytes of its Keccak-256. Used for fixtures and local configuration.
func AddressFromLabel(label string) types.Address {
	k := Keccak256([]byte(label))
	var a types.Address
	copy(a[:], k[len(k)-types.AddressLength:])
	return a
}
