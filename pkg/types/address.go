package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the byte length of an account identity.
const AddressLength = 20

// Address identifies an account (airline, passenger, oracle, owner or service).
type Address [AddressLength]byte

// ZeroAddress is the null identity.
var ZeroAddress Address

// ParseAddress decodes a 0x-prefixed (or bare) 40 character hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(raw) != AddressLength*2 {
		return a, fmt.Errorf("invalid address %q: want %d hex characters", s, AddressLength*2)
	}
	if _, err := hex.Decode(a[:], []byte(raw)); err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants; it panics on malformed input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the null identity.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Hex returns the lowercase 0x-prefixed form.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Key is a 32 byte record identity derived by hashing logical fields.
type Key [32]byte

// Hex returns the lowercase 0x-prefixed form.
func (k Key) Hex() string { return "0x" + hex.EncodeToString(k[:]) }

func (k Key) String() string { return k.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.Hex()), nil }
