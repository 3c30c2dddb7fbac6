// Package entropy draws oracle indexes from an injected seed source.
//
// A draw hashes the seed for the current draw counter together with the
// account being served and reduces it modulo the index domain. The counter
// advances on every draw and wraps once it passes the configured bound. This
// is deterministic given the source; it is not a cryptographic RNG.
package entropy

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/types"
)

// maxAttempts bounds the redraws spent looking for a distinct index.
const maxAttempts = 1024

// ErrExhausted is returned when a source keeps producing colliding indexes.
var ErrExhausted = errors.New("entropy source exhausted while drawing distinct indexes")

// Source supplies a 32 byte seed for a draw. counter is the generator's
// current draw counter, playing the role of a look-back distance into
// recent history.
type Source interface {
	Seed(counter uint64) [32]byte
}

// Deterministic derives seeds by hashing a fixed secret with the counter.
type Deterministic struct {
	secret []byte
}

// NewDeterministic returns a source seeded by secret.
func NewDeterministic(secret string) *Deterministic {
	return &Deterministic{secret: []byte(secret)}
}

// Seed implements Source.
func (d *Deterministic) Seed(counter uint64) [32]byte {
	var c [8]byte
	binary.BigEndian.PutUint64(c[:], counter)
	return identity.Keccak256(d.secret, c[:])
}

// Fixed replays a scripted list of seeds, cycling when exhausted. It ignores
// the counter.
type Fixed struct {
	seeds [][32]byte
	next  int
}

// NewFixed returns a source replaying seeds in order.
func NewFixed(seeds ...[32]byte) *Fixed {
	if len(seeds) == 0 {
		seeds = [][32]byte{{}}
	}
	return &Fixed{seeds: seeds}
}

// Seed implements Source.
func (f *Fixed) Seed(uint64) [32]byte {
	s := f.seeds[f.next%len(f.seeds)]
	f.next++
	return s
}

// Generator draws indexes. It is not safe for concurrent use; the service
// serializes access.
type Generator struct {
	source  Source
	domain  uint8
	wrap    uint64
	counter uint64
}

// NewGenerator returns a generator drawing from [0, params.IndexDomain).
func NewGenerator(source Source, params types.Params) *Generator {
	domain := params.IndexDomain
	if domain == 0 {
		domain = 1
	}
	return &Generator{source: source, domain: domain, wrap: params.DrawCounterWrap}
}

// Counter returns the current draw counter.
func (g *Generator) Counter() uint64 { return g.counter }

// Rewind resets the counter to a value previously returned by Counter, undoing
// the draws of a call that failed.
func (g *Generator) Rewind(counter uint64) { g.counter = counter }

// Draw returns one index for account and advances the counter.
func (g *Generator) Draw(account types.Address) uint8 {
	seed := g.source.Seed(g.counter)
	g.counter++
	k := new(identity.Packer).Bytes32(seed).Address(account).Sum()
	if g.counter > g.wrap {
		g.counter = 0
	}
	v := new(big.Int).SetBytes(k[:])
	return uint8(v.Mod(v, big.NewInt(int64(g.domain))).Uint64())
}

// DrawDistinct returns types.IndexCount distinct indexes for account.
func (g *Generator) DrawDistinct(account types.Address) ([types.IndexCount]uint8, error) {
	var out [types.IndexCount]uint8
	if int(g.domain) < types.IndexCount {
		return out, ErrExhausted
	}
	out[0] = g.Draw(account)
	for i := 1; i < types.IndexCount; i++ {
		attempts := 0
		for {
			candidate := g.Draw(account)
			if !contains(out[:i], candidate) {
				out[i] = candidate
				break
			}
			attempts++
			if attempts >= maxAttempts {
				return out, ErrExhausted
			}
		}
	}
	return out, nil
}

func contains(set []uint8, v uint8) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
