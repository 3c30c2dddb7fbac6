package identity

import (
	"sync"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// Directory tells whether an identity is a directly-authenticated end account
// or a relaying account (a proxy or another contract acting on someone's behalf).
type Directory interface {
	IsEndIdentity(a types.Address) bool
}

// RelayDirectory treats every identity as an end identity unless it was marked
// as a relay.
type RelayDirectory struct {
	mu     sync.RWMutex
	relays map[types.Address]struct{}
}

// NewRelayDirectory returns a directory with the given relays pre-marked.
func NewRelayDirectory(relays ...types.Address) *RelayDirectory {
	d := &RelayDirectory{relays: make(map[types.Address]struct{}, len(relays))}
	for _, r := range relays {
		d.relays[r] = struct{}{}
	}
	return d
}

// MarkRelay records a as a relaying identity.
func (d *RelayDirectory) MarkRelay(a types.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.relays[a] = struct{}{}
}

// IsEndIdentity implements Directory. The null identity is never an end identity.
func (d *RelayDirectory) IsEndIdentity(a types.Address) bool {
	if a.IsZero() {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, relay := d.relays[a]
	return !relay
}
