// Package gate holds the process-wide operational flag, the contract owner and
// the set of identities allowed to call the store's mutators.
package gate

import (
	"sync"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// Gate is safe for concurrent use.
type Gate struct {
	mu          sync.RWMutex
	owner       types.Address
	operational bool
	authorized  map[types.Address]struct{}
}

// New returns an operational gate owned by owner with an empty authorization set.
func New(owner types.Address) *Gate {
	return &Gate{
		owner:       owner,
		operational: true,
		authorized:  make(map[types.Address]struct{}),
	}
}

// Owner returns the owner identity.
func (g *Gate) Owner() types.Address { return g.owner }

// IsOperational reports the current flag.
func (g *Gate) IsOperational() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.operational
}

// SetOperatingStatus flips the flag. Only the owner may call it and the mode must differ.
func (g *Gate) SetOperatingStatus(caller types.Address, mode bool) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.operational == mode {
		return types.ErrNoOp
	}
	g.operational = mode
	return nil
}

// Authorize adds target to the authorization set.
func (g *Gate) Authorize(caller, target types.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if target.IsZero() {
		return types.ErrInvalidIdentity
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.authorized[target] = struct{}{}
	return nil
}

// Deauthorize removes target from the authorization set.
func (g *Gate) Deauthorize(caller, target types.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.authorized, target)
	return nil
}

// IsAuthorized reports whether target may call store mutators.
func (g *Gate) IsAuthorized(target types.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.authorized[target]
	return ok
}

// RequireOwner fails with ErrNotContractOwner unless caller is the owner.
func (g *Gate) RequireOwner(caller types.Address) error {
	if caller != g.owner {
		return types.ErrNotContractOwner
	}
	return nil
}

// RequireOperational fails with ErrNotOperational while the flag is off.
func (g *Gate) RequireOperational() error {
	if !g.IsOperational() {
		return types.ErrNotOperational
	}
	return nil
}

// RequireAuthorized fails with ErrNotAuthorized unless caller is on the authorization set.
func (g *Gate) RequireAuthorized(caller types.Address) error {
	if !g.IsAuthorized(caller) {
		return types.ErrNotAuthorized
	}
	return nil
}
