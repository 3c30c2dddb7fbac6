package surety

import (
	"context"
	"fmt"
	"sync"

	"github.com/canopy-network/flightsurety/pkg/types"
)

// Treasury is the value-transfer primitive. Receive takes value into the
// protocol from an account; Transfer pays value out to one.
type Treasury interface {
	Receive(ctx context.Context, from types.Address, amount types.Amount) error
	Transfer(ctx context.Context, to types.Address, amount types.Amount) error
}

// MemoryTreasury keeps the protocol balance and the total paid out per account.
type MemoryTreasury struct {
	mu      sync.Mutex
	balance types.Amount
	paid    map[types.Address]types.Amount
}

// NewMemoryTreasury returns a treasury holding an initial balance.
func NewMemoryTreasury(initial types.Amount) *MemoryTreasury {
	return &MemoryTreasury{balance: initial, paid: make(map[types.Address]types.Amount)}
}

// Receive implements Treasury.
func (t *MemoryTreasury) Receive(_ context.Context, from types.Address, amount types.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	total, ok := t.balance.AddChecked(amount)
	if !ok {
		return fmt.Errorf("receive %d from %s: balance overflow", amount, from)
	}
	t.balance = total
	return nil
}

// Transfer implements Treasury. It fails when the balance cannot cover amount.
func (t *MemoryTreasury) Transfer(ctx context.Context, to types.Address, amount types.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if amount > t.balance {
		return fmt.Errorf("transfer %d to %s: balance %d too low", amount, to, t.balance)
	}
	t.balance -= amount
	t.paid[to] += amount
	return nil
}

// Balance returns the protocol balance.
func (t *MemoryTreasury) Balance() types.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balance
}

// PaidTo returns the total transferred to account.
func (t *MemoryTreasury) PaidTo(account types.Address) types.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paid[account]
}
