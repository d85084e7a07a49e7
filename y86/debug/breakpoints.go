package debug

import (
	"maps"
	"slices"
)

// Breakpoints is the set of addresses at which automatic execution pauses.
// The zero value is not usable, create one with NewBreakpoints.
type Breakpoints struct {
	addrs map[uint64]struct{}
}

// NewBreakpoints returns an empty breakpoint set.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{addrs: make(map[uint64]struct{})}
}

// Add inserts address into the set. Adding an existing address is a no-op.
func (b *Breakpoints) Add(address uint64) {
	b.addrs[address] = struct{}{}
}

// Remove deletes address from the set. Removing an absent address is a no-op.
func (b *Breakpoints) Remove(address uint64) {
	delete(b.addrs, address)
}

// Has reports whether address is a breakpoint.
func (b *Breakpoints) Has(address uint64) bool {
	_, ok := b.addrs[address]
	return ok
}

// Clear removes every breakpoint.
func (b *Breakpoints) Clear() {
	clear(b.addrs)
}

// Len returns the number of breakpoints.
func (b *Breakpoints) Len() int {
	return len(b.addrs)
}

// List returns the breakpoints in ascending order, for display.
func (b *Breakpoints) List() []uint64 {
	return slices.Sorted(maps.Keys(b.addrs))
}
