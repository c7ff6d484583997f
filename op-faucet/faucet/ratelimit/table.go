// Package ratelimit tracks when each chat user was last funded.
package ratelimit

import (
	"time"

	ftypes "github.com/mantlenetworkio/faucet-bot/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/faucet-bot/op-service/locks"
)

// Table maps a user to the instant of their last successful submission.
// Entries are never removed; the table lives as long as the process.
// The zero value is ready to use, and all methods are safe for concurrent use.
type Table struct {
	entries locks.RWMap[ftypes.UserID, time.Time]
	users   locks.KeyedMutex[ftypes.UserID]
}

// Get returns the last submission instant of the user, if any.
func (t *Table) Get(id ftypes.UserID) (time.Time, bool) {
	return t.entries.Get(id)
}

// Set records a successful submission of the user at the given instant.
func (t *Table) Set(id ftypes.UserID, at time.Time) {
	t.entries.Set(id, at)
}

func (t *Table) Len() int {
	return t.entries.Len()
}

// Lock serializes the cooldown check and the entry write of one user.
// Requests of different users do not block each other.
func (t *Table) Lock(id ftypes.UserID) (unlock func()) {
	return t.users.Lock(id)
}

// Remaining returns how much of the cooldown is left for the user at the given instant.
// Zero means the user may request funds.
func (t *Table) Remaining(id ftypes.UserID, now time.Time, cooldown time.Duration) time.Duration {
	last, ok := t.Get(id)
	if !ok {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}
