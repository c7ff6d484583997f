package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

const maxIDLength = 100

var ErrInvalidID = errors.New("invalid user ID")

// UserID identifies a chat user across messages, and keys the rate-limit table.
type UserID string

// ParseUserID accepts any non-empty ID of at most 100 bytes.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if len(s) > maxIDLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidID, maxIDLength)
	}
	return UserID(s), nil
}

func (id UserID) String() string {
	return string(id)
}

// FaucetRequest is a validated funding request of one chat user.
type FaucetRequest struct {
	Requester     UserID
	RequesterName string
	Target        common.Address
	Amount        eth.ETH
	// Arrival is when the command was received
	Arrival time.Time
}
