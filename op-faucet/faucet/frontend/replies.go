package frontend

import (
	"fmt"
	"time"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

const (
	replyInvalidAddress = "Invalid wallet address. Please provide a valid EVM address."
	replyOutOfFunds     = "Faucet wallet is out of funds. Please contact the admin."
)

func usageReply(keyword string) string {
	return fmt.Sprintf("Usage: `%s <wallet_address>`", keyword)
}

func cooldownReply(remaining time.Duration) string {
	return fmt.Sprintf("Please wait %d minutes before requesting again.", CooldownMinutes(remaining))
}

// sentReply echoes the address as the user typed it.
func sentReply(amount eth.ETH, symbol string, to string, txURL string) string {
	return fmt.Sprintf("Sent %s %s to %s! Tx: %s", amount.EtherString(), symbol, to, txURL)
}

func failedReply(symbol string) string {
	return fmt.Sprintf("Failed to send %s. Please try again later or contact the admin.", symbol)
}

// CooldownMinutes rounds the remaining cooldown up to whole minutes.
func CooldownMinutes(remaining time.Duration) int64 {
	if remaining <= 0 {
		return 0
	}
	return int64((remaining + time.Minute - 1) / time.Minute)
}
