package frontend

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrBadChecksum    = errors.New("address checksum mismatch")
)

// Command is a chat message addressed to the faucet: the keyword and the tokens following it.
type Command struct {
	Keyword string
	Args    []string
}

// ParseCommand splits the message content on whitespace,
// and matches the first token case-insensitively against the command keyword.
func ParseCommand(content string, keyword string) (Command, bool) {
	tokens := strings.Fields(content)
	if len(tokens) == 0 {
		return Command{}, false
	}
	if !strings.EqualFold(tokens[0], keyword) {
		return Command{}, false
	}
	return Command{Keyword: tokens[0], Args: tokens[1:]}, true
}

// ParseAddress accepts 40 hex characters, with an optional 0x prefix.
// All-lowercase and all-uppercase addresses are accepted as-is,
// mixed-case addresses must carry a valid EIP-55 checksum.
func ParseAddress(s string) (common.Address, error) {
	hexPart := strings.TrimPrefix(s, "0x")
	if len(hexPart) != 2*common.AddressLength || !isHex(hexPart) {
		return common.Address{}, ErrInvalidAddress
	}
	addr := common.HexToAddress(hexPart)
	if hexPart != strings.ToLower(hexPart) && hexPart != strings.ToUpper(hexPart) {
		if addr.Hex()[2:] != hexPart {
			return common.Address{}, ErrBadChecksum
		}
	}
	return addr, nil
}

func isHex(s string) bool {
	for _, c := range []byte(s) {
		switch {
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'f':
		case 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}
