package eth

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/params"
)

var (
	HundredEther        = Ether(100)
	OneEther            = Ether(1)
	OneTenthEther       = GWei(100_000_000)
	OneHundredthEther   = GWei(10_000_000)
	OneGWei             = GWei(1)
	OneWei              = WeiU64(1)
	ZeroWei             = WeiU64(0)
	ErrInvalidEtherText = errors.New("invalid ether amount")
)

// some internal helper constant values
var (
	weiPerGWei = uint256.NewInt(params.GWei)
	weiPerEth  = uint256.NewInt(params.Ether)
)

// etherDecimals is the number of decimals of one ether, denominated in wei.
const etherDecimals = 18

// ETH is a typed ETH (test-)currency integer, expressed in number of wei.
// Most methods and usages prefer a flat value presentation, instead of pointer.
// And return the new value, instead of mutating in-place.
type ETH uint256.Int

// String prints the amount of ETH, with thousands comma-separators, and unit.
// If the amount is perfectly divisible by 1 ether, the amount is printed in ethers.
// If the amount is perfectly divisible by 1 gwei, the amount is printed in gwei.
// If not neatly divisible, the amount is printed in wei.
func (e ETH) String() string {
	vWei := (*uint256.Int)(&e)
	if vWei.Sign() == 0 {
		return "0 wei"
	}
	var vGWei uint256.Int
	var remainder uint256.Int
	vGWei.DivMod(vWei, weiPerGWei, &remainder)
	if remainder.Sign() == 0 {
		var vEth uint256.Int
		vEth.DivMod(vWei, weiPerEth, &remainder)
		if remainder.Sign() == 0 {
			return vEth.PrettyDec(',') + " ether"
		}
		return vGWei.PrettyDec(',') + " gwei"
	}
	return vWei.PrettyDec(',') + " wei"
}

// EtherString returns the amount, string-ified, forced in ether units (excl. unit suffix).
// This is the form users see in chat replies, e.g. "0.1".
func (e ETH) EtherString() string {
	var ethers uint256.Int
	var remainder uint256.Int
	ethers.DivMod((*uint256.Int)(&e), weiPerEth, &remainder)
	if remainder.Sign() == 0 {
		return ethers.Dec()
	}
	// No trailing zeroes
	frac := remainder.Dec()
	suffix := strings.TrimRight(strings.Repeat("0", etherDecimals-len(frac))+frac, "0")
	return ethers.Dec() + "." + suffix
}

// Decimal returns the amount, in wei, in decimal form.
func (e ETH) Decimal() string {
	return (*uint256.Int)(&e).Dec()
}

// WeiFloat returns the amount as floating point number, in wei (approximate).
// Warning: precision loss. This may not present the exact number of wei.
func (e ETH) WeiFloat() float64 {
	return (*uint256.Int)(&e).Float64()
}

// ToBig converts to *big.Int, in wei.
func (e ETH) ToBig() *big.Int {
	return (*uint256.Int)(&e).ToBig()
}

// Add adds v and returns the result. No value is mutated.
// Add panics if the computation overflows uint256.
func (e ETH) Add(v ETH) (out ETH) {
	_, overflow := (*uint256.Int)(&out).AddOverflow((*uint256.Int)(&e), (*uint256.Int)(&v))
	if overflow {
		panic(fmt.Errorf("add overflow: %s + %s != %s", e, v, out))
	}
	return
}

// Mul multiplies by the given uint64 scalar, and returns the result. No value is mutated.
// Mul panics if the given computation overflows uint256.
func (e ETH) Mul(scalar uint64) (out ETH) {
	_, overflow := (*uint256.Int)(&out).MulOverflow((*uint256.Int)(&e), uint256.NewInt(scalar))
	if overflow {
		panic(fmt.Errorf("overflow on ETH mul: %s * %d != %s", e, scalar, out))
	}
	return
}

// Lt returns if this is less than the given ETH value.
func (e ETH) Lt(v ETH) bool {
	return (*uint256.Int)(&e).Lt((*uint256.Int)(&v))
}

// IsZero returns if this equals 0.
func (e ETH) IsZero() bool {
	return (*uint256.Int)(&e).IsZero()
}

// UnmarshalText parses an amount in ether units, see ParseEther.
func (e *ETH) UnmarshalText(data []byte) error {
	v, err := ParseEther(string(data))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// MarshalText marshals the amount in ether units, without unit suffix.
func (e ETH) MarshalText() ([]byte, error) {
	return []byte(e.EtherString()), nil
}

// ParseEther parses a decimal amount of ether, e.g. "0.1" or "2", into ETH-typed wei.
// Up to 18 fractional digits are accepted; anything finer than 1 wei is rejected.
func ParseEther(s string) (ETH, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return ETH{}, fmt.Errorf("%w: %q", ErrInvalidEtherText, s)
	}
	if hasDot && frac == "" {
		return ETH{}, fmt.Errorf("%w: %q has no digits after the decimal point", ErrInvalidEtherText, s)
	}
	if len(frac) > etherDecimals {
		return ETH{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidEtherText, s, etherDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", etherDecimals-len(frac))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return ETH{}, fmt.Errorf("%w: %q", ErrInvalidEtherText, s)
		}
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ZeroWei, nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return ETH{}, fmt.Errorf("%w: %q: %w", ErrInvalidEtherText, s, err)
	}
	return ETH(*v), nil
}

// WeiBig turns the given big.Int amount of wei into ETH-typed wei.
// This panics if the amount does not fit in 256 bits, or if it is negative.
func WeiBig(wei *big.Int) (out ETH) {
	if wei == nil {
		panic("nil *big.Int input to ETH constructor")
	}
	if wei.Sign() < 0 {
		panic("negative amounts are not supported")
	}
	overflow := (*uint256.Int)(&out).SetFromBig(wei)
	if overflow {
		panic("*big.Int input does not fit in uint256")
	}
	return
}

// WeiU64 turns the given uint64 amount of wei into ETH-typed wei.
func WeiU64(wei uint64) (out ETH) {
	(*uint256.Int)(&out).SetUint64(wei)
	return
}

// GWei turns the given amount of GWei into ETH-typed wei.
func GWei(gwei uint64) (out ETH) {
	var x uint256.Int
	x.SetUint64(gwei)
	x.Mul(&x, weiPerGWei)
	return ETH(x)
}

// Ether turns the given amount of ether into ETH-typed wei.
func Ether(ether uint64) ETH {
	var x uint256.Int
	x.SetUint64(ether)
	x.Mul(&x, weiPerEth)
	return ETH(x)
}
