package flags

import (
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/faucet-bot/op-service/eth"
)

// EtherFlagValue is a value type for cli.GenericFlag, parsing amounts in ether units.
type EtherFlagValue eth.ETH

var _ cli.Generic = (*EtherFlagValue)(nil)

func NewEtherFlagValue(v eth.ETH) *EtherFlagValue {
	return (*EtherFlagValue)(&v)
}

func (fv *EtherFlagValue) Set(value string) error {
	v, err := eth.ParseEther(value)
	if err != nil {
		return err
	}
	*fv = EtherFlagValue(v)
	return nil
}

func (fv EtherFlagValue) String() string {
	return eth.ETH(fv).EtherString()
}

func (fv EtherFlagValue) ETH() eth.ETH {
	return eth.ETH(fv)
}

func (fv *EtherFlagValue) Clone() any {
	cpy := *fv
	return &cpy
}
