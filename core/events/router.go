package events

import (
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"swaprouter/core/types"
)

const (
	TypeQuoteFilled        = "router.quote_filled"
	TypeSwapTargetAdded    = "router.swap_target_added"
	TypeSwapTargetRemoved  = "router.swap_target_removed"
	TypeValidSignerUpdated = "router.valid_signer_updated"
	TypeOwnerChanged       = "router.owner_changed"
	TypeTokenWithdrawn     = "router.token_withdrawn"
	TypeEthWithdrawn       = "router.eth_withdrawn"
)

type QuoteFilled struct {
	Caller     [20]byte
	SellAsset  [20]byte
	BuyAsset   [20]byte
	Target     [20]byte
	SellAmount *big.Int
	Fee        *big.Int
	BuyAmount  *big.Int
}

func (QuoteFilled) EventType() string { return TypeQuoteFilled }

func (e QuoteFilled) Event() *types.Event {
	return &types.Event{
		Type: TypeQuoteFilled,
		Attributes: map[string]string{
			"caller":     formatAddr(e.Caller),
			"sellAsset":  formatAddr(e.SellAsset),
			"buyAsset":   formatAddr(e.BuyAsset),
			"target":     formatAddr(e.Target),
			"sellAmount": formatAmount(e.SellAmount),
			"fee":        formatAmount(e.Fee),
			"buyAmount":  formatAmount(e.BuyAmount),
		},
	}
}

type SwapTargetAdded struct {
	Target [20]byte
}

func (SwapTargetAdded) EventType() string { return TypeSwapTargetAdded }

func (e SwapTargetAdded) Event() *types.Event {
	return &types.Event{
		Type:       TypeSwapTargetAdded,
		Attributes: map[string]string{"target": formatAddr(e.Target)},
	}
}

type SwapTargetRemoved struct {
	Target [20]byte
}

func (SwapTargetRemoved) EventType() string { return TypeSwapTargetRemoved }

func (e SwapTargetRemoved) Event() *types.Event {
	return &types.Event{
		Type:       TypeSwapTargetRemoved,
		Attributes: map[string]string{"target": formatAddr(e.Target)},
	}
}

type ValidSignerUpdated struct {
	Signer  [20]byte
	Enabled bool
}

func (ValidSignerUpdated) EventType() string { return TypeValidSignerUpdated }

func (e ValidSignerUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeValidSignerUpdated,
		Attributes: map[string]string{
			"signer":  formatAddr(e.Signer),
			"enabled": strconv.FormatBool(e.Enabled),
		},
	}
}

type OwnerChanged struct {
	NewOwner      [20]byte
	PreviousOwner [20]byte
}

func (OwnerChanged) EventType() string { return TypeOwnerChanged }

func (e OwnerChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeOwnerChanged,
		Attributes: map[string]string{
			"newOwner":      formatAddr(e.NewOwner),
			"previousOwner": formatAddr(e.PreviousOwner),
		},
	}
}

type TokenWithdrawn struct {
	Token  [20]byte
	To     [20]byte
	Amount *big.Int
}

func (TokenWithdrawn) EventType() string { return TypeTokenWithdrawn }

func (e TokenWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenWithdrawn,
		Attributes: map[string]string{
			"token":  formatAddr(e.Token),
			"to":     formatAddr(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}

type EthWithdrawn struct {
	To     [20]byte
	Amount *big.Int
}

func (EthWithdrawn) EventType() string { return TypeEthWithdrawn }

func (e EthWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeEthWithdrawn,
		Attributes: map[string]string{
			"to":     formatAddr(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}

func formatAddr(addr [20]byte) string {
	return ethcommon.BytesToAddress(addr[:]).Hex()
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
