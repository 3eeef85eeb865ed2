package venue

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"swaprouter/native/bank"
	"swaprouter/native/router"
)

var (
	// ErrUnknownVenue indicates no handler is registered at the target
	// address. Reaching this error still means the allow-list admitted the
	// address; registration is wiring, not authorization.
	ErrUnknownVenue = errors.New("venue: no handler registered at target")
	// ErrNoMarket indicates the venue quotes no rate for the asset pair.
	ErrNoMarket = errors.New("venue: no market for pair")
	// ErrSlippage indicates the computed output fell below the caller's
	// encoded minimum.
	ErrSlippage = errors.New("venue: output below minimum")
)

// Venue executes opaque trade calldata pushed to it by the settlement engine
// together with the net sell amount.
type Venue interface {
	Fill(ctx context.Context, from [20]byte, calldata []byte, value *big.Int) error
}

// Registry dispatches forwarded calls to in-process venue handlers and
// satisfies the engine's Executor boundary.
type Registry struct {
	venues map[[20]byte]Venue
}

// NewRegistry creates an empty venue registry.
func NewRegistry() *Registry {
	return &Registry{venues: make(map[[20]byte]Venue)}
}

// Register binds a venue handler to its address.
func (r *Registry) Register(addr [20]byte, v Venue) {
	if v == nil {
		delete(r.venues, addr)
		return
	}
	r.venues[addr] = v
}

// Execute implements router.Executor.
func (r *Registry) Execute(ctx context.Context, caller, target [20]byte, calldata []byte, value *big.Int) error {
	v, ok := r.venues[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVenue, router.AddressHex(target))
	}
	return v.Fill(ctx, caller, calldata, value)
}

type ratePair struct {
	sell [20]byte
	buy  [20]byte
}

// Exchange is a reference venue that fills swaps at fixed rates out of its
// own inventory. It exists so the daemon and integration tests can exercise a
// full settlement round-trip; production targets are external systems.
type Exchange struct {
	address [20]byte
	tokens  router.TokenResolver
	bank    *bank.Ledger
	rates   map[ratePair]*big.Rat
}

// NewExchange creates a venue holding inventory at the supplied address.
func NewExchange(address [20]byte, tokens router.TokenResolver, ledger *bank.Ledger) *Exchange {
	return &Exchange{
		address: address,
		tokens:  tokens,
		bank:    ledger,
		rates:   make(map[ratePair]*big.Rat),
	}
}

// Address returns the venue's inventory address.
func (x *Exchange) Address() [20]byte { return x.address }

// SetRate quotes buy units per sell unit for a directed pair.
func (x *Exchange) SetRate(sell, buy [20]byte, rate *big.Rat) {
	if rate == nil || rate.Sign() <= 0 {
		delete(x.rates, ratePair{sell: sell, buy: buy})
		return
	}
	x.rates[ratePair{sell: sell, buy: buy}] = new(big.Rat).Set(rate)
}

// Fill decodes the swap calldata, applies the pair rate and pays proceeds
// back to the calling engine. The sell-side amount has already been pushed to
// the venue (as tokens, or as the attached value for native legs).
func (x *Exchange) Fill(ctx context.Context, from [20]byte, calldata []byte, value *big.Int) error {
	order, err := DecodeSwap(calldata)
	if err != nil {
		return err
	}
	rate, ok := x.rates[ratePair{sell: order.SellToken, buy: order.BuyToken}]
	if !ok {
		return ErrNoMarket
	}
	out := new(big.Int).Mul(order.SellAmount, rate.Num())
	out.Div(out, rate.Denom())
	if order.MinBuyAmount != nil && out.Cmp(order.MinBuyAmount) < 0 {
		return ErrSlippage
	}
	if order.BuyToken == router.NativeAsset {
		return x.bank.Transfer(x.address, from, out)
	}
	tok, ok := x.tokens.Token(order.BuyToken)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoMarket, router.AddressHex(order.BuyToken))
	}
	return tok.Transfer(x.address, from, out)
}
