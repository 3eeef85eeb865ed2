package router

import (
	"context"
	"math/big"
)

// State exposes the durable registries the engine mutates: the owner slot,
// the swap target and valid signer allow-lists, and the set of burned quote
// nonces.
type State interface {
	Owner() ([20]byte, bool, error)
	SetOwner(addr [20]byte) error
	SwapTarget(addr [20]byte) (bool, error)
	SetSwapTarget(addr [20]byte, enabled bool) error
	ValidSigner(addr [20]byte) (bool, error)
	SetValidSigner(addr [20]byte, enabled bool) error
	QuoteNonceUsed(signer [20]byte, nonce [32]byte) (bool, error)
	MarkQuoteNonce(signer [20]byte, nonce [32]byte) error
}

// Token is the fungible-asset collaborator boundary. Transfers are expressed
// with an explicit source account; TransferFrom additionally names the
// spender whose allowance is consumed.
type Token interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, owner, to [20]byte, amount *big.Int) error
	Permit(owner, spender [20]byte, value *big.Int, deadline int64, v uint8, r, s [32]byte) error
	PermitAllowed(holder, spender [20]byte, nonce uint64, expiry int64, allowed bool, v uint8, r, s [32]byte) error
}

// TokenResolver maps asset addresses to their token backends.
type TokenResolver interface {
	Token(addr [20]byte) (Token, bool)
}

// TokenMap is a map-backed resolver for wiring and tests.
type TokenMap map[[20]byte]Token

// Token implements TokenResolver.
func (m TokenMap) Token(addr [20]byte) (Token, bool) {
	tok, ok := m[addr]
	return tok, ok
}

// Bank is the native-currency ledger boundary.
type Bank interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Transfer(from, to [20]byte, amount *big.Int) error
}

// Executor forwards opaque calldata and native value to an external venue.
// The engine never interprets the calldata; the executor surfaces venue
// failures as errors.
type Executor interface {
	Execute(ctx context.Context, caller, target [20]byte, calldata []byte, value *big.Int) error
}

// Snapshotter lets the engine roll every asset mutation of an aborted
// settlement back as a unit.
type Snapshotter interface {
	Snapshot() int
	RevertToSnapshot(id int)
}
