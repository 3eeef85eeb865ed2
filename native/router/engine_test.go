package router_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"swaprouter/core/events"
	"swaprouter/native/bank"
	"swaprouter/native/router"
	"swaprouter/native/token"
	"swaprouter/native/venue"
)

type memState struct {
	owner    [20]byte
	hasOwner bool
	targets  map[[20]byte]bool
	signers  map[[20]byte]bool
	nonces   map[string]bool
}

func newMemState() *memState {
	return &memState{
		targets: make(map[[20]byte]bool),
		signers: make(map[[20]byte]bool),
		nonces:  make(map[string]bool),
	}
}

func (s *memState) Owner() ([20]byte, bool, error) { return s.owner, s.hasOwner, nil }

func (s *memState) SetOwner(addr [20]byte) error {
	s.owner = addr
	s.hasOwner = true
	return nil
}

func (s *memState) SwapTarget(addr [20]byte) (bool, error) { return s.targets[addr], nil }

func (s *memState) SetSwapTarget(addr [20]byte, enabled bool) error {
	if enabled {
		s.targets[addr] = true
	} else {
		delete(s.targets, addr)
	}
	return nil
}

func (s *memState) ValidSigner(addr [20]byte) (bool, error) { return s.signers[addr], nil }

func (s *memState) SetValidSigner(addr [20]byte, enabled bool) error {
	if enabled {
		s.signers[addr] = true
	} else {
		delete(s.signers, addr)
	}
	return nil
}

func (s *memState) QuoteNonceUsed(signer [20]byte, nonce [32]byte) (bool, error) {
	return s.nonces[string(signer[:])+string(nonce[:])], nil
}

func (s *memState) MarkQuoteNonce(signer [20]byte, nonce [32]byte) error {
	s.nonces[string(signer[:])+string(nonce[:])] = true
	return nil
}

func addr(last byte) [20]byte {
	var a [20]byte
	a[19] = last
	return a
}

type fixture struct {
	engine   *router.Engine
	state    *memState
	bank     *bank.Ledger
	tka      *token.Ledger
	tkb      *token.Ledger
	exchange *venue.Exchange

	custody   [20]byte
	owner     [20]byte
	caller    [20]byte
	venueAddr [20]byte
	tkaAddr   [20]byte
	tkbAddr   [20]byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		state:     newMemState(),
		custody:   addr(0xC0),
		owner:     addr(0x01),
		caller:    addr(0x02),
		venueAddr: addr(0xD0),
		tkaAddr:   addr(0xA1),
		tkbAddr:   addr(0xA2),
	}
	f.engine = router.NewEngine(f.custody, f.state)
	require.NoError(t, f.engine.Bootstrap(f.owner))

	f.bank = bank.NewLedger()
	f.bank.SetReceiveHook(f.custody, f.engine.AllowReceive)
	f.engine.SetBank(f.bank)
	f.engine.AddSnapshotter(f.bank)

	f.tka = token.NewLedger(token.Config{Name: "Token A", Symbol: "TKA", Decimals: 18, Address: f.tkaAddr, Style: token.PermitStyleStandard})
	f.tkb = token.NewLedger(token.Config{Name: "Token B", Symbol: "TKB", Decimals: 18, Address: f.tkbAddr})
	tokens := router.TokenMap{f.tkaAddr: f.tka, f.tkbAddr: f.tkb}
	f.engine.SetTokens(tokens)
	f.engine.AddSnapshotter(f.tka)
	f.engine.AddSnapshotter(f.tkb)

	registry := venue.NewRegistry()
	f.exchange = venue.NewExchange(f.venueAddr, tokens, f.bank)
	registry.Register(f.venueAddr, f.exchange)
	f.engine.SetExecutor(registry)
	require.NoError(t, f.state.SetSwapTarget(f.venueAddr, true))

	f.tka.Mint(f.caller, big.NewInt(1_000_000))
	f.tkb.Mint(f.venueAddr, big.NewInt(1_000_000))
	f.bank.Mint(f.caller, big.NewInt(1_000_000))
	f.bank.Mint(f.venueAddr, big.NewInt(1_000_000))
	return f
}

func (f *fixture) swapCalldata(t *testing.T, sell, buy [20]byte, amount, minOut int64) []byte {
	t.Helper()
	calldata, err := venue.PackSwap(venue.SwapOrder{
		SellToken:    sell,
		BuyToken:     buy,
		SellAmount:   big.NewInt(amount),
		MinBuyAmount: big.NewInt(minOut),
	})
	require.NoError(t, err)
	return calldata
}

func balance(t *testing.T, ledger interface {
	BalanceOf([20]byte) (*big.Int, error)
}, addr [20]byte) int64 {
	t.Helper()
	bal, err := ledger.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Int64()
}

func TestFillTokenToToken(t *testing.T) {
	f := newFixture(t)
	f.exchange.SetRate(f.tkaAddr, f.tkbAddr, big.NewRat(2, 1))
	f.tka.Approve(f.caller, f.custody, big.NewInt(10_000))

	settlement, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, f.tkaAddr, f.tkbAddr, 9_970, 0),
		SellAmount: big.NewInt(10_000),
		FeeBps:     30,
	})
	require.NoError(t, err)
	require.Equal(t, int64(30), settlement.Fee.Int64())
	require.Equal(t, int64(19_940), settlement.BuyAmount.Int64())

	require.Equal(t, int64(990_000), balance(t, f.tka, f.caller))
	require.Equal(t, int64(19_940), balance(t, f.tkb, f.caller))
	require.Equal(t, int64(30), balance(t, f.tka, f.custody))
	require.Equal(t, int64(9_970), balance(t, f.tka, f.venueAddr))
	require.Equal(t, int64(0), f.tka.Allowance(f.caller, f.custody).Int64())
}

func TestFillEthToToken(t *testing.T) {
	f := newFixture(t)
	f.exchange.SetRate(router.NativeAsset, f.tkbAddr, big.NewRat(3, 1))

	settlement, err := f.engine.FillQuoteEthToToken(context.Background(), f.caller, router.Quote{
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, router.NativeAsset, f.tkbAddr, 9_900, 0),
		SellAmount: big.NewInt(10_000),
		FeeBps:     100,
	}, big.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, router.NativeAsset, settlement.SellAsset)
	require.Equal(t, int64(100), settlement.Fee.Int64())
	require.Equal(t, int64(29_700), settlement.BuyAmount.Int64())

	require.Equal(t, int64(990_000), balance(t, f.bank, f.caller))
	require.Equal(t, int64(100), balance(t, f.bank, f.custody))
	require.Equal(t, int64(1_009_900), balance(t, f.bank, f.venueAddr))
	require.Equal(t, int64(29_700), balance(t, f.tkb, f.caller))
}

func TestFillEthToTokenValueMismatch(t *testing.T) {
	f := newFixture(t)
	f.exchange.SetRate(router.NativeAsset, f.tkbAddr, big.NewRat(1, 1))
	quote := router.Quote{
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, router.NativeAsset, f.tkbAddr, 10_000, 0),
		SellAmount: big.NewInt(10_000),
	}
	_, err := f.engine.FillQuoteEthToToken(context.Background(), f.caller, quote, big.NewInt(9_999))
	require.ErrorIs(t, err, router.ErrValueMismatch)
	_, err = f.engine.FillQuoteEthToToken(context.Background(), f.caller, quote, nil)
	require.ErrorIs(t, err, router.ErrValueMismatch)
	require.Equal(t, int64(1_000_000), balance(t, f.bank, f.caller))
}

func TestFillTokenToEth(t *testing.T) {
	f := newFixture(t)
	f.exchange.SetRate(f.tkaAddr, router.NativeAsset, big.NewRat(1, 2))
	f.tka.Approve(f.caller, f.custody, big.NewInt(10_000))

	settlement, err := f.engine.FillQuoteTokenToEth(context.Background(), f.caller, router.Quote{
		SellAsset:  f.tkaAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, f.tkaAddr, router.NativeAsset, 10_000, 0),
		SellAmount: big.NewInt(10_000),
		FeeBps:     0,
	})
	require.NoError(t, err)
	require.Equal(t, router.NativeAsset, settlement.BuyAsset)
	require.Equal(t, int64(5_000), settlement.BuyAmount.Int64())

	require.Equal(t, int64(1_005_000), balance(t, f.bank, f.caller))
	require.Equal(t, int64(0), balance(t, f.bank, f.custody))
	require.Equal(t, int64(10_000), balance(t, f.tka, f.venueAddr))
}

func TestFillRejectsUnauthorizedTarget(t *testing.T) {
	f := newFixture(t)
	rogue := addr(0xEE)
	f.tka.Approve(f.caller, f.custody, big.NewInt(10_000))

	_, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     rogue,
		Calldata:   f.swapCalldata(t, f.tkaAddr, f.tkbAddr, 10_000, 0),
		SellAmount: big.NewInt(10_000),
	})
	require.ErrorIs(t, err, router.ErrTargetNotAuth)
	// Nothing may move before the allow-list check passes.
	require.Equal(t, int64(1_000_000), balance(t, f.tka, f.caller))
	require.Equal(t, int64(10_000), f.tka.Allowance(f.caller, f.custody).Int64())
}

func TestFillRejectsZeroSellAmount(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, router.Quote{
		SellAsset: f.tkaAddr,
		BuyAsset:  f.tkbAddr,
		Target:    f.venueAddr,
	})
	require.ErrorIs(t, err, router.ErrAmountRequired)
}

func TestFillRejectsExcessiveFee(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		SellAmount: big.NewInt(100),
		FeeBps:     router.MaxFeeBps + 1,
	})
	require.ErrorIs(t, err, router.ErrFeeOutOfRange)
}

func TestFillRejectsUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, router.Quote{
		SellAsset:  addr(0x99),
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		SellAmount: big.NewInt(100),
	})
	require.ErrorIs(t, err, router.ErrUnknownToken)
}

func TestVenueFailureRevertsFunding(t *testing.T) {
	f := newFixture(t)
	f.exchange.SetRate(f.tkaAddr, f.tkbAddr, big.NewRat(2, 1))
	f.tka.Approve(f.caller, f.custody, big.NewInt(10_000))

	// The encoded minimum exceeds what the venue can pay, so the fill aborts
	// after funds were pulled from the caller.
	_, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, f.tkaAddr, f.tkbAddr, 9_970, 1_000_000),
		SellAmount: big.NewInt(10_000),
		FeeBps:     30,
	})
	require.ErrorIs(t, err, router.ErrSwapFailed)

	require.Equal(t, int64(1_000_000), balance(t, f.tka, f.caller))
	require.Equal(t, int64(0), balance(t, f.tka, f.custody))
	require.Equal(t, int64(0), balance(t, f.tka, f.venueAddr))
	require.Equal(t, int64(10_000), f.tka.Allowance(f.caller, f.custody).Int64())
}

// reentrantVenue calls back into the engine mid-fill.
type reentrantVenue struct {
	engine *router.Engine
	quote  router.Quote
	caller [20]byte
	inner  error
}

func (v *reentrantVenue) Fill(ctx context.Context, from [20]byte, calldata []byte, value *big.Int) error {
	_, v.inner = v.engine.FillQuoteTokenToToken(ctx, v.caller, v.quote)
	return v.inner
}

func TestReentrantFillRejected(t *testing.T) {
	f := newFixture(t)
	f.tka.Approve(f.caller, f.custody, big.NewInt(20_000))

	quote := router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		SellAmount: big.NewInt(10_000),
	}
	registry := venue.NewRegistry()
	trap := &reentrantVenue{engine: f.engine, quote: quote, caller: f.caller}
	registry.Register(f.venueAddr, trap)
	f.engine.SetExecutor(registry)

	_, err := f.engine.FillQuoteTokenToToken(context.Background(), f.caller, quote)
	require.ErrorIs(t, err, router.ErrSwapFailed)
	require.ErrorIs(t, trap.inner, router.ErrReentrancy)
	require.Equal(t, int64(1_000_000), balance(t, f.tka, f.caller))
}

func TestReceiveGuard(t *testing.T) {
	f := newFixture(t)
	stranger := addr(0x77)
	f.bank.Mint(stranger, big.NewInt(500))

	err := f.bank.Transfer(stranger, f.custody, big.NewInt(100))
	require.ErrorIs(t, err, router.ErrNoReceive)
	require.Equal(t, int64(0), balance(t, f.bank, f.custody))

	// Allow-listed venues may refund unsolicited value.
	require.NoError(t, f.bank.Transfer(f.venueAddr, f.custody, big.NewInt(100)))
	require.Equal(t, int64(100), balance(t, f.bank, f.custody))
}

func TestUpdateSwapTargets(t *testing.T) {
	f := newFixture(t)
	target := addr(0x55)

	require.ErrorIs(t, f.engine.UpdateSwapTargets(f.caller, target, true), router.ErrOnlyOwner)

	require.NoError(t, f.engine.UpdateSwapTargets(f.owner, target, true))
	enabled, err := f.engine.IsAuthorizedTarget(target)
	require.NoError(t, err)
	require.True(t, enabled)

	// Idempotent either direction.
	require.NoError(t, f.engine.UpdateSwapTargets(f.owner, target, true))
	require.NoError(t, f.engine.UpdateSwapTargets(f.owner, target, false))
	require.NoError(t, f.engine.UpdateSwapTargets(f.owner, target, false))
	enabled, err = f.engine.IsAuthorizedTarget(target)
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestUpdateValidSigner(t *testing.T) {
	f := newFixture(t)
	signer := addr(0x66)

	require.ErrorIs(t, f.engine.UpdateValidSigner(f.caller, signer, true), router.ErrOnlyOwner)
	require.NoError(t, f.engine.UpdateValidSigner(f.owner, signer, true))
	enabled, err := f.engine.IsValidSigner(signer)
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t)
	next := addr(0x42)

	require.ErrorIs(t, f.engine.TransferOwnership(f.owner, [20]byte{}), router.ErrZeroAddress)
	require.ErrorIs(t, f.engine.TransferOwnership(f.caller, next), router.ErrOnlyOwner)

	require.NoError(t, f.engine.TransferOwnership(f.owner, next))
	owner, err := f.engine.Owner()
	require.NoError(t, err)
	require.Equal(t, next, owner)

	// The previous owner lost every privilege.
	require.ErrorIs(t, f.engine.UpdateSwapTargets(f.owner, addr(0x55), true), router.ErrOnlyOwner)
	require.NoError(t, f.engine.UpdateSwapTargets(next, addr(0x55), true))
}

func TestBootstrapKeepsExistingOwner(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Bootstrap(addr(0x99)))
	owner, err := f.engine.Owner()
	require.NoError(t, err)
	require.Equal(t, f.owner, owner)

	require.ErrorIs(t, f.engine.Bootstrap([20]byte{}), router.ErrZeroAddress)
}

func TestWithdrawToken(t *testing.T) {
	f := newFixture(t)
	f.tka.Mint(f.custody, big.NewInt(5_000))
	sink := addr(0x33)

	require.ErrorIs(t, f.engine.WithdrawToken(f.caller, f.tkaAddr, sink, big.NewInt(100)), router.ErrOnlyOwner)
	require.ErrorIs(t, f.engine.WithdrawToken(f.owner, f.tkaAddr, sink, big.NewInt(0)), router.ErrAmountRequired)
	require.ErrorIs(t, f.engine.WithdrawToken(f.owner, addr(0x99), sink, big.NewInt(100)), router.ErrUnknownToken)

	require.NoError(t, f.engine.WithdrawToken(f.owner, f.tkaAddr, sink, big.NewInt(5_000)))
	require.Equal(t, int64(5_000), balance(t, f.tka, sink))
	require.Equal(t, int64(0), balance(t, f.tka, f.custody))

	err := f.engine.WithdrawToken(f.owner, f.tkaAddr, sink, big.NewInt(1))
	require.ErrorIs(t, err, token.ErrInsufficientBalance)
}

func TestWithdrawEth(t *testing.T) {
	f := newFixture(t)
	f.bank.Mint(f.custody, big.NewInt(7_500))
	sink := addr(0x34)

	require.ErrorIs(t, f.engine.WithdrawEth(f.caller, sink, big.NewInt(100)), router.ErrOnlyOwner)
	require.ErrorIs(t, f.engine.WithdrawEth(f.owner, sink, nil), router.ErrAmountRequired)

	require.NoError(t, f.engine.WithdrawEth(f.owner, sink, big.NewInt(7_500)))
	require.Equal(t, int64(7_500), balance(t, f.bank, sink))
	require.Equal(t, int64(0), balance(t, f.bank, f.custody))
}

func TestFillWithStandardPermit(t *testing.T) {
	f := newFixture(t)
	key, err := generateKey()
	require.NoError(t, err)
	holder := keyAddress(key)
	f.tka.Mint(holder, big.NewInt(50_000))
	f.exchange.SetRate(f.tkaAddr, f.tkbAddr, big.NewRat(1, 1))

	value := big.NewInt(10_000)
	deadline := int64(0)
	digest := f.tka.PermitDigest(holder, f.custody, value, f.tka.Nonce(holder), deadline)
	sig, err := signDigest(digest, key)
	require.NoError(t, err)
	v, r, s := token.SplitSignature(sig)

	settlement, err := f.engine.FillQuoteTokenToTokenWithPermit(context.Background(), holder, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, f.tkaAddr, f.tkbAddr, 10_000, 0),
		SellAmount: value,
	}, router.PermitSignature{
		Kind:     router.PermitStandard,
		Value:    value,
		Deadline: deadline,
		V:        v,
		R:        r,
		S:        s,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10_000), settlement.BuyAmount.Int64())
	// The permit allowance is consumed in full by the settlement.
	require.Equal(t, int64(0), f.tka.Allowance(holder, f.custody).Int64())
	require.Equal(t, uint64(1), f.tka.Nonce(holder))
}

func TestFillPermitValueMustMatchSellAmount(t *testing.T) {
	f := newFixture(t)
	key, err := generateKey()
	require.NoError(t, err)
	holder := keyAddress(key)
	f.tka.Mint(holder, big.NewInt(50_000))

	digest := f.tka.PermitDigest(holder, f.custody, big.NewInt(20_000), 0, 0)
	sig, err := signDigest(digest, key)
	require.NoError(t, err)
	v, r, s := token.SplitSignature(sig)

	_, err = f.engine.FillQuoteTokenToTokenWithPermit(context.Background(), holder, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		SellAmount: big.NewInt(10_000),
	}, router.PermitSignature{
		Kind:  router.PermitStandard,
		Value: big.NewInt(20_000),
		V:     v,
		R:     r,
		S:     s,
	})
	require.ErrorIs(t, err, router.ErrPermitValue)
}

func TestFillWithAllowedPermit(t *testing.T) {
	f := newFixture(t)
	dai := token.NewLedger(token.Config{Name: "Dai Stablecoin", Symbol: "DAI", Decimals: 18, Address: addr(0xA3), Style: token.PermitStyleAllowed})
	daiAddr := dai.Address()
	tokens := router.TokenMap{daiAddr: dai, f.tkbAddr: f.tkb}
	f.engine.SetTokens(tokens)
	f.engine.AddSnapshotter(dai)
	exchange := venue.NewExchange(f.venueAddr, tokens, f.bank)
	exchange.SetRate(daiAddr, f.tkbAddr, big.NewRat(1, 1))
	registry := venue.NewRegistry()
	registry.Register(f.venueAddr, exchange)
	f.engine.SetExecutor(registry)

	key, err := generateKey()
	require.NoError(t, err)
	holder := keyAddress(key)
	dai.Mint(holder, big.NewInt(50_000))

	digest := dai.PermitAllowedDigest(holder, f.custody, 0, 0, true)
	sig, err := signDigest(digest, key)
	require.NoError(t, err)
	v, r, s := token.SplitSignature(sig)

	settlement, err := f.engine.FillQuoteTokenToTokenWithPermit(context.Background(), holder, router.Quote{
		SellAsset:  daiAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		Calldata:   f.swapCalldata(t, daiAddr, f.tkbAddr, 10_000, 0),
		SellAmount: big.NewInt(10_000),
	}, router.PermitSignature{
		Kind:    router.PermitAllowed,
		Allowed: true,
		V:       v,
		R:       r,
		S:       s,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10_000), settlement.BuyAmount.Int64())

	// The unlimited sentinel survives the transfer untouched.
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.Zero(t, dai.Allowance(holder, f.custody).Cmp(max))
}

func TestFillRejectsUnknownPermitKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.FillQuoteTokenToTokenWithPermit(context.Background(), f.caller, router.Quote{
		SellAsset:  f.tkaAddr,
		BuyAsset:   f.tkbAddr,
		Target:     f.venueAddr,
		SellAmount: big.NewInt(100),
	}, router.PermitSignature{})
	require.ErrorIs(t, err, router.ErrPermitKind)
	require.Equal(t, int64(1_000_000), balance(t, f.tka, f.caller))
}

func TestWithdrawEventsEmitted(t *testing.T) {
	f := newFixture(t)
	emitter := &captureEmitter{}
	f.engine.SetEmitter(emitter)
	f.tka.Mint(f.custody, big.NewInt(100))
	f.bank.Mint(f.custody, big.NewInt(100))

	require.NoError(t, f.engine.WithdrawToken(f.owner, f.tkaAddr, f.owner, big.NewInt(100)))
	require.NoError(t, f.engine.WithdrawEth(f.owner, f.owner, big.NewInt(100)))
	require.Equal(t, []string{"router.token_withdrawn", "router.eth_withdrawn"}, emitter.types)
}

func generateKey() (*ecdsa.PrivateKey, error) { return ethcrypto.GenerateKey() }

func keyAddress(key *ecdsa.PrivateKey) [20]byte {
	return ethcrypto.PubkeyToAddress(key.PublicKey)
}

func signDigest(digest [32]byte, key *ecdsa.PrivateKey) ([]byte, error) {
	return ethcrypto.Sign(digest[:], key)
}

// captureEmitter records emitted event types in order.
type captureEmitter struct {
	types []string
}

func (c *captureEmitter) Emit(evt events.Event) {
	if evt != nil {
		c.types = append(c.types, evt.EventType())
	}
}
