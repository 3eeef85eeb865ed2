package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"swaprouter/core/events"
)

var (
	errNilState  = errors.New("router engine: state not configured")
	errNotWired  = errors.New("router engine: token, bank and executor backends required")
	errShortfall = errors.New("router engine: custody balance decreased during settlement")
)

type fillKind uint8

const (
	fillTokenToToken fillKind = iota
	fillEthToToken
	fillTokenToEth
)

// Engine orchestrates a settlement: it validates the venue, acquires the
// input asset, extracts the protocol fee, forwards the trade and settles the
// proceeds, all as one unit. It custodies funds only for the lifetime of a
// single settlement plus the retained fee until the owner sweeps it.
type Engine struct {
	custody [20]byte
	state   State
	tokens  TokenResolver
	bank    Bank
	exec    Executor
	emitter events.Emitter
	snaps   []Snapshotter
	nowFn   func() int64

	requireQuoteAuth bool

	// settling guards every state-changing entry point against reentry while
	// control is with the forwarded venue. The allow-list is the primary
	// control; this flag is defense in depth.
	settling     bool
	activeCaller [20]byte
}

// NewEngine creates a settlement engine holding custody at the supplied
// address. Backends are wired via the setters before first use.
func NewEngine(custody [20]byte, state State) *Engine {
	return &Engine{
		custody: custody,
		state:   state,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// Custody returns the engine's own asset address.
func (e *Engine) Custody() [20]byte { return e.custody }

// SetTokens configures the asset resolver used for token legs.
func (e *Engine) SetTokens(tokens TokenResolver) { e.tokens = tokens }

// SetBank configures the native currency ledger.
func (e *Engine) SetBank(bank Bank) { e.bank = bank }

// SetExecutor configures the venue call boundary.
func (e *Engine) SetExecutor(exec Executor) { e.exec = exec }

// SetRequireQuoteAuth toggles rejection of quotes that carry no co-signed
// authorization. Off by default: the zero-signer open mode is a supported
// state.
func (e *Engine) SetRequireQuoteAuth(require bool) { e.requireQuoteAuth = require }

// AddSnapshotter registers a ledger whose mutations must roll back when a
// settlement aborts after funds started moving.
func (e *Engine) AddSnapshotter(s Snapshotter) {
	if s != nil {
		e.snaps = append(e.snaps, s)
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for quote validity windows.
// Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Bootstrap seeds the owner slot when the backing state is empty. Restarting
// against an initialised store keeps the persisted owner.
func (e *Engine) Bootstrap(owner [20]byte) error {
	if owner == ([20]byte{}) {
		return ErrZeroAddress
	}
	_, ok, err := e.state.Owner()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.state.SetOwner(owner)
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// AllowReceive is the native-currency receive guard. Unsolicited inbound
// transfers are accepted only from allow-listed venues (which commonly refund
// unspent value mid-call) and from the caller currently funding a settlement.
func (e *Engine) AllowReceive(from [20]byte, amount *big.Int) error {
	if e.settling && from == e.activeCaller {
		return nil
	}
	ok, err := e.state.SwapTarget(from)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoReceive
	}
	return nil
}

// FillQuoteTokenToToken settles a token-for-token quote against a
// pre-existing allowance.
func (e *Engine) FillQuoteTokenToToken(ctx context.Context, caller [20]byte, q Quote) (*Settlement, error) {
	return e.fill(ctx, caller, q, nil, nil, fillTokenToToken)
}

// FillQuoteTokenToTokenWithPermit settles a token-for-token quote, acquiring
// the allowance from the supplied permit signature first.
func (e *Engine) FillQuoteTokenToTokenWithPermit(ctx context.Context, caller [20]byte, q Quote, permit PermitSignature) (*Settlement, error) {
	return e.fill(ctx, caller, q, &permit, nil, fillTokenToToken)
}

// FillQuoteEthToToken settles a native-for-token quote. The attached value
// must equal the quote's sell amount.
func (e *Engine) FillQuoteEthToToken(ctx context.Context, caller [20]byte, q Quote, value *big.Int) (*Settlement, error) {
	return e.fill(ctx, caller, q, nil, value, fillEthToToken)
}

// FillQuoteTokenToEth settles a token-for-native quote against a
// pre-existing allowance.
func (e *Engine) FillQuoteTokenToEth(ctx context.Context, caller [20]byte, q Quote) (*Settlement, error) {
	return e.fill(ctx, caller, q, nil, nil, fillTokenToEth)
}

// FillQuoteTokenToEthWithPermit settles a token-for-native quote, acquiring
// the allowance from the supplied permit signature first.
func (e *Engine) FillQuoteTokenToEthWithPermit(ctx context.Context, caller [20]byte, q Quote, permit PermitSignature) (*Settlement, error) {
	return e.fill(ctx, caller, q, &permit, nil, fillTokenToEth)
}

func (e *Engine) fill(ctx context.Context, caller [20]byte, q Quote, permit *PermitSignature, value *big.Int, kind fillKind) (*Settlement, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.tokens == nil || e.bank == nil || e.exec == nil {
		return nil, errNotWired
	}
	if e.settling {
		return nil, ErrReentrancy
	}
	e.settling = true
	e.activeCaller = caller
	defer func() {
		e.settling = false
		e.activeCaller = [20]byte{}
	}()

	switch kind {
	case fillEthToToken:
		q.SellAsset = NativeAsset
	case fillTokenToEth:
		q.BuyAsset = NativeAsset
	}
	sellAmount := cloneBigInt(q.SellAmount)
	if sellAmount.Sign() <= 0 {
		return nil, ErrAmountRequired
	}

	// Target validation precedes any asset movement. It is the only gate
	// between attacker-influenced calldata and custody funds.
	authorized, err := e.state.SwapTarget(q.Target)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrTargetNotAuth
	}

	if err := e.verifyQuoteAuth(caller, q); err != nil {
		return nil, err
	}

	fee, net, err := SplitFee(sellAmount, q.FeeBps)
	if err != nil {
		return nil, err
	}

	var sellToken, buyToken Token
	if kind != fillEthToToken {
		tok, ok := e.tokens.Token(q.SellAsset)
		if !ok {
			return nil, ErrUnknownToken
		}
		sellToken = tok
	}
	if kind != fillTokenToEth {
		tok, ok := e.tokens.Token(q.BuyAsset)
		if !ok {
			return nil, ErrUnknownToken
		}
		buyToken = tok
	}

	snaps := e.snapshotAll()
	abort := func(err error) (*Settlement, error) {
		e.revertAll(snaps)
		return nil, err
	}

	// FundsAcquired
	if kind == fillEthToToken {
		if value == nil || value.Cmp(sellAmount) != 0 {
			return nil, ErrValueMismatch
		}
		if err := e.bank.Transfer(caller, e.custody, sellAmount); err != nil {
			return abort(err)
		}
	} else {
		if permit != nil {
			if err := e.acquireAllowance(sellToken, caller, sellAmount, permit); err != nil {
				return abort(err)
			}
		}
		if err := sellToken.TransferFrom(e.custody, caller, e.custody, sellAmount); err != nil {
			return abort(err)
		}
	}

	before, err := e.buySideBalance(kind, buyToken)
	if err != nil {
		return abort(err)
	}

	// Forwarded: exactly one external call carrying the opaque calldata and
	// the net share. Any venue failure aborts the whole settlement.
	callValue := big.NewInt(0)
	if kind == fillEthToToken {
		if net.Sign() > 0 {
			if err := e.bank.Transfer(e.custody, q.Target, net); err != nil {
				return abort(err)
			}
		}
		callValue = net
	} else if net.Sign() > 0 {
		if err := sellToken.Transfer(e.custody, q.Target, net); err != nil {
			return abort(err)
		}
	}
	if err := e.exec.Execute(ctx, e.custody, q.Target, q.Calldata, callValue); err != nil {
		return abort(fmt.Errorf("%w: %v", ErrSwapFailed, err))
	}

	// Settled: the custody balance delta of the buy side passes through to
	// the caller; only the sell-side fee share stays behind.
	after, err := e.buySideBalance(kind, buyToken)
	if err != nil {
		return abort(err)
	}
	delta := new(big.Int).Sub(after, before)
	if delta.Sign() < 0 {
		return abort(errShortfall)
	}
	if delta.Sign() > 0 {
		if kind == fillTokenToEth {
			if err := e.bank.Transfer(e.custody, caller, delta); err != nil {
				return abort(err)
			}
		} else {
			if err := buyToken.Transfer(e.custody, caller, delta); err != nil {
				return abort(err)
			}
		}
	}
	if err := e.burnQuoteNonce(q); err != nil {
		return abort(err)
	}

	settlement := &Settlement{
		SellAsset:  q.SellAsset,
		BuyAsset:   q.BuyAsset,
		Target:     q.Target,
		SellAmount: sellAmount,
		Fee:        fee,
		BuyAmount:  delta,
	}
	e.emit(events.QuoteFilled{
		Caller:     caller,
		SellAsset:  q.SellAsset,
		BuyAsset:   q.BuyAsset,
		Target:     q.Target,
		SellAmount: settlement.SellAmount,
		Fee:        settlement.Fee,
		BuyAmount:  settlement.BuyAmount,
	})
	return settlement.Clone(), nil
}

func (e *Engine) buySideBalance(kind fillKind, buyToken Token) (*big.Int, error) {
	if kind == fillTokenToEth {
		return e.bank.BalanceOf(e.custody)
	}
	return buyToken.BalanceOf(e.custody)
}

func (e *Engine) snapshotAll() []int {
	ids := make([]int, len(e.snaps))
	for i, s := range e.snaps {
		ids[i] = s.Snapshot()
	}
	return ids
}

func (e *Engine) revertAll(ids []int) {
	for i := len(e.snaps) - 1; i >= 0; i-- {
		e.snaps[i].RevertToSnapshot(ids[i])
	}
}

// WithdrawToken sweeps tokens from custody to the supplied recipient. Owner
// only, and never while a settlement is in flight: custody may hold a
// caller's funds mid-call.
func (e *Engine) WithdrawToken(caller, token, to [20]byte, amount *big.Int) error {
	if e.settling {
		return ErrReentrancy
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	tok, ok := e.tokens.Token(token)
	if !ok {
		return ErrUnknownToken
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return ErrAmountRequired
	}
	if err := tok.Transfer(e.custody, to, amt); err != nil {
		return err
	}
	e.emit(events.TokenWithdrawn{Token: token, To: to, Amount: amt})
	return nil
}

// WithdrawEth sweeps native currency from custody to the supplied recipient.
// Same constraints as WithdrawToken.
func (e *Engine) WithdrawEth(caller, to [20]byte, amount *big.Int) error {
	if e.settling {
		return ErrReentrancy
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return ErrAmountRequired
	}
	if err := e.bank.Transfer(e.custody, to, amt); err != nil {
		return err
	}
	e.emit(events.EthWithdrawn{To: to, Amount: amt})
	return nil
}
