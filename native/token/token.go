package token

import (
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// PermitStyle selects which signature-based allowance scheme a token
// implements, if any.
type PermitStyle uint8

const (
	// PermitStyleNone disables permit support entirely.
	PermitStyleNone PermitStyle = iota
	// PermitStyleStandard is the value/deadline scheme (EIP-2612).
	PermitStyleStandard
	// PermitStyleAllowed is the holder/expiry/allowed toggle scheme.
	PermitStyleAllowed
)

var (
	// ErrInsufficientBalance rejects transfers exceeding the source balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance rejects transferFrom beyond the approved amount.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrPermitUnsupported indicates the token does not implement the
	// requested permit scheme.
	ErrPermitUnsupported = errors.New("token: permit style unsupported")
	// ErrPermitExpired rejects permits past their deadline or expiry.
	ErrPermitExpired = errors.New("token: permit expired")
	// ErrPermitNonce rejects permits carrying a stale or replayed nonce.
	ErrPermitNonce = errors.New("token: invalid permit nonce")
	// ErrPermitSignature rejects permits whose signature does not recover to
	// the stated owner.
	ErrPermitSignature = errors.New("token: invalid permit signature")
)

// maxAllowance is the unlimited-allowance sentinel set by allowed-style
// permits; transfers never decrement it.
var maxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

type revision struct {
	balances   map[[20]byte]*big.Int
	allowances map[[20]byte]map[[20]byte]*big.Int
	nonces     map[[20]byte]uint64
}

// Ledger is a fungible token ledger with allowances and signature-based
// allowance grants verified against real secp256k1 signatures, mirroring the
// ERC-20 collaborator surface the settlement engine consumes.
type Ledger struct {
	name     string
	symbol   string
	decimals uint8
	address  [20]byte
	style    PermitStyle

	domainSeparator [32]byte

	balances   map[[20]byte]*big.Int
	allowances map[[20]byte]map[[20]byte]*big.Int
	nonces     map[[20]byte]uint64
	journal    []revision

	nowFn func() int64
}

// Config describes a token ledger.
type Config struct {
	Name     string
	Symbol   string
	Decimals uint8
	Version  string
	ChainID  *big.Int
	Address  [20]byte
	Style    PermitStyle
}

// NewLedger constructs an empty ledger and precomputes the EIP-712 domain
// separator used by both permit schemes.
func NewLedger(cfg Config) *Ledger {
	version := cfg.Version
	if version == "" {
		version = "1"
	}
	chainID := cfg.ChainID
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	l := &Ledger{
		name:       cfg.Name,
		symbol:     cfg.Symbol,
		decimals:   cfg.Decimals,
		address:    cfg.Address,
		style:      cfg.Style,
		balances:   make(map[[20]byte]*big.Int),
		allowances: make(map[[20]byte]map[[20]byte]*big.Int),
		nonces:     make(map[[20]byte]uint64),
	}
	l.domainSeparator = domainSeparator(cfg.Name, version, chainID, cfg.Address)
	return l
}

// Name returns the token name bound into the permit domain.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the display symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals returns the display precision.
func (l *Ledger) Decimals() uint8 { return l.decimals }

// Address returns the asset address the ledger answers for.
func (l *Ledger) Address() [20]byte { return l.address }

// Style returns the permit scheme the token implements.
func (l *Ledger) Style() PermitStyle { return l.style }

// SetNowFunc overrides the clock used for deadline checks. For tests.
func (l *Ledger) SetNowFunc(now func() int64) { l.nowFn = now }

func (l *Ledger) now() int64 {
	if l.nowFn != nil {
		return l.nowFn()
	}
	return timeNow()
}

// Mint credits freshly issued supply to an account.
func (l *Ledger) Mint(addr [20]byte, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	l.credit(addr, amount)
}

// BalanceOf returns the account balance. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

// Nonce returns the owner's current permit nonce.
func (l *Ledger) Nonce(owner [20]byte) uint64 { return l.nonces[owner] }

// Allowance returns the amount spender may move on the owner's behalf.
func (l *Ledger) Allowance(owner, spender [20]byte) *big.Int {
	if grants, ok := l.allowances[owner]; ok {
		if amt, ok := grants[spender]; ok {
			return new(big.Int).Set(amt)
		}
	}
	return big.NewInt(0)
}

// Approve sets the spender allowance directly, the non-permit path.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) {
	l.setAllowance(owner, spender, amount)
}

// Transfer moves amount between accounts.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("token: negative transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.balances[from] = new(big.Int).Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

// TransferFrom moves amount out of the owner's account, consuming the
// spender's allowance. The unlimited sentinel is never decremented.
func (l *Ledger) TransferFrom(spender, owner, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("token: negative transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	if spender != owner {
		allowed := l.Allowance(owner, spender)
		if allowed.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		if allowed.Cmp(maxAllowance) != 0 {
			l.setAllowance(owner, spender, new(big.Int).Sub(allowed, amount))
		}
	}
	return l.Transfer(owner, to, amount)
}

// Permit grants spender an allowance of exactly value, authorized by the
// owner's signature over the standard permit message.
func (l *Ledger) Permit(owner, spender [20]byte, value *big.Int, deadline int64, v uint8, r, s [32]byte) error {
	if l.style != PermitStyleStandard {
		return ErrPermitUnsupported
	}
	if deadline != 0 && l.now() > deadline {
		return ErrPermitExpired
	}
	nonce := l.nonces[owner]
	digest := l.PermitDigest(owner, spender, value, nonce, deadline)
	if err := l.checkSignature(owner, digest, v, r, s); err != nil {
		return err
	}
	l.nonces[owner] = nonce + 1
	l.setAllowance(owner, spender, value)
	return nil
}

// PermitAllowed toggles spender between unlimited and zero allowance,
// authorized by the holder's signature over the allowed-style message.
func (l *Ledger) PermitAllowed(holder, spender [20]byte, nonce uint64, expiry int64, allowed bool, v uint8, r, s [32]byte) error {
	if l.style != PermitStyleAllowed {
		return ErrPermitUnsupported
	}
	if expiry != 0 && l.now() > expiry {
		return ErrPermitExpired
	}
	if nonce != l.nonces[holder] {
		return ErrPermitNonce
	}
	digest := l.PermitAllowedDigest(holder, spender, nonce, expiry, allowed)
	if err := l.checkSignature(holder, digest, v, r, s); err != nil {
		return err
	}
	l.nonces[holder] = nonce + 1
	if allowed {
		l.setAllowance(holder, spender, maxAllowance)
	} else {
		l.setAllowance(holder, spender, big.NewInt(0))
	}
	return nil
}

func (l *Ledger) checkSignature(signer [20]byte, digest [32]byte, v uint8, r, s [32]byte) error {
	sig := make([]byte, 65)
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	if v >= 27 {
		v -= 27
	}
	sig[64] = v
	pubKey, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return ErrPermitSignature
	}
	if ethcrypto.PubkeyToAddress(*pubKey) != ethcommon.BytesToAddress(signer[:]) {
		return ErrPermitSignature
	}
	return nil
}

func (l *Ledger) credit(addr [20]byte, amount *big.Int) {
	bal, ok := l.balances[addr]
	if !ok {
		bal = big.NewInt(0)
	}
	l.balances[addr] = new(big.Int).Add(bal, amount)
}

func (l *Ledger) setAllowance(owner, spender [20]byte, amount *big.Int) {
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[[20]byte]*big.Int)
		l.allowances[owner] = grants
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	grants[spender] = new(big.Int).Set(amount)
}

// Snapshot records the full ledger state and returns its revision id.
func (l *Ledger) Snapshot() int {
	rev := revision{
		balances:   make(map[[20]byte]*big.Int, len(l.balances)),
		allowances: make(map[[20]byte]map[[20]byte]*big.Int, len(l.allowances)),
		nonces:     make(map[[20]byte]uint64, len(l.nonces)),
	}
	for addr, bal := range l.balances {
		rev.balances[addr] = new(big.Int).Set(bal)
	}
	for owner, grants := range l.allowances {
		cloned := make(map[[20]byte]*big.Int, len(grants))
		for spender, amt := range grants {
			cloned[spender] = new(big.Int).Set(amt)
		}
		rev.allowances[owner] = cloned
	}
	for addr, nonce := range l.nonces {
		rev.nonces[addr] = nonce
	}
	l.journal = append(l.journal, rev)
	return len(l.journal) - 1
}

// RevertToSnapshot restores the ledger state recorded at the revision id and
// discards newer revisions. Unknown ids are ignored.
func (l *Ledger) RevertToSnapshot(id int) {
	if id < 0 || id >= len(l.journal) {
		return
	}
	rev := l.journal[id]
	l.balances = rev.balances
	l.allowances = rev.allowances
	l.nonces = rev.nonces
	l.journal = l.journal[:id]
}
