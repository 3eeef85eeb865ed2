package bank

import (
	"fmt"
	"math/big"
)

// ReceiveHook vets an inbound credit before it lands on the hooked account.
// Returning an error aborts the transfer.
type ReceiveHook func(from [20]byte, amount *big.Int) error

// Ledger tracks native currency balances. Accounts may register a receive
// hook; the settlement engine uses one to reject unsolicited transfers from
// addresses outside its venue allow-list.
type Ledger struct {
	balances map[[20]byte]*big.Int
	hooks    map[[20]byte]ReceiveHook
	journal  []map[[20]byte]*big.Int
}

// NewLedger creates an empty native currency ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[[20]byte]*big.Int),
		hooks:    make(map[[20]byte]ReceiveHook),
	}
}

// SetReceiveHook installs (or clears, with nil) the inbound-transfer guard
// for an account.
func (l *Ledger) SetReceiveHook(addr [20]byte, hook ReceiveHook) {
	if hook == nil {
		delete(l.hooks, addr)
		return
	}
	l.hooks[addr] = hook
}

// Mint credits freshly issued native currency to an account, bypassing
// receive hooks. Used by wiring and tests to seed balances.
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

// Transfer moves amount between accounts. The recipient's receive hook, if
// any, runs before balances change.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("bank: negative transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	if hook, ok := l.hooks[to]; ok {
		if err := hook(from, amount); err != nil {
			return err
		}
	}
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("bank: insufficient balance")
	}
	l.balances[from] = new(big.Int).Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

func (l *Ledger) credit(addr [20]byte, amount *big.Int) {
	bal, ok := l.balances[addr]
	if !ok {
		bal = big.NewInt(0)
	}
	l.balances[addr] = new(big.Int).Add(bal, amount)
}

// Snapshot records the current balance set and returns its revision id.
func (l *Ledger) Snapshot() int {
	copyBalances := make(map[[20]byte]*big.Int, len(l.balances))
	for addr, bal := range l.balances {
		copyBalances[addr] = new(big.Int).Set(bal)
	}
	l.journal = append(l.journal, copyBalances)
	return len(l.journal) - 1
}

// RevertToSnapshot restores the balance set recorded at the revision id and
// discards newer revisions. Unknown ids are ignored.
func (l *Ledger) RevertToSnapshot(id int) {
	if id < 0 || id >= len(l.journal) {
		return
	}
	l.balances = l.journal[id]
	l.journal = l.journal[:id]
}
