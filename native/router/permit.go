package router

import (
	"fmt"
	"math/big"
)

// acquireAllowance normalises the two permit variants into a single allowance
// grant on the engine's custody address. The token performs its own signature
// verification; any rejection aborts the settlement. The adapter never moves
// funds itself.
func (e *Engine) acquireAllowance(token Token, caller [20]byte, sellAmount *big.Int, permit *PermitSignature) error {
	if permit == nil {
		return nil
	}
	switch permit.Kind {
	case PermitStandard:
		value := cloneBigInt(permit.Value)
		// A standard permit must be consumed in full by this call so no
		// standing allowance survives the settlement.
		if value.Cmp(sellAmount) != 0 {
			return ErrPermitValue
		}
		if err := token.Permit(caller, e.custody, value, permit.Deadline, permit.V, permit.R, permit.S); err != nil {
			return fmt.Errorf("%w: %v", ErrPermitRejected, err)
		}
	case PermitAllowed:
		if err := token.PermitAllowed(caller, e.custody, permit.Nonce, permit.Deadline, permit.Allowed, permit.V, permit.R, permit.S); err != nil {
			return fmt.Errorf("%w: %v", ErrPermitRejected, err)
		}
	default:
		return ErrPermitKind
	}
	return nil
}
