package router

import "swaprouter/core/events"

// UpdateSwapTargets adds or removes a venue from the forwarding allow-list.
// The update is idempotent: re-applying the current state still emits the
// corresponding event but changes nothing functionally.
func (e *Engine) UpdateSwapTargets(caller, target [20]byte, enabled bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := e.state.SetSwapTarget(target, enabled); err != nil {
		return err
	}
	if enabled {
		e.emit(events.SwapTargetAdded{Target: target})
	} else {
		e.emit(events.SwapTargetRemoved{Target: target})
	}
	return nil
}

// IsAuthorizedTarget reports allow-list membership for a venue address.
func (e *Engine) IsAuthorizedTarget(target [20]byte) (bool, error) {
	return e.state.SwapTarget(target)
}

// UpdateValidSigner adds or removes an address from the set allowed to
// co-sign quote authorizations. The zero-address open mode (no assertion
// checked) is selected per call by the quote itself, not through this
// registry.
func (e *Engine) UpdateValidSigner(caller, signer [20]byte, enabled bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := e.state.SetValidSigner(signer, enabled); err != nil {
		return err
	}
	e.emit(events.ValidSignerUpdated{Signer: signer, Enabled: enabled})
	return nil
}

// IsValidSigner reports membership in the quote co-signer allow-list.
func (e *Engine) IsValidSigner(signer [20]byte) (bool, error) {
	return e.state.ValidSigner(signer)
}
