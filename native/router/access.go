package router

import "swaprouter/core/events"

// Owner returns the current administrative owner.
func (e *Engine) Owner() ([20]byte, error) {
	owner, ok, err := e.state.Owner()
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, ErrZeroAddress
	}
	return owner, nil
}

func (e *Engine) requireOwner(caller [20]byte) error {
	owner, ok, err := e.state.Owner()
	if err != nil {
		return err
	}
	if !ok || caller != owner {
		return ErrOnlyOwner
	}
	return nil
}

// TransferOwnership replaces the owner in a single step. There is no pending
// owner stage: the previous owner loses every privilege the moment the call
// returns.
func (e *Engine) TransferOwnership(caller, newOwner [20]byte) error {
	if newOwner == ([20]byte{}) {
		return ErrZeroAddress
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	previous, _, err := e.state.Owner()
	if err != nil {
		return err
	}
	if err := e.state.SetOwner(newOwner); err != nil {
		return err
	}
	e.emit(events.OwnerChanged{NewOwner: newOwner, PreviousOwner: previous})
	return nil
}
