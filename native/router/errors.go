package router

import "errors"

// The first four errors surface the stable strings observed by callers and
// asserted by downstream clients; they must not be reworded.
var (
	// ErrOnlyOwner rejects privileged operations from non-owner callers.
	ErrOnlyOwner = errors.New("ONLY_OWNER")
	// ErrZeroAddress rejects the null address where a real one is required.
	ErrZeroAddress = errors.New("ZERO_ADDRESS")
	// ErrNoReceive rejects unsolicited native transfers from addresses
	// outside the swap target allow-list.
	ErrNoReceive = errors.New("NO_RECEIVE")
	// ErrTargetNotAuth rejects forwarding to a venue absent from the
	// allow-list, regardless of calldata content.
	ErrTargetNotAuth = errors.New("TARGET_NOT_AUTH")

	// ErrValueMismatch indicates the attached native value does not equal
	// the declared sell amount.
	ErrValueMismatch = errors.New("router: attached value does not match sell amount")
	// ErrAmountRequired indicates a missing or non-positive sell amount.
	ErrAmountRequired = errors.New("router: sell amount must be positive")
	// ErrFeeOutOfRange indicates a fee rate above 100%.
	ErrFeeOutOfRange = errors.New("router: fee bps out of range")
	// ErrUnknownToken indicates the referenced asset has no token backend.
	ErrUnknownToken = errors.New("router: unknown token")
	// ErrReentrancy rejects entry while a settlement is in flight.
	ErrReentrancy = errors.New("router: settlement in progress")
	// ErrSwapFailed wraps a venue call that reverted or was rejected.
	ErrSwapFailed = errors.New("router: swap call failed")

	// ErrPermitRejected wraps a token-side permit verification failure.
	ErrPermitRejected = errors.New("router: permit rejected by token")
	// ErrPermitKind indicates an unknown permit variant tag.
	ErrPermitKind = errors.New("router: unknown permit kind")
	// ErrPermitValue indicates a standard permit whose value does not match
	// the quote's sell amount.
	ErrPermitValue = errors.New("router: permit value must equal sell amount")

	// ErrQuoteAuthRequired indicates the engine is configured to demand a
	// co-signed quote and the call supplied none.
	ErrQuoteAuthRequired = errors.New("router: quote authorization required")
	// ErrQuoteAuthSigner indicates the designated signer is not registered.
	ErrQuoteAuthSigner = errors.New("router: quote signer not authorized")
	// ErrQuoteAuthSignature indicates the signature did not recover to the
	// designated signer.
	ErrQuoteAuthSignature = errors.New("router: quote signature invalid")
	// ErrQuoteAuthWindow indicates the quote is outside its validity window.
	ErrQuoteAuthWindow = errors.New("router: quote outside validity window")
	// ErrQuoteAuthNonce indicates a replayed quote nonce.
	ErrQuoteAuthNonce = errors.New("router: quote nonce already used")
)
