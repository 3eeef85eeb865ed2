package router

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// NativeAsset is the sentinel address callers use to denote the native
// currency leg of a quote, mirroring the 0xEeee... convention used by
// aggregator APIs.
var NativeAsset = [20]byte{
	0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe,
	0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe, 0xEe,
}

// Quote is the caller-supplied trade instruction. The engine never computes
// rates or picks venues; it validates the target, applies the fee split and
// forwards the calldata as-is. Quotes are ephemeral and never persisted.
type Quote struct {
	SellAsset  [20]byte
	BuyAsset   [20]byte
	Target     [20]byte
	Calldata   []byte
	SellAmount *big.Int
	FeeBps     uint32
	Auth       *QuoteAuthorization
}

// PermitKind discriminates the two incompatible signature-based allowance
// schemes. The message structures cannot be told apart from the signature
// bytes, so callers must tag the variant explicitly.
type PermitKind uint8

const (
	// PermitStandard is the value/deadline style permit (EIP-2612).
	PermitStandard PermitKind = iota + 1
	// PermitAllowed is the holder/expiry/allowed toggle style permit.
	PermitAllowed
)

// PermitSignature carries a signed allowance grant verified by the token
// itself. Exactly one variant applies per call.
type PermitSignature struct {
	Kind PermitKind
	// Value is consumed by the standard variant and must cover exactly the
	// quote's sell amount.
	Value *big.Int
	// Nonce is carried explicitly by the allowed variant; the standard
	// variant uses the token's own nonce sequence.
	Nonce uint64
	// Deadline doubles as expiry for the allowed variant. Zero means no
	// expiry for allowed-style permits.
	Deadline int64
	Allowed  bool
	V        uint8
	R        [32]byte
	S        [32]byte
}

// QuoteAuthorization is an optional off-chain co-signature over a quote,
// bounded by a validity window and a single-use nonce. A zero Signer selects
// the open mode where no assertion is checked.
type QuoteAuthorization struct {
	Signer      [20]byte
	Nonce       [32]byte
	ValidBefore int64
	ValidAfter  int64
	Signature   []byte
}

// Settlement summarises a completed fill.
type Settlement struct {
	SellAsset  [20]byte
	BuyAsset   [20]byte
	Target     [20]byte
	SellAmount *big.Int
	Fee        *big.Int
	BuyAmount  *big.Int
}

// Clone returns a deep copy of the settlement record.
func (s *Settlement) Clone() *Settlement {
	if s == nil {
		return nil
	}
	clone := *s
	if s.SellAmount != nil {
		clone.SellAmount = new(big.Int).Set(s.SellAmount)
	}
	if s.Fee != nil {
		clone.Fee = new(big.Int).Set(s.Fee)
	}
	if s.BuyAmount != nil {
		clone.BuyAmount = new(big.Int).Set(s.BuyAmount)
	}
	return &clone
}

// AddressHex formats a raw address using the checksummed hex convention.
func AddressHex(addr [20]byte) string {
	return ethcommon.BytesToAddress(addr[:]).Hex()
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
