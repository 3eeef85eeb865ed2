package router

import (
	"encoding/binary"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const quoteAuthDomain = "swaprouter/quote-auth/v1"

// QuoteAuthDigest computes the keccak digest a co-signer commits to. It binds
// the custody address and caller alongside every quote field that influences
// fund movement, so a signed assertion cannot be replayed against a different
// trade shape.
func QuoteAuthDigest(custody, caller [20]byte, q Quote, auth QuoteAuthorization) [32]byte {
	var feeBuf [4]byte
	binary.BigEndian.PutUint32(feeBuf[:], q.FeeBps)
	var beforeBuf, afterBuf [8]byte
	binary.BigEndian.PutUint64(beforeBuf[:], uint64(auth.ValidBefore))
	binary.BigEndian.PutUint64(afterBuf[:], uint64(auth.ValidAfter))
	amount := cloneBigInt(q.SellAmount)
	var hash [32]byte
	copy(hash[:], ethcrypto.Keccak256(
		[]byte(quoteAuthDomain),
		custody[:],
		caller[:],
		q.SellAsset[:],
		q.BuyAsset[:],
		q.Target[:],
		ethcrypto.Keccak256(q.Calldata),
		padAmount(amount),
		feeBuf[:],
		auth.Nonce[:],
		beforeBuf[:],
		afterBuf[:],
	))
	return hash
}

func padAmount(v *big.Int) []byte {
	buf := make([]byte, 32)
	v.FillBytes(buf)
	return buf
}

// verifyQuoteAuth enforces the optional quote assertion. A nil authorization
// or the zero signer selects the open mode, which is rejected only when the
// engine is configured to require signed quotes. Non-zero signers must be
// registered, recover from the signature, and sit inside the validity window
// with an unused nonce. The nonce is burned by the caller once the settlement
// completes.
func (e *Engine) verifyQuoteAuth(caller [20]byte, q Quote) error {
	auth := q.Auth
	if auth == nil || auth.Signer == ([20]byte{}) {
		if e.requireQuoteAuth {
			return ErrQuoteAuthRequired
		}
		return nil
	}
	registered, err := e.state.ValidSigner(auth.Signer)
	if err != nil {
		return err
	}
	if !registered {
		return ErrQuoteAuthSigner
	}
	now := e.now()
	if auth.ValidBefore != 0 && now >= auth.ValidBefore {
		return ErrQuoteAuthWindow
	}
	if auth.ValidAfter != 0 && now < auth.ValidAfter {
		return ErrQuoteAuthWindow
	}
	used, err := e.state.QuoteNonceUsed(auth.Signer, auth.Nonce)
	if err != nil {
		return err
	}
	if used {
		return ErrQuoteAuthNonce
	}
	if len(auth.Signature) != 65 {
		return ErrQuoteAuthSignature
	}
	sig := make([]byte, 65)
	copy(sig, auth.Signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	digest := QuoteAuthDigest(e.custody, caller, q, *auth)
	pubKey, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return ErrQuoteAuthSignature
	}
	recovered := ethcrypto.PubkeyToAddress(*pubKey)
	if recovered != ethcommon.BytesToAddress(auth.Signer[:]) {
		return ErrQuoteAuthSignature
	}
	return nil
}

func (e *Engine) burnQuoteNonce(q Quote) error {
	if q.Auth == nil || q.Auth.Signer == ([20]byte{}) {
		return nil
	}
	return e.state.MarkQuoteNonce(q.Auth.Signer, q.Auth.Nonce)
}
