package token

import (
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	domainTypehash = ethcrypto.Keccak256(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"),
	)
	permitTypehash = ethcrypto.Keccak256(
		[]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"),
	)
	permitAllowedTypehash = ethcrypto.Keccak256(
		[]byte("Permit(address holder,address spender,uint256 nonce,uint256 expiry,bool allowed)"),
	)
)

func timeNow() int64 { return time.Now().Unix() }

func domainSeparator(name, version string, chainID *big.Int, address [20]byte) [32]byte {
	var sep [32]byte
	copy(sep[:], ethcrypto.Keccak256(
		domainTypehash,
		ethcrypto.Keccak256([]byte(name)),
		ethcrypto.Keccak256([]byte(version)),
		padUint(chainID),
		padAddress(address),
	))
	return sep
}

// PermitDigest computes the signing digest for the standard permit message at
// the supplied nonce.
func (l *Ledger) PermitDigest(owner, spender [20]byte, value *big.Int, nonce uint64, deadline int64) [32]byte {
	structHash := ethcrypto.Keccak256(
		permitTypehash,
		padAddress(owner),
		padAddress(spender),
		padUint(value),
		padUint(new(big.Int).SetUint64(nonce)),
		padUint(big.NewInt(deadline)),
	)
	return l.typedDataDigest(structHash)
}

// PermitAllowedDigest computes the signing digest for the allowed-style
// permit message.
func (l *Ledger) PermitAllowedDigest(holder, spender [20]byte, nonce uint64, expiry int64, allowed bool) [32]byte {
	allowedWord := big.NewInt(0)
	if allowed {
		allowedWord = big.NewInt(1)
	}
	structHash := ethcrypto.Keccak256(
		permitAllowedTypehash,
		padAddress(holder),
		padAddress(spender),
		padUint(new(big.Int).SetUint64(nonce)),
		padUint(big.NewInt(expiry)),
		padUint(allowedWord),
	)
	return l.typedDataDigest(structHash)
}

func (l *Ledger) typedDataDigest(structHash []byte) [32]byte {
	var digest [32]byte
	copy(digest[:], ethcrypto.Keccak256(
		[]byte{0x19, 0x01},
		l.domainSeparator[:],
		structHash,
	))
	return digest
}

func padUint(v *big.Int) []byte {
	buf := make([]byte, 32)
	if v != nil && v.Sign() >= 0 {
		v.FillBytes(buf)
	}
	return buf
}

func padAddress(addr [20]byte) []byte {
	buf := make([]byte, 32)
	copy(buf[12:], addr[:])
	return buf
}

// SplitSignature converts a 65-byte [R || S || V] signature into the v/r/s
// triple consumed by the permit entry points. V is normalised to 27/28.
func SplitSignature(sig []byte) (v uint8, r, s [32]byte) {
	if len(sig) != 65 {
		return 0, r, s
	}
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	v = sig[64]
	if v < 27 {
		v += 27
	}
	return v, r, s
}
