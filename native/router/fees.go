package router

import "math/big"

// MaxFeeBps is the full fee scale: 10000 basis points = 100%.
const MaxFeeBps = 10_000

// SplitFee divides amount into the protocol fee share and the net share
// forwarded to the venue. fee = floor(amount * feeBps / 10000). The split is
// deterministic and side-effect free so fee custody growth can be audited.
func SplitFee(amount *big.Int, feeBps uint32) (fee, net *big.Int, err error) {
	if feeBps > MaxFeeBps {
		return nil, nil, ErrFeeOutOfRange
	}
	gross := cloneBigInt(amount)
	if gross.Sign() <= 0 {
		return nil, nil, ErrAmountRequired
	}
	fee = new(big.Int).Mul(gross, new(big.Int).SetUint64(uint64(feeBps)))
	fee.Div(fee, big.NewInt(MaxFeeBps))
	net = new(big.Int).Sub(gross, fee)
	return fee, net, nil
}
