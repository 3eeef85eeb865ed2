package venue

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrCalldata indicates the forwarded payload is not a swap order this venue
// understands.
var ErrCalldata = errors.New("venue: malformed swap calldata")

// SwapOrder is the decoded trade instruction carried by venue calldata.
type SwapOrder struct {
	SellToken    [20]byte
	BuyToken     [20]byte
	SellAmount   *big.Int
	MinBuyAmount *big.Int
}

var (
	swapSelector []byte
	swapArgs     abi.Arguments
)

func init() {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	swapArgs = abi.Arguments{
		{Name: "sellToken", Type: addressTy},
		{Name: "buyToken", Type: addressTy},
		{Name: "sellAmount", Type: uint256Ty},
		{Name: "minBuyAmount", Type: uint256Ty},
	}
	swapSelector = ethcrypto.Keccak256([]byte("swap(address,address,uint256,uint256)"))[:4]
}

// PackSwap encodes a swap order as selector-prefixed ABI calldata. The
// engine forwards it opaquely; only the venue interprets it.
func PackSwap(order SwapOrder) ([]byte, error) {
	amount := order.SellAmount
	if amount == nil {
		amount = big.NewInt(0)
	}
	minOut := order.MinBuyAmount
	if minOut == nil {
		minOut = big.NewInt(0)
	}
	packed, err := swapArgs.Pack(
		ethcommon.BytesToAddress(order.SellToken[:]),
		ethcommon.BytesToAddress(order.BuyToken[:]),
		amount,
		minOut,
	)
	if err != nil {
		return nil, fmt.Errorf("venue: pack swap order: %w", err)
	}
	return append(append([]byte{}, swapSelector...), packed...), nil
}

// DecodeSwap parses selector-prefixed swap calldata back into an order.
func DecodeSwap(calldata []byte) (*SwapOrder, error) {
	if len(calldata) < 4 || !bytes.Equal(calldata[:4], swapSelector) {
		return nil, ErrCalldata
	}
	values, err := swapArgs.Unpack(calldata[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalldata, err)
	}
	if len(values) != 4 {
		return nil, ErrCalldata
	}
	sell, ok := values[0].(ethcommon.Address)
	if !ok {
		return nil, ErrCalldata
	}
	buy, ok := values[1].(ethcommon.Address)
	if !ok {
		return nil, ErrCalldata
	}
	amount, ok := values[2].(*big.Int)
	if !ok {
		return nil, ErrCalldata
	}
	minOut, ok := values[3].(*big.Int)
	if !ok {
		return nil, ErrCalldata
	}
	return &SwapOrder{
		SellToken:    sell,
		BuyToken:     buy,
		SellAmount:   amount,
		MinBuyAmount: minOut,
	}, nil
}
