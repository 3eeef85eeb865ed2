package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"swaprouter/native/router"
)

type quoteAuthPayload struct {
	Signer      string `json:"signer"`
	Nonce       string `json:"nonce"`
	ValidBefore int64  `json:"validBefore"`
	ValidAfter  int64  `json:"validAfter"`
	Signature   string `json:"signature"`
}

type permitPayload struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Nonce    uint64 `json:"nonce"`
	Deadline int64  `json:"deadline"`
	Allowed  bool   `json:"allowed"`
	V        uint8  `json:"v"`
	R        string `json:"r"`
	S        string `json:"s"`
}

type settleRequest struct {
	Caller     string            `json:"caller"`
	SellAsset  string            `json:"sellAsset"`
	BuyAsset   string            `json:"buyAsset"`
	Target     string            `json:"target"`
	Calldata   string            `json:"calldata"`
	SellAmount string            `json:"sellAmount"`
	FeeBps     uint32            `json:"feeBps"`
	Value      string            `json:"value"`
	QuoteAuth  *quoteAuthPayload `json:"quoteAuth,omitempty"`
	Permit     *permitPayload    `json:"permit,omitempty"`
}

type settleResponse struct {
	RequestID  string `json:"requestId"`
	SellAsset  string `json:"sellAsset"`
	BuyAsset   string `json:"buyAsset"`
	Target     string `json:"target"`
	SellAmount string `json:"sellAmount"`
	Fee        string `json:"fee"`
	BuyAmount  string `json:"buyAmount"`
}

type registryUpdateRequest struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
	Enabled bool   `json:"enabled"`
}

type withdrawRequest struct {
	Caller string `json:"caller"`
	Token  string `json:"token,omitempty"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ownershipRequest struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

func (s *Server) handleTokenToToken(w http.ResponseWriter, r *http.Request) {
	s.handleSettle(w, r, "token_to_token")
}

func (s *Server) handleEthToToken(w http.ResponseWriter, r *http.Request) {
	s.handleSettle(w, r, "eth_to_token")
}

func (s *Server) handleTokenToEth(w http.ResponseWriter, r *http.Request) {
	s.handleSettle(w, r, "token_to_eth")
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request, shape string) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("caller: %w", err))
		return
	}
	quote, err := buildQuote(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	permit, err := buildPermit(req.Permit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	var settlement *router.Settlement
	switch shape {
	case "token_to_token":
		if permit != nil {
			settlement, err = s.engine.FillQuoteTokenToTokenWithPermit(r.Context(), caller, quote, *permit)
		} else {
			settlement, err = s.engine.FillQuoteTokenToToken(r.Context(), caller, quote)
		}
	case "eth_to_token":
		var value *big.Int
		value, err = parseAmount(req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("value: %w", err))
			return
		}
		settlement, err = s.engine.FillQuoteEthToToken(r.Context(), caller, quote, value)
	case "token_to_eth":
		if permit != nil {
			settlement, err = s.engine.FillQuoteTokenToEthWithPermit(r.Context(), caller, quote, *permit)
		} else {
			settlement, err = s.engine.FillQuoteTokenToEth(r.Context(), caller, quote)
		}
	}
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.ObserveSettlement(shape, "error", elapsed)
		s.logger.Warn("settlement rejected", "shape", shape, "caller", req.Caller, "err", err)
		if errors.Is(err, router.ErrNoReceive) {
			s.metrics.ReceiveRejected()
		}
		writeError(w, statusFor(err), err)
		return
	}
	s.metrics.ObserveSettlement(shape, "ok", elapsed)
	s.metrics.AddFee(router.AddressHex(settlement.SellAsset), settlement.Fee)

	requestID := uuid.NewString()
	s.logger.Info("settlement filled",
		"requestId", requestID,
		"shape", shape,
		"caller", req.Caller,
		"target", router.AddressHex(settlement.Target),
		"sellAmount", settlement.SellAmount.String(),
		"fee", settlement.Fee.String(),
		"buyAmount", settlement.BuyAmount.String(),
	)
	writeJSON(w, http.StatusOK, settleResponse{
		RequestID:  requestID,
		SellAsset:  router.AddressHex(settlement.SellAsset),
		BuyAsset:   router.AddressHex(settlement.BuyAsset),
		Target:     router.AddressHex(settlement.Target),
		SellAmount: settlement.SellAmount.String(),
		Fee:        settlement.Fee.String(),
		BuyAmount:  settlement.BuyAmount.String(),
	})
}

func (s *Server) handleOwner(w http.ResponseWriter, _ *http.Request) {
	owner, err := s.engine.Owner()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": router.AddressHex(owner)})
}

func (s *Server) handleTargetLookup(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	enabled, err := s.engine.IsAuthorizedTarget(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target":  router.AddressHex(addr),
		"enabled": enabled,
	})
}

func (s *Server) handleSignerLookup(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	enabled, err := s.engine.IsValidSigner(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signer":  router.AddressHex(addr),
		"enabled": enabled,
	})
}

func (s *Server) handleUpdateTargets(w http.ResponseWriter, r *http.Request) {
	var req registryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, target, err := parseAddressPair(req.Caller, req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.UpdateSwapTargets(caller, target, req.Enabled); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("swap target updated", "target", req.Address, "enabled", req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

func (s *Server) handleUpdateSigners(w http.ResponseWriter, r *http.Request) {
	var req registryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, signer, err := parseAddressPair(req.Caller, req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.UpdateValidSigner(caller, signer, req.Enabled); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("valid signer updated", "signer", req.Address, "enabled", req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

func (s *Server) handleWithdrawToken(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, to, err := parseAddressPair(req.Caller, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token, err := parseAddress(req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("token: %w", err))
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount: %w", err))
		return
	}
	if err := s.engine.WithdrawToken(caller, token, to, amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("token withdrawn", "token", req.Token, "to", req.To, "amount", req.Amount)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWithdrawEth(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, to, err := parseAddressPair(req.Caller, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount: %w", err))
		return
	}
	if err := s.engine.WithdrawEth(caller, to, amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("eth withdrawn", "to", req.To, "amount", req.Amount)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("caller: %w", err))
		return
	}
	var newOwner [20]byte
	if req.NewOwner != "" {
		newOwner, err = parseAddress(req.NewOwner)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("newOwner: %w", err))
			return
		}
	}
	if err := s.engine.TransferOwnership(caller, newOwner); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("ownership transferred", "newOwner", req.NewOwner)
	writeJSON(w, http.StatusOK, map[string]string{"owner": req.NewOwner})
}

func buildQuote(req settleRequest) (router.Quote, error) {
	var quote router.Quote
	var err error
	if req.SellAsset != "" {
		quote.SellAsset, err = parseAddress(req.SellAsset)
		if err != nil {
			return quote, fmt.Errorf("sellAsset: %w", err)
		}
	}
	if req.BuyAsset != "" {
		quote.BuyAsset, err = parseAddress(req.BuyAsset)
		if err != nil {
			return quote, fmt.Errorf("buyAsset: %w", err)
		}
	}
	quote.Target, err = parseAddress(req.Target)
	if err != nil {
		return quote, fmt.Errorf("target: %w", err)
	}
	if req.Calldata != "" {
		quote.Calldata, err = hexutil.Decode(req.Calldata)
		if err != nil {
			return quote, fmt.Errorf("calldata: %w", err)
		}
	}
	quote.SellAmount, err = parseAmount(req.SellAmount)
	if err != nil {
		return quote, fmt.Errorf("sellAmount: %w", err)
	}
	quote.FeeBps = req.FeeBps
	if req.QuoteAuth != nil {
		auth := &router.QuoteAuthorization{
			ValidBefore: req.QuoteAuth.ValidBefore,
			ValidAfter:  req.QuoteAuth.ValidAfter,
		}
		if req.QuoteAuth.Signer != "" {
			auth.Signer, err = parseAddress(req.QuoteAuth.Signer)
			if err != nil {
				return quote, fmt.Errorf("quoteAuth.signer: %w", err)
			}
		}
		if req.QuoteAuth.Nonce != "" {
			nonce, err := hexutil.Decode(req.QuoteAuth.Nonce)
			if err != nil || len(nonce) != 32 {
				return quote, fmt.Errorf("quoteAuth.nonce: expected 32 hex bytes")
			}
			copy(auth.Nonce[:], nonce)
		}
		if req.QuoteAuth.Signature != "" {
			auth.Signature, err = hexutil.Decode(req.QuoteAuth.Signature)
			if err != nil {
				return quote, fmt.Errorf("quoteAuth.signature: %w", err)
			}
		}
		quote.Auth = auth
	}
	return quote, nil
}

func buildPermit(payload *permitPayload) (*router.PermitSignature, error) {
	if payload == nil {
		return nil, nil
	}
	permit := &router.PermitSignature{
		Nonce:    payload.Nonce,
		Deadline: payload.Deadline,
		Allowed:  payload.Allowed,
		V:        payload.V,
	}
	switch payload.Kind {
	case "standard":
		permit.Kind = router.PermitStandard
		value, err := parseAmount(payload.Value)
		if err != nil {
			return nil, fmt.Errorf("permit.value: %w", err)
		}
		permit.Value = value
	case "allowed":
		permit.Kind = router.PermitAllowed
	default:
		return nil, fmt.Errorf("permit.kind: expected standard or allowed")
	}
	r, err := hexutil.Decode(payload.R)
	if err != nil || len(r) != 32 {
		return nil, fmt.Errorf("permit.r: expected 32 hex bytes")
	}
	copy(permit.R[:], r)
	s, err := hexutil.Decode(payload.S)
	if err != nil || len(s) != 32 {
		return nil, fmt.Errorf("permit.s: expected 32 hex bytes")
	}
	copy(permit.S[:], s)
	return permit, nil
}

func parseAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	if !ethcommon.IsHexAddress(raw) {
		return addr, fmt.Errorf("invalid address %q", raw)
	}
	copy(addr[:], ethcommon.HexToAddress(raw).Bytes())
	return addr, nil
}

func parseAddressPair(callerRaw, otherRaw string) (caller, other [20]byte, err error) {
	caller, err = parseAddress(callerRaw)
	if err != nil {
		return caller, other, fmt.Errorf("caller: %w", err)
	}
	other, err = parseAddress(otherRaw)
	if err != nil {
		return caller, other, fmt.Errorf("address: %w", err)
	}
	return caller, other, nil
}

func parseAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, router.ErrOnlyOwner):
		return http.StatusForbidden
	case errors.Is(err, router.ErrTargetNotAuth):
		return http.StatusForbidden
	case errors.Is(err, router.ErrReentrancy):
		return http.StatusConflict
	case errors.Is(err, router.ErrSwapFailed):
		return http.StatusBadGateway
	case errors.Is(err, router.ErrZeroAddress),
		errors.Is(err, router.ErrValueMismatch),
		errors.Is(err, router.ErrAmountRequired),
		errors.Is(err, router.ErrFeeOutOfRange),
		errors.Is(err, router.ErrUnknownToken),
		errors.Is(err, router.ErrNoReceive),
		errors.Is(err, router.ErrPermitRejected),
		errors.Is(err, router.ErrPermitKind),
		errors.Is(err, router.ErrPermitValue),
		errors.Is(err, router.ErrQuoteAuthRequired),
		errors.Is(err, router.ErrQuoteAuthSigner),
		errors.Is(err, router.ErrQuoteAuthSignature),
		errors.Is(err, router.ErrQuoteAuthWindow),
		errors.Is(err, router.ErrQuoteAuthNonce):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
