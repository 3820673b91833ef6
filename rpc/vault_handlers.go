package rpc

import (
	"encoding/json"
	"strconv"

	"stablevault/crypto"
	"stablevault/vault"
)

type accountParams struct {
	Account string `json:"account"`
}

type balanceParams struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
}

type assetParams struct {
	Asset string `json:"asset"`
}

func decodeParams(req *RPCRequest, out any) *RPCError {
	if len(req.Params) == 0 {
		return &RPCError{Code: codeInvalidParams, Message: "params required"}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "malformed params"}
	}
	return nil
}

func decodeAccount(raw string) (crypto.Address, *RPCError) {
	addr, err := crypto.DecodeAddress(raw)
	if err != nil {
		return crypto.Address{}, &RPCError{Code: codeInvalidParams, Message: "invalid account address"}
	}
	return addr, nil
}

func (s *Server) handleGetAccount(req *RPCRequest) (any, *RPCError) {
	var params accountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := decodeAccount(params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	debt, value, err := s.engine.AccountInfo(addr)
	if err != nil {
		return nil, &RPCError{Code: codeServerError, Message: err.Error()}
	}
	return map[string]string{
		"debt":            debt.String(),
		"collateralValue": value.String(),
	}, nil
}

func (s *Server) handleGetCollateralBalance(req *RPCRequest) (any, *RPCError) {
	var params balanceParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := decodeAccount(params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := s.engine.CollateralBalance(addr, params.Asset)
	if err != nil {
		return nil, &RPCError{Code: codeServerError, Message: err.Error()}
	}
	return map[string]string{"balance": balance.String()}, nil
}

func (s *Server) handleGetHealthFactor(req *RPCRequest) (any, *RPCError) {
	var params accountParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := decodeAccount(params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	hf, err := s.engine.HealthFactorOf(addr)
	if err != nil {
		return nil, &RPCError{Code: codeServerError, Message: err.Error()}
	}
	return map[string]string{"healthFactor": hf.String()}, nil
}

func (s *Server) handleListCollateral(_ *RPCRequest) (any, *RPCError) {
	return map[string][]string{"assets": s.engine.Assets()}, nil
}

func (s *Server) handleGetPrice(req *RPCRequest) (any, *RPCError) {
	var params assetParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	price, err := s.engine.Price(params.Asset)
	if err != nil {
		return nil, &RPCError{Code: codeServerError, Message: err.Error()}
	}
	return map[string]string{"price": price.String()}, nil
}

func (s *Server) handleGetParams(_ *RPCRequest) (any, *RPCError) {
	params := s.engine.Params()
	return map[string]string{
		"liquidationThresholdPct": strconv.FormatUint(params.LiquidationThresholdPct, 10),
		"liquidationBonusPct":     strconv.FormatUint(params.LiquidationBonusPct, 10),
		"minHealthFactor":         params.MinHealthFactor.String(),
		"precision":               vault.Precision().String(),
		"feedPrecisionMultiplier": vault.FeedPrecisionMultiplier().String(),
	}, nil
}
