package rpc

import (
	"encoding/json"
	"io"
	"net/http"

	"stablevault/vault"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

// Server exposes the engine's read-only query surface over JSON-RPC 2.0.
// Mutations stay library calls made by the embedding system; the wire surface
// only ever reads.
type Server struct {
	engine *vault.Engine
}

func NewServer(engine *vault.Engine) *Server {
	return &Server{engine: engine}
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeRPCError(w, nil, codeInvalidRequest, "POST required")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeRPCError(w, nil, codeParseError, "unable to read request body")
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeRPCError(w, nil, codeParseError, "invalid JSON payload")
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeRPCError(w, req.ID, codeInvalidRequest, "unsupported JSON-RPC version")
		return
	}

	result, rpcErr := s.dispatch(&req)
	if rpcErr != nil {
		writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Error: rpcErr})
		return
	}
	writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result})
}

func (s *Server) dispatch(req *RPCRequest) (any, *RPCError) {
	switch req.Method {
	case "vault_getAccount":
		return s.handleGetAccount(req)
	case "vault_getCollateralBalance":
		return s.handleGetCollateralBalance(req)
	case "vault_getHealthFactor":
		return s.handleGetHealthFactor(req)
	case "vault_listCollateral":
		return s.handleListCollateral(req)
	case "vault_getPrice":
		return s.handleGetPrice(req)
	case "vault_getParams":
		return s.handleGetParams(req)
	default:
		return nil, &RPCError{Code: codeMethodNotFound, Message: "method not found"}
	}
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}})
}

func writeResponse(w http.ResponseWriter, resp RPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
