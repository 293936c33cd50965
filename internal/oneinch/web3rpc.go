package oneinch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const web3Prefix = "/web3"

// RPCError is a JSON-RPC error returned inside a 2xx response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Web3RPCService proxies Ethereum JSON-RPC calls through the 1inch Web3 API.
type Web3RPCService struct {
	base
	nextID atomic.Int64
}

// NewWeb3RPCService builds the web3 RPC service and its manifest.
func NewWeb3RPCService(client *Client) *Web3RPCService {
	s := &Web3RPCService{base: newBase(client)}

	block := service.Property{Type: "string", Description: "Block number (hex) or tag", Default: "latest"}

	s.tool("eth_block_number",
		"Get the latest block number.",
		service.Object(map[string]service.Property{"chainId": service.ChainIDProp()}),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.quantity(ctx, args.ChainID(), "eth_blockNumber")
		})
	s.tool("eth_get_balance",
		"Get the native balance of an address in wei.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"address": service.StringProp("Account address"),
			"block":   block,
		}, "address"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.quantity(ctx, args.ChainID(), "eth_getBalance", args.String("address", ""), args.String("block", "latest"))
		})
	s.tool("eth_gas_price",
		"Get the current gas price in wei.",
		service.Object(map[string]service.Property{"chainId": service.ChainIDProp()}),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.quantity(ctx, args.ChainID(), "eth_gasPrice")
		})
	s.tool("eth_call",
		"Execute a read-only contract call.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"to":      service.StringProp("Contract address"),
			"data":    service.StringProp("ABI encoded call data"),
			"block":   block,
		}, "to", "data"),
		func(ctx context.Context, args service.Args) (any, error) {
			call := map[string]string{"to": args.String("to", ""), "data": args.String("data", "")}
			return s.Call(ctx, args.ChainID(), "eth_call", call, args.String("block", "latest"))
		})
	s.tool("eth_get_transaction",
		"Get a transaction by hash.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"hash":    service.StringProp("Transaction hash"),
		}, "hash"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Call(ctx, args.ChainID(), "eth_getTransactionByHash", args.String("hash", ""))
		})
	s.tool("eth_get_transaction_receipt",
		"Get a transaction receipt by hash.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"hash":    service.StringProp("Transaction hash"),
		}, "hash"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Call(ctx, args.ChainID(), "eth_getTransactionReceipt", args.String("hash", ""))
		})
	s.tool("web3_rpc_call",
		"Call any Ethereum JSON-RPC method.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"method":  service.StringProp("JSON-RPC method, e.g. eth_getCode"),
			"params":  {Type: "array", Description: "Positional parameters (array, JSON array string, or comma separated values)"},
		}, "method"),
		func(ctx context.Context, args service.Args) (any, error) {
			params, err := rpcParams(args)
			if err != nil {
				return nil, err
			}
			return s.Call(ctx, args.ChainID(), args.String("method", ""), params...)
		})

	s.AddStaticResource(docResource("web3rpc://docs/methods", "Web3 RPC methods",
		"JSON-RPC methods available through the 1inch Web3 API"), web3Docs)

	s.prompt(service.PromptDefinition{
		Name:        "chain_status",
		Description: "Summarise the current status of a chain",
		Arguments:   []service.PromptArgument{arg("chainId", "Chain ID (default 1)", false)},
	}, s.status)

	return s
}

// Ping fetches the latest block number on chain 1.
func (s *Web3RPCService) Ping(ctx context.Context) error {
	_, err := s.Call(ctx, 1, "eth_blockNumber")
	return err
}

// Call performs one JSON-RPC call and returns the raw result.
func (s *Web3RPCService) Call(ctx context.Context, chainID int, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{JSONRPC: "2.0", ID: s.nextID.Add(1), Method: method, Params: params}

	var resp rpcResponse
	if err := s.client.PostJSON(ctx, fmt.Sprintf("%s/%d", web3Prefix, chainID), req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// Quantity is a hex quantity with its decimal rendering.
type Quantity struct {
	Hex     string `json:"hex"`
	Decimal string `json:"decimal"`
}

func (s *Web3RPCService) quantity(ctx context.Context, chainID int, method string, params ...any) (*Quantity, error) {
	raw, err := s.Call(ctx, chainID, method, params...)
	if err != nil {
		return nil, err
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return nil, fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return &Quantity{Hex: hex, Decimal: hexToDecimal(hex)}, nil
}

func (s *Web3RPCService) status(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	head, err := s.quantity(ctx, chainID, "eth_blockNumber")
	if err != nil {
		return nil, err
	}
	gas, err := s.quantity(ctx, chainID, "eth_gasPrice")
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Summarise the current status of %s.", chainName(chainID))
	r.line("")
	r.line("Latest block: %s", head.Decimal)
	r.line("Gas price: %s wei (%s gwei)", gas.Decimal, weiToGwei(gas.Decimal))
	r.line("")
	r.line("Say whether gas is cheap or expensive right now and what that means for transactions.")
	return service.UserPrompt("Chain status", r.String()), nil
}

func hexToDecimal(hex string) string {
	n, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(hex), "0x"), 16)
	if !ok {
		return hex
	}
	return n.String()
}

func weiToGwei(wei string) string {
	n, ok := new(big.Float).SetString(wei)
	if !ok {
		return wei
	}
	return new(big.Float).Quo(n, big.NewFloat(1e9)).Text('f', 2)
}

const web3Docs = `# 1inch Web3 RPC

POST /web3/{chainId} with a JSON-RPC 2.0 body.

Common methods:
- eth_blockNumber
- eth_getBalance(address, block)
- eth_gasPrice
- eth_call({to, data}, block)
- eth_getTransactionByHash(hash)
- eth_getTransactionReceipt(hash)
- eth_getCode(address, block)
- eth_getLogs(filter)

Errors in the response body are reported as "RPC error <code>: <message>".
`

// rpcParams reads the positional params of a raw RPC call. Arrays pass
// through with their element types; a string is parsed as a JSON array when
// it looks like one and split on commas otherwise.
func rpcParams(args service.Args) ([]any, error) {
	switch t := args["params"].(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	case []string:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}
		return out, nil
	case string:
		if trimmed := strings.TrimSpace(t); strings.HasPrefix(trimmed, "[") {
			var out []any
			dec := json.NewDecoder(strings.NewReader(trimmed))
			dec.UseNumber()
			if err := dec.Decode(&out); err != nil {
				return nil, fmt.Errorf("params is not a valid JSON array: %w", err)
			}
			return out, nil
		}
		parts := args.StringSlice("params")
		out := make([]any, len(parts))
		for i, v := range parts {
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("params must be an array, got %T", t)
	}
}
