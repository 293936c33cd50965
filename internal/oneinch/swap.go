package oneinch

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const swapPrefix = "/swap/v6.0"

// TokenInfo is token metadata embedded in swap responses.
type TokenInfo struct {
	Address  string   `json:"address"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Decimals int      `json:"decimals"`
	LogoURI  string   `json:"logoURI,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// SwapQuote is the reshaped quote response.
type SwapQuote struct {
	ChainID   int             `json:"chainId"`
	SrcToken  *TokenInfo      `json:"srcToken,omitempty"`
	DstToken  *TokenInfo      `json:"dstToken,omitempty"`
	SrcAmount string          `json:"srcAmount"`
	DstAmount string          `json:"dstAmount"`
	Gas       int64           `json:"gas,omitempty"`
	Protocols json.RawMessage `json:"protocols,omitempty"`
}

// SwapTx is an unsigned transaction returned by the swap and approve endpoints.
type SwapTx struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      int64  `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
}

// SwapTransaction is the reshaped swap response.
type SwapTransaction struct {
	ChainID   int        `json:"chainId"`
	SrcToken  *TokenInfo `json:"srcToken,omitempty"`
	DstToken  *TokenInfo `json:"dstToken,omitempty"`
	SrcAmount string     `json:"srcAmount"`
	DstAmount string     `json:"dstAmount"`
	Tx        SwapTx     `json:"tx"`
}

// LiquiditySource is one DEX protocol the aggregator routes through.
type LiquiditySource struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Img   string `json:"img,omitempty"`
}

// SwapService wraps the Classic Swap API.
type SwapService struct {
	base
}

// NewSwapService builds the swap service and its manifest.
func NewSwapService(client *Client) *SwapService {
	s := &SwapService{base: newBase(client)}

	s.tool("get_swap_quote",
		"Get the best swap quote between two tokens across all 1inch liquidity sources. Amount is in the source token's smallest unit (wei).",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"src":     service.StringProp("Source token address"),
			"dst":     service.StringProp("Destination token address"),
			"amount":  service.StringProp("Amount of source token in minimal units"),
		}, "src", "dst", "amount"),
		s.quote)
	s.tool("get_swap_transaction",
		"Build a ready-to-sign swap transaction for the given wallet.",
		service.Object(map[string]service.Property{
			"chainId":  service.ChainIDProp(),
			"src":      service.StringProp("Source token address"),
			"dst":      service.StringProp("Destination token address"),
			"amount":   service.StringProp("Amount of source token in minimal units"),
			"from":     service.StringProp("Wallet address executing the swap"),
			"slippage": service.NumberProp("Maximum slippage percent (0-50)"),
			"origin":   service.StringProp("EOA that initiates the transaction, defaults to from"),
		}, "src", "dst", "amount", "from", "slippage"),
		s.swap)
	s.tool("get_approve_spender",
		"Get the 1inch router address that must be approved to spend tokens.",
		service.Object(map[string]service.Property{"chainId": service.ChainIDProp()}),
		s.spender)
	s.tool("get_approve_transaction",
		"Build an ERC20 approve transaction for the 1inch router. Omitting amount approves an unlimited amount.",
		service.Object(map[string]service.Property{
			"chainId":      service.ChainIDProp(),
			"tokenAddress": service.StringProp("Token to approve"),
			"amount":       service.StringProp("Amount in minimal units"),
		}, "tokenAddress"),
		s.approveTransaction)
	s.tool("get_allowance",
		"Get the amount of a token the 1inch router is allowed to spend for a wallet.",
		service.Object(map[string]service.Property{
			"chainId":       service.ChainIDProp(),
			"tokenAddress":  service.StringProp("Token address"),
			"walletAddress": service.StringProp("Wallet address"),
		}, "tokenAddress", "walletAddress"),
		s.allowance)
	s.tool("get_liquidity_sources",
		"List the liquidity sources (DEX protocols) available on a chain.",
		service.Object(map[string]service.Property{"chainId": service.ChainIDProp()}),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.LiquiditySources(ctx, args.ChainID())
		})
	s.tool("get_swap_tokens",
		"List the tokens the swap API can trade on a chain.",
		service.Object(map[string]service.Property{"chainId": service.ChainIDProp()}),
		s.tokens)

	s.AddStaticResource(docResource("swap://docs/api", "Swap API documentation",
		"Endpoints, parameters and flow of the 1inch Classic Swap API"), swapDocs)
	s.AddStaticResource(jsonResource("swap://chains/supported", "Supported swap chains",
		"Chain IDs supported by the swap API"), supportedChainsJSON)

	s.prompt(service.PromptDefinition{
		Name:        "swap_analysis",
		Description: "Analyse a prospective swap: best quote plus the liquidity landscape on the chain",
		Arguments: []service.PromptArgument{
			arg("src", "Source token address", true),
			arg("dst", "Destination token address", true),
			arg("amount", "Amount in minimal units", true),
			arg("chainId", "Chain ID (default 1)", false),
		},
	}, s.swapAnalysis)

	return s
}

// Ping checks the swap API health endpoint.
func (s *SwapService) Ping(ctx context.Context) error {
	_, err := s.client.Get(ctx, chainPath(swapPrefix, 1, "/healthcheck"), nil)
	return err
}

type rawQuote struct {
	SrcToken  *TokenInfo      `json:"srcToken"`
	DstToken  *TokenInfo      `json:"dstToken"`
	DstAmount string          `json:"dstAmount"`
	Protocols json.RawMessage `json:"protocols"`
	Gas       int64           `json:"gas"`
}

// Quote fetches a quote for amount of src into dst.
func (s *SwapService) Quote(ctx context.Context, chainID int, src, dst, amount string) (*SwapQuote, error) {
	q := url.Values{}
	q.Set("src", src)
	q.Set("dst", dst)
	q.Set("amount", amount)
	q.Set("includeTokensInfo", "true")
	q.Set("includeProtocols", "true")
	q.Set("includeGas", "true")

	var raw rawQuote
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, chainID, "/quote"), q, &raw); err != nil {
		return nil, err
	}
	return &SwapQuote{
		ChainID:   chainID,
		SrcToken:  raw.SrcToken,
		DstToken:  raw.DstToken,
		SrcAmount: amount,
		DstAmount: raw.DstAmount,
		Gas:       raw.Gas,
		Protocols: raw.Protocols,
	}, nil
}

func (s *SwapService) quote(ctx context.Context, args service.Args) (any, error) {
	return s.Quote(ctx, args.ChainID(), args.String("src", ""), args.String("dst", ""), args.String("amount", ""))
}

func (s *SwapService) swap(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	q := url.Values{}
	q.Set("src", args.String("src", ""))
	q.Set("dst", args.String("dst", ""))
	q.Set("amount", args.String("amount", ""))
	q.Set("from", args.String("from", ""))
	q.Set("origin", args.String("origin", args.String("from", "")))
	q.Set("slippage", args.String("slippage", "1"))
	q.Set("includeTokensInfo", "true")

	var raw struct {
		SrcToken  *TokenInfo `json:"srcToken"`
		DstToken  *TokenInfo `json:"dstToken"`
		DstAmount string     `json:"dstAmount"`
		Tx        SwapTx     `json:"tx"`
	}
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, chainID, "/swap"), q, &raw); err != nil {
		return nil, err
	}
	return &SwapTransaction{
		ChainID:   chainID,
		SrcToken:  raw.SrcToken,
		DstToken:  raw.DstToken,
		SrcAmount: q.Get("amount"),
		DstAmount: raw.DstAmount,
		Tx:        raw.Tx,
	}, nil
}

func (s *SwapService) spender(ctx context.Context, args service.Args) (any, error) {
	var raw struct {
		Address string `json:"address"`
	}
	chainID := args.ChainID()
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, chainID, "/approve/spender"), nil, &raw); err != nil {
		return nil, err
	}
	return map[string]any{"chainId": chainID, "spender": raw.Address}, nil
}

func (s *SwapService) approveTransaction(ctx context.Context, args service.Args) (any, error) {
	q := url.Values{}
	q.Set("tokenAddress", args.String("tokenAddress", ""))
	if amount := args.String("amount", ""); amount != "" {
		q.Set("amount", amount)
	}
	var tx SwapTx
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, args.ChainID(), "/approve/transaction"), q, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *SwapService) allowance(ctx context.Context, args service.Args) (any, error) {
	q := url.Values{}
	q.Set("tokenAddress", args.String("tokenAddress", ""))
	q.Set("walletAddress", args.String("walletAddress", ""))
	var raw struct {
		Allowance string `json:"allowance"`
	}
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, args.ChainID(), "/approve/allowance"), q, &raw); err != nil {
		return nil, err
	}
	return map[string]any{
		"tokenAddress":  q.Get("tokenAddress"),
		"walletAddress": q.Get("walletAddress"),
		"allowance":     raw.Allowance,
	}, nil
}

// LiquiditySources lists the DEX protocols on a chain.
func (s *SwapService) LiquiditySources(ctx context.Context, chainID int) ([]LiquiditySource, error) {
	var raw struct {
		Protocols []LiquiditySource `json:"protocols"`
	}
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, chainID, "/liquidity-sources"), nil, &raw); err != nil {
		return nil, err
	}
	return raw.Protocols, nil
}

func (s *SwapService) tokens(ctx context.Context, args service.Args) (any, error) {
	var raw struct {
		Tokens map[string]TokenInfo `json:"tokens"`
	}
	if err := s.client.GetJSON(ctx, chainPath(swapPrefix, args.ChainID(), "/tokens"), nil, &raw); err != nil {
		return nil, err
	}
	list := make([]TokenInfo, 0, len(raw.Tokens))
	for _, t := range raw.Tokens {
		list = append(list, t)
	}
	sortTokens(list)
	return map[string]any{"count": len(list), "tokens": list}, nil
}

func (s *SwapService) swapAnalysis(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	quote, err := s.Quote(ctx, chainID, args.String("src", ""), args.String("dst", ""), args.String("amount", ""))
	if err != nil {
		return nil, err
	}
	sources, err := s.LiquiditySources(ctx, chainID)
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Analyse the following 1inch swap on %s.", chainName(chainID))
	r.line("")
	r.line("Sell: %s %s", quote.SrcAmount, symbolOf(quote.SrcToken, args.String("src", "")))
	r.line("Receive: %s %s", quote.DstAmount, symbolOf(quote.DstToken, args.String("dst", "")))
	if quote.Gas > 0 {
		r.line("Estimated gas: %s", strconv.FormatInt(quote.Gas, 10))
	}
	r.line("Liquidity sources available: %d", len(sources))
	r.line("")
	r.line("Explain the effective exchange rate, the gas cost relative to trade size, and whether splitting or waiting could improve execution.")

	return service.UserPrompt("Swap analysis", r.String()), nil
}

func symbolOf(t *TokenInfo, fallback string) string {
	if t != nil && t.Symbol != "" {
		return t.Symbol
	}
	return fallback
}

const swapDocs = `# 1inch Classic Swap API (v6.0)

Base path: /swap/v6.0/{chainId}

| Endpoint | Purpose |
|---|---|
| GET /quote?src&dst&amount | Best rate without building a transaction |
| GET /swap?src&dst&amount&from&origin&slippage | Ready-to-sign swap transaction |
| GET /approve/spender | Router address to approve |
| GET /approve/transaction?tokenAddress&amount | ERC20 approve calldata |
| GET /approve/allowance?tokenAddress&walletAddress | Current router allowance |
| GET /liquidity-sources | DEX protocols used for routing |
| GET /tokens | Tradable tokens |

Flow: check allowance, approve the router if needed, request /swap, sign and broadcast tx.
Native token address: 0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE.
Amounts are always in the token's minimal units.
`

const supportedChainsJSON = `{
  "chains": [
    {"id": 1, "name": "Ethereum"},
    {"id": 10, "name": "Optimism"},
    {"id": 56, "name": "BNB Chain"},
    {"id": 100, "name": "Gnosis"},
    {"id": 137, "name": "Polygon"},
    {"id": 324, "name": "zkSync Era"},
    {"id": 8453, "name": "Base"},
    {"id": 42161, "name": "Arbitrum"},
    {"id": 43114, "name": "Avalanche"}
  ]
}`
