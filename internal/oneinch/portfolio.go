package oneinch

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const portfolioPrefix = "/portfolio/portfolio/v4"

// portfolioTimeranges are accepted by the profit and loss endpoints.
var portfolioTimeranges = []string{"1day", "1week", "1month", "1year", "3years"}

// PortfolioValue is the current USD value of a set of addresses.
type PortfolioValue struct {
	Total   float64         `json:"total"`
	ByChain []ChainValue    `json:"byChain,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// ChainValue is the value held on one chain.
type ChainValue struct {
	ChainID   int     `json:"chainId"`
	ChainName string  `json:"chainName,omitempty"`
	ValueUSD  float64 `json:"valueUsd"`
}

// ProfitAndLoss is the absolute and relative result over a timerange.
type ProfitAndLoss struct {
	AbsProfitUSD float64 `json:"absProfitUsd"`
	ROI          float64 `json:"roi"`
}

// PortfolioService wraps the Portfolio API.
type PortfolioService struct {
	base
}

// NewPortfolioService builds the portfolio service and its manifest.
func NewPortfolioService(client *Client) *PortfolioService {
	s := &PortfolioService{base: newBase(client)}

	addresses := service.StringArrayProp("Wallet addresses")
	chainID := service.NumberProp("Restrict to one chain ID; all supported chains when omitted")
	timerange := service.Property{Type: "string", Description: "Timerange", Enum: portfolioTimeranges, Default: "1month"}

	s.tool("get_portfolio_value",
		"Get the current USD value of wallets, broken down by chain.",
		service.Object(map[string]service.Property{
			"addresses": addresses,
			"chainId":   chainID,
		}, "addresses"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Value(ctx, args.StringSlice("addresses"), args.Int("chainId", 0))
		})
	s.tool("get_portfolio_pnl",
		"Get profit and loss with ROI of wallets over a timerange.",
		service.Object(map[string]service.Property{
			"addresses": addresses,
			"chainId":   chainID,
			"timerange": timerange,
		}, "addresses"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.ProfitAndLoss(ctx, args.StringSlice("addresses"), args.Int("chainId", 0), args.String("timerange", "1month"))
		})
	s.tool("get_portfolio_tokens",
		"Get per-token details (amount, price, value, pnl) of wallets' ERC20 holdings.",
		service.Object(map[string]service.Property{
			"addresses": addresses,
			"chainId":   chainID,
			"timerange": timerange,
		}, "addresses"),
		func(ctx context.Context, args service.Args) (any, error) {
			q := portfolioQuery(args.StringSlice("addresses"), args.Int("chainId", 0))
			q.Set("timerange", args.String("timerange", "1month"))
			return s.client.Get(ctx, portfolioPrefix+"/overview/erc20/details", q)
		})
	s.tool("get_portfolio_supported_chains",
		"List the chains the portfolio service supports.",
		service.Object(nil),
		func(ctx context.Context, _ service.Args) (any, error) {
			return s.client.Get(ctx, portfolioPrefix+"/general/supported_chains", nil)
		})
	s.tool("check_portfolio_service",
		"Check whether the portfolio service is available.",
		service.Object(nil),
		func(ctx context.Context, _ service.Args) (any, error) {
			return s.client.Get(ctx, portfolioPrefix+"/general/is_available", nil)
		})

	s.AddStaticResource(docResource("portfolio://docs/api", "Portfolio API documentation",
		"Endpoints of the 1inch Portfolio API"), portfolioDocs)

	s.prompt(service.PromptDefinition{
		Name:        "portfolio_report",
		Description: "Report on wallets' value and performance",
		Arguments: []service.PromptArgument{
			arg("addresses", "Comma separated wallet addresses", true),
			arg("chainId", "Restrict to one chain ID", false),
		},
	}, s.reportPrompt)

	return s
}

// Ping asks the service whether it is available.
func (s *PortfolioService) Ping(ctx context.Context) error {
	_, err := s.client.Get(ctx, portfolioPrefix+"/general/is_available", nil)
	return err
}

// Value returns the current value of addresses. chainID 0 means all chains.
func (s *PortfolioService) Value(ctx context.Context, addresses []string, chainID int) (*PortfolioValue, error) {
	var resp struct {
		Result struct {
			Total   float64 `json:"total"`
			ByChain []struct {
				ID    int     `json:"id"`
				Name  string  `json:"name"`
				Value float64 `json:"value_usd"`
			} `json:"by_chain"`
		} `json:"result"`
	}
	raw, err := s.client.Get(ctx, portfolioPrefix+"/general/current_value", portfolioQuery(addresses, chainID))
	if err != nil {
		return nil, err
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}

	v := &PortfolioValue{Total: resp.Result.Total}
	for _, c := range resp.Result.ByChain {
		v.ByChain = append(v.ByChain, ChainValue{ChainID: c.ID, ChainName: c.Name, ValueUSD: c.Value})
	}
	if len(v.ByChain) == 0 && v.Total == 0 {
		v.Raw = raw
	}
	return v, nil
}

// ProfitAndLoss returns the pnl of addresses over timerange.
func (s *PortfolioService) ProfitAndLoss(ctx context.Context, addresses []string, chainID int, timerange string) (*ProfitAndLoss, error) {
	q := portfolioQuery(addresses, chainID)
	q.Set("timerange", timerange)

	var resp struct {
		Result ProfitAndLoss `json:"result"`
	}
	if err := s.client.GetJSON(ctx, portfolioPrefix+"/general/profit_and_loss", q, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

func (s *PortfolioService) reportPrompt(ctx context.Context, args service.Args) (any, error) {
	addresses := args.StringSlice("addresses")
	chainID := args.Int("chainId", 0)

	value, err := s.Value(ctx, addresses, chainID)
	if err != nil {
		return nil, err
	}
	pnl, err := s.ProfitAndLoss(ctx, addresses, chainID, "1month")
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Write a portfolio report for %d wallet(s).", len(addresses))
	r.line("")
	r.line("Total value: $%.2f", value.Total)
	for _, c := range value.ByChain {
		name := c.ChainName
		if name == "" {
			name = chainName(c.ChainID)
		}
		r.line("- %s: $%.2f", name, c.ValueUSD)
	}
	r.line("")
	r.line("Profit and loss over the last month: $%.2f (ROI %.2f%%)", pnl.AbsProfitUSD, pnl.ROI*100)
	r.line("")
	r.line("Highlight concentration risk across chains and comment on recent performance.")
	return service.UserPrompt("Portfolio report", r.String()), nil
}

func portfolioQuery(addresses []string, chainID int) url.Values {
	q := url.Values{}
	for _, a := range addresses {
		q.Add("addresses", a)
	}
	if chainID > 0 {
		q.Set("chain_id", strconv.Itoa(chainID))
	}
	return q
}

const portfolioDocs = `# 1inch Portfolio API (v4)

| Endpoint | Purpose |
|---|---|
| GET /portfolio/portfolio/v4/general/current_value?addresses&chain_id | Current USD value by chain |
| GET /portfolio/portfolio/v4/general/profit_and_loss?addresses&chain_id&timerange | Profit and loss with ROI |
| GET /portfolio/portfolio/v4/overview/erc20/details?addresses&chain_id&timerange | Per-token details |
| GET /portfolio/portfolio/v4/general/supported_chains | Supported chains |
| GET /portfolio/portfolio/v4/general/is_available | Service availability |

Timeranges: 1day, 1week, 1month, 1year, 3years.
`
