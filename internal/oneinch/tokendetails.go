package oneinch

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const tokenDetailsPrefix = "/token-details/v1.0"

// priceChangeIntervals are the intervals accepted by the price change endpoint.
var priceChangeIntervals = []string{"5m", "10m", "20m", "30m", "50m", "1h", "2h", "3h", "4h", "6h", "12h", "24h", "2d", "3d", "7d", "14d", "15d", "30d", "60d", "90d", "365d", "max"}

// TokenDetails is the reshaped details response.
type TokenDetails struct {
	ChainID int             `json:"chainId"`
	Address string          `json:"address,omitempty"`
	Assets  json.RawMessage `json:"assets,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// PriceChange is the USD and percent change over an interval.
type PriceChange struct {
	Address   string  `json:"address"`
	Interval  string  `json:"interval"`
	InUSD     float64 `json:"inUSD"`
	InPercent float64 `json:"inPercent"`
}

// TokenDetailsService wraps the Token Details API.
type TokenDetailsService struct {
	base
}

// NewTokenDetailsService builds the token details service and its manifest.
func NewTokenDetailsService(client *Client) *TokenDetailsService {
	s := &TokenDetailsService{base: newBase(client)}

	s.tool("get_token_details",
		"Get project details for a token: description, website, social links, market data.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"address": service.StringProp("Token contract address"),
		}, "address"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Details(ctx, args.ChainID(), args.String("address", ""))
		})
	s.tool("get_native_token_details",
		"Get project details for the chain's native token.",
		service.Object(map[string]service.Property{"chainId": service.ChainIDProp()}),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Details(ctx, args.ChainID(), "")
		})
	s.tool("get_token_price_change",
		"Get a token's price change in USD and percent over an interval.",
		service.Object(map[string]service.Property{
			"chainId":  service.ChainIDProp(),
			"address":  service.StringProp("Token contract address"),
			"interval": {Type: "string", Description: "Interval to measure over", Enum: priceChangeIntervals, Default: "24h"},
		}, "address"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.PriceChange(ctx, args.ChainID(), args.String("address", ""), args.String("interval", "24h"))
		})

	s.AddStaticResource(docResource("tokendetails://docs/api", "Token Details API documentation",
		"Endpoints of the 1inch Token Details API"), tokenDetailsDocs)

	s.prompt(service.PromptDefinition{
		Name:        "token_overview",
		Description: "Overview of a token's project details and recent price movement",
		Arguments: []service.PromptArgument{
			arg("address", "Token contract address", true),
			arg("chainId", "Chain ID (default 1)", false),
		},
	}, s.overview)

	return s
}

// Ping fetches native token details on Ethereum.
func (s *TokenDetailsService) Ping(ctx context.Context) error {
	_, err := s.client.Get(ctx, chainPath(tokenDetailsPrefix+"/details", 1, ""), nil)
	return err
}

// Details returns project details for address, or the native token when address is empty.
func (s *TokenDetailsService) Details(ctx context.Context, chainID int, address string) (*TokenDetails, error) {
	path := chainPath(tokenDetailsPrefix+"/details", chainID, "")
	if address != "" {
		path += "/" + url.PathEscape(address)
	}
	var raw struct {
		Assets  json.RawMessage `json:"assets"`
		Details json.RawMessage `json:"details"`
	}
	if err := s.client.GetJSON(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	return &TokenDetails{ChainID: chainID, Address: address, Assets: raw.Assets, Details: raw.Details}, nil
}

// PriceChange returns the price change of address over interval.
func (s *TokenDetailsService) PriceChange(ctx context.Context, chainID int, address, interval string) (*PriceChange, error) {
	q := url.Values{}
	q.Set("interval", interval)
	path := chainPath(tokenDetailsPrefix+"/prices/change", chainID, "/"+url.PathEscape(address))

	var raw struct {
		InUSD     float64 `json:"inUSD"`
		InPercent float64 `json:"inPercent"`
	}
	if err := s.client.GetJSON(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	return &PriceChange{Address: address, Interval: interval, InUSD: raw.InUSD, InPercent: raw.InPercent}, nil
}

func (s *TokenDetailsService) overview(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	address := args.String("address", "")

	details, err := s.Details(ctx, chainID, address)
	if err != nil {
		return nil, err
	}
	change, err := s.PriceChange(ctx, chainID, address, "24h")
	if err != nil {
		return nil, err
	}

	var assets struct {
		Name             string `json:"name"`
		Website          string `json:"website"`
		ShortDescription string `json:"shortDescription"`
	}
	_ = json.Unmarshal(details.Assets, &assets)

	var r report
	r.line("Give an overview of the token %s on %s.", address, chainName(chainID))
	r.line("")
	if assets.Name != "" {
		r.line("Project: %s", assets.Name)
	}
	if assets.Website != "" {
		r.line("Website: %s", assets.Website)
	}
	if assets.ShortDescription != "" {
		r.line("Description: %s", assets.ShortDescription)
	}
	r.line("24h change: %.2f%% (%.4f USD)", change.InPercent, change.InUSD)
	r.line("")
	r.line("Explain what the project does and interpret the recent price movement.")
	return service.UserPrompt("Token overview", r.String()), nil
}

const tokenDetailsDocs = `# 1inch Token Details API (v1.0)

| Endpoint | Purpose |
|---|---|
| GET /token-details/v1.0/details/{chainId} | Native token details |
| GET /token-details/v1.0/details/{chainId}/{address} | Token project details |
| GET /token-details/v1.0/prices/change/{chainId}/{address}?interval | Price change over interval |

Intervals: 5m ... 24h, 2d ... 365d, max.
`
