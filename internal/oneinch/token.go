package oneinch

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const tokenPrefix = "/token/v1.2"

// TokenService wraps the Token API (search and metadata).
type TokenService struct {
	base
}

// NewTokenService builds the token service and its manifest.
func NewTokenService(client *Client) *TokenService {
	s := &TokenService{base: newBase(client)}

	s.tool("search_tokens",
		"Search tokens by symbol or name on a chain.",
		service.Object(map[string]service.Property{
			"chainId":      service.ChainIDProp(),
			"query":        service.StringProp("Symbol or name fragment, e.g. 'USDC'"),
			"limit":        service.NumberProp("Maximum results (default 10)"),
			"ignoreListed": service.BoolProp("Exclude tokens present in the 1inch whitelist"),
		}, "query"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Search(ctx, args.ChainID(), args.String("query", ""), args.Int("limit", 10), args.Bool("ignoreListed", false))
		})
	s.tool("get_token_info",
		"Get metadata (symbol, name, decimals, logo) for one token address.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"address": service.StringProp("Token contract address"),
		}, "address"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Info(ctx, args.ChainID(), args.String("address", ""))
		})
	s.tool("get_multiple_tokens_info",
		"Get metadata for several token addresses at once.",
		service.Object(map[string]service.Property{
			"chainId":   service.ChainIDProp(),
			"addresses": service.StringArrayProp("Token contract addresses"),
		}, "addresses"),
		s.multiple)
	s.tool("get_token_list",
		"Get the 1inch whitelisted token list for a chain.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"limit":   service.NumberProp("Maximum tokens to return (default 100)"),
		}),
		s.list)

	s.AddStaticResource(docResource("token://docs/api", "Token API documentation",
		"Endpoints of the 1inch Token API"), tokenDocs)

	s.prompt(service.PromptDefinition{
		Name:        "token_research",
		Description: "Research a token: resolve a search query and summarise the best match",
		Arguments: []service.PromptArgument{
			arg("query", "Token symbol or name", true),
			arg("chainId", "Chain ID (default 1)", false),
		},
	}, s.research)

	return s
}

// Ping runs a one-result search.
func (s *TokenService) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("query", "ETH")
	q.Set("limit", "1")
	_, err := s.client.Get(ctx, chainPath(tokenPrefix, 1, "/search"), q)
	return err
}

// Search finds tokens matching query.
func (s *TokenService) Search(ctx context.Context, chainID int, query string, limit int, ignoreListed bool) ([]TokenInfo, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("ignore_listed", strconv.FormatBool(ignoreListed))

	var tokens []TokenInfo
	if err := s.client.GetJSON(ctx, chainPath(tokenPrefix, chainID, "/search"), q, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Info returns metadata for one token.
func (s *TokenService) Info(ctx context.Context, chainID int, address string) (*TokenInfo, error) {
	var t TokenInfo
	path := chainPath(tokenPrefix, chainID, "/custom/"+url.PathEscape(address))
	if err := s.client.GetJSON(ctx, path, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TokenService) multiple(ctx context.Context, args service.Args) (any, error) {
	addresses := args.StringSlice("addresses")
	if len(addresses) == 0 {
		return nil, &service.MissingParamsError{Params: []string{"addresses"}}
	}
	q := url.Values{}
	q.Set("addresses", strings.Join(addresses, ","))

	var byAddress map[string]TokenInfo
	if err := s.client.GetJSON(ctx, chainPath(tokenPrefix, args.ChainID(), "/custom"), q, &byAddress); err != nil {
		return nil, err
	}
	return byAddress, nil
}

func (s *TokenService) list(ctx context.Context, args service.Args) (any, error) {
	q := url.Values{}
	q.Set("provider", "1inch")

	var byAddress map[string]TokenInfo
	if err := s.client.GetJSON(ctx, chainPath(tokenPrefix, args.ChainID(), ""), q, &byAddress); err != nil {
		return nil, err
	}
	tokens := make([]TokenInfo, 0, len(byAddress))
	for _, t := range byAddress {
		tokens = append(tokens, t)
	}
	sortTokens(tokens)

	total := len(tokens)
	if limit := args.Int("limit", 100); limit > 0 && limit < len(tokens) {
		tokens = tokens[:limit]
	}
	return map[string]any{"total": total, "tokens": tokens}, nil
}

func (s *TokenService) research(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	query := args.String("query", "")
	matches, err := s.Search(ctx, chainID, query, 5, false)
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Research the token matching %q on %s.", query, chainName(chainID))
	if len(matches) == 0 {
		r.line("No tokens matched the query. Suggest alternative spellings or chains.")
		return service.UserPrompt("Token research", r.String()), nil
	}

	best, err := s.Info(ctx, chainID, matches[0].Address)
	if err != nil {
		return nil, err
	}
	r.line("")
	r.line("Best match: %s (%s)", best.Name, best.Symbol)
	r.line("Address: %s", best.Address)
	r.line("Decimals: %d", best.Decimals)
	if len(best.Tags) > 0 {
		r.line("Tags: %s", strings.Join(best.Tags, ", "))
	}
	if len(matches) > 1 {
		r.line("")
		r.line("Other matches:")
		for _, m := range matches[1:] {
			r.line("- %s", formatToken(m))
		}
	}
	r.line("")
	r.line("Summarise what this token is, how it is typically used, and any risks of confusing it with similarly named tokens.")
	return service.UserPrompt("Token research", r.String()), nil
}

func formatToken(t TokenInfo) string {
	return fmt.Sprintf("%s (%s) %s", t.Symbol, t.Name, t.Address)
}

func sortTokens(tokens []TokenInfo) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Symbol != tokens[j].Symbol {
			return tokens[i].Symbol < tokens[j].Symbol
		}
		return tokens[i].Address < tokens[j].Address
	})
}

const tokenDocs = `# 1inch Token API (v1.2)

| Endpoint | Purpose |
|---|---|
| GET /token/v1.2/{chainId}/search?query&limit&ignore_listed | Search by symbol or name |
| GET /token/v1.2/{chainId}/custom/{address} | Metadata for one token |
| GET /token/v1.2/{chainId}/custom?addresses=a,b | Metadata for several tokens |
| GET /token/v1.2/{chainId}?provider=1inch | Whitelisted token list |

Metadata fields: address, symbol, name, decimals, logoURI, tags.
`
