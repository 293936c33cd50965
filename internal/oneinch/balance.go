package oneinch

import (
	"context"
	"math/big"
	"net/url"
	"sort"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const balancePrefix = "/balance/v1.2"

// zeroAddress is used for balance API health checks.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// WalletBalances is the reshaped balances response.
type WalletBalances struct {
	ChainID  int               `json:"chainId"`
	Wallet   string            `json:"wallet"`
	Balances map[string]string `json:"balances"`
	NonZero  int               `json:"nonZero"`
}

// BalanceService wraps the Balance API.
type BalanceService struct {
	base
}

// NewBalanceService builds the balance service and its manifest.
func NewBalanceService(client *Client) *BalanceService {
	s := &BalanceService{base: newBase(client)}

	s.tool("get_wallet_balances",
		"Get all token balances of a wallet on a chain, in minimal units.",
		service.Object(map[string]service.Property{
			"chainId":       service.ChainIDProp(),
			"walletAddress": service.StringProp("Wallet address"),
		}, "walletAddress"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Balances(ctx, args.ChainID(), args.String("walletAddress", ""))
		})
	s.tool("get_token_allowances",
		"Get the allowances a wallet has granted to a spender for every token.",
		service.Object(map[string]service.Property{
			"chainId":       service.ChainIDProp(),
			"walletAddress": service.StringProp("Wallet address"),
			"spender":       service.StringProp("Spender contract address"),
		}, "walletAddress", "spender"),
		s.allowances)
	s.tool("get_balances_and_allowances",
		"Get balances together with allowances for a spender.",
		service.Object(map[string]service.Property{
			"chainId":       service.ChainIDProp(),
			"walletAddress": service.StringProp("Wallet address"),
			"spender":       service.StringProp("Spender contract address"),
		}, "walletAddress", "spender"),
		s.balancesAndAllowances)
	s.tool("get_multi_wallet_balances",
		"Get balances of selected tokens for several wallets.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"wallets": service.StringArrayProp("Wallet addresses"),
			"tokens":  service.StringArrayProp("Token addresses"),
		}, "wallets", "tokens"),
		s.multiWallet)

	s.AddStaticResource(docResource("balance://docs/api", "Balance API documentation",
		"Endpoints of the 1inch Balance API"), balanceDocs)

	s.prompt(service.PromptDefinition{
		Name:        "wallet_summary",
		Description: "Summarise the token holdings of a wallet",
		Arguments: []service.PromptArgument{
			arg("walletAddress", "Wallet address", true),
			arg("chainId", "Chain ID (default 1)", false),
		},
	}, s.walletSummary)

	return s
}

// Ping fetches the balances of the zero address.
func (s *BalanceService) Ping(ctx context.Context) error {
	_, err := s.client.Get(ctx, chainPath(balancePrefix, 1, "/balances/"+zeroAddress), nil)
	return err
}

// Balances returns all token balances of wallet.
func (s *BalanceService) Balances(ctx context.Context, chainID int, wallet string) (*WalletBalances, error) {
	var balances map[string]string
	path := chainPath(balancePrefix, chainID, "/balances/"+url.PathEscape(wallet))
	if err := s.client.GetJSON(ctx, path, nil, &balances); err != nil {
		return nil, err
	}
	return &WalletBalances{
		ChainID:  chainID,
		Wallet:   wallet,
		Balances: balances,
		NonZero:  len(nonZero(balances)),
	}, nil
}

func (s *BalanceService) allowances(ctx context.Context, args service.Args) (any, error) {
	var allowances map[string]string
	path := chainPath(balancePrefix, args.ChainID(), "/allowances/"+
		url.PathEscape(args.String("spender", ""))+"/"+url.PathEscape(args.String("walletAddress", "")))
	if err := s.client.GetJSON(ctx, path, nil, &allowances); err != nil {
		return nil, err
	}
	return allowances, nil
}

func (s *BalanceService) balancesAndAllowances(ctx context.Context, args service.Args) (any, error) {
	var raw map[string]struct {
		Balance   string `json:"balance"`
		Allowance string `json:"allowance"`
	}
	path := chainPath(balancePrefix, args.ChainID(), "/allowancesAndBalances/"+
		url.PathEscape(args.String("spender", ""))+"/"+url.PathEscape(args.String("walletAddress", "")))
	if err := s.client.GetJSON(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *BalanceService) multiWallet(ctx context.Context, args service.Args) (any, error) {
	wallets := args.StringSlice("wallets")
	tokens := args.StringSlice("tokens")
	if len(wallets) == 0 || len(tokens) == 0 {
		return nil, &service.MissingParamsError{Params: []string{"wallets", "tokens"}}
	}
	body := map[string][]string{"wallets": wallets, "tokens": tokens}

	var raw map[string]map[string]string
	path := chainPath(balancePrefix, args.ChainID(), "/balances/multiple/walletsAndTokens")
	if err := s.client.PostJSON(ctx, path, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *BalanceService) walletSummary(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	wallet := args.String("walletAddress", "")
	b, err := s.Balances(ctx, chainID, wallet)
	if err != nil {
		return nil, err
	}

	held := nonZero(b.Balances)
	var r report
	r.line("Summarise the holdings of wallet %s on %s.", wallet, chainName(chainID))
	r.line("")
	r.line("Tokens tracked: %d", len(b.Balances))
	r.line("Tokens with a non-zero balance: %d", len(held))
	for _, token := range held {
		r.line("- %s: %s", token, b.Balances[token])
	}
	r.line("")
	r.line("Balances are raw minimal units; resolve token decimals before comparing amounts.")
	return service.UserPrompt("Wallet summary", r.String()), nil
}

// nonZero returns the sorted token addresses holding a positive balance.
func nonZero(balances map[string]string) []string {
	var out []string
	for token, amount := range balances {
		n, ok := new(big.Int).SetString(amount, 10)
		if ok && n.Sign() > 0 {
			out = append(out, token)
		}
	}
	sort.Strings(out)
	return out
}

const balanceDocs = `# 1inch Balance API (v1.2)

| Endpoint | Purpose |
|---|---|
| GET /balance/v1.2/{chainId}/balances/{wallet} | All token balances |
| GET /balance/v1.2/{chainId}/allowances/{spender}/{wallet} | Allowances for a spender |
| GET /balance/v1.2/{chainId}/allowancesAndBalances/{spender}/{wallet} | Balances and allowances |
| POST /balance/v1.2/{chainId}/balances/multiple/walletsAndTokens | Selected tokens for several wallets |

Values are decimal strings in minimal units.
`
