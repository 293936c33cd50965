package oneinch

import (
	"context"
	"net/url"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const domainPrefix = "/domains/v2.0"

// DomainRecord is a resolved name or address.
type DomainRecord struct {
	Protocol string `json:"protocol,omitempty"`
	Address  string `json:"address,omitempty"`
	Domain   string `json:"domain,omitempty"`
	CheckURL string `json:"checkUrl,omitempty"`
}

// DomainService wraps the Domains API (ENS and other name providers).
type DomainService struct {
	base
}

// NewDomainService builds the domain service and its manifest.
func NewDomainService(client *Client) *DomainService {
	s := &DomainService{base: newBase(client)}

	s.tool("lookup_domain",
		"Resolve a domain name (e.g. vitalik.eth) to an address.",
		service.Object(map[string]service.Property{
			"name": service.StringProp("Domain name"),
		}, "name"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Lookup(ctx, args.String("name", ""))
		})
	s.tool("reverse_lookup",
		"Resolve an address to its primary domain name.",
		service.Object(map[string]service.Property{
			"address": service.StringProp("Wallet address"),
		}, "address"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.ReverseLookup(ctx, args.String("address", ""))
		})
	s.tool("reverse_lookup_batch",
		"Resolve several addresses to domain names in one request.",
		service.Object(map[string]service.Property{
			"addresses": service.StringArrayProp("Wallet addresses"),
		}, "addresses"),
		func(ctx context.Context, args service.Args) (any, error) {
			addresses := args.StringSlice("addresses")
			if len(addresses) == 0 {
				return nil, &service.MissingParamsError{Params: []string{"addresses"}}
			}
			var byAddress map[string][]DomainRecord
			if err := s.client.PostJSON(ctx, domainPrefix+"/reverse-lookup-batch", addresses, &byAddress); err != nil {
				return nil, err
			}
			return byAddress, nil
		})
	s.tool("get_domain_providers",
		"Get provider records and avatars for an address or domain.",
		service.Object(map[string]service.Property{
			"addressOrDomain": service.StringProp("Address or domain name"),
		}, "addressOrDomain"),
		func(ctx context.Context, args service.Args) (any, error) {
			q := url.Values{}
			q.Set("addressOrDomain", args.String("addressOrDomain", ""))
			return s.client.Get(ctx, domainPrefix+"/get-providers-data-with-avatar", q)
		})

	s.AddStaticResource(docResource("domain://docs/api", "Domains API documentation",
		"Endpoints of the 1inch Domains API"), domainDocs)

	s.prompt(service.PromptDefinition{
		Name:        "identity_lookup",
		Description: "Resolve an address or domain and describe the on-chain identity",
		Arguments:   []service.PromptArgument{arg("addressOrDomain", "Address or domain name", true)},
	}, s.identity)

	return s
}

// Ping resolves a well known name.
func (s *DomainService) Ping(ctx context.Context) error {
	_, err := s.Lookup(ctx, "vitalik.eth")
	return err
}

// Lookup resolves name to an address.
func (s *DomainService) Lookup(ctx context.Context, name string) (*DomainRecord, error) {
	q := url.Values{}
	q.Set("name", name)
	var resp struct {
		Result DomainRecord `json:"result"`
	}
	if err := s.client.GetJSON(ctx, domainPrefix+"/lookup", q, &resp); err != nil {
		return nil, err
	}
	if resp.Result.Domain == "" {
		resp.Result.Domain = name
	}
	return &resp.Result, nil
}

// ReverseLookup resolves address to a domain.
func (s *DomainService) ReverseLookup(ctx context.Context, address string) (*DomainRecord, error) {
	q := url.Values{}
	q.Set("address", address)
	var resp struct {
		Result DomainRecord `json:"result"`
	}
	if err := s.client.GetJSON(ctx, domainPrefix+"/reverse-lookup", q, &resp); err != nil {
		return nil, err
	}
	if resp.Result.Address == "" {
		resp.Result.Address = address
	}
	return &resp.Result, nil
}

func (s *DomainService) identity(ctx context.Context, args service.Args) (any, error) {
	input := args.String("addressOrDomain", "")

	var (
		rec *DomainRecord
		err error
	)
	if isHexAddress(input) {
		rec, err = s.ReverseLookup(ctx, input)
	} else {
		rec, err = s.Lookup(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Describe the on-chain identity behind %s.", input)
	r.line("")
	if rec.Protocol != "" {
		r.line("Protocol: %s", rec.Protocol)
	}
	r.line("Domain: %s", orDash(rec.Domain))
	r.line("Address: %s", orDash(rec.Address))
	r.line("")
	r.line("Note whether the name and address resolve consistently in both directions.")
	return service.UserPrompt("Identity lookup", r.String()), nil
}

func isHexAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

const domainDocs = `# 1inch Domains API (v2.0)

| Endpoint | Purpose |
|---|---|
| GET /domains/v2.0/lookup?name | Name to address |
| GET /domains/v2.0/reverse-lookup?address | Address to name |
| POST /domains/v2.0/reverse-lookup-batch | Addresses to names |
| GET /domains/v2.0/get-providers-data-with-avatar?addressOrDomain | Provider records and avatars |
`
