package oneinch

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const orderbookPrefix = "/orderbook/v4.0"

// LimitOrder is one entry of the orderbook listing. Unknown fields are kept
// in Data.
type LimitOrder struct {
	OrderHash            string          `json:"orderHash"`
	Signature            string          `json:"signature,omitempty"`
	CreateDateTime       string          `json:"createDateTime,omitempty"`
	RemainingMakerAmount string          `json:"remainingMakerAmount,omitempty"`
	MakerBalance         string          `json:"makerBalance,omitempty"`
	MakerAllowance       string          `json:"makerAllowance,omitempty"`
	Data                 json.RawMessage `json:"data,omitempty"`
}

// OrdersCount is the response of the count endpoint.
type OrdersCount struct {
	Count int `json:"count"`
}

// OrderbookService wraps the Limit Order Protocol orderbook API.
type OrderbookService struct {
	base
}

// NewOrderbookService builds the orderbook service and its manifest.
func NewOrderbookService(client *Client) *OrderbookService {
	s := &OrderbookService{base: newBase(client)}

	s.tool("get_all_orders",
		"List limit orders, optionally filtered by status and assets.",
		service.Object(map[string]service.Property{
			"chainId":    service.ChainIDProp(),
			"page":       service.NumberProp("Page number (default 1)"),
			"limit":      service.NumberProp("Orders per page (default 100)"),
			"statuses":   service.StringArrayProp("Order statuses: 1 valid, 2 temporarily invalid, 3 invalid"),
			"makerAsset": service.StringProp("Filter by maker asset address"),
			"takerAsset": service.StringProp("Filter by taker asset address"),
		}),
		func(ctx context.Context, args service.Args) (any, error) {
			q := pageQuery(args)
			if v := args.String("makerAsset", ""); v != "" {
				q.Set("makerAsset", v)
			}
			if v := args.String("takerAsset", ""); v != "" {
				q.Set("takerAsset", v)
			}
			return s.list(ctx, chainPath(orderbookPrefix, args.ChainID(), "/all"), q)
		})
	s.tool("get_orders_by_maker",
		"List limit orders created by a maker address.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"address": service.StringProp("Maker address"),
			"page":    service.NumberProp("Page number (default 1)"),
			"limit":   service.NumberProp("Orders per page (default 100)"),
		}, "address"),
		func(ctx context.Context, args service.Args) (any, error) {
			path := chainPath(orderbookPrefix, args.ChainID(), "/address/"+url.PathEscape(args.String("address", "")))
			return s.list(ctx, path, pageQuery(args))
		})
	s.tool("get_order",
		"Get one limit order by its hash.",
		service.Object(map[string]service.Property{
			"chainId":   service.ChainIDProp(),
			"orderHash": service.StringProp("Order hash"),
		}, "orderHash"),
		func(ctx context.Context, args service.Args) (any, error) {
			path := chainPath(orderbookPrefix, args.ChainID(), "/order/"+url.PathEscape(args.String("orderHash", "")))
			return s.client.Get(ctx, path, nil)
		})
	s.tool("get_orders_count",
		"Count limit orders by status.",
		service.Object(map[string]service.Property{
			"chainId":  service.ChainIDProp(),
			"statuses": service.StringArrayProp("Order statuses to count"),
		}),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Count(ctx, args.ChainID(), args.StringSlice("statuses"))
		})
	s.tool("get_order_events",
		"Get fill and cancel events of a limit order.",
		service.Object(map[string]service.Property{
			"chainId":   service.ChainIDProp(),
			"orderHash": service.StringProp("Order hash"),
		}, "orderHash"),
		func(ctx context.Context, args service.Args) (any, error) {
			path := chainPath(orderbookPrefix, args.ChainID(), "/events/"+url.PathEscape(args.String("orderHash", "")))
			return s.client.Get(ctx, path, nil)
		})
	s.tool("create_limit_order",
		"Submit a signed limit order to the orderbook.",
		service.Object(map[string]service.Property{
			"chainId":   service.ChainIDProp(),
			"orderHash": service.StringProp("Hash of the order"),
			"order":     service.ObjectProp("Limit order struct (salt, maker, receiver, makerAsset, takerAsset, makingAmount, takingAmount, makerTraits)"),
			"signature": service.StringProp("Maker signature of the order"),
		}, "order", "signature"),
		s.create)

	s.AddStaticResource(docResource("orderbook://docs/api", "Orderbook API documentation",
		"Endpoints of the 1inch Limit Order orderbook API"), orderbookDocs)

	s.prompt(service.PromptDefinition{
		Name:        "orderbook_overview",
		Description: "Overview of the limit order book activity on a chain",
		Arguments:   []service.PromptArgument{arg("chainId", "Chain ID (default 1)", false)},
	}, s.overview)

	return s
}

// Ping counts valid orders on chain 1.
func (s *OrderbookService) Ping(ctx context.Context) error {
	_, err := s.Count(ctx, 1, nil)
	return err
}

// Count returns the number of orders with the given statuses.
func (s *OrderbookService) Count(ctx context.Context, chainID int, statuses []string) (*OrdersCount, error) {
	q := url.Values{}
	if len(statuses) > 0 {
		q.Set("statuses", strings.Join(statuses, ","))
	}
	var c OrdersCount
	if err := s.client.GetJSON(ctx, chainPath(orderbookPrefix, chainID, "/count"), q, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *OrderbookService) list(ctx context.Context, path string, q url.Values) ([]LimitOrder, error) {
	var orders []LimitOrder
	if err := s.client.GetJSON(ctx, path, q, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []LimitOrder{}
	}
	return orders, nil
}

func (s *OrderbookService) create(ctx context.Context, args service.Args) (any, error) {
	order, ok := args["order"].(map[string]any)
	if !ok {
		return nil, &service.MissingParamsError{Params: []string{"order"}}
	}
	body := map[string]any{
		"orderHash": args.String("orderHash", ""),
		"signature": args.String("signature", ""),
		"data":      order,
	}
	return s.client.Post(ctx, chainPath(orderbookPrefix, args.ChainID(), ""), body)
}

func (s *OrderbookService) overview(ctx context.Context, args service.Args) (any, error) {
	chainID := args.ChainID()
	valid, err := s.Count(ctx, chainID, []string{"1"})
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("page", "1")
	q.Set("limit", "5")
	q.Set("sortBy", "createDateTime")
	recent, err := s.list(ctx, chainPath(orderbookPrefix, chainID, "/all"), q)
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Give an overview of limit order activity on %s.", chainName(chainID))
	r.line("")
	r.line("Valid orders: %d", valid.Count)
	if len(recent) > 0 {
		r.line("Most recent orders:")
		for _, o := range recent {
			r.line("- %s created %s, remaining %s", o.OrderHash, o.CreateDateTime, o.RemainingMakerAmount)
		}
	}
	r.line("")
	r.line("Comment on how active the book is and what the recent orders suggest.")
	return service.UserPrompt("Orderbook overview", r.String()), nil
}

func pageQuery(args service.Args) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(args.Int("page", 1)))
	q.Set("limit", strconv.Itoa(args.Int("limit", 100)))
	if statuses := args.StringSlice("statuses"); len(statuses) > 0 {
		q.Set("statuses", strings.Join(statuses, ","))
	}
	return q
}

const orderbookDocs = `# 1inch Orderbook API (v4.0)

| Endpoint | Purpose |
|---|---|
| GET /orderbook/v4.0/{chainId}/all | List orders (page, limit, statuses, makerAsset, takerAsset) |
| GET /orderbook/v4.0/{chainId}/address/{address} | Orders of a maker |
| GET /orderbook/v4.0/{chainId}/order/{orderHash} | One order |
| GET /orderbook/v4.0/{chainId}/count | Count by status |
| GET /orderbook/v4.0/{chainId}/events/{orderHash} | Fill and cancel events |
| POST /orderbook/v4.0/{chainId} | Submit a signed order |

Statuses: 1 valid, 2 temporarily invalid, 3 invalid.
`
