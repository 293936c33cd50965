package oneinch

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

const chartsPrefix = "/charts/v1.0/chart"

var (
	chartPeriods  = []string{"24H", "1W", "1M", "1Y", "AllTime"}
	candleSeconds = []int{300, 900, 3600, 14400, 86400, 604800}
	wethAddress   = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	usdcAddress   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

// LinePoint is one sample of a line chart.
type LinePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Candle is one OHLC bucket.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// ChartsService wraps the Charts API.
type ChartsService struct {
	base
}

// NewChartsService builds the charts service and its manifest.
func NewChartsService(client *Client) *ChartsService {
	s := &ChartsService{base: newBase(client)}

	s.tool("get_line_chart",
		"Get the price ratio of token0 to token1 over a period as a line chart.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"token0":  service.StringProp("Base token address"),
			"token1":  service.StringProp("Quote token address"),
			"period":  {Type: "string", Description: "Chart period", Enum: chartPeriods, Default: "24H"},
		}, "token0", "token1"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Line(ctx, args.ChainID(), args.String("token0", ""), args.String("token1", ""), args.String("period", "24H"))
		})
	s.tool("get_candle_chart",
		"Get OHLC candles of token0 priced in token1.",
		service.Object(map[string]service.Property{
			"chainId": service.ChainIDProp(),
			"token0":  service.StringProp("Base token address"),
			"token1":  service.StringProp("Quote token address"),
			"seconds": service.NumberProp("Candle width in seconds: 300, 900, 3600, 14400, 86400 or 604800"),
		}, "token0", "token1", "seconds"),
		func(ctx context.Context, args service.Args) (any, error) {
			return s.Candles(ctx, args.ChainID(), args.String("token0", ""), args.String("token1", ""), args.Int("seconds", 0))
		})

	s.AddStaticResource(docResource("charts://docs/periods", "Chart periods",
		"Supported line chart periods and candle widths"), chartsDocs)

	s.prompt(service.PromptDefinition{
		Name:        "price_trend",
		Description: "Describe the price trend of a token pair",
		Arguments: []service.PromptArgument{
			arg("token0", "Base token address", true),
			arg("token1", "Quote token address", true),
			arg("period", "Chart period (default 24H)", false),
		},
	}, s.trend)

	return s
}

// Ping loads the WETH/USDC daily line chart.
func (s *ChartsService) Ping(ctx context.Context) error {
	_, err := s.Line(ctx, 1, wethAddress, usdcAddress, "24H")
	return err
}

// Line returns the line chart of token0/token1 over period.
func (s *ChartsService) Line(ctx context.Context, chainID int, token0, token1, period string) ([]LinePoint, error) {
	if !slices.Contains(chartPeriods, period) {
		return nil, fmt.Errorf("unsupported period %q", period)
	}
	path := fmt.Sprintf("%s/line/%s/%s/%s/%d", chartsPrefix, url.PathEscape(token0), url.PathEscape(token1), period, chainID)
	var resp struct {
		Data []LinePoint `json:"data"`
	}
	if err := s.client.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Candles returns OHLC candles of the given width.
func (s *ChartsService) Candles(ctx context.Context, chainID int, token0, token1 string, seconds int) ([]Candle, error) {
	if !slices.Contains(candleSeconds, seconds) {
		return nil, fmt.Errorf("unsupported candle width %d", seconds)
	}
	path := fmt.Sprintf("%s/aggregated/candle/%s/%s/%s/%d", chartsPrefix, url.PathEscape(token0), url.PathEscape(token1), strconv.Itoa(seconds), chainID)
	var resp struct {
		Data []Candle `json:"data"`
	}
	if err := s.client.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (s *ChartsService) trend(ctx context.Context, args service.Args) (any, error) {
	token0 := args.String("token0", "")
	token1 := args.String("token1", "")
	period := args.String("period", "24H")
	points, err := s.Line(ctx, 1, token0, token1, period)
	if err != nil {
		return nil, err
	}

	var r report
	r.line("Describe the price trend of %s against %s over %s.", token0, token1, period)
	r.line("")
	if len(points) == 0 {
		r.line("No chart data is available for this pair.")
		return service.UserPrompt("Price trend", r.String()), nil
	}
	first, last := points[0], points[len(points)-1]
	lo, hi := first.Value, first.Value
	for _, p := range points {
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	r.line("Samples: %d", len(points))
	r.line("Open: %g  Close: %g", first.Value, last.Value)
	r.line("Low: %g  High: %g", lo, hi)
	if first.Value != 0 {
		r.line("Change: %.2f%%", (last.Value-first.Value)/first.Value*100)
	}
	r.line("")
	r.line("Explain the movement and its volatility in plain language.")
	return service.UserPrompt("Price trend", r.String()), nil
}

const chartsDocs = `# 1inch Charts API (v1.0)

Line charts: GET /charts/v1.0/chart/line/{token0}/{token1}/{period}/{chainId}
Periods: 24H, 1W, 1M, 1Y, AllTime.

Candles: GET /charts/v1.0/chart/aggregated/candle/{token0}/{token1}/{seconds}/{chainId}
Widths (seconds): 300, 900, 3600, 14400, 86400, 604800.
`
