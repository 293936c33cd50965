package oneinch

import (
	"github.com/devansh-m12/doraemon-sub001/internal/common"
	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// Registration keys of the domain services.
const (
	KeySwap         = "swap"
	KeyToken        = "token"
	KeyTokenDetails = "tokenDetails"
	KeyBalance      = "balance"
	KeyOrderbook    = "orderbook"
	KeyPortfolio    = "portfolio"
	KeyDomain       = "domain"
	KeyCharts       = "charts"
	KeyWeb3RPC      = "web3rpc"
)

// Services holds one instance of every domain service sharing a client.
type Services struct {
	Swap         *SwapService
	Token        *TokenService
	TokenDetails *TokenDetailsService
	Balance      *BalanceService
	Orderbook    *OrderbookService
	Portfolio    *PortfolioService
	Domain       *DomainService
	Charts       *ChartsService
	Web3RPC      *Web3RPCService
}

// NewServices creates the domain services over one shared client.
func NewServices(cfg ClientConfig, logger *common.Logger) *Services {
	client := NewClient(cfg, logger)
	return &Services{
		Swap:         NewSwapService(client),
		Token:        NewTokenService(client),
		TokenDetails: NewTokenDetailsService(client),
		Balance:      NewBalanceService(client),
		Orderbook:    NewOrderbookService(client),
		Portfolio:    NewPortfolioService(client),
		Domain:       NewDomainService(client),
		Charts:       NewChartsService(client),
		Web3RPC:      NewWeb3RPCService(client),
	}
}

// Registrations returns the services in registration order.
func (s *Services) Registrations() []service.Registration {
	return []service.Registration{
		{Key: KeySwap, Service: s.Swap},
		{Key: KeyToken, Service: s.Token},
		{Key: KeyTokenDetails, Service: s.TokenDetails},
		{Key: KeyBalance, Service: s.Balance},
		{Key: KeyOrderbook, Service: s.Orderbook},
		{Key: KeyPortfolio, Service: s.Portfolio},
		{Key: KeyDomain, Service: s.Domain},
		{Key: KeyCharts, Service: s.Charts},
		{Key: KeyWeb3RPC, Service: s.Web3RPC},
	}
}
