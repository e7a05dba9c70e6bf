package rpcengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
	"github.com/tdex-network/tdex-privateswap/pkg/circuitbreaker"
	"github.com/thanhpk/randstr"
	"go.uber.org/ratelimit"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRateLimit      = 10
)

// Config ...
type Config struct {
	// Name is the role the engine is registered with.
	Name     string
	URL      string
	User     string
	Password string
	// RequestTimeout bounds every single rpc call.
	RequestTimeout time.Duration
	// RateLimit is the max number of requests per second.
	RateLimit int
}

type client struct {
	name     string
	url      string
	user     string
	password string

	httpClient *http.Client
	limiter    ratelimit.Limiter
	cb         *gobreaker.CircuitBreaker
}

// NewTradingEngine returns a client for the JSON-RPC interface of a trading
// engine process.
func NewTradingEngine(cfg Config) (ports.TradingEngine, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("missing trading engine name")
	}
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid url for engine %s: %w", cfg.Name, err)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}

	return &client{
		name:       cfg.Name,
		url:        cfg.URL,
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    ratelimit.New(cfg.RateLimit),
		cb:         circuitbreaker.NewCircuitBreaker(fmt.Sprintf("engine-%s", cfg.Name)),
	}, nil
}

func (c *client) Name() string {
	return c.name
}

func (c *client) GetOrderBook(
	ctx context.Context, base, quote string,
) (domain.Quote, error) {
	res := orderBookResult{}
	if err := c.call(
		ctx, methodGetOrderBook, pairParams{base, quote}, &res,
	); err != nil {
		return domain.Quote{}, err
	}

	bids, err := parsePricePoints(res.Bids)
	if err != nil {
		return domain.Quote{}, err
	}
	asks, err := parsePricePoints(res.Asks)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{
		BaseCurrency:  res.Base,
		QuoteCurrency: res.Quote,
		Bids:          bids,
		Asks:          asks,
	}, nil
}

func (c *client) CreateMarketOrder(
	ctx context.Context, order ports.MarketOrder,
) (ports.MarketOrderReply, error) {
	res := marketOrderResult{}
	if err := c.call(ctx, methodCreateMarketOrder, marketOrderParams{
		Base:   order.BaseCurrency,
		Quote:  order.QuoteCurrency,
		Side:   string(order.Side),
		Amount: order.Amount.String(),
		Price:  order.Price.String(),
	}, &res); err != nil {
		return ports.MarketOrderReply{}, err
	}

	if res.Pending == nil {
		return ports.MarketOrderReply{}, nil
	}
	return ports.MarketOrderReply{Uuid: res.Pending.Uuid}, nil
}

func (c *client) CreateLimitOrder(
	ctx context.Context, base, quote string, price decimal.Decimal,
) (bool, error) {
	res := limitOrderResult{}
	if err := c.call(ctx, methodCreateLimitOrder, limitOrderParams{
		Base: base, Quote: quote, Price: price.String(),
	}, &res); err != nil {
		return false, err
	}
	return res.Result == limitOrderSuccess, nil
}

func (c *client) Withdraw(
	ctx context.Context, asset, address string, amount decimal.Decimal,
) (string, error) {
	res := withdrawResult{}
	if err := c.call(ctx, methodWithdraw, withdrawParams{
		Asset: asset, Address: address, Amount: amount.String(),
	}, &res); err != nil {
		return "", err
	}
	if res.TxID == "" {
		return "", fmt.Errorf("%w: missing withdrawal txid", ErrInvalidResponse)
	}
	return res.TxID, nil
}

func (c *client) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	res := balanceResult{}
	if err := c.call(ctx, methodGetBalance, assetParams{asset}, &res); err != nil {
		return decimal.Zero, err
	}
	balance, err := decimal.NewFromString(res.Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: balance %q", ErrInvalidResponse, res.Balance)
	}
	return balance, nil
}

func (c *client) GetDepositAddress(ctx context.Context, asset string) (string, error) {
	res := addressResult{}
	if err := c.call(ctx, methodGetAddress, assetParams{asset}, &res); err != nil {
		return "", err
	}
	if res.Address == "" {
		return "", fmt.Errorf("%w: missing address", ErrInvalidResponse)
	}
	return res.Address, nil
}

func (c *client) GetOrderStatus(
	ctx context.Context, uuid string,
) (domain.OrderStatus, error) {
	res := orderStatusResult{}
	if err := c.call(ctx, methodGetOrderStatus, orderStatusParams{uuid}, &res); err != nil {
		return "", err
	}
	return domain.ParseOrderStatus(res.Status)
}

// call performs a JSON-RPC request and decodes its result into result.
// Transport failures count towards the circuit breaker, errors returned by
// the engine don't.
func (c *client) call(
	ctx context.Context, method string, params, result interface{},
) error {
	id := randstr.Hex(8)
	body, err := json.Marshal(request{
		Version: jsonrpcVersion, ID: id, Method: method, Params: params,
	})
	if err != nil {
		return err
	}

	c.limiter.Take()

	iResp, err := c.cb.Execute(func() (interface{}, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		return fmt.Errorf("%s on %s: %w", method, c.name, err)
	}
	resp := iResp.(*response)

	if resp.ID != id {
		return fmt.Errorf(
			"%w: %s on %s: got id %s, expected %s", ErrInvalidResponse, method, c.name, resp.ID, id,
		)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s on %s: %w", method, c.name, resp.Error)
	}
	if len(resp.Result) <= 0 {
		return fmt.Errorf("%w: %s on %s: missing result", ErrInvalidResponse, method, c.name)
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("%w: %s on %s: %s", ErrInvalidResponse, method, c.name, err)
	}

	log.Debugf("engine %s: %s %s", c.name, method, id)
	return nil
}

func (c *client) post(ctx context.Context, body []byte) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	rs, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer rs.Body.Close()

	buf, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, err
	}

	resp := &response{}
	if err := json.Unmarshal(buf, resp); err != nil {
		if rs.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("http status %d: %s", rs.StatusCode, string(buf))
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, err)
	}
	return resp, nil
}

func parsePricePoints(list []pricePoint) ([]domain.PricePoint, error) {
	points := make([]domain.PricePoint, 0, len(list))
	for _, p := range list {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: price %q", ErrInvalidResponse, p.Price)
		}
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: amount %q", ErrInvalidResponse, p.Amount)
		}
		points = append(points, domain.PricePoint{Price: price, Amount: amount})
	}
	return points, nil
}
