package httpinterface

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/privateorder"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	webhookpubsub "github.com/tdex-network/tdex-privateswap/internal/infrastructure/pubsub/webhook"
)

// OrderBookService ...
type OrderBookService interface {
	GetOrderBook(ctx context.Context, engine, base, quote string) (domain.Quote, error)
}

// OrderService submits single legs.
type OrderService interface {
	SubmitMarketOrder(
		ctx context.Context, req submitter.MarketOrderRequest,
	) (*submitter.MarketOrderReply, error)
	SubmitLimitOrder(
		ctx context.Context, req submitter.LimitOrderRequest,
	) (*submitter.LimitOrderReply, error)
}

// PrivateOrderService ...
type PrivateOrderService interface {
	Submit(
		ctx context.Context, req privateorder.PrivateOrderRequest,
	) (*domain.PrivateOrder, error)
	Get(ctx context.Context, uuid string) (*domain.PrivateOrder, error)
	List(ctx context.Context, onlyOpen bool) ([]domain.PrivateOrder, error)
	Cancel(ctx context.Context, uuid string) error
	Report(ctx context.Context, uuid string) (*privateorder.RecoveryReport, error)
}

// WebhookService ...
type WebhookService interface {
	AddWebhook(action, endpoint, secret string) (string, error)
	RemoveWebhook(id string) error
	ListWebhooks(action webhookpubsub.WebhookAction) []webhookpubsub.Webhook
}

type pricePoint struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

type orderBookResponse struct {
	Base  string       `json:"base"`
	Quote string       `json:"quote"`
	Bids  []pricePoint `json:"bids"`
	Asks  []pricePoint `json:"asks"`
}

func newOrderBookResponse(q domain.Quote) orderBookResponse {
	toPoints := func(list []domain.PricePoint) []pricePoint {
		points := make([]pricePoint, 0, len(list))
		for _, p := range list {
			points = append(points, pricePoint{p.Price, p.Amount})
		}
		return points
	}
	return orderBookResponse{
		Base:  q.BaseCurrency,
		Quote: q.QuoteCurrency,
		Bids:  toPoints(q.Bids),
		Asks:  toPoints(q.Asks),
	}
}

type marketOrderRequest struct {
	Engine      string          `json:"engine"`
	Base        string          `json:"base"`
	Quote       string          `json:"quote"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	QuoteAmount decimal.Decimal `json:"quote_amount"`
	Price       decimal.Decimal `json:"price"`
}

type marketOrderResponse struct {
	Uuid string `json:"uuid"`
}

type limitOrderRequest struct {
	Engine string          `json:"engine"`
	Base   string          `json:"base"`
	Quote  string          `json:"quote"`
	Price  decimal.Decimal `json:"price"`
}

type limitOrderResponse struct {
	Uuid string `json:"uuid"`
}

type swapResponse struct {
	Uuid                string          `json:"uuid"`
	Engine              string          `json:"engine"`
	Base                string          `json:"base"`
	Quote               string          `json:"quote"`
	QuoteCurrencyAmount decimal.Decimal `json:"quote_currency_amount"`
	Amount              decimal.Decimal `json:"amount"`
	Price               decimal.Decimal `json:"price"`
	IsMarket            bool            `json:"is_market"`
	Status              string          `json:"status"`
	TimeStarted         time.Time       `json:"time_started"`
	Hidden              bool            `json:"hidden"`
	PrivateOrderStatus  string          `json:"private_order_status,omitempty"`
}

func newSwapResponse(r domain.SwapRecord) swapResponse {
	res := swapResponse{
		Uuid:                r.Order.Uuid,
		Engine:              r.Order.Engine,
		Base:                r.Order.BaseCurrency,
		Quote:               r.Order.QuoteCurrency,
		QuoteCurrencyAmount: r.Order.QuoteCurrencyAmount,
		Amount:              r.Order.Amount,
		Price:               r.Order.Price,
		IsMarket:            r.Order.IsMarket,
		Status:              r.Order.Status.String(),
		TimeStarted:         r.Order.TimeStarted,
		Hidden:              r.Hidden,
	}
	if r.Privacy != nil {
		res.PrivateOrderStatus = r.Privacy.Status.String()
	}
	return res
}

type privateOrderRequest struct {
	Base        string          `json:"base"`
	Quote       string          `json:"quote"`
	QuoteAmount decimal.Decimal `json:"quote_amount"`
}

type privateOrderResponse struct {
	Uuid                       string          `json:"uuid"`
	Base                       string          `json:"base"`
	Quote                      string          `json:"quote"`
	Intermediate               string          `json:"intermediate"`
	QuoteCurrencyAmount        decimal.Decimal `json:"quote_currency_amount"`
	ExpectedBaseCurrencyAmount decimal.Decimal `json:"expected_base_currency_amount"`
	BaseResOrderUuid           string          `json:"base_res_order_uuid,omitempty"`
	Status                     string          `json:"status"`
	InitialMainBalance         decimal.Decimal `json:"initial_main_balance"`
	InitialIntermediateBalance decimal.Decimal `json:"initial_intermediate_balance"`
	Withdrawn                  decimal.Decimal `json:"withdrawn"`
	WithdrawalTxID             string          `json:"withdrawal_txid,omitempty"`
	Stage                      string          `json:"stage"`
	LastCompletedStage         string          `json:"last_completed_stage"`
	FailedStage                string          `json:"failed_stage,omitempty"`
	FailureReason              string          `json:"failure_reason,omitempty"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

func newPrivateOrderResponse(o domain.PrivateOrder) privateOrderResponse {
	res := privateOrderResponse{
		Uuid:                       o.Uuid,
		Base:                       o.BaseCurrency,
		Quote:                      o.QuoteCurrency,
		Intermediate:               o.IntermediateCurrency,
		QuoteCurrencyAmount:        o.QuoteCurrencyAmount,
		ExpectedBaseCurrencyAmount: o.ExpectedBaseCurrencyAmount,
		BaseResOrderUuid:           o.BaseResOrderUuid,
		Status:                     o.Status.String(),
		InitialMainBalance:         o.InitialMainBalance,
		InitialIntermediateBalance: o.InitialIntermediateBalance,
		Withdrawn:                  o.Withdrawn,
		WithdrawalTxID:             o.WithdrawalTxID,
		Stage:                      o.Stage.String(),
		LastCompletedStage:         o.LastCompletedStage.String(),
		FailureReason:              o.FailureReason,
		CreatedAt:                  o.CreatedAt,
		UpdatedAt:                  o.UpdatedAt,
	}
	if o.FailedStage != domain.StageNone {
		res.FailedStage = o.FailedStage.String()
	}
	return res
}

type reportResponse struct {
	Order         privateOrderResponse `json:"order"`
	Running       bool                 `json:"running"`
	FundsLocation string               `json:"funds_location"`
	MainBalance   *decimal.Decimal     `json:"main_balance"`
	HopBalance    *decimal.Decimal     `json:"hop_balance"`
	Legs          []swapResponse       `json:"legs"`
}

func newReportResponse(r privateorder.RecoveryReport) reportResponse {
	legs := make([]swapResponse, 0, len(r.Legs))
	for _, leg := range r.Legs {
		legs = append(legs, newSwapResponse(domain.SwapRecord{Order: leg}))
	}
	return reportResponse{
		Order:         newPrivateOrderResponse(r.Order),
		Running:       r.Running,
		FundsLocation: r.FundsLocation,
		MainBalance:   r.MainBalance,
		HopBalance:    r.HopBalance,
		Legs:          legs,
	}
}

type webhookRequest struct {
	Action   string `json:"action"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type webhookResponse struct {
	ID       string `json:"id"`
	Action   string `json:"action,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
