package httpinterface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/privateorder"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	webhookpubsub "github.com/tdex-network/tdex-privateswap/internal/infrastructure/pubsub/webhook"
)

// Handler serves the REST API of the daemon.
type Handler struct {
	orderBookSvc    OrderBookService
	orderSvc        OrderService
	privateOrderSvc PrivateOrderService
	webhookSvc      WebhookService
	ledger          domain.SwapLedger
	defaultEngine   string
}

// HandlerOpts ...
type HandlerOpts struct {
	OrderBookSvc    OrderBookService
	OrderSvc        OrderService
	PrivateOrderSvc PrivateOrderService
	// WebhookSvc is optional, webhook routes reply 404 if not set.
	WebhookSvc WebhookService
	Ledger     domain.SwapLedger
	// DefaultEngine serves single leg orders that don't specify any engine.
	DefaultEngine string
}

func NewHandler(opts HandlerOpts) (*Handler, error) {
	if opts.OrderBookSvc == nil {
		return nil, fmt.Errorf("missing order book service")
	}
	if opts.OrderSvc == nil {
		return nil, fmt.Errorf("missing order service")
	}
	if opts.PrivateOrderSvc == nil {
		return nil, fmt.Errorf("missing private order service")
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("missing swap ledger")
	}
	if opts.DefaultEngine == "" {
		return nil, fmt.Errorf("missing default engine")
	}
	return &Handler{
		orderBookSvc:    opts.OrderBookSvc,
		orderSvc:        opts.OrderSvc,
		privateOrderSvc: opts.PrivateOrderSvc,
		webhookSvc:      opts.WebhookSvc,
		ledger:          opts.Ledger,
		defaultEngine:   opts.DefaultEngine,
	}, nil
}

func (h *Handler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	base := currency(query.Get("base"))
	quote := currency(query.Get("quote"))
	if base == "" || quote == "" {
		writeError(w, r, domain.ErrMissingCurrency)
		return
	}

	book, err := h.orderBookSvc.GetOrderBook(r.Context(), query.Get("engine"), base, quote)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderBookResponse(book))
}

func (h *Handler) SubmitMarketOrder(w http.ResponseWriter, r *http.Request) {
	req := marketOrderRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	side := domain.Side(strings.ToLower(req.Side))
	if side == "" {
		side = domain.SideBuy
	}
	if side != domain.SideBuy && side != domain.SideSell {
		writeError(w, r, fmt.Errorf("%w: side must be either buy or sell", errInvalidBody))
		return
	}
	if !req.Amount.IsPositive() || !req.Price.IsPositive() {
		writeError(w, r, fmt.Errorf("%w: amount and price must be positive", errInvalidBody))
		return
	}

	reply, err := h.orderSvc.SubmitMarketOrder(r.Context(), submitter.MarketOrderRequest{
		Engine:        h.engineOrDefault(req.Engine),
		BaseCurrency:  currency(req.Base),
		QuoteCurrency: currency(req.Quote),
		Side:          side,
		Amount:        req.Amount,
		QuoteAmount:   req.QuoteAmount,
		Price:         req.Price,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, marketOrderResponse{reply.SwapUuid})
}

func (h *Handler) SubmitLimitOrder(w http.ResponseWriter, r *http.Request) {
	req := limitOrderRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Price.IsPositive() {
		writeError(w, r, fmt.Errorf("%w: price must be positive", errInvalidBody))
		return
	}

	reply, err := h.orderSvc.SubmitLimitOrder(r.Context(), submitter.LimitOrderRequest{
		Engine:        h.engineOrDefault(req.Engine),
		BaseCurrency:  currency(req.Base),
		QuoteCurrency: currency(req.Quote),
		Price:         req.Price,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, limitOrderResponse{reply.SyntheticUuid})
}

func (h *Handler) ListSwaps(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.SwapFilter{}
	for param, value := range map[string]*bool{
		"only_private":   &filter.OnlyPrivate,
		"only_open":      &filter.OnlyOpen,
		"include_hidden": &filter.IncludeHidden,
	} {
		if err := parseBool(query.Get(param), value); err != nil {
			writeError(w, r, fmt.Errorf("%w: %s: %s", errInvalidBody, param, err))
			return
		}
	}

	records, err := h.ledger.Query(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	swaps := make([]swapResponse, 0, len(records))
	for _, rec := range records {
		swaps = append(swaps, newSwapResponse(rec))
	}
	writeJSON(w, http.StatusOK, swaps)
}

// HideSwap soft-hides a swap from the default listing.
func (h *Handler) HideSwap(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := h.ledger.UpdateField(
		r.Context(), uuid, domain.FieldHidden, strconv.FormatBool(true),
	); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveSwap clears a terminal swap from the history.
func (h *Handler) RemoveSwap(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Remove(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitPrivateOrder(w http.ResponseWriter, r *http.Request) {
	req := privateOrderRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.privateOrderSvc.Submit(r.Context(), privateorder.PrivateOrderRequest{
		BaseCurrency:  currency(req.Base),
		QuoteCurrency: currency(req.Quote),
		QuoteAmount:   req.QuoteAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPrivateOrderResponse(*order))
}

func (h *Handler) ListPrivateOrders(w http.ResponseWriter, r *http.Request) {
	onlyOpen := false
	if err := parseBool(r.URL.Query().Get("only_open"), &onlyOpen); err != nil {
		writeError(w, r, fmt.Errorf("%w: only_open: %s", errInvalidBody, err))
		return
	}

	orders, err := h.privateOrderSvc.List(r.Context(), onlyOpen)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := make([]privateOrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, newPrivateOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetPrivateOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.privateOrderSvc.Get(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPrivateOrderResponse(*order))
}

func (h *Handler) CancelPrivateOrder(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	if err := h.privateOrderSvc.Cancel(r.Context(), uuid); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.privateOrderSvc.Get(r.Context(), uuid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPrivateOrderResponse(*order))
}

// GetRecoveryReport tells where the funds of a private order are expected to
// be. It never moves funds.
func (h *Handler) GetRecoveryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.privateOrderSvc.Report(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(*report))
}

func (h *Handler) AddWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSvc == nil {
		writeError(w, r, webhookpubsub.ErrWebhookNotFound)
		return
	}
	req := webhookRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.webhookSvc.AddWebhook(req.Action, req.Endpoint, req.Secret)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, webhookResponse{ID: id})
}

func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	if h.webhookSvc == nil {
		writeJSON(w, http.StatusOK, []webhookResponse{})
		return
	}

	actions := []webhookpubsub.WebhookAction{
		webhookpubsub.PrivateOrderUpdated,
		webhookpubsub.PrivateOrderCompleted,
		webhookpubsub.PrivateOrderFailed,
		webhookpubsub.AllActions,
	}
	if a := r.URL.Query().Get("action"); a != "" {
		action, ok := webhookpubsub.WebhookActionFromString(a)
		if !ok {
			writeError(w, r, fmt.Errorf("%w: %s", webhookpubsub.ErrUnknownWebhookAction, a))
			return
		}
		actions = []webhookpubsub.WebhookAction{action}
	}

	hooks := make(map[string]webhookResponse)
	for _, action := range actions {
		for _, hook := range h.webhookSvc.ListWebhooks(action) {
			hooks[hook.ID] = webhookResponse{
				ID:       hook.ID,
				Action:   hook.ActionType.String(),
				Endpoint: hook.Endpoint,
			}
		}
	}
	res := make([]webhookResponse, 0, len(hooks))
	for _, hook := range hooks {
		res = append(res, hook)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RemoveWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSvc == nil {
		writeError(w, r, webhookpubsub.ErrWebhookNotFound)
		return
	}
	if err := h.webhookSvc.RemoveWebhook(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) engineOrDefault(engine string) string {
	if engine == "" {
		return h.defaultEngine
	}
	return engine
}

func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", errInvalidBody, err)
	}
	return nil
}

func parseBool(value string, dst *bool) error {
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func currency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
