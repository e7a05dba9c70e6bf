package privateorder_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

// **** Call log ****

// callLog records the calls of every fake engine of a test in order.
type callLog struct {
	lock  sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string{}, l.calls...)
}

func (l *callLog) index(call string) int {
	for i, c := range l.list() {
		if c == call {
			return i
		}
	}
	return -1
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.list() {
		if c == call {
			n++
		}
	}
	return n
}

// **** TradingEngine ****

// fakeEngine is a scripted trading engine. Balances are consumed in order,
// the last one is returned forever.
type fakeEngine struct {
	name string
	log  *callLog

	lock        sync.Mutex
	books       map[string]domain.Quote
	balances    map[string][]decimal.Decimal
	orderUuids  []string
	orders      []ports.MarketOrder
	withdrawals []decimal.Decimal
	withdrawErr error
	address     string

	onOrder    func(uuid string)
	onWithdraw func()
}

func newFakeEngine(name string, log *callLog) *fakeEngine {
	return &fakeEngine{
		name:     name,
		log:      log,
		books:    make(map[string]domain.Quote),
		balances: make(map[string][]decimal.Decimal),
		address:  fmt.Sprintf("%s-deposit-address", name),
	}
}

func (e *fakeEngine) withBook(base, quote string, asks ...string) *fakeEngine {
	book := domain.Quote{BaseCurrency: base, QuoteCurrency: quote}
	for _, ask := range asks {
		book.Asks = append(book.Asks, domain.PricePoint{
			Price:  decimal.RequireFromString(ask),
			Amount: decimal.NewFromInt(1000),
		})
	}
	e.books[base+"/"+quote] = book
	return e
}

func (e *fakeEngine) withBalances(asset string, balances ...string) *fakeEngine {
	list := make([]decimal.Decimal, 0, len(balances))
	for _, b := range balances {
		list = append(list, decimal.RequireFromString(b))
	}
	e.balances[asset] = list
	return e
}

func (e *fakeEngine) withOrders(uuids ...string) *fakeEngine {
	e.orderUuids = uuids
	return e
}

func (e *fakeEngine) Name() string {
	return e.name
}

func (e *fakeEngine) GetOrderBook(
	_ context.Context, base, quote string,
) (domain.Quote, error) {
	e.log.add(e.name + ".GetOrderBook")

	e.lock.Lock()
	defer e.lock.Unlock()
	book, ok := e.books[base+"/"+quote]
	if !ok {
		return domain.Quote{}, fmt.Errorf("unknown market %s/%s", base, quote)
	}
	return book, nil
}

func (e *fakeEngine) CreateMarketOrder(
	_ context.Context, order ports.MarketOrder,
) (ports.MarketOrderReply, error) {
	e.log.add(e.name + ".CreateMarketOrder")

	e.lock.Lock()
	e.orders = append(e.orders, order)
	uuid := ""
	if len(e.orderUuids) > 0 {
		uuid = e.orderUuids[0]
		e.orderUuids = e.orderUuids[1:]
	}
	onOrder := e.onOrder
	e.lock.Unlock()

	if uuid != "" && onOrder != nil {
		onOrder(uuid)
	}
	return ports.MarketOrderReply{Uuid: uuid}, nil
}

func (e *fakeEngine) CreateLimitOrder(
	_ context.Context, _, _ string, _ decimal.Decimal,
) (bool, error) {
	e.log.add(e.name + ".CreateLimitOrder")
	return true, nil
}

func (e *fakeEngine) Withdraw(
	_ context.Context, _, address string, amount decimal.Decimal,
) (string, error) {
	e.log.add(e.name + ".Withdraw")
	if e.onWithdraw != nil {
		e.onWithdraw()
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	if e.withdrawErr != nil {
		return "", e.withdrawErr
	}
	e.withdrawals = append(e.withdrawals, amount)
	return fmt.Sprintf("txid-%s-%s", address, amount), nil
}

func (e *fakeEngine) GetBalance(_ context.Context, asset string) (decimal.Decimal, error) {
	e.log.add(e.name + ".GetBalance")

	e.lock.Lock()
	defer e.lock.Unlock()
	list := e.balances[asset]
	if len(list) <= 0 {
		return decimal.Zero, nil
	}
	balance := list[0]
	if len(list) > 1 {
		e.balances[asset] = list[1:]
	}
	return balance, nil
}

func (e *fakeEngine) GetDepositAddress(_ context.Context, _ string) (string, error) {
	e.log.add(e.name + ".GetDepositAddress")
	return e.address, nil
}

func (e *fakeEngine) GetOrderStatus(
	_ context.Context, _ string,
) (domain.OrderStatus, error) {
	return domain.OrderStatusPending, nil
}

func (e *fakeEngine) marketOrders() []ports.MarketOrder {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]ports.MarketOrder{}, e.orders...)
}

func (e *fakeEngine) withdrawn() []decimal.Decimal {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]decimal.Decimal{}, e.withdrawals...)
}

// settleWith returns an order hook that moves the leg to the given status
// once it's recorded, like the leg tracker would do.
func settleWith(ledger domain.SwapLedger, status domain.OrderStatus) func(string) {
	return func(uuid string) {
		go func() {
			for i := 0; i < 200; i++ {
				err := ledger.UpdateField(
					context.Background(), uuid, domain.FieldStatus, status.String(),
				)
				if err == nil {
					return
				}
				time.Sleep(5 * time.Millisecond)
			}
		}()
	}
}

// **** StatusPublisher ****

type fakePublisher struct {
	lock   sync.Mutex
	events []domain.StatusEvent
}

func (p *fakePublisher) PublishStatus(_ context.Context, event domain.StatusEvent) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) statuses() []domain.PrivateOrderStatus {
	p.lock.Lock()
	defer p.lock.Unlock()

	list := make([]domain.PrivateOrderStatus, 0, len(p.events))
	for _, e := range p.events {
		list = append(list, e.Status)
	}
	return list
}
