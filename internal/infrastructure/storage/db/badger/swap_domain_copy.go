package dbbadger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// Swap is the persisted form of a domain.SwapRecord. Decimals are stored as
// plain numeric strings and times as unix nanoseconds.
type Swap struct {
	Uuid                string
	Engine              string
	BaseCurrency        string
	QuoteCurrency       string
	QuoteCurrencyAmount string
	Amount              string
	Price               string
	IsMarket            bool
	Status              string
	TimeStarted         int64
	Side                string
	SlippageFactor      string
	DexFeePercent       string
	NetworkFee          string
	Hidden              bool
	IsPrivate           bool
	Privacy             Privacy
}

// Privacy is the persisted form of a domain.PrivacyContext.
type Privacy struct {
	Status                     string
	BaseCurrency               string
	QuoteCurrency              string
	IntermediateCurrency       string
	QuoteCurrencyAmount        string
	ExpectedBaseCurrencyAmount string
	BaseResOrderUuid           string
	InitialMainBalance         string
	InitialIntermediateBalance string
	Withdrawn                  string
	WithdrawalTxID             string
	Stage                      string
	LastCompletedStage         string
	FailedStage                string
	FailureReason              string
	CreatedAt                  int64
	UpdatedAt                  int64
}

func mapDomainSwapToInfraSwap(r domain.SwapRecord) *Swap {
	swap := &Swap{
		Uuid:                r.Order.Uuid,
		Engine:              r.Order.Engine,
		BaseCurrency:        r.Order.BaseCurrency,
		QuoteCurrency:       r.Order.QuoteCurrency,
		QuoteCurrencyAmount: r.Order.QuoteCurrencyAmount.String(),
		Amount:              r.Order.Amount.String(),
		Price:               r.Order.Price.String(),
		IsMarket:            r.Order.IsMarket,
		Status:              r.Order.Status.String(),
		TimeStarted:         r.Order.TimeStarted.UnixNano(),
		Side:                string(r.RequestOptions.Side),
		SlippageFactor:      r.RequestOptions.SlippageFactor.String(),
		DexFeePercent:       r.RequestOptions.DexFeePercent.String(),
		NetworkFee:          r.RequestOptions.NetworkFee.String(),
		Hidden:              r.Hidden,
	}

	if p := r.Privacy; p != nil {
		swap.IsPrivate = true
		swap.Privacy = Privacy{
			Status:                     p.Status.String(),
			BaseCurrency:               p.BaseCurrency,
			QuoteCurrency:              p.QuoteCurrency,
			IntermediateCurrency:       p.IntermediateCurrency,
			QuoteCurrencyAmount:        p.QuoteCurrencyAmount.String(),
			ExpectedBaseCurrencyAmount: p.ExpectedBaseCurrencyAmount.String(),
			BaseResOrderUuid:           p.BaseResOrderUuid,
			InitialMainBalance:         p.InitialMainBalance.String(),
			InitialIntermediateBalance: p.InitialIntermediateBalance.String(),
			Withdrawn:                  p.Withdrawn.String(),
			WithdrawalTxID:             p.WithdrawalTxID,
			Stage:                      p.Stage.String(),
			LastCompletedStage:         p.LastCompletedStage.String(),
			FailedStage:                p.FailedStage.String(),
			FailureReason:              p.FailureReason,
			CreatedAt:                  p.CreatedAt.UnixNano(),
			UpdatedAt:                  p.UpdatedAt.UnixNano(),
		}
	}

	return swap
}

func mapInfraSwapToDomainSwap(s Swap) (*domain.SwapRecord, error) {
	dec := decimalParser{}

	record := &domain.SwapRecord{
		Order: domain.Order{
			Uuid:                s.Uuid,
			Engine:              s.Engine,
			BaseCurrency:        s.BaseCurrency,
			QuoteCurrency:       s.QuoteCurrency,
			QuoteCurrencyAmount: dec.parse(s.QuoteCurrencyAmount),
			Amount:              dec.parse(s.Amount),
			Price:               dec.parse(s.Price),
			IsMarket:            s.IsMarket,
			Status:              domain.OrderStatus(s.Status),
			TimeStarted:         time.Unix(0, s.TimeStarted),
		},
		RequestOptions: domain.RequestOptions{
			Side:           domain.Side(s.Side),
			SlippageFactor: dec.parse(s.SlippageFactor),
			DexFeePercent:  dec.parse(s.DexFeePercent),
			NetworkFee:     dec.parse(s.NetworkFee),
		},
		Hidden: s.Hidden,
	}

	if s.IsPrivate {
		p := s.Privacy
		stages := make([]domain.Stage, 0, 3)
		for _, name := range []string{p.Stage, p.LastCompletedStage, p.FailedStage} {
			stage, err := domain.ParseStage(name)
			if err != nil {
				return nil, err
			}
			stages = append(stages, stage)
		}

		record.Privacy = &domain.PrivacyContext{
			Status:                     domain.PrivateOrderStatus(p.Status),
			BaseCurrency:               p.BaseCurrency,
			QuoteCurrency:              p.QuoteCurrency,
			IntermediateCurrency:       p.IntermediateCurrency,
			QuoteCurrencyAmount:        dec.parse(p.QuoteCurrencyAmount),
			ExpectedBaseCurrencyAmount: dec.parse(p.ExpectedBaseCurrencyAmount),
			BaseResOrderUuid:           p.BaseResOrderUuid,
			InitialMainBalance:         dec.parse(p.InitialMainBalance),
			InitialIntermediateBalance: dec.parse(p.InitialIntermediateBalance),
			Withdrawn:                  dec.parse(p.Withdrawn),
			WithdrawalTxID:             p.WithdrawalTxID,
			Stage:                      stages[0],
			LastCompletedStage:         stages[1],
			FailedStage:                stages[2],
			FailureReason:              p.FailureReason,
			CreatedAt:                  time.Unix(0, p.CreatedAt),
			UpdatedAt:                  time.Unix(0, p.UpdatedAt),
		}
	}

	if dec.err != nil {
		return nil, dec.err
	}
	return record, nil
}

// decimalParser keeps the first parsing error so that a whole row can be
// mapped before checking for failures.
type decimalParser struct {
	err error
}

func (p *decimalParser) parse(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return d
}
