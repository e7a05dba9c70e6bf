package privateorder

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// Report returns where the funds of the given private order are expected to
// be, along with the current intermediate currency balances and the legs it's
// made of. Engines that can't be reached are reported with a nil balance.
func (s *Service) Report(ctx context.Context, uuid string) (*RecoveryReport, error) {
	record, err := s.getRecord(ctx, uuid)
	if err != nil {
		return nil, err
	}
	order, err := record.PrivateOrder()
	if err != nil {
		return nil, err
	}
	running, _ := s.Running()

	report := &RecoveryReport{
		Order:         *order,
		Running:       running == uuid,
		FundsLocation: s.fundsLocation(*order),
		MainBalance:   s.balanceOf(ctx, s.cfg.MainEngine, order.IntermediateCurrency),
		HopBalance:    s.balanceOf(ctx, s.cfg.HopEngine, order.IntermediateCurrency),
		Legs:          []domain.Order{record.Order},
	}

	if order.BaseResOrderUuid != "" {
		leg, err := s.cfg.Ledger.Get(ctx, order.BaseResOrderUuid)
		if err != nil {
			log.WithError(err).Warnf(
				"final leg %s of private order %s not found", order.BaseResOrderUuid, uuid,
			)
		} else {
			report.Legs = append(report.Legs, leg.Order)
		}
	}
	return report, nil
}

func (s *Service) balanceOf(ctx context.Context, engineName, asset string) *decimal.Decimal {
	engine, err := s.cfg.Engines.Get(engineName)
	if err != nil {
		return nil
	}
	balance, err := engine.GetBalance(ctx, asset)
	if err != nil {
		log.WithError(err).Warnf("failed to get %s balance of %s", asset, engineName)
		return nil
	}
	return &balance
}

func (s *Service) fundsLocation(o domain.PrivateOrder) string {
	intermediate := o.IntermediateCurrency

	if o.Status == domain.PrivateOrderStatusCompleted {
		return fmt.Sprintf(
			"%s %s bought on %s", o.ExpectedBaseCurrencyAmount, o.BaseCurrency, s.cfg.HopEngine,
		)
	}

	switch o.LastCompletedStage {
	case domain.StageNone, domain.StageSubmitRelToIntermediate:
		return fmt.Sprintf(
			"%s %s spent on %s to buy %s, first leg not settled yet",
			o.QuoteCurrencyAmount, o.QuoteCurrency, s.cfg.MainEngine, intermediate,
		)
	case domain.StagePollMainBalance:
		if o.Stage == domain.StageWithdrawToIntermediateProcess &&
			o.WithdrawalTxID == "" && outcomeUnknown(o) {
			return fmt.Sprintf(
				"%s on %s, withdrawal to %s was in flight: check the wallet of %s",
				intermediate, s.cfg.MainEngine, s.cfg.HopEngine, s.cfg.MainEngine,
			)
		}
		return fmt.Sprintf("%s on %s, not withdrawn", intermediate, s.cfg.MainEngine)
	case domain.StageWithdrawToIntermediateProcess:
		return fmt.Sprintf(
			"%s %s withdrawn from %s to %s in tx %s, not yet credited",
			o.Withdrawn, intermediate, s.cfg.MainEngine, s.cfg.HopEngine, o.WithdrawalTxID,
		)
	case domain.StagePollIntermediateBalance:
		if o.Stage == domain.StageSubmitIntermediateToBase &&
			o.BaseResOrderUuid == "" && outcomeUnknown(o) {
			return fmt.Sprintf(
				"%s on %s, final leg submission was in flight: check the orders of %s",
				intermediate, s.cfg.HopEngine, s.cfg.HopEngine,
			)
		}
		return fmt.Sprintf("%s on %s, not swapped", intermediate, s.cfg.HopEngine)
	default:
		return fmt.Sprintf(
			"%s spent on %s in final leg %s", intermediate, s.cfg.HopEngine, o.BaseResOrderUuid,
		)
	}
}

// outcomeUnknown tells whether the stage in progress might have reached the
// engine: either the order is still open or it failed because the daemon
// stopped while the stage was running. A stage that failed with an error
// from the engine never moved any funds.
func outcomeUnknown(o domain.PrivateOrder) bool {
	if !o.Status.IsTerminal() {
		return true
	}
	return o.Status == domain.PrivateOrderStatusFailed &&
		o.FailedStage == o.Stage &&
		strings.Contains(o.FailureReason, application.ErrStageOutcomeUnknown.Error())
}
