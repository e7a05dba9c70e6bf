package privateorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/pkg/mathutil"
)

// pipeline is the state of the private order in progress.
type pipeline struct {
	uuid   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	lock            sync.Mutex
	stage           domain.Stage
	cancelRequested bool

	privacy     domain.PrivacyContext
	mainBalance decimal.Decimal
	hopBalance  decimal.Decimal
}

func newPipeline(parent context.Context) *pipeline {
	ctx, cancel := context.WithCancel(parent)
	return &pipeline{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// enter marks stage as in flight unless a cancellation has been requested.
func (p *pipeline) enter(stage domain.Stage) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.cancelRequested {
		return false
	}
	p.stage = stage
	return true
}

func (p *pipeline) setStage(stage domain.Stage) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.stage = stage
}

func (p *pipeline) requestCancel() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.stage >= domain.StageWithdrawToIntermediateProcess {
		return fmt.Errorf(
			"%w: withdrawal to intermediate process already started", ErrCancelNotAllowed,
		)
	}
	p.cancelRequested = true
	p.cancel()
	return nil
}

func (p *pipeline) isCancelRequested() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.cancelRequested
}

// stageResult is what a stage returns: the stage to run next and the status
// the private order moves to once the stage is recorded, if any.
type stageResult struct {
	next   domain.Stage
	status domain.PrivateOrderStatus
}

// run drives the pipeline from the given stage until Done. Every stage is
// durably recorded before the next one starts.
func (s *Service) run(p *pipeline, from domain.Stage) {
	for stage := from; stage != domain.StageDone; {
		if !p.enter(stage) {
			s.fail(p, stage, context.Canceled)
			return
		}
		if err := s.updateField(
			p.ctx, p.uuid, domain.FieldPrivacyStage, stage.String(),
		); err != nil {
			s.fail(p, stage, err)
			return
		}
		p.privacy.Stage = stage
		log.Infof("private order %s: running stage %s", p.uuid, stage)

		res, err := s.runStage(p, stage)
		if err != nil {
			s.fail(p, stage, err)
			return
		}
		if err := s.completeStage(p, stage, res.status); err != nil {
			s.fail(p, stage, err)
			return
		}
		stage = res.next
	}

	log.Infof(
		"private order %s completed: %s %s bought with %s %s",
		p.uuid, p.privacy.ExpectedBaseCurrencyAmount, p.privacy.BaseCurrency,
		p.privacy.QuoteCurrencyAmount, p.privacy.QuoteCurrency,
	)
}

func (s *Service) runStage(p *pipeline, stage domain.Stage) (*stageResult, error) {
	switch stage {
	case domain.StagePollMainBalance:
		return s.pollMainBalance(p)
	case domain.StageWithdrawToIntermediateProcess:
		return s.withdrawToIntermediateProcess(p)
	case domain.StagePollIntermediateBalance:
		return s.pollIntermediateBalance(p)
	case domain.StageSubmitIntermediateToBase:
		return s.submitIntermediateToBase(p)
	case domain.StagePollFinalLeg:
		return s.pollFinalLeg(p)
	default:
		return nil, fmt.Errorf("%w: %s can't be run in background", domain.ErrUnknownStage, stage)
	}
}

func (s *Service) pollMainBalance(p *pipeline) (*stageResult, error) {
	balance, err := s.cfg.Observer.WaitForIncrease(
		p.ctx, s.cfg.MainEngine, p.privacy.IntermediateCurrency,
		p.privacy.InitialMainBalance,
	)
	if err != nil {
		return nil, err
	}
	p.mainBalance = balance
	return &stageResult{next: domain.StageWithdrawToIntermediateProcess}, nil
}

// withdrawToIntermediateProcess moves the purchased intermediate currency to
// the intermediate-hop engine. Once started it runs to the end regardless of
// shutdowns, a withdrawal is never retried nor replayed.
func (s *Service) withdrawToIntermediateProcess(p *pipeline) (*stageResult, error) {
	ctx := context.WithoutCancel(p.ctx)
	asset := p.privacy.IntermediateCurrency

	delta := p.mainBalance.Sub(p.privacy.InitialMainBalance)
	if !delta.IsPositive() {
		return nil, fmt.Errorf(
			"%w: nothing to withdraw, %s balance is %s",
			application.ErrWithdrawalFailed, asset, p.mainBalance,
		)
	}

	hopEngine, _ := s.cfg.Engines.Get(s.cfg.HopEngine)
	address, err := hopEngine.GetDepositAddress(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: getting deposit address of %s: %w",
			application.ErrWithdrawalFailed, s.cfg.HopEngine, err,
		)
	}

	mainEngine, _ := s.cfg.Engines.Get(s.cfg.MainEngine)
	txid, err := mainEngine.Withdraw(ctx, asset, address, delta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrWithdrawalFailed, err)
	}
	log.Infof(
		"private order %s: withdrawn %s %s to %s in tx %s",
		p.uuid, delta, asset, s.cfg.HopEngine, txid,
	)

	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyWithdrawalTxID, txid,
	); err != nil {
		return nil, err
	}
	p.privacy.WithdrawalTxID = txid
	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyWithdrawn, delta.String(),
	); err != nil {
		return nil, err
	}
	p.privacy.Withdrawn = delta

	return &stageResult{
		next:   domain.StagePollIntermediateBalance,
		status: domain.PrivateOrderStatusPrivatizing,
	}, nil
}

func (s *Service) pollIntermediateBalance(p *pipeline) (*stageResult, error) {
	balance, err := s.cfg.Observer.WaitForIncrease(
		p.ctx, s.cfg.HopEngine, p.privacy.IntermediateCurrency,
		p.privacy.InitialIntermediateBalance,
	)
	if err != nil {
		return nil, err
	}
	p.hopBalance = balance
	return &stageResult{next: domain.StageSubmitIntermediateToBase}, nil
}

// submitIntermediateToBase spends what the intermediate-hop engine received
// to buy the base currency.
func (s *Service) submitIntermediateToBase(p *pipeline) (*stageResult, error) {
	base := p.privacy.BaseCurrency
	intermediate := p.privacy.IntermediateCurrency

	received := p.hopBalance.Sub(p.privacy.InitialIntermediateBalance)
	if !received.IsPositive() {
		return nil, fmt.Errorf("nothing received on %s", s.cfg.HopEngine)
	}

	book, err := s.cfg.Gateway.FetchOrderBook(p.ctx, s.cfg.HopEngine, base, intermediate)
	if err != nil {
		return nil, err
	}
	ask, err := book.BestAsk()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrOrderBookUnavailable, err)
	}
	fees := s.cfg.fees(intermediate)
	amount, err := mathutil.LegAmount(received, ask.Price, fees)
	if err != nil {
		return nil, err
	}
	price, err := mathutil.EffectivePrice(ask.Price, s.cfg.SlippageFactor)
	if err != nil {
		return nil, err
	}

	// From here on the leg must be submitted and linked even on shutdown.
	ctx := context.WithoutCancel(p.ctx)
	reply, err := s.cfg.Submitter.SubmitMarketOrder(ctx, submitter.MarketOrderRequest{
		Engine:        s.cfg.HopEngine,
		BaseCurrency:  base,
		QuoteCurrency: intermediate,
		Side:          domain.SideBuy,
		Amount:        amount,
		QuoteAmount:   received,
		Price:         price,
		Options:       s.cfg.requestOptions(intermediate),
	})
	if err != nil {
		if reply != nil && reply.SwapUuid != "" {
			_ = s.linkFinalLeg(ctx, p, reply.SwapUuid)
		}
		return nil, err
	}
	log.Infof(
		"private order %s: buying %s %s with %s %s on %s",
		p.uuid, amount, base, received, intermediate, s.cfg.HopEngine,
	)

	if err := s.linkFinalLeg(ctx, p, reply.SwapUuid); err != nil {
		return nil, err
	}
	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyExpectedAmount, amount.String(),
	); err != nil {
		return nil, err
	}
	p.privacy.ExpectedBaseCurrencyAmount = amount

	return &stageResult{
		next:   domain.StagePollFinalLeg,
		status: domain.PrivateOrderStatusSwappingResBase,
	}, nil
}

func (s *Service) linkFinalLeg(ctx context.Context, p *pipeline, uuid string) error {
	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyBaseResOrderUuid, uuid,
	); err != nil {
		log.WithError(err).Errorf(
			"private order %s: failed to link final leg %s", p.uuid, uuid,
		)
		return err
	}
	p.privacy.BaseResOrderUuid = uuid
	return nil
}

func (s *Service) pollFinalLeg(p *pipeline) (*stageResult, error) {
	status, err := s.cfg.Observer.WaitForLegStatus(
		p.ctx, s.cfg.Ledger, p.privacy.BaseResOrderUuid,
	)
	if err != nil {
		return nil, err
	}
	if status != domain.OrderStatusCompleted {
		return nil, fmt.Errorf(
			"final leg %s on %s is %s", p.privacy.BaseResOrderUuid, s.cfg.HopEngine, status,
		)
	}
	return &stageResult{
		next:   domain.StageDone,
		status: domain.PrivateOrderStatusCompleted,
	}, nil
}

// completeStage records stage as completed and then moves the private order
// to status, if given.
func (s *Service) completeStage(
	p *pipeline, stage domain.Stage, status domain.PrivateOrderStatus,
) error {
	ctx := context.WithoutCancel(p.ctx)

	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyLastCompleted, stage.String(),
	); err != nil {
		return err
	}
	p.privacy.LastCompletedStage = stage

	if status == "" || status == p.privacy.Status {
		return nil
	}
	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyStatus, status.String(),
	); err != nil {
		return err
	}
	prev := p.privacy.Status
	p.privacy.Status = status

	log.Infof("private order %s: %s -> %s", p.uuid, prev, status)
	s.publish(p, prev, status, "")
	return nil
}

// fail terminates the pipeline. A user cancellation moves the order to
// cancelled, a shutdown leaves it untouched so that it's resumed at next
// start, any other error moves it to failed.
func (s *Service) fail(p *pipeline, stage domain.Stage, err error) {
	p.setStage(stage)

	if p.isCancelRequested() {
		s.terminate(p, domain.PrivateOrderStatusCancelled, "cancelled by user")
		return
	}
	if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
		log.Infof(
			"private order %s suspended at stage %s, it will be resumed at next start",
			p.uuid, stage,
		)
		return
	}

	pErr := &PipelineError{
		Uuid:               p.uuid,
		Stage:              stage,
		LastCompletedStage: p.privacy.LastCompletedStage,
		Err:                err,
	}
	log.WithError(pErr).Warn("private order failed")

	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()
	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyFailedStage, stage.String(),
	); err != nil {
		log.WithError(err).Errorf("private order %s: failed to record failed stage", p.uuid)
	}
	p.privacy.FailedStage = stage
	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyFailureReason, err.Error(),
	); err != nil {
		log.WithError(err).Errorf("private order %s: failed to record failure reason", p.uuid)
	}
	p.privacy.FailureReason = err.Error()

	s.terminate(p, domain.PrivateOrderStatusFailed, err.Error())
}

func (s *Service) terminate(
	p *pipeline, status domain.PrivateOrderStatus, reason string,
) {
	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()

	if err := s.updateField(
		ctx, p.uuid, domain.FieldPrivacyStatus, status.String(),
	); err != nil {
		log.WithError(err).Errorf(
			"private order %s: failed to record status %s", p.uuid, status,
		)
	}
	prev := p.privacy.Status
	p.privacy.Status = status

	log.Infof("private order %s: %s -> %s", p.uuid, prev, status)
	s.publish(p, prev, status, reason)
}

// resume picks the stage a private order left in progress restarts from.
// Stages whose outcome can't be told from the ledger are never replayed.
func (s *Service) resume(p *pipeline) {
	from, err := s.resumeStage(p)
	if err != nil {
		s.fail(p, p.privacy.Stage, err)
		return
	}
	log.Infof("private order %s: resuming from stage %s", p.uuid, from)
	s.run(p, from)
}

func (s *Service) resumeStage(p *pipeline) (domain.Stage, error) {
	privacy := p.privacy
	unknown := fmt.Errorf(
		"%w: stage %s was in flight", application.ErrStageOutcomeUnknown, privacy.Stage,
	)

	switch privacy.Status {
	case domain.PrivateOrderStatusSwappingRelRes:
		switch {
		case privacy.Stage < domain.StageWithdrawToIntermediateProcess:
			return domain.StagePollMainBalance, nil
		case privacy.Stage == domain.StageWithdrawToIntermediateProcess &&
			privacy.WithdrawalTxID != "":
			p.setStage(privacy.Stage)
			if err := s.completeStage(
				p, privacy.Stage, domain.PrivateOrderStatusPrivatizing,
			); err != nil {
				return domain.StageNone, err
			}
			return domain.StagePollIntermediateBalance, nil
		default:
			return domain.StageNone, unknown
		}
	case domain.PrivateOrderStatusPrivatizing:
		switch {
		case privacy.Stage < domain.StageSubmitIntermediateToBase:
			return domain.StagePollIntermediateBalance, nil
		case privacy.Stage == domain.StageSubmitIntermediateToBase &&
			privacy.BaseResOrderUuid != "":
			p.setStage(privacy.Stage)
			if err := s.completeStage(
				p, privacy.Stage, domain.PrivateOrderStatusSwappingResBase,
			); err != nil {
				return domain.StageNone, err
			}
			return domain.StagePollFinalLeg, nil
		default:
			return domain.StageNone, unknown
		}
	case domain.PrivateOrderStatusSwappingResBase:
		return domain.StagePollFinalLeg, nil
	default:
		return domain.StageNone, fmt.Errorf(
			"%w: %s", domain.ErrInvalidStatusTransition, privacy.Status,
		)
	}
}

// updateField writes a single ledger field, retrying with exponential backoff.
// Writes are idempotent so that retrying a write that actually went through is
// harmless.
func (s *Service) updateField(
	ctx context.Context, uuid string, field domain.SwapField, value string,
) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.LedgerRetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.LedgerRetries), ctx)

	err := backoff.Retry(func() error {
		err := s.cfg.Ledger.UpdateField(ctx, uuid, field, value)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || isPermanent(err) {
		return err
	}
	return fmt.Errorf(
		"%w: %s of %s: %w", application.ErrPersistence, field, uuid, err,
	)
}

func isPermanent(err error) bool {
	for _, e := range []error{
		context.Canceled,
		context.DeadlineExceeded,
		domain.ErrSwapNotFound,
		domain.ErrNotPrivateSwap,
		domain.ErrUnknownField,
		domain.ErrInvalidFieldValue,
		domain.ErrInvalidStatusTransition,
		domain.ErrUnknownStage,
		domain.ErrUnknownOrderStatus,
		domain.ErrUnknownPrivateOrderStatus,
		domain.ErrSwapNotRemovable,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
