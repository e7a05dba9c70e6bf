package privateorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/orderbook"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/pkg/mathutil"
)

// Service orchestrates private orders. At most one pipeline runs at a time.
type Service struct {
	cfg Config

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	lock   sync.Mutex
	active *pipeline
	// resuming is set while private orders left in progress by a previous
	// run are waiting to be resumed. New orders are rejected meanwhile.
	resuming bool
	// cancelling holds the orders being cancelled while not running.
	cancelling map[string]struct{}
}

// NewService validates the given configuration and returns the orchestrator.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Service{
		cfg:        cfg,
		ctx:        ctx,
		stop:       stop,
		cancelling: make(map[string]struct{}),
	}, nil
}

// Submit starts a new private order. The first leg is submitted and recorded
// before returning, the rest of the pipeline runs in background.
func (s *Service) Submit(
	ctx context.Context, req PrivateOrderRequest,
) (*domain.PrivateOrder, error) {
	intermediate := s.cfg.IntermediateCurrency
	if err := req.validate(intermediate); err != nil {
		return nil, err
	}

	p, err := s.tryAcquire()
	if err != nil {
		return nil, err
	}
	started := false
	defer func() {
		if !started {
			s.release(p)
		}
	}()

	stageErr := func(err error) *PipelineError {
		return &PipelineError{
			Stage:              domain.StageSubmitRelToIntermediate,
			LastCompletedStage: domain.StageNone,
			Err:                err,
		}
	}

	mainEngine, _ := s.cfg.Engines.Get(s.cfg.MainEngine)
	hopEngine, _ := s.cfg.Engines.Get(s.cfg.HopEngine)

	initialIntermediateBalance, err := hopEngine.GetBalance(ctx, intermediate)
	if err != nil {
		return nil, stageErr(fmt.Errorf("reading %s balance of %s: %w", intermediate, s.cfg.HopEngine, err))
	}

	route, err := s.cfg.Gateway.FetchRoute(ctx, orderbook.RouteRequest{
		Base:         req.BaseCurrency,
		Quote:        req.QuoteCurrency,
		Intermediate: intermediate,
	})
	if err != nil {
		return nil, stageErr(err)
	}
	intermediateAsk, _ := route.Intermediate.BestAsk()
	finalAsk, _ := route.Final.BestAsk()

	intermediateAmount, expectedBaseAmount, err := mathutil.RouteAmount(
		req.QuoteAmount, intermediateAsk.Price, finalAsk.Price,
		s.cfg.fees(req.QuoteCurrency), s.cfg.fees(intermediate),
	)
	if err != nil {
		return nil, stageErr(err)
	}
	price, err := mathutil.EffectivePrice(intermediateAsk.Price, s.cfg.SlippageFactor)
	if err != nil {
		return nil, stageErr(err)
	}

	initialMainBalance, err := mainEngine.GetBalance(ctx, intermediate)
	if err != nil {
		return nil, stageErr(fmt.Errorf("reading %s balance of %s: %w", intermediate, s.cfg.MainEngine, err))
	}

	now := time.Now()
	privacy := &domain.PrivacyContext{
		Status:                     domain.PrivateOrderStatusSwappingRelRes,
		BaseCurrency:               req.BaseCurrency,
		QuoteCurrency:              req.QuoteCurrency,
		IntermediateCurrency:       intermediate,
		QuoteCurrencyAmount:        req.QuoteAmount,
		ExpectedBaseCurrencyAmount: expectedBaseAmount,
		InitialMainBalance:         initialMainBalance,
		InitialIntermediateBalance: initialIntermediateBalance,
		Stage:                      domain.StageSubmitRelToIntermediate,
		LastCompletedStage:         domain.StageSubmitRelToIntermediate,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	// The leg must be submitted and recorded even if the caller goes away.
	reply, err := s.cfg.Submitter.SubmitMarketOrder(
		context.WithoutCancel(ctx),
		submitter.MarketOrderRequest{
			Engine:        s.cfg.MainEngine,
			BaseCurrency:  intermediate,
			QuoteCurrency: req.QuoteCurrency,
			Side:          domain.SideBuy,
			Amount:        intermediateAmount,
			QuoteAmount:   req.QuoteAmount,
			Price:         price,
			Options:       s.cfg.requestOptions(req.QuoteCurrency),
			Privacy:       privacy,
		},
	)
	if err != nil {
		pErr := stageErr(err)
		if reply != nil && reply.SwapUuid != "" {
			pErr.Uuid = reply.SwapUuid
			log.WithError(err).Errorf(
				"first leg %s was submitted but not recorded, its funds are untracked",
				reply.SwapUuid,
			)
		}
		return nil, pErr
	}

	p.privacy = *privacy
	p.setStage(domain.StageSubmitRelToIntermediate)
	s.lock.Lock()
	p.uuid = reply.SwapUuid
	s.lock.Unlock()

	log.Infof(
		"private order %s: bought %s %s with %s %s on %s",
		p.uuid, intermediateAmount, intermediate,
		req.QuoteAmount, req.QuoteCurrency, s.cfg.MainEngine,
	)
	s.publish(p, "", domain.PrivateOrderStatusSwappingRelRes, "")

	started = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(p)
		s.run(p, domain.StagePollMainBalance)
	}()

	order, err := domain.SwapRecord{
		Order: domain.Order{Uuid: p.uuid}, Privacy: privacy,
	}.PrivateOrder()
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns the private order with the given uuid.
func (s *Service) Get(ctx context.Context, uuid string) (*domain.PrivateOrder, error) {
	record, err := s.getRecord(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return record.PrivateOrder()
}

// List returns all private orders, oldest first.
func (s *Service) List(ctx context.Context, onlyOpen bool) ([]domain.PrivateOrder, error) {
	records, err := s.cfg.Ledger.Query(ctx, domain.SwapFilter{
		OnlyPrivate: true, OnlyOpen: onlyOpen,
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.PrivateOrder, 0, len(records))
	for _, r := range records {
		order, err := r.PrivateOrder()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// Cancel stops the given private order. It's allowed only until the funds
// are withdrawn to the intermediate-hop engine, after that abandoning the
// order would leave funds in transit untracked.
func (s *Service) Cancel(ctx context.Context, uuid string) error {
	if p := s.runningPipeline(uuid); p != nil {
		return cancelRunning(ctx, p)
	}

	// Not running: a pending order left over by a previous run.
	record, err := s.getRecord(ctx, uuid)
	if err != nil {
		return err
	}
	privacy := record.Privacy
	if privacy.Status.IsTerminal() {
		return fmt.Errorf("%w: private order is %s", ErrCancelNotAllowed, privacy.Status)
	}
	if privacy.Stage >= domain.StageWithdrawToIntermediateProcess {
		return fmt.Errorf(
			"%w: funds already withdrawn to %s", ErrCancelNotAllowed, s.cfg.HopEngine,
		)
	}

	// The order must not be resumed while it's being cancelled.
	s.lock.Lock()
	if p := s.active; p != nil && p.uuid == uuid {
		s.lock.Unlock()
		return cancelRunning(ctx, p)
	}
	s.cancelling[uuid] = struct{}{}
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		delete(s.cancelling, uuid)
		s.lock.Unlock()
	}()

	prev := privacy.Status
	if err := s.updateField(
		ctx, uuid, domain.FieldPrivacyStatus, domain.PrivateOrderStatusCancelled.String(),
	); err != nil {
		return err
	}
	p := &pipeline{uuid: uuid, privacy: *privacy, stage: privacy.Stage}
	s.publish(p, prev, domain.PrivateOrderStatusCancelled, "cancelled by user")
	return nil
}

func (s *Service) runningPipeline(uuid string) *pipeline {
	s.lock.Lock()
	defer s.lock.Unlock()

	if p := s.active; p != nil && p.uuid == uuid {
		return p
	}
	return nil
}

func cancelRunning(ctx context.Context, p *pipeline) error {
	if err := p.requestCancel(); err != nil {
		return err
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resume restarts the pipelines of the private orders left in progress by a
// previous run, one at a time, from the stage following the last durably
// recorded one.
func (s *Service) Resume(ctx context.Context) error {
	records, err := s.cfg.Ledger.Query(ctx, domain.SwapFilter{
		OnlyPrivate: true, IncludeHidden: true,
	})
	if err != nil {
		return err
	}

	pending := make([]domain.SwapRecord, 0)
	for _, r := range records {
		if !r.Privacy.Status.IsTerminal() {
			pending = append(pending, r)
		}
	}
	if len(pending) <= 0 {
		return nil
	}

	log.Infof("resuming %d private order(s)", len(pending))

	s.lock.Lock()
	s.resuming = true
	s.lock.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.lock.Lock()
			s.resuming = false
			s.lock.Unlock()
		}()

		for _, r := range pending {
			p, err := s.acquire()
			if err != nil {
				return
			}

			// The stage must be known before the order is visible as
			// running, cancellations are checked against it.
			p.setStage(r.Privacy.Stage)
			s.lock.Lock()
			_, cancelling := s.cancelling[r.Order.Uuid]
			if !cancelling {
				p.uuid = r.Order.Uuid
			}
			s.lock.Unlock()
			if cancelling {
				s.release(p)
				continue
			}

			// The order might have been cancelled in the meanwhile.
			record, err := s.getRecord(context.WithoutCancel(p.ctx), r.Order.Uuid)
			if err != nil || record.Privacy.Status.IsTerminal() {
				s.release(p)
				continue
			}
			p.privacy = *record.Privacy
			p.setStage(record.Privacy.Stage)

			s.resume(p)
			s.release(p)
		}
	}()
	return nil
}

// Stop interrupts the running pipeline, if any, without changing its status
// so that it's resumed at next start.
func (s *Service) Stop() {
	s.stop()
	s.wg.Wait()
}

// Running returns the uuid of the private order in progress, if any.
func (s *Service) Running() (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.active == nil || s.active.uuid == "" {
		return "", false
	}
	return s.active.uuid, true
}

func (s *Service) getRecord(ctx context.Context, uuid string) (*domain.SwapRecord, error) {
	record, err := s.cfg.Ledger.Get(ctx, uuid)
	if err != nil {
		if errors.Is(err, domain.ErrSwapNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPrivateOrderNotFound, uuid)
		}
		return nil, err
	}
	if !record.IsPrivate() {
		return nil, fmt.Errorf("%w: %s", ErrPrivateOrderNotFound, uuid)
	}
	return record, nil
}

// tryAcquire reserves the pipeline slot or fails if it's taken.
func (s *Service) tryAcquire() (*pipeline, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.ctx.Err() != nil {
		return nil, ErrServiceStopped
	}
	if s.active != nil || s.resuming {
		return nil, ErrPipelineBusy
	}
	s.active = newPipeline(s.ctx)
	return s.active, nil
}

// acquire waits for the pipeline slot to be free and reserves it.
func (s *Service) acquire() (*pipeline, error) {
	for {
		s.lock.Lock()
		if s.ctx.Err() != nil {
			s.lock.Unlock()
			return nil, ErrServiceStopped
		}
		if s.active == nil {
			s.active = newPipeline(s.ctx)
			p := s.active
			s.lock.Unlock()
			return p, nil
		}
		done := s.active.done
		s.lock.Unlock()

		select {
		case <-done:
		case <-s.ctx.Done():
			return nil, ErrServiceStopped
		}
	}
}

func (s *Service) release(p *pipeline) {
	s.lock.Lock()
	defer s.lock.Unlock()

	p.cancel()
	close(p.done)
	if s.active == p {
		s.active = nil
	}
}

func (s *Service) publish(
	p *pipeline, prev, status domain.PrivateOrderStatus, reason string,
) {
	event := domain.StatusEvent{
		PrivateOrderUuid:   p.uuid,
		PreviousStatus:     prev,
		Status:             status,
		Stage:              p.stage,
		LastCompletedStage: p.privacy.LastCompletedStage,
		BaseResOrderUuid:   p.privacy.BaseResOrderUuid,
		Reason:             reason,
		Timestamp:          time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()
	if err := s.cfg.Publisher.PublishStatus(ctx, event); err != nil {
		log.WithError(err).Warnf(
			"failed to publish status %s of private order %s", status, p.uuid,
		)
	}
}
