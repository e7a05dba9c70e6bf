package legtracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

const defaultInterval = 2 * time.Second

// Service periodically asks the trading engines for the status of the open
// market legs and records it in the ledger.
type Service struct {
	ledger   domain.SwapLedger
	engines  ports.EngineRegistry
	interval time.Duration

	lock  sync.Mutex
	sched gocron.Scheduler
}

func NewService(
	ledger domain.SwapLedger, engines ports.EngineRegistry, interval time.Duration,
) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("missing swap ledger")
	}
	if engines == nil {
		return nil, fmt.Errorf("missing engine registry")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{ledger: ledger, engines: engines, interval: interval}, nil
}

// Start schedules the tracking job. Runs never overlap, a run that takes
// longer than the interval delays the next one.
func (s *Service) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.sched != nil {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	job := func(ctx context.Context) {
		if err := s.TrackOnce(ctx); err != nil {
			log.WithError(err).Warn("leg tracker run failed")
		}
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	scheduler.Start()
	s.sched = scheduler
	log.Debugf("leg tracker started with interval %s", s.interval)
	return nil
}

// Stop waits for the running job, if any, and stops the scheduler.
func (s *Service) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

// TrackOnce updates the status of every open market leg. Failures on a
// single leg are logged and don't prevent the others from being updated.
func (s *Service) TrackOnce(ctx context.Context) error {
	records, err := s.ledger.Query(ctx, domain.SwapFilter{
		OnlyOpen: true, IncludeHidden: true,
	})
	if err != nil {
		return err
	}

	for _, r := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		leg := r.Order
		if !leg.IsMarket || leg.Status.IsTerminal() {
			continue
		}
		s.track(ctx, leg)
	}
	return nil
}

func (s *Service) track(ctx context.Context, leg domain.Order) {
	engine, err := s.engines.Get(leg.Engine)
	if err != nil {
		log.WithError(err).Warnf("leg %s: skipping", leg.Uuid)
		return
	}

	status, err := engine.GetOrderStatus(ctx, leg.Uuid)
	if err != nil {
		log.WithError(err).Debugf("leg %s: failed to get status from %s", leg.Uuid, leg.Engine)
		return
	}
	if status == leg.Status {
		return
	}

	if err := s.ledger.UpdateField(
		ctx, leg.Uuid, domain.FieldStatus, status.String(),
	); err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) ||
			errors.Is(err, domain.ErrUnknownOrderStatus) {
			log.WithError(err).Warnf("leg %s: ignoring status reported by %s", leg.Uuid, leg.Engine)
			return
		}
		log.WithError(err).Errorf("leg %s: failed to record status %s", leg.Uuid, status)
		return
	}
	log.Debugf("leg %s on %s: %s -> %s", leg.Uuid, leg.Engine, leg.Status, status)
}
