package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

const (
	defaultPollInterval         = time.Second
	defaultMaxConsecutiveErrors = 3
)

// Config ...
type Config struct {
	PollInterval time.Duration
	// StageTimeout bounds WaitForIncrease.
	StageTimeout time.Duration
	// FinalLegTimeout bounds WaitForLegStatus.
	FinalLegTimeout time.Duration
	// MaxConsecutiveErrors is the number of failed polls in a row after which
	// the wait is aborted.
	MaxConsecutiveErrors int
}

type Service struct {
	engines ports.EngineRegistry
	cfg     Config
}

// NewService returns the balance observer.
func NewService(engines ports.EngineRegistry, cfg Config) (*Service, error) {
	if engines == nil {
		return nil, fmt.Errorf("missing engine registry")
	}
	if cfg.StageTimeout <= 0 || cfg.FinalLegTimeout <= 0 {
		return nil, fmt.Errorf("stage timeouts must be positive")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxConsecutiveErrors <= 0 {
		cfg.MaxConsecutiveErrors = defaultMaxConsecutiveErrors
	}
	return &Service{engines, cfg}, nil
}

// WaitForIncrease polls the balance of asset on the given engine and returns
// it as soon as it's strictly greater than baseline. It returns
// ErrStageTimedOut if that doesn't happen within the stage timeout, or the
// context error if ctx is cancelled first.
func (s *Service) WaitForIncrease(
	ctx context.Context, engineName, asset string, baseline decimal.Decimal,
) (decimal.Decimal, error) {
	engine, err := s.engines.Get(engineName)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = s.poll(ctx, s.cfg.StageTimeout, func() (bool, error) {
		balance, err = engine.GetBalance(ctx, asset)
		if err != nil {
			return false, err
		}
		log.Debugf(
			"%s balance on %s: %s (baseline %s)", asset, engineName, balance, baseline,
		)
		return balance.GreaterThan(baseline), nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf(
			"waiting for %s balance on %s: %w", asset, engineName, err,
		)
	}
	return balance, nil
}

// WaitForLegStatus polls the ledger until the given leg reaches a terminal
// status, and returns it.
func (s *Service) WaitForLegStatus(
	ctx context.Context, ledger domain.SwapLedger, uuid string,
) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := s.poll(ctx, s.cfg.FinalLegTimeout, func() (bool, error) {
		record, err := ledger.Get(ctx, uuid)
		if err != nil {
			return false, err
		}
		status = record.Order.Status
		return status.IsTerminal(), nil
	})
	if err != nil {
		return "", fmt.Errorf("waiting for leg %s: %w", uuid, err)
	}
	return status, nil
}

// poll runs check immediately and then at every tick until it's satisfied.
// Check errors are tolerated up to MaxConsecutiveErrors in a row.
func (s *Service) poll(
	ctx context.Context, timeout time.Duration, check func() (bool, error),
) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	failures := 0
	for {
		done, err := check()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			log.WithError(err).Warnf(
				"poll failed (%d/%d)", failures, s.cfg.MaxConsecutiveErrors,
			)
			if failures >= s.cfg.MaxConsecutiveErrors {
				return err
			}
		} else {
			failures = 0
			if done {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w after %s", application.ErrStageTimedOut, timeout)
		case <-ticker.C:
		}
	}
}
