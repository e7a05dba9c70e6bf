package orderbook

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Engines tells which engine serves each pair of a route.
type Engines struct {
	// Direct serves base/quote.
	Direct string
	// Main serves intermediate/quote.
	Main string
	// Hop serves base/intermediate.
	Hop string
}

// RouteRequest ...
type RouteRequest struct {
	Base         string
	Quote        string
	Intermediate string
}

// Route holds consistent snapshots of the three books needed to price a
// private order.
type Route struct {
	// Direct is the base/quote book.
	Direct domain.Quote
	// Intermediate is the intermediate/quote book of the main engine.
	Intermediate domain.Quote
	// Final is the base/intermediate book of the intermediate-hop engine.
	Final domain.Quote
}

type Service struct {
	engines  ports.EngineRegistry
	route    Engines
	cache    ports.QuoteCache
	cacheTTL time.Duration
}

// NewService returns the order book gateway. The cache is optional and only
// serves GetOrderBook.
func NewService(
	engines ports.EngineRegistry, route Engines,
	cache ports.QuoteCache, cacheTTL time.Duration,
) (*Service, error) {
	if engines == nil {
		return nil, fmt.Errorf("missing engine registry")
	}
	for _, name := range []string{route.Direct, route.Main, route.Hop} {
		if _, err := engines.Get(name); err != nil {
			return nil, err
		}
	}
	if cache != nil && cacheTTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &Service{engines, route, cache, cacheTTL}, nil
}

// FetchOrderBook returns a fresh snapshot of the base/quote book of the given
// engine. It never retries.
func (s *Service) FetchOrderBook(
	ctx context.Context, engineName, base, quote string,
) (domain.Quote, error) {
	pair := domain.PairName(base, quote)

	engine, err := s.engines.Get(engineName)
	if err != nil {
		return domain.Quote{}, err
	}

	book, err := engine.GetOrderBook(ctx, base, quote)
	if err != nil {
		return domain.Quote{}, fmt.Errorf(
			"%w: %s on %s: %w", application.ErrOrderBookUnavailable, pair, engineName, err,
		)
	}
	if err := book.Validate(); err != nil {
		return domain.Quote{}, fmt.Errorf(
			"%w: %s on %s: %w", application.ErrOrderBookUnavailable, pair, engineName, err,
		)
	}
	if book.BaseCurrency != base || book.QuoteCurrency != quote {
		return domain.Quote{}, fmt.Errorf(
			"%w: %s on %s: got book for %s",
			application.ErrOrderBookUnavailable, pair, engineName, book.Pair(),
		)
	}
	return book, nil
}

// GetOrderBook is like FetchOrderBook, but serves from the cache if a recent
// enough snapshot is available.
func (s *Service) GetOrderBook(
	ctx context.Context, engineName, base, quote string,
) (domain.Quote, error) {
	if engineName == "" {
		engineName = s.route.Direct
	}
	key := fmt.Sprintf("%s:%s", engineName, domain.PairName(base, quote))

	if s.cache != nil {
		if book, ok := s.cache.Get(key); ok {
			return book, nil
		}
	}

	book, err := s.FetchOrderBook(ctx, engineName, base, quote)
	if err != nil {
		return domain.Quote{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, book, s.cacheTTL)
	}
	return book, nil
}

// FetchRoute fetches concurrently the three books of a private order route.
// The failure of any fetch fails the whole route, no partial route is ever
// returned.
func (s *Service) FetchRoute(ctx context.Context, req RouteRequest) (*Route, error) {
	if req.Base == "" || req.Quote == "" || req.Intermediate == "" {
		return nil, domain.ErrMissingCurrency
	}

	route := &Route{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		route.Direct, err = s.FetchOrderBook(gctx, s.route.Direct, req.Base, req.Quote)
		return
	})
	g.Go(func() (err error) {
		route.Intermediate, err = s.FetchOrderBook(
			gctx, s.route.Main, req.Intermediate, req.Quote,
		)
		return
	})
	g.Go(func() (err error) {
		route.Final, err = s.FetchOrderBook(gctx, s.route.Hop, req.Base, req.Intermediate)
		return
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Debug("order book route unavailable")
		return nil, err
	}

	for _, book := range []domain.Quote{route.Intermediate, route.Final} {
		if _, err := book.BestAsk(); err != nil {
			return nil, fmt.Errorf(
				"%w: %s: %w", application.ErrOrderBookUnavailable, book.Pair(), err,
			)
		}
	}
	return route, nil
}
