// Package service ties the normalizer, the lot-matching engine and the result
// cache together behind one call per upload.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/cache"
	"btc-basis/internal/data"
	"btc-basis/internal/metrics"
	"btc-basis/internal/model"
)

// ErrNotFound is returned by Lookup for unknown or expired computation IDs.
var ErrNotFound = errors.New("computation not found")

// Computation is a finished run. ID addresses it in the cache and is derived
// from the upload content, method and policy, so identical requests share it.
type Computation struct {
	ID     string
	Result *basis.Result
	Cached bool
}

type Service struct {
	engine *basis.Engine
	cache  cache.Cache
}

// New creates a service. c may be nil to disable memoization.
func New(policy basis.Policy, c cache.Cache) *Service {
	return &Service{engine: basis.New(policy), cache: c}
}

// Policy reports the oversell policy the engine runs with.
func (s *Service) Policy() basis.Policy { return s.engine.Policy }

// Compute decodes the upload named name, normalizes it and runs the engine,
// reusing a cached result for identical content and settings.
func (s *Service) Compute(ctx context.Context, name string, raw []byte, method model.Method) (*Computation, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMethod, method)
	}
	// The format picks the decoder, so it is resolved before the cache is consulted.
	format, err := data.Format(name)
	if err != nil {
		metrics.ComputationsTotal.WithLabelValues(method.String(), outcome(err)).Inc()
		return nil, err
	}
	id := cache.Key(data.Fingerprint(raw), format, method, s.engine.Policy)

	if res, ok := s.get(ctx, id); ok {
		metrics.ComputationsTotal.WithLabelValues(method.String(), "cached").Inc()
		return &Computation{ID: id, Result: res, Cached: true}, nil
	}

	start := time.Now()
	res, err := s.run(name, raw, method)
	if err != nil {
		metrics.ComputationsTotal.WithLabelValues(method.String(), outcome(err)).Inc()
		return nil, err
	}
	metrics.ComputationDuration.WithLabelValues(method.String()).Observe(time.Since(start).Seconds())
	metrics.ComputationsTotal.WithLabelValues(method.String(), "ok").Inc()
	metrics.TransactionsProcessed.WithLabelValues(method.String()).Add(float64(len(res.Rows)))
	if n := res.Final().Oversold; n > 0 {
		metrics.OversoldRows.Add(float64(n))
	}

	if s.cache != nil {
		s.cache.Set(ctx, id, res)
	}
	return &Computation{ID: id, Result: res}, nil
}

// Lookup returns a previously computed result by ID.
func (s *Service) Lookup(ctx context.Context, id string) (*Computation, error) {
	res, ok := s.get(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &Computation{ID: id, Result: res, Cached: true}, nil
}

func (s *Service) get(ctx context.Context, id string) (*basis.Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	res, ok := s.cache.Get(ctx, id)
	if ok {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	}
	return res, ok
}

func (s *Service) run(name string, raw []byte, method model.Method) (*basis.Result, error) {
	tbl, err := data.ReadTable(name, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	txs, err := data.Normalize(tbl)
	if err != nil {
		return nil, err
	}
	return s.engine.Run(txs, method)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, data.ErrParse), errors.Is(err, data.ErrMissingColumn):
		return "parse_error"
	case errors.Is(err, data.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, basis.ErrInsufficientLots):
		return "insufficient_lots"
	default:
		return "error"
	}
}
