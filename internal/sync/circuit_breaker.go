// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mfranz87/bggsync/internal/logging"
	"github.com/mfranz87/bggsync/internal/metrics"
	"github.com/mfranz87/bggsync/internal/models/bgg"
)

// CircuitBreakerClient wraps a BGGClientInterface with the circuit breaker
// pattern, preventing hammering of BGG while the site is down or throttling.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. This is intentional for
// production resilience; tests should mock the underlying client rather
// than the breaker.
type CircuitBreakerClient struct {
	client BGGClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps the given client with a circuit breaker.
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
//
// A queued collection export (ErrStillProcessing) is normal BGG behavior
// and never counts as a failure.
func NewCircuitBreakerClient(client BGGClientInterface) *CircuitBreakerClient {
	cbName := "bgg-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			// A queued export is the API working as designed.
			return err == nil || errors.Is(err, ErrStillProcessing)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a BGG API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else if !errors.Is(err, ErrStillProcessing) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()

			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return result, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)

	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// FetchPlays retrieves the plays page with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchPlays(ctx context.Context, username string) (*bgg.PlaysPage, error) {
	return castResult[bgg.PlaysPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchPlays(ctx, username)
	}))
}

// FetchGamePlays retrieves per-game plays with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchGamePlays(ctx context.Context, username string, gameID int) (*bgg.PlaysPage, error) {
	return castResult[bgg.PlaysPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchGamePlays(ctx, username, gameID)
	}))
}

// FetchCollection retrieves the collection with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchCollection(ctx context.Context, username, subtype string) (*bgg.CollectionPage, error) {
	return castResult[bgg.CollectionPage](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchCollection(ctx, username, subtype)
	}))
}

// FetchThingDetails retrieves game details with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchThingDetails(ctx context.Context, ids []int) ([]*bgg.GameRecord, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchThingDetails(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	typed, ok := result.([]*bgg.GameRecord)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Login establishes a session with circuit breaker protection.
func (cbc *CircuitBreakerClient) Login(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Login(ctx)
	})
	return err
}

// ValidateAuth probes credentials with circuit breaker protection.
func (cbc *CircuitBreakerClient) ValidateAuth(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.ValidateAuth(ctx)
	})
	return err
}

// RecordPlay logs a play with circuit breaker protection.
func (cbc *CircuitBreakerClient) RecordPlay(ctx context.Context, play *PlayRequest) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.RecordPlay(ctx, play)
	})
	return err
}
