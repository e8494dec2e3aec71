package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"charm.land/log/v2"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// StatusError is an upstream failure tagged with the HTTP status, if any.
type StatusError struct {
	Source string
	Code   int // 0 when no response was received
	Err    error
}

func (e *StatusError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Source, e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Temporary reports whether the request may succeed if tried again.
func (e *StatusError) Temporary() bool {
	return e.Code == 0 || e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// RetryOptions tune the retry wrapper.
type RetryOptions struct {
	MaxAttempts       int
	InitialInterval   time.Duration
	MaxInterval       time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
}

// DefaultRetryOptions returns the settings used when the config leaves them unset.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:       3,
		InitialInterval:   250 * time.Millisecond,
		MaxInterval:       2 * time.Second,
		RequestsPerSecond: 2,
	}
}

type retrying struct {
	next    Provider
	opts    RetryOptions
	limiter *rate.Limiter
	logger  *log.Logger
}

// Retrying wraps p so that every request waits on a shared rate limiter and
// temporary failures are retried with exponential backoff.
func Retrying(p Provider, opts RetryOptions, logger *log.Logger) Provider {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	r := &retrying{next: p, opts: opts, logger: logger}
	if opts.RequestsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return r
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Search(ctx context.Context, req PageRequest) (*Collection, error) {
	exp := backoff.NewExponentialBackOff()
	if r.opts.InitialInterval > 0 {
		exp.InitialInterval = r.opts.InitialInterval
	}
	if r.opts.MaxInterval > 0 {
		exp.MaxInterval = r.opts.MaxInterval
	}
	exp.Multiplier = 2
	exp.Reset()

	for attempt := 1; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		coll, err := r.next.Search(ctx, req)
		if err == nil {
			return coll, nil
		}
		if !retryable(err) || attempt >= r.opts.MaxAttempts {
			return nil, err
		}

		wait := exp.NextBackOff()
		if r.logger != nil {
			r.logger.Warn("Retrying page fetch", "source", r.Name(), "attempt", attempt, "wait", wait, "err", err)
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return false
}
