package utils

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

type Retrier[T any] struct {
	strategy HandlingStrategy
	logger   *slog.Logger
}

func NewRetrier[T any](strategy HandlingStrategy) *Retrier[T] {
	return &Retrier[T]{strategy: strategy, logger: slog.Default()}
}

func NewDefaultRetrier[T any]() *Retrier[T] {
	return NewRetrier[T](NewExponentialBackoffStrategy(5, 50*time.Millisecond, 0.1, 2*time.Second))
}

func NewExponentialRetrierFactory[T any](maximumRetries int, initialDelay time.Duration, jitterPercentage float64, maxDelay time.Duration) func() *Retrier[T] {
	return func() *Retrier[T] {
		return NewRetrier[T](NewExponentialBackoffStrategy(maximumRetries, initialDelay, jitterPercentage, maxDelay))
	}
}

func NewNopRetrierFactory[T any]() func() *Retrier[T] {
	return func() *Retrier[T] {
		return NewRetrier[T](&NopRetryStrategy{})
	}
}

func (r *Retrier[T]) WithLogger(logger *slog.Logger) *Retrier[T] {
	r.logger = logger
	return r
}

// DoWithReturn runs action until it succeeds, the strategy gives up or ctx is
// done. Waits between attempts are interrupted by ctx.
func (r *Retrier[T]) DoWithReturn(ctx context.Context, action func() (T, error)) (T, error) {
	var defaultT T
	if r.strategy.IsPreRequestDelayNeeded() {
		timeToWait := r.strategy.ComputePreRequestDelay()
		r.logger.Debug("recovering from errors", "wait", timeToWait)
		if err := sleepWithContext(ctx, timeToWait); err != nil {
			return defaultT, err
		}
	}
	for {
		result, err := action()
		if err == nil {
			r.strategy.HandleSuccess()
			return result, nil
		}
		decision := r.strategy.HandleError(err)
		if decision.ReturnError {
			return defaultT, err
		}
		r.logger.Warn("retrying after error", "error", err, "wait", decision.TimeToWait)
		if ctxErr := sleepWithContext(ctx, decision.TimeToWait); ctxErr != nil {
			return defaultT, ctxErr
		}
	}
}

func (r *Retrier[T]) Do(ctx context.Context, action func() error) error {
	_, err := r.DoWithReturn(ctx, func() (T, error) {
		var defaultT T
		return defaultT, action()
	})
	return err
}

func sleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Decision struct {
	TimeToWait  time.Duration
	ReturnError bool
}

type HandlingStrategy interface {
	HandleError(err error) Decision
	HandleSuccess()
	IsPreRequestDelayNeeded() bool
	ComputePreRequestDelay() time.Duration
}

// ExponentialBackoffStrategy is not safe for concurrent use.
type ExponentialBackoffStrategy struct {
	maximumRetries   int
	initialDelay     time.Duration
	maxDelay         time.Duration
	jitterPercentage float64

	currentRetryNumber int
	nextDelay          time.Duration
	rndGenerator       *rand.Rand

	recoveredFromFailures bool
}

// NewExponentialBackoffStrategy builds a doubling backoff capped at maxDelay.
// A maximumRetries of -1 retries forever.
func NewExponentialBackoffStrategy(maximumRetries int, initialDelay time.Duration, jitterPercentage float64, maxDelay time.Duration) *ExponentialBackoffStrategy {
	return &ExponentialBackoffStrategy{
		maximumRetries:        maximumRetries,
		initialDelay:          initialDelay,
		maxDelay:              maxDelay,
		jitterPercentage:      jitterPercentage,
		nextDelay:             initialDelay,
		rndGenerator:          rand.New(rand.NewSource(time.Now().UnixNano())),
		recoveredFromFailures: true,
	}
}

func (ebs *ExponentialBackoffStrategy) HandleError(err error) Decision {
	ebs.recoveredFromFailures = false
	if ebs.maximumRetries != -1 && ebs.currentRetryNumber >= ebs.maximumRetries {
		ebs.currentRetryNumber = 0
		return Decision{ReturnError: true}
	}
	ebs.currentRetryNumber++
	currentDelay := ebs.nextDelay
	nextBaseDelay := min(ebs.nextDelay*2, ebs.maxDelay)
	ebs.nextDelay = ebs.modifyWithJitter(nextBaseDelay)
	return Decision{TimeToWait: currentDelay}
}

func (ebs *ExponentialBackoffStrategy) HandleSuccess() {
	ebs.nextDelay /= 2
	ebs.currentRetryNumber = 0
	if ebs.nextDelay <= ebs.initialDelay {
		ebs.nextDelay = ebs.initialDelay
		ebs.recoveredFromFailures = true
	}
}

func (ebs *ExponentialBackoffStrategy) modifyWithJitter(duration time.Duration) time.Duration {
	maxJitterMilliseconds := int64(float64(duration.Milliseconds()) * ebs.jitterPercentage)
	if maxJitterMilliseconds <= 0 {
		return duration
	}
	jitterMilliseconds := ebs.rndGenerator.Int63n(maxJitterMilliseconds)
	jitterMilliseconds -= maxJitterMilliseconds / 2
	return duration + time.Duration(jitterMilliseconds)*time.Millisecond
}

func (ebs *ExponentialBackoffStrategy) ComputePreRequestDelay() time.Duration {
	return ebs.nextDelay
}

func (ebs *ExponentialBackoffStrategy) IsPreRequestDelayNeeded() bool {
	return !ebs.recoveredFromFailures
}

type NopRetryStrategy struct{}

func (nrs *NopRetryStrategy) HandleError(error) Decision {
	return Decision{ReturnError: true}
}

func (nrs *NopRetryStrategy) HandleSuccess() {}

func (nrs *NopRetryStrategy) IsPreRequestDelayNeeded() bool {
	return false
}

func (nrs *NopRetryStrategy) ComputePreRequestDelay() time.Duration {
	return 0
}
