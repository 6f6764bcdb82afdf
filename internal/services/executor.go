package services

import (
	"context"
	"time"

	"github.com/rahul4469/verifact/internal/models"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// DefaultBackoffStep is the unit of the linear backoff between rate-limited
// attempts: the n-th retry waits n*step.
const DefaultBackoffStep = 2 * time.Second

// Executor issues one logical request with retry on rate limiting and a
// single downgraded attempt without search grounding once the grounded
// budget is spent. It keeps no state between calls.
type Executor struct {
	client      ReasoningClient
	backoffStep time.Duration
	logger      *zap.Logger
}

func NewExecutor(client ReasoningClient, backoffStep time.Duration, logger *zap.Logger) *Executor {
	if backoffStep < 0 {
		backoffStep = DefaultBackoffStep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client:      client,
		backoffStep: backoffStep,
		logger:      logger,
	}
}

// Execute runs the payload with up to maxRetries attempts (at least one) in
// the requested mode. Only rate-limited failures are retried. When enhanced
// is set and the budget ends on a rate limit, exactly one more attempt is
// made with grounding disabled. Every returned error is a
// *models.RemoteError.
func (e *Executor) Execute(ctx context.Context, payload Payload, maxRetries int, enhanced bool) (*Reply, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if e.client == nil {
		return nil, &models.RemoteError{Class: models.ClassUnauthorized, Err: models.ErrCredentialMissing}
	}

	reply, err := e.run(ctx, payload, maxRetries, enhanced)
	if err == nil {
		return reply, nil
	}

	if enhanced && err.Class == models.ClassRateLimited && ctx.Err() == nil {
		e.logger.Warn("search grounding quota exhausted, falling back to baseline generation",
			zap.Error(err))
		reply, err = e.run(ctx, payload, 1, false)
		if err == nil {
			return reply, nil
		}
	}

	return nil, err
}

func (e *Executor) run(ctx context.Context, payload Payload, budget int, enhanced bool) (*Reply, *models.RemoteError) {
	attempts := max(budget, 1)
	backoff := retry.WithMaxRetries(uint64(attempts-1), linearBackoff(e.backoffStep))

	var reply *Reply
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := e.client.Generate(ctx, payload, enhanced)
		if err != nil {
			remote := asRemoteError(err)
			if remote.Class != models.ClassRateLimited {
				return remote
			}
			if attempt < attempts {
				e.logger.Warn("rate limit hit, retrying",
					zap.Int("attempt", attempt),
					zap.Int("remaining", attempts-attempt),
					zap.Bool("grounded", enhanced))
			}
			return retry.RetryableError(remote)
		}
		reply = r
		return nil
	})
	if err != nil {
		return nil, asRemoteError(err)
	}
	return reply, nil
}

// linearBackoff yields step, 2*step, 3*step, ... for successive retries.
func linearBackoff(step time.Duration) retry.Backoff {
	n := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * step, false
	})
}
