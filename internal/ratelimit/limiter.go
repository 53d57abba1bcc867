package ratelimit

import (
	"context"
	"time"
)

// Policy allows Limit requests per Window for each originating address.
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type Limiter struct {
	policy Policy
	store  Store
	now    func() time.Time
}

func NewLimiter(policy Policy, store Store) *Limiter {
	return &Limiter{
		policy: policy,
		store:  store,
		now:    time.Now,
	}
}

func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow counts one request from address. Denied requests are counted too.
func (l *Limiter) Allow(ctx context.Context, address string) (Decision, error) {
	counter, err := l.store.Increment(ctx, l.policy.Name+":"+address, l.policy.Window)
	if err != nil {
		return Decision{Allowed: true, Limit: l.policy.Limit, Remaining: l.policy.Limit}, err
	}

	remaining := l.policy.Limit - counter.Count
	if remaining < 0 {
		remaining = 0
	}

	dec := Decision{
		Allowed:   counter.Count <= l.policy.Limit,
		Limit:     l.policy.Limit,
		Remaining: remaining,
		ResetAt:   counter.ResetAt,
	}
	if !dec.Allowed {
		dec.RetryAfter = counter.ResetAt.Sub(l.now())
		if dec.RetryAfter < time.Second {
			dec.RetryAfter = time.Second
		}
	}
	return dec, nil
}
