package resilience

import "time"

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// IndexingPolicy is the retry schedule for vector-index writes: three
// attempts with 1s then 2s between them, no breaker. The pipeline depends on
// this exact attempt count to decide between the indexed and processed
// terminal states, so the breaker stays out of the way.
func IndexingPolicy() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Second,
		RetryMaxBackoff:     4 * time.Second,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

// PublishPolicy guards queue publishes on the upload path. The breaker keeps
// a dead broker from stalling every upload request for the full retry budget.
func PublishPolicy() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = 1
	}
	if out.RetryInitialBackoff < 0 {
		out.RetryInitialBackoff = 0
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = 1.0
	}
	if out.BreakerEnabled {
		if out.BreakerMinRequests == 0 {
			out.BreakerMinRequests = 10
		}
		if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
			out.BreakerFailureRatio = 0.5
		}
		if out.BreakerOpenTimeout <= 0 {
			out.BreakerOpenTimeout = 30 * time.Second
		}
		if out.BreakerHalfOpenMaxCalls == 0 {
			out.BreakerHalfOpenMaxCalls = 1
		}
	}
	return out
}
