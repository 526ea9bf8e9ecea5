package worker

import "time"

// RetryPolicy controls how reminder deliveries are retried after an SMTP
// failure. The zero value is usable; NextDelay substitutes sane defaults.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns how long to wait before the given attempt (1-based).
// Delays grow geometrically from InitialDelay and are clamped at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	base := r.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := float64(base)
	for i := 1; i < attempt; i++ {
		d *= factor
		if r.MaxDelay > 0 && d >= float64(r.MaxDelay) {
			return r.MaxDelay
		}
	}

	out := time.Duration(d)
	if out <= 0 {
		return time.Second
	}
	if r.MaxDelay > 0 && out > r.MaxDelay {
		return r.MaxDelay
	}
	return out
}
