// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package douban

import (
	"context"
	"math/rand/v2"
	"time"
)

// Default delay window applied after every request.
const (
	DefaultDelayMin = 500 * time.Millisecond
	DefaultDelayMax = 2 * time.Second
)

// Throttle sleeps for a random duration in [Min, Max] between requests.
type Throttle struct {
	Min, Max time.Duration

	rand  func() float64
	sleep func(context.Context, time.Duration) error
}

// NewThrottle returns a Throttle for the given window. A negative or zero
// window disables waiting; min and max are swapped when out of order.
func NewThrottle(min, max time.Duration) *Throttle {
	if max < min {
		min, max = max, min
	}
	return &Throttle{Min: min, Max: max, rand: rand.Float64, sleep: sleepCtx}
}

// Next returns the next delay without sleeping.
func (t *Throttle) Next() time.Duration {
	if t == nil || t.Max <= 0 {
		return 0
	}
	lo := max(t.Min, 0)
	span := t.Max - lo
	r := rand.Float64
	if t.rand != nil {
		r = t.rand
	}
	return lo + time.Duration(r()*float64(span))
}

// Wait sleeps for Next() or until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	d := t.Next()
	if d <= 0 {
		return ctx.Err()
	}
	sleep := sleepCtx
	if t.sleep != nil {
		sleep = t.sleep
	}
	return sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
