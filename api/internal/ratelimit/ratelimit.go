package ratelimit

import (
	"context"
	"log"
	"time"
)

// MinWait is the shortest pause imposed whenever a call arrives too early.
// The backing service rejects bursts below this spacing regardless of quota.
const MinWait = time.Second

// Limiter spaces outbound calls at least 60/callsPerMinute seconds apart.
// The check-sleep-stamp sequence runs under one lock, so concurrent callers
// queue behind each other instead of racing on the last timestamp.
type Limiter struct {
	minInterval time.Duration

	// Now and Sleep are swapped out in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	lock     chan struct{}
	lastCall time.Time
}

func New(callsPerMinute int) *Limiter {
	if callsPerMinute <= 0 {
		callsPerMinute = 60
	}
	return &Limiter{
		minInterval: time.Minute / time.Duration(callsPerMinute),
		Now:         time.Now,
		Sleep:       SleepContext,
		lock:        make(chan struct{}, 1),
	}
}

func (l *Limiter) MinInterval() time.Duration { return l.minInterval }

// Acquire blocks until the next outbound call may be issued and records its
// time. It returns ctx.Err() if the context ends while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.lock }()

	elapsed := l.Now().Sub(l.lastCall)
	if elapsed < l.minInterval {
		wait := l.minInterval - elapsed
		if wait < MinWait {
			wait = MinWait
		}
		log.Printf("ratelimit: waiting %v", wait)
		if err := l.Sleep(ctx, wait); err != nil {
			return err
		}
	}
	l.lastCall = l.Now()
	return nil
}

// SleepContext pauses for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
