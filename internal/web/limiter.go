package web

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrExtractBusy is returned when every extraction slot is occupied and
// the wait timeout expires. Clients should retry after a short delay.
var ErrExtractBusy = errors.New("too many concurrent extractions, please try again later")

// extractLimiter bounds in-flight extraction requests. Each extraction
// holds an outbound model call open for up to a minute, so unbounded
// parallelism exhausts both memory and the API quota. Waiters queue on
// the semaphore for at most maxWait before being rejected.
type extractLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.Mutex
	active int
}

func newExtractLimiter(maxConcurrent int, maxWait time.Duration) *extractLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}
	return &extractLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire claims an extraction slot, waiting up to maxWait. The caller
// must Release after the extraction finishes.
func (l *extractLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrExtractBusy
	}
}

// Release frees a slot claimed by a successful Acquire.
func (l *extractLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// Active returns the number of extractions currently in flight.
func (l *extractLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}
