package background

import (
	"context"
	"sync"
	"time"
)

// Scope - abstract concurrency scope.
// It joins goroutines started with Go under the single cancelable context.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	wg     sync.WaitGroup
}

// NewScope - concurrency scope builder. Scope expires when parent is done or Cancel is called.
func NewScope(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context - return background context
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Expired - reports whether scope is canceled.
func (s *Scope) Expired() bool {
	return s.ctx.Err() != nil
}

// Go - starts f in background as a member of scope.
// Returns false and does not start f when scope is already expired.
func (s *Scope) Go(f func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		f(s.ctx)
	}()
	return true
}

// Cancel - expires scope. Members are notified through Context().Done().
func (s *Scope) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
}

// Wait - waits for all members are done, but no longer than timeout.
// Zero or negative timeout means wait without limit.
// Returns true if all members are done. Call it after Cancel, otherwise
// members started concurrently with Wait may be missed.
func (s *Scope) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	if timeout <= 0 {
		<-done
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
