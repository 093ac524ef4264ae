package hub

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSubscribers - returned by Publish when nobody is subscribed, the line is dropped.
	ErrNoSubscribers = errors.New("hub.Hub: no subscribers")

	// ErrClosed - returned by Recv after the subscriber was closed.
	ErrClosed = errors.New("hub.Subscriber: closed")
)

// LagError - returned once by Recv when the subscriber has fallen behind
// and its oldest pending lines were dropped.
// Receiving continues with the oldest line that was kept.
type LagError struct {
	Skipped uint64
}

func (e *LagError) Error() string {
	return fmt.Sprintf("hub.Subscriber: lagged, %d line(s) skipped", e.Skipped)
}
