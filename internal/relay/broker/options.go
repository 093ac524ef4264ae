package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

type brokerOption func(b *Broker) error

// WithLogger - overwrites default logger (slog.Default()).
func WithLogger(logger *slog.Logger) brokerOption {
	return func(b *Broker) error {
		if logger == nil {
			return errors.New("broker.WithLogger: logger is nil")
		}
		b.logger = logger
		return nil
	}
}

// WithClock - overwrites clock used to measure connection lifetime.
func WithClock(clock clockwork.Clock) brokerOption {
	return func(b *Broker) error {
		if clock == nil {
			return errors.New("broker.WithClock: clock is nil")
		}
		b.clock = clock
		return nil
	}
}

// WithWriteTimeout - sets deadline for every outgoing line.
// A line which is not written in time is dropped for this client only, the connection is kept.
// Zero timeout (default) disables deadlines.
func WithWriteTimeout(timeout time.Duration) brokerOption {
	return func(b *Broker) error {
		if timeout < 0 {
			return fmt.Errorf("broker.WithWriteTimeout: invalid timeout (%v)", timeout)
		}
		b.writeTimeout = timeout
		return nil
	}
}
