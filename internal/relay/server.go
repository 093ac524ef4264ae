package relay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wtask/relay/internal/metrics"
	"github.com/wtask/relay/internal/relay/broker"
	"github.com/wtask/relay/pkg/background"
)

// ErrServerClosed - returned by Serve after Shutdown.
var ErrServerClosed = errors.New("relay.Server: closed")

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Server - accepts relay clients on any net.Listener implementation and hands them to broker.
type Server struct {
	broker *broker.Broker
	logger *slog.Logger
	clock  clockwork.Clock
	scope  *background.Scope
}

type serverOption func(s *Server) error

// WithLogger - overwrites default logger (slog.Default()).
func WithLogger(logger *slog.Logger) serverOption {
	return func(s *Server) error {
		if logger == nil {
			return errors.New("relay.WithLogger: logger is nil")
		}
		s.logger = logger
		return nil
	}
}

// WithClock - overwrites clock used to back off after accept errors.
func WithClock(clock clockwork.Clock) serverOption {
	return func(s *Server) error {
		if clock == nil {
			return errors.New("relay.WithClock: clock is nil")
		}
		s.clock = clock
		return nil
	}
}

// NewServer - creates new relay server which is ready to serve several network listeners.
func NewServer(b *broker.Broker, options ...serverOption) (*Server, error) {
	if b == nil {
		return nil, errors.New("relay.NewServer: broker is nil")
	}
	s := &Server{
		broker: b,
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
		scope:  background.NewScope(context.Background()),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Serve - accepts connections on listener until Shutdown is called or listener is closed.
// Accept errors are logged and retried with growing delay.
// Returns ErrServerClosed after Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	if listener == nil {
		return errors.New("relay.Server: listener is nil")
	}
	stopped := make(chan struct{})
	defer close(stopped)
	// close listener to stop accept loop
	started := s.scope.Go(func(ctx context.Context) {
		select {
		case <-ctx.Done():
			listener.Close()
		case <-stopped:
		}
	})
	if !started {
		return ErrServerClosed
	}

	var delay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.scope.Expired() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			delay = nextDelay(delay)
			metrics.AcceptErrors.Inc()
			s.logger.Error("Accept failed", "error", err, "retry_in", delay.String())
			select {
			case <-s.clock.After(delay):
			case <-s.scope.Context().Done():
				return ErrServerClosed
			}
			continue
		}
		delay = 0

		if err := s.broker.KeepConnection(conn); err != nil {
			s.logger.Warn("Connection rejected", "remote_addr", conn.RemoteAddr().String(), "error", err)
			conn.Close()
		}
	}
}

// Shutdown - stops accepting and quits broker within the specified timeout.
// Returns stopping duration.
func (s *Server) Shutdown(timeout time.Duration) time.Duration {
	if s.scope.Expired() {
		return 0
	}
	from := time.Now()
	s.scope.Cancel()
	s.broker.Quit(timeout)
	if left := timeout - time.Since(from); left > 0 {
		s.scope.Wait(left)
	}
	return time.Since(from)
}

func nextDelay(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptDelay
	}
	if prev *= 2; prev > maxAcceptDelay {
		return maxAcceptDelay
	}
	return prev
}
