// Package broker keeps relay client connections.
//
// Every kept connection is served by two independent goroutines:
// the inbox reads newline-delimited lines from the client and publishes them into the hub,
// the outbox receives lines from the hub and writes them back to the client.
// Connection is released only after both of them are done.
package broker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/wtask/relay/internal/logging"
	"github.com/wtask/relay/internal/metrics"
	"github.com/wtask/relay/internal/relay/hub"
	"github.com/wtask/relay/internal/relay/message"
	"github.com/wtask/relay/pkg/background"
)

// Broker - relay connections keeper attached to the single hub.
type Broker struct {
	hub          *hub.Hub
	writeTimeout time.Duration
	logger       *slog.Logger
	clock        clockwork.Clock

	scope   *background.Scope
	clients *registry
}

// New - builds Broker over hub with needed options.
func New(h *hub.Hub, options ...brokerOption) (*Broker, error) {
	if h == nil {
		return nil, errors.New("broker.New: hub is nil")
	}
	b := &Broker{
		hub:     h,
		logger:  slog.Default(),
		clock:   clockwork.NewRealClock(),
		scope:   background.NewScope(context.Background()),
		clients: newRegistry(),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Len - returns number of kept connections.
func (b *Broker) Len() int {
	return b.clients.len()
}

// Quit - stops all IO handlers and waits for them, but no longer than timeout.
// Returns duration of time spent for quit.
func (b *Broker) Quit(timeout time.Duration) time.Duration {
	if b.scope.Expired() {
		return 0
	}
	from := time.Now()
	b.scope.Cancel()
	// release readers blocked on the network
	b.clients.scan(func(c *client) {
		c.conn.Close()
	})
	b.scope.Wait(timeout)
	return time.Since(from)
}

// KeepConnection - subscribes new connection to the hub and starts in background IO handlers to communicate over it.
// Lines published after KeepConnection returns are delivered to the connection.
func (b *Broker) KeepConnection(conn net.Conn) error {
	if b.scope.Expired() {
		return ErrUnderStopCondition
	}

	id := uuid.New().String()
	c := &client{
		conn:  conn,
		log:   logging.WithConn(b.logger, id, conn.RemoteAddr().String()),
		since: b.clock.Now(),
	}
	c.sub = b.hub.Subscribe()
	if !b.clients.add(c) {
		c.sub.Close()
		return ErrConnKept
	}

	started := b.scope.Go(func(ctx context.Context) {
		b.hold(ctx, c)
	})
	if !started {
		b.clients.delete(conn)
		c.sub.Close()
		return ErrUnderStopCondition
	}
	return nil
}

// hold - serves connection until both inbox and outbox are done, then releases it.
func (b *Broker) hold(ctx context.Context, c *client) {
	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsCurrent.Inc()
	c.log.Info("Client connected")

	g := errgroup.Group{}
	g.Go(func() error {
		return b.maintainInbox(c)
	})
	g.Go(func() error {
		return b.maintainOutbox(ctx, c)
	})
	err := g.Wait()

	c.sub.Close()
	c.conn.Close()
	b.clients.delete(c.conn)

	lifetime := b.clock.Since(c.since)
	metrics.ConnectionsCurrent.Dec()
	metrics.ConnectionDuration.Observe(lifetime.Seconds())

	log := c.log.With("lifetime", lifetime.String())
	if err != nil {
		log = log.With("error", err)
	}
	log.Info("Client disconnected")
}

// maintainInbox - publishes every inbound line. Ends on EOF, read error or malformed line.
func (b *Broker) maintainInbox(c *client) error {
	reader := message.NewReader(c.conn)
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if isClosed(err) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		metrics.LinesReceived.Inc()
		c.log.Info("Line received", "line", line)

		if _, err := b.hub.Publish(line); err != nil {
			metrics.BroadcastErrors.Inc()
			c.log.Warn("Broadcast failed", "error", err)
		}
	}
}

// maintainOutbox - writes every line delivered by the hub.
// Lag and write timeouts are tolerated, a write into the gone connection ends the loop.
func (b *Broker) maintainOutbox(ctx context.Context, c *client) error {
	for {
		line, err := c.sub.Recv(ctx)
		var lag *hub.LagError
		switch {
		case errors.As(err, &lag):
			metrics.LagSkipped.Add(float64(lag.Skipped))
			c.log.Warn("Subscriber lagged", "skipped", lag.Skipped)
			continue
		case err != nil:
			// stopping or unsubscribed
			return nil
		}

		err = b.writeLine(c.conn, line)
		if err == nil {
			metrics.LinesDelivered.Inc()
			continue
		}
		if isTimeout(err) {
			metrics.WriteErrors.WithLabelValues("timeout").Inc()
			c.log.Debug("Write timed out, line dropped", "error", err)
			continue
		}
		metrics.WriteErrors.WithLabelValues("closed").Inc()
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("write: %w", err)
	}
}

func (b *Broker) writeLine(conn net.Conn, line string) error {
	if b.writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(b.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(conn, line+"\n")
	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
