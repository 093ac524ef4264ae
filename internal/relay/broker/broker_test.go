package broker

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtask/relay/internal/metrics"
	"github.com/wtask/relay/internal/relay/hub"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newBroker(test *testing.T, options ...brokerOption) (*Broker, *hub.Hub) {
	test.Helper()
	h, err := hub.New()
	require.NoError(test, err)
	b, err := New(h, append([]brokerOption{WithLogger(quietLogger)}, options...)...)
	require.NoError(test, err)
	test.Cleanup(func() {
		test.Log("broker stopped in:", b.Quit(time.Second))
	})
	return b, h
}

type link struct {
	clientConn, brokerConn net.Conn
	lines                  *bufio.Reader
}

// connect - keeps broker side of new pipe and returns client side.
func connect(test *testing.T, b *Broker) link {
	test.Helper()
	c, s := net.Pipe()
	require.NoError(test, b.KeepConnection(s))
	return link{c, s, bufio.NewReader(c)}
}

func (l link) send(test *testing.T, line string) {
	test.Helper()
	l.clientConn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := io.WriteString(l.clientConn, line+"\n")
	require.NoError(test, err)
}

func (l link) receive(test *testing.T) string {
	test.Helper()
	l.clientConn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := l.lines.ReadString('\n')
	require.NoError(test, err)
	return line
}

func TestNew(test *testing.T) {
	_, err := New(nil)
	assert.Error(test, err)

	h, err := hub.New()
	require.NoError(test, err)

	writeTimeout := 15 * time.Second
	b, err := New(h, WithWriteTimeout(writeTimeout), WithLogger(quietLogger), nil)
	require.NoError(test, err)
	assert.Equal(test, writeTimeout, b.writeTimeout)
	assert.Same(test, quietLogger, b.logger)
	assert.NotNil(test, b.clock)

	for _, option := range []brokerOption{WithWriteTimeout(-1), WithLogger(nil), WithClock(nil)} {
		_, err := New(h, option)
		assert.Error(test, err)
	}
}

func TestBroker_KeepConnection_ErrorCase(test *testing.T) {
	b, h := newBroker(test)
	_, conn := net.Pipe()

	assert.NoError(test, b.KeepConnection(conn))
	assert.ErrorIs(test, b.KeepConnection(conn), ErrConnKept)
	assert.Equal(test, 1, h.Len(), "rejected connection must not stay subscribed")

	b.Quit(time.Second)

	_, another := net.Pipe()
	assert.ErrorIs(test, b.KeepConnection(another), ErrUnderStopCondition)
}

func TestBroker_Echo(test *testing.T) {
	b, _ := newBroker(test)
	a := connect(test, b)

	a.send(test, "hello")
	assert.Equal(test, "hello\n", a.receive(test))
}

func TestBroker_Broadcast(test *testing.T) {
	b, h := newBroker(test)
	network := []link{connect(test, b), connect(test, b), connect(test, b)}
	require.Equal(test, 3, b.Len())
	require.Equal(test, 3, h.Len())

	network[0].send(test, "ping")
	for i, l := range network {
		assert.Equal(test, "ping\n", l.receive(test), "client #%d", i+1)
	}

	network[2].send(test, "pong")
	for i, l := range network {
		assert.Equal(test, "pong\n", l.receive(test), "client #%d", i+1)
	}
}

func TestBroker_Disconnect(test *testing.T) {
	b, h := newBroker(test)
	a := connect(test, b)
	other := connect(test, b)

	a.clientConn.Close()
	other.send(test, "still here")
	assert.Equal(test, "still here\n", other.receive(test))

	// outbox of the closed connection fails to write and the connection is released
	require.Eventually(test, func() bool { return b.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(test, 1, h.Len())

	late := connect(test, b)
	late.send(test, "welcome")
	assert.Equal(test, "welcome\n", late.receive(test))
	assert.Equal(test, "welcome\n", other.receive(test))
}

func TestBroker_MalformedInputStopsReaderOnly(test *testing.T) {
	b, h := newBroker(test)
	a := connect(test, b)

	a.clientConn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := a.clientConn.Write([]byte("bad \xff line\n"))
	require.NoError(test, err)

	// outbox still works for this client
	_, err = h.Publish("after")
	require.NoError(test, err)
	assert.Equal(test, "after\n", a.receive(test))
	assert.Equal(test, 1, b.Len())
}

func TestBroker_WriteTimeoutIsTolerated(test *testing.T) {
	b, h := newBroker(test, WithWriteTimeout(100*time.Millisecond))
	a := connect(test, b)
	timeouts := metrics.WriteErrors.WithLabelValues("timeout")
	before := testutil.ToFloat64(timeouts)

	// nobody reads on the client side, so the write times out
	_, err := h.Publish("lost")
	require.NoError(test, err)
	require.Eventually(test, func() bool {
		return testutil.ToFloat64(timeouts) > before
	}, time.Second, 5*time.Millisecond)

	_, err = h.Publish("kept")
	require.NoError(test, err)
	assert.Equal(test, "kept\n", a.receive(test))
	assert.Equal(test, 1, b.Len())
}

func TestBroker_SlowClientLags(test *testing.T) {
	b, h := newBroker(test)
	a := connect(test, b)
	before := testutil.ToFloat64(metrics.LagSkipped)

	const total = hub.DefaultCapacity + 50
	for i := 0; i < total; i++ {
		_, err := h.Publish(strconv.Itoa(i))
		require.NoError(test, err)
	}

	received := []int{}
	for {
		line := a.receive(test)
		n, err := strconv.Atoi(line[:len(line)-1])
		require.NoError(test, err)
		received = append(received, n)
		if n == total-1 {
			break
		}
	}
	assert.Less(test, len(received), total, "some lines must be skipped")
	assert.IsIncreasing(test, received)
	assert.Greater(test, testutil.ToFloat64(metrics.LagSkipped), before)
}

func TestBroker_Quit(test *testing.T) {
	b, h := newBroker(test)
	a := connect(test, b)

	b.Quit(time.Second)
	assert.Equal(test, 0, b.Len())
	assert.Equal(test, 0, h.Len())

	a.clientConn.SetReadDeadline(time.Now().Add(time.Second))
	_, err := a.lines.ReadString('\n')
	assert.ErrorIs(test, err, io.EOF, "client must see closed connection")
	assert.Zero(test, b.Quit(time.Second), "second Quit is no-op")
}
