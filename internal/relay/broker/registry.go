package broker

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/wtask/relay/internal/relay/hub"
)

type client struct {
	conn  net.Conn
	sub   *hub.Subscriber
	log   *slog.Logger
	since time.Time
}

type registry struct {
	mu   sync.RWMutex
	list map[net.Conn]*client
}

func newRegistry() *registry {
	return &registry{
		list: make(map[net.Conn]*client),
	}
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

func (r *registry) add(c *client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.list[c.conn]; ok {
		return false
	}
	r.list[c.conn] = c
	return true
}

func (r *registry) delete(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.list, conn)
}

// scan - calls f for every kept connection; f must not modify registry.
func (r *registry) scan(f func(*client)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.list {
		f(c)
	}
}
