package hub

import "fmt"

// DefaultCapacity - num of pending lines kept per subscriber before it is considered lagged.
const DefaultCapacity = 100

type hubOption func(h *Hub) error

// WithCapacity - overwrites default per-subscriber capacity.
func WithCapacity(capacity int) hubOption {
	return func(h *Hub) error {
		if capacity <= 0 {
			return fmt.Errorf("hub.WithCapacity: invalid capacity (%d)", capacity)
		}
		h.capacity = capacity
		return nil
	}
}
