package hub

// queue - accumulates a limited number of lines in FIFO order.
// When queue length has reached its max, every push evicts the oldest line.
type queue struct {
	data       []string
	head, size int
}

func newQueue(max int) *queue {
	return &queue{data: make([]string, max)}
}

// len - returns number of queued lines.
func (q *queue) len() int {
	return q.size
}

// push - appends line, reports whether the oldest line was evicted to make room.
func (q *queue) push(line string) (evicted bool) {
	max := len(q.data)
	if q.size == max {
		q.data[q.head] = ""
		q.head = (q.head + 1) % max
		q.size--
		evicted = true
	}
	q.data[(q.head+q.size)%max] = line
	q.size++
	return evicted
}

// pop - removes and returns the oldest line.
func (q *queue) pop() (string, bool) {
	if q.size == 0 {
		return "", false
	}
	line := q.data[q.head]
	q.data[q.head] = ""
	q.head = (q.head + 1) % len(q.data)
	q.size--
	return line, true
}
