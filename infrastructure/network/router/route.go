package router

import (
	"sync/atomic"
	"time"

	"github.com/kaspanet/ledgersim/app/appmessage"
	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
)

var (
	// ErrTimeout signifies that waiting on routed messages ran out of time.
	ErrTimeout = errors.New("timeout expired")

	// ErrRouteClosed indicates that a route was closed while reading/writing.
	ErrRouteClosed = errors.New("route is closed")

	// ErrRouteCapacityReached indicates that route's capacity has been reached
	ErrRouteCapacityReached = errors.New("route capacity has been reached")
)

// Route is a node's bounded inbound message queue. A full route rejects
// new messages instead of blocking the sender.
type Route struct {
	name     string
	messages chan appmessage.Message
	dropped  uint64

	// enqueueLock guards closed so that no message is sent on a closed
	// channel. Dequeue relies on the channel itself.
	enqueueLock deadlock.Mutex
	closed      bool
}

// NewRoute creates a Route holding at most capacity undelivered messages
func NewRoute(name string, capacity int) *Route {
	return &Route{
		name:     name,
		messages: make(chan appmessage.Message, capacity),
	}
}

// Name returns the name the route was created with
func (r *Route) Name() string {
	return r.name
}

// Capacity returns the number of undelivered messages the route can hold
func (r *Route) Capacity() int {
	return cap(r.messages)
}

// Enqueue stamps message with its arrival time and queues it
func (r *Route) Enqueue(message appmessage.Message) error {
	r.enqueueLock.Lock()
	defer r.enqueueLock.Unlock()

	if r.closed {
		return errors.Wrapf(ErrRouteClosed, "route '%s' is closed", r.name)
	}
	if len(r.messages) == cap(r.messages) {
		atomic.AddUint64(&r.dropped, 1)
		return errors.Wrapf(ErrRouteCapacityReached, "route '%s' reached capacity of %d",
			r.name, cap(r.messages))
	}
	message.SetReceivedAt(time.Now())
	r.messages <- message
	return nil
}

// Dequeue blocks until a message is available. It fails once the route is
// closed and drained.
func (r *Route) Dequeue() (appmessage.Message, error) {
	message, isOpen := <-r.messages
	if !isOpen {
		return nil, errors.Wrapf(ErrRouteClosed, "route '%s' is closed", r.name)
	}
	return message, nil
}

// Len returns the number of messages waiting in the Route
func (r *Route) Len() int {
	return len(r.messages)
}

// Dropped returns how many messages Enqueue rejected for lack of capacity
func (r *Route) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

// Close closes this route. Messages already enqueued can still be dequeued.
func (r *Route) Close() {
	r.enqueueLock.Lock()
	defer r.enqueueLock.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	close(r.messages)
}
