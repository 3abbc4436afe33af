package router

import (
	"testing"

	"github.com/kaspanet/ledgersim/app/appmessage"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func testMessage() appmessage.Message {
	return appmessage.NewMsgTransaction("test", externalapi.NewDomainTransaction(nil, nil))
}

func TestRouteCapacity(t *testing.T) {
	route := NewRoute("test", 2)
	for i := 0; i < 2; i++ {
		err := route.Enqueue(testMessage())
		if err != nil {
			t.Fatalf("Enqueue: %+v", err)
		}
	}
	err := route.Enqueue(testMessage())
	if !errors.Is(err, ErrRouteCapacityReached) {
		t.Fatalf("TestRouteCapacity: expected ErrRouteCapacityReached, got %+v", err)
	}
	if route.Dropped() != 1 {
		t.Fatalf("TestRouteCapacity: got %d dropped messages, want 1", route.Dropped())
	}
	if route.Name() != "test" || route.Capacity() != 2 {
		t.Fatalf("TestRouteCapacity: unexpected name %s or capacity %d", route.Name(), route.Capacity())
	}

	message, err := route.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %+v", err)
	}
	if message.ReceivedAt().IsZero() {
		t.Fatalf("TestRouteCapacity: Enqueue did not stamp the message")
	}
	if route.Len() != 1 {
		t.Fatalf("TestRouteCapacity: got %d queued messages, want 1", route.Len())
	}
}

func TestRouteClose(t *testing.T) {
	route := NewRoute("test", 4)
	err := route.Enqueue(testMessage())
	if err != nil {
		t.Fatalf("Enqueue: %+v", err)
	}
	route.Close()
	route.Close()

	err = route.Enqueue(testMessage())
	if !errors.Is(err, ErrRouteClosed) {
		t.Fatalf("TestRouteClose: expected ErrRouteClosed on Enqueue, got %+v", err)
	}
	_, err = route.Dequeue()
	if err != nil {
		t.Fatalf("TestRouteClose: a message enqueued before Close was lost: %+v", err)
	}
	_, err = route.Dequeue()
	if !errors.Is(err, ErrRouteClosed) {
		t.Fatalf("TestRouteClose: expected ErrRouteClosed on Dequeue, got %+v", err)
	}
}
