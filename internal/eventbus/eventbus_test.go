package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New(nil)
	defer b.Close()

	got := make(chan DomainEvent, 2)
	b.Subscribe(EventMidpointRequested, func(e DomainEvent) { got <- e })
	b.Subscribe(EventError, func(DomainEvent) { t.Error("unexpected delivery") })

	b.Publish(MidpointRequestedEvent{AddressA: "a", AddressB: "b"})

	select {
	case e := <-got:
		ev, ok := e.(MidpointRequestedEvent)
		require.True(t, ok)
		assert.Equal(t, "a", ev.AddressA)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var first, second atomic.Int32
	unsubscribe := b.Subscribe(EventConfigSaved, func(DomainEvent) { first.Add(1) })
	done := make(chan struct{}, 2)
	b.Subscribe(EventConfigSaved, func(DomainEvent) {
		second.Add(1)
		done <- struct{}{}
	})

	unsubscribe()
	unsubscribe()
	b.Publish(ConfigSavedEvent{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	b.Close()
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestHandlerPanicDoesNotStopBus(t *testing.T) {
	b := New(nil)
	defer b.Close()

	done := make(chan struct{})
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventConfigSaved, func(DomainEvent) { close(done) })

	b.Publish(ErrorEvent{Message: "x"})
	b.Publish(ConfigSavedEvent{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bus stopped after handler panic")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := New(nil)
	var calls atomic.Int32
	b.Subscribe(EventConfigSaved, func(DomainEvent) { calls.Add(1) })
	b.Close()
	b.Close()

	b.Publish(ConfigSavedEvent{})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
