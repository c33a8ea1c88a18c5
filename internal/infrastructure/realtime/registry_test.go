package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConn builds a Connection with no underlying websocket; Send only
// touches the buffered channel, which is all these tests need.
func testConn(id string) *Connection {
	return &Connection{
		ID:    id,
		send:  make(chan []byte, 128),
		close: make(chan struct{}),
	}
}

func TestRegistryOnlineTransitions(t *testing.T) {
	r := NewRegistry()

	c1 := testConn("c1")
	c2 := testConn("c2")

	assert.False(t, r.IsOnline(1))

	assert.True(t, r.Register(1, c1), "first connection should flip the user online")
	assert.True(t, r.IsOnline(1))

	assert.False(t, r.Register(1, c2), "second device must not report a fresh online transition")
	assert.Len(t, r.ConnectionsOf(1), 2)

	assert.False(t, r.Unregister(1, c1), "user still has a live device")
	assert.True(t, r.IsOnline(1))

	assert.True(t, r.Unregister(1, c2), "last connection should flip the user offline")
	assert.False(t, r.IsOnline(1))
	assert.Nil(t, r.ConnectionsOf(1))
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Unregister(42, testConn("ghost")))
}

func TestRegistryFanOut(t *testing.T) {
	r := NewRegistry()
	c1 := testConn("c1")
	c2 := testConn("c2")
	r.Register(1, c1)
	r.Register(1, c2)
	r.Register(2, testConn("c3"))

	n := r.FanOut(1, []byte(`{"type":"msg_new"}`))
	assert.Equal(t, 2, n, "every device of the target user gets the payload")

	for _, c := range []*Connection{c1, c2} {
		select {
		case got := <-c.send:
			assert.JSONEq(t, `{"type":"msg_new"}`, string(got))
		default:
			t.Fatalf("connection %s received nothing", c.ID)
		}
	}

	assert.Equal(t, 0, r.FanOut(99, []byte("x")), "offline user has no deliveries")
}

func TestRegistryBroadcastAll(t *testing.T) {
	r := NewRegistry()
	conns := []*Connection{testConn("a"), testConn("b"), testConn("c")}
	r.Register(1, conns[0])
	r.Register(1, conns[1])
	r.Register(2, conns[2])

	assert.Equal(t, 3, r.BroadcastAll([]byte("roster")))
	for _, c := range conns {
		require.Len(t, c.send, 1)
	}
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	online := make(chan bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			online <- r.Register(7, testConn(fmt.Sprintf("conn-%d", i)))
		}(i)
	}
	wg.Wait()
	close(online)

	transitions := 0
	for came := range online {
		if came {
			transitions++
		}
	}
	assert.Equal(t, 1, transitions, "exactly one goroutine observes the offline->online edge")
	assert.Len(t, r.ConnectionsOf(7), 64)
}
