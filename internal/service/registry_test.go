package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(id string) *RoomClient {
	return &RoomClient{ID: id, Send: make(chan []byte, 8)}
}

func TestJoinMovesConnectionBetweenSessions(t *testing.T) {
	r := NewSessionRegistry()
	c := newTestClient("c1")
	r.Register(c)

	r.Join("c1", "s1")
	assert.Equal(t, 1, r.MemberCount("s1"))

	r.Join("c1", "s2")
	assert.Equal(t, 0, r.MemberCount("s1"))
	assert.Equal(t, 1, r.MemberCount("s2"))
}

func TestLeaveIsIdempotent(t *testing.T) {
	r := NewSessionRegistry()
	c := newTestClient("c1")
	r.Register(c)
	r.Join("c1", "s1")

	r.Leave("c1")
	assert.Equal(t, 0, r.MemberCount("s1"))

	// Second leave is a no-op, never a negative count.
	r.Leave("c1")
	assert.Equal(t, 0, r.MemberCount("s1"))
}

func TestIsEmptyForUnknownSession(t *testing.T) {
	r := NewSessionRegistry()
	assert.True(t, r.IsEmpty("never-seen"))
}

func TestUnregisterPurgesMembership(t *testing.T) {
	r := NewSessionRegistry()
	c := newTestClient("c1")
	r.Register(c)
	r.Join("c1", "s1")

	r.Unregister("c1")
	assert.True(t, r.IsEmpty("s1"))

	// Send channel is closed exactly once.
	_, open := <-c.Send
	assert.False(t, open)
}

func TestJoinUnknownConnectionIsIgnored(t *testing.T) {
	r := NewSessionRegistry()
	r.Join("ghost", "s1")
	assert.Equal(t, 0, r.MemberCount("s1"))
}

func TestBroadcastExcludesSender(t *testing.T) {
	r := NewSessionRegistry()
	a, b := newTestClient("a"), newTestClient("b")
	r.Register(a)
	r.Register(b)
	r.Join("a", "s1")
	r.Join("b", "s1")

	r.Broadcast("s1", []byte("hello"), "a")

	assert.Len(t, b.Send, 1)
	assert.Len(t, a.Send, 0)

	r.Broadcast("s1", []byte("to all"), "")
	assert.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 2)
}

func TestConcurrentJoinLeave(t *testing.T) {
	r := NewSessionRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("c%d", i)
		r.Register(newTestClient(id))
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Join(id, "s1")
			r.Join(id, "s2")
			r.Leave(id)
			r.Leave(id)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 0, r.MemberCount("s1"))
	assert.Equal(t, 0, r.MemberCount("s2"))
}
