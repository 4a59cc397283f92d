package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	got    []any
	err    error
	closed bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.got = append(c.got, v)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub(zerolog.Nop())
	a := h.Register(1, domain.RoleStaff, &fakeConn{})
	b := h.Register(1, domain.RoleStaff, &fakeConn{})
	h.Register(2, domain.RoleAdmin, &fakeConn{})

	assert.NotEqual(t, a, b)
	assert.Equal(t, 3, h.Count())

	h.Unregister(1, a)
	h.Unregister(1, "unknown")
	assert.Equal(t, 2, h.Count())

	h.Unregister(1, b)
	assert.Equal(t, 1, h.Count())
}

func TestHub_BroadcastReachesStaffOnly(t *testing.T) {
	h := NewHub(zerolog.Nop())
	admin, staff, customer := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Register(1, domain.RoleAdmin, admin)
	h.Register(2, domain.RoleStaff, staff)
	h.Register(3, domain.RoleUser, customer)

	n := h.Broadcast(context.Background(), map[string]string{"type": "x"})

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, admin.count())
	assert.Equal(t, 1, staff.count())
	assert.Zero(t, customer.count())
}

func TestHub_SendToUserAllTabs(t *testing.T) {
	h := NewHub(zerolog.Nop())
	tab1, tab2, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Register(7, domain.RoleStaff, tab1)
	h.Register(7, domain.RoleStaff, tab2)
	h.Register(8, domain.RoleStaff, other)

	assert.Equal(t, 2, h.SendToUser(context.Background(), 7, "hola"))
	assert.Equal(t, 1, tab1.count())
	assert.Equal(t, 1, tab2.count())
	assert.Zero(t, other.count())
	assert.Zero(t, h.SendToUser(context.Background(), 99, "nadie"))
}

func TestHub_SendToConnSingleTab(t *testing.T) {
	h := NewHub(zerolog.Nop())
	tab1, tab2 := &fakeConn{}, &fakeConn{}
	id1 := h.Register(7, domain.RoleStaff, tab1)
	h.Register(7, domain.RoleStaff, tab2)

	assert.True(t, h.SendToConn(context.Background(), 7, id1, "pong"))
	assert.Equal(t, 1, tab1.count())
	assert.Zero(t, tab2.count())
	assert.False(t, h.SendToConn(context.Background(), 7, "missing", "pong"))
	assert.False(t, h.SendToConn(context.Background(), 8, id1, "pong"))
}

func TestHub_FailedConnectionIsPruned(t *testing.T) {
	h := NewHub(zerolog.Nop())
	good := &fakeConn{}
	bad := &fakeConn{err: errors.New("broken pipe")}
	h.Register(1, domain.RoleStaff, good)
	h.Register(2, domain.RoleStaff, bad)

	ev := domain.NewStateEvent(5, domain.StatePending, domain.StateConfirmed)
	require.NoError(t, h.Publish(context.Background(), ev))

	assert.Equal(t, 1, good.count())
	assert.Equal(t, 1, h.Count())
	bad.mu.Lock()
	assert.True(t, bad.closed)
	bad.mu.Unlock()

	// the next round only sees the healthy connection
	assert.Equal(t, 1, h.Broadcast(context.Background(), ev))
}
