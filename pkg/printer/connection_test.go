package printer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLink struct {
	mu      sync.Mutex
	packets [][]byte
	failOn  int // fail the n-th packet (1-based), 0 never
	written int
	closed  bool
}

func (l *fakeLink) WritePacket(_ context.Context, p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.written++
	if l.failOn > 0 && l.written == l.failOn {
		return errors.New("endpoint stalled")
	}
	l.packets = append(l.packets, append([]byte(nil), p...))
	return nil
}

func (l *fakeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

type fakeConnector struct {
	mu      sync.Mutex
	calls   int
	links   []*fakeLink
	next    func(call int) (*fakeLink, error)
	targets []Target
}

func (c *fakeConnector) Connect(_ context.Context, t Target) (Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.targets = append(c.targets, t)
	l, err := c.next(c.calls)
	if err != nil {
		return nil, err
	}
	c.links = append(c.links, l)
	return l, nil
}

func (c *fakeConnector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var usbTarget = Target{ID: "counter-1", Transport: TransportUSB, VendorID: 0x0416, ProductID: 0x5011}

func healthy(int) (*fakeLink, error) { return &fakeLink{}, nil }

func TestConnectCachesLink(t *testing.T) {
	fc := &fakeConnector{next: healthy}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})

	assert.True(t, m.Connect(context.Background(), usbTarget))
	assert.True(t, m.Connect(context.Background(), usbTarget))
	assert.Equal(t, 1, fc.Calls())
	assert.True(t, m.IsConnected(usbTarget.ID))
	assert.Equal(t, StatusConnected, m.Status(usbTarget.ID).Status)
}

func TestConnectFailureReturnsFalse(t *testing.T) {
	fc := &fakeConnector{next: func(int) (*fakeLink, error) { return nil, ErrDeviceNotFound }}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})

	assert.False(t, m.Connect(context.Background(), usbTarget))
	assert.False(t, m.IsConnected(usbTarget.ID))
	status := m.Status(usbTarget.ID)
	assert.Equal(t, StatusError, status.Status)
	assert.Contains(t, status.LastError, "device not found")
}

func TestSendChunksByTransport(t *testing.T) {
	fc := &fakeConnector{next: healthy}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})

	data := make([]byte, 150)
	require.NoError(t, m.Send(context.Background(), usbTarget, data))

	link := fc.links[0]
	require.Len(t, link.packets, 3)
	assert.Len(t, link.packets[0], 64)
	assert.Len(t, link.packets[1], 64)
	assert.Len(t, link.packets[2], 22)
}

func TestCustomChunkPolicy(t *testing.T) {
	fc := &fakeConnector{next: healthy}
	m := NewConnectionManager(map[Transport]Connector{TransportBluetooth: fc},
		WithChunkPolicy(TransportBluetooth, ChunkPolicy{Size: 50}))

	bt := Target{ID: "kitchen", Transport: TransportBluetooth, BluetoothName: "MTP-II"}
	require.NoError(t, m.Send(context.Background(), bt, make([]byte, 120)))
	assert.Len(t, fc.links[0].packets, 3)
}

func TestWriteFailureEvictsAndReconnectsOnce(t *testing.T) {
	fc := &fakeConnector{next: func(call int) (*fakeLink, error) {
		if call == 1 {
			return &fakeLink{failOn: 1}, nil
		}
		return &fakeLink{}, nil
	}}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})
	require.True(t, m.Connect(context.Background(), usbTarget))

	require.NoError(t, m.Send(context.Background(), usbTarget, []byte("bill")))
	assert.Equal(t, 2, fc.Calls())
	assert.True(t, fc.links[0].closed, "stale link must be closed")
	assert.Equal(t, [][]byte{[]byte("bill")}, fc.links[1].packets)
	assert.True(t, m.IsConnected(usbTarget.ID))
}

func TestEvictedEntryForcesFreshConnect(t *testing.T) {
	fc := &fakeConnector{next: func(call int) (*fakeLink, error) {
		switch call {
		case 1:
			return &fakeLink{failOn: 1}, nil
		case 2:
			return nil, errors.New("device unplugged")
		}
		return &fakeLink{}, nil
	}}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})

	require.True(t, m.Connect(context.Background(), usbTarget))

	err := m.Send(context.Background(), usbTarget, []byte("bill"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
	assert.False(t, m.IsConnected(usbTarget.ID))
	assert.Equal(t, 2, fc.Calls())

	require.NoError(t, m.Send(context.Background(), usbTarget, []byte("again")))
	assert.Equal(t, 3, fc.Calls())
}

func TestSecondWriteFailureIsTerminal(t *testing.T) {
	fc := &fakeConnector{next: func(int) (*fakeLink, error) {
		return &fakeLink{failOn: 1}, nil
	}}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})
	require.True(t, m.Connect(context.Background(), usbTarget))

	err := m.Send(context.Background(), usbTarget, []byte("bill"))
	require.Error(t, err)
	assert.Equal(t, 2, fc.Calls())
	assert.False(t, m.IsConnected(usbTarget.ID))
}

func TestColdSendNegotiatesOnlyOnce(t *testing.T) {
	fc := &fakeConnector{next: func(int) (*fakeLink, error) {
		return &fakeLink{failOn: 1}, nil
	}}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})

	err := m.Send(context.Background(), usbTarget, []byte("bill"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint stalled")
	assert.Equal(t, 1, fc.Calls())
	assert.False(t, m.IsConnected(usbTarget.ID))
	assert.True(t, fc.links[0].closed)
}

func TestUnsupportedTransports(t *testing.T) {
	m := NewConnectionManager(nil)

	err := m.Send(context.Background(), Target{ID: "net", Transport: TransportNetwork}, []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedTransport)

	err = m.Send(context.Background(), usbTarget, []byte("x"))
	assert.ErrorIs(t, err, ErrNoConnector)
	assert.False(t, m.Supports(TransportUSB))
}

func TestDisconnectAndClearAll(t *testing.T) {
	fc := &fakeConnector{next: healthy}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc})

	other := usbTarget
	other.ID = "counter-2"
	require.True(t, m.Connect(context.Background(), usbTarget))
	require.True(t, m.Connect(context.Background(), other))

	m.Disconnect(usbTarget.ID)
	assert.False(t, m.IsConnected(usbTarget.ID))
	assert.True(t, m.IsConnected(other.ID))
	assert.Equal(t, StatusDisconnected, m.Status(usbTarget.ID).Status)

	m.ClearAll()
	assert.False(t, m.IsConnected(other.ID))
	for _, l := range fc.links {
		assert.True(t, l.closed)
	}
	assert.Len(t, m.Connections(), 2)
}

func TestSendUpdatesLastUsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fc := &fakeConnector{next: healthy}
	m := NewConnectionManager(map[Transport]Connector{TransportUSB: fc},
		WithClock(func() time.Time { return now }))

	require.NoError(t, m.Send(context.Background(), usbTarget, []byte("a")))
	now = now.Add(time.Minute)
	require.NoError(t, m.Send(context.Background(), usbTarget, []byte("b")))

	assert.Equal(t, now, m.Status(usbTarget.ID).LastUsed)
}

type blockingLink struct {
	fakeLink
	active  *gauge
	maxSeen *gauge
}

type gauge struct {
	mu sync.Mutex
	n  int
}

func (c *gauge) add(d int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += d
	return c.n
}

func (c *gauge) max(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v > c.n {
		c.n = v
	}
}

func (l *blockingLink) WritePacket(ctx context.Context, p []byte) error {
	cur := l.active.add(1)
	l.maxSeen.max(cur)
	time.Sleep(5 * time.Millisecond)
	l.active.add(-1)
	return l.fakeLink.WritePacket(ctx, p)
}

func TestSendSerializesPerPrinter(t *testing.T) {
	active, maxSeen := &gauge{}, &gauge{}
	link := &blockingLink{active: active, maxSeen: maxSeen}
	m := NewConnectionManager(map[Transport]Connector{
		TransportUSB: ConnectorFunc(func(context.Context, Target) (Link, error) { return link, nil }),
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Send(context.Background(), usbTarget, []byte("kot")))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen.n)
	assert.Len(t, link.packets, 8)
}
