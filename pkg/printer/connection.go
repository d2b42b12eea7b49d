package printer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ConnectionStatus is the last known state of a printer link.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// connection is a cached live link.
type connection struct {
	transport Transport
	link      Link
	lastUsed  time.Time
}

// ConnectionInfo is a snapshot of one cache entry.
type ConnectionInfo struct {
	PrinterID string           `json:"printer_id"`
	Type      Transport        `json:"type"`
	Status    ConnectionStatus `json:"status"`
	LastUsed  time.Time        `json:"last_used,omitempty"`
	LastError string           `json:"last_error,omitempty"`
}

// ConnectionManager caches device links per printer id. A link is created on
// the first successful connect and evicted on any write failure. Calls for
// one printer are serialized; different printers proceed concurrently.
type ConnectionManager struct {
	connectors     map[Transport]Connector
	policies       map[Transport]ChunkPolicy
	connectTimeout time.Duration
	now            func() time.Time

	mu     sync.Mutex
	conns  map[string]*connection
	state  map[string]ConnectionInfo
	perDev map[string]*sync.Mutex
}

// ManagerOption configures a ConnectionManager.
type ManagerOption func(*ConnectionManager)

// WithChunkPolicy overrides the packet policy of one transport. A policy
// without a size keeps the default.
func WithChunkPolicy(t Transport, p ChunkPolicy) ManagerOption {
	return func(m *ConnectionManager) {
		if p.Size > 0 {
			m.policies[t] = p
		}
	}
}

// WithConnectTimeout bounds every connect attempt.
func WithConnectTimeout(d time.Duration) ManagerOption {
	return func(m *ConnectionManager) {
		m.connectTimeout = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *ConnectionManager) {
		m.now = now
	}
}

// NewConnectionManager creates a manager using the given connectors.
func NewConnectionManager(connectors map[Transport]Connector, opts ...ManagerOption) *ConnectionManager {
	m := &ConnectionManager{
		connectors:     make(map[Transport]Connector, len(connectors)),
		policies:       DefaultChunkPolicies(),
		connectTimeout: 10 * time.Second,
		now:            time.Now,
		conns:          make(map[string]*connection),
		state:          make(map[string]ConnectionInfo),
		perDev:         make(map[string]*sync.Mutex),
	}
	for t, c := range connectors {
		m.connectors[t] = c
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Supports reports whether t can be driven by this manager.
func (m *ConnectionManager) Supports(t Transport) bool {
	_, ok := m.connectors[t]
	return ok
}

// Connect opens and caches a link for t. It returns false on failure; the
// cause is logged and kept in the status snapshot.
func (m *ConnectionManager) Connect(ctx context.Context, t Target) bool {
	lock := m.deviceLock(t.ID)
	lock.Lock()
	defer lock.Unlock()

	if m.cached(t.ID) != nil {
		return true
	}
	return m.connectLocked(ctx, t) == nil
}

// Send writes data to the printer, connecting first when no link is cached.
// A write failure on a cached link evicts it, and one fresh connect and write
// are attempted. A call negotiates at most once: when the link was opened by
// this call, or the retry fails, the error is returned.
func (m *ConnectionManager) Send(ctx context.Context, t Target, data []byte) error {
	lock := m.deviceLock(t.ID)
	lock.Lock()
	defer lock.Unlock()

	conn := m.cached(t.ID)
	fresh := conn == nil
	if fresh {
		if err := m.connectLocked(ctx, t); err != nil {
			return err
		}
		conn = m.cached(t.ID)
	}

	err := WriteChunked(ctx, conn.link, data, m.policy(t.Transport))
	if err == nil {
		m.touch(t.ID)
		return nil
	}

	Logger().Warn("printer write failed, reconnecting",
		"printer_id", t.ID, "target", t.String(), "error", err)
	m.evict(t.ID, err)

	// A link negotiated by this call is not negotiated again.
	if fresh || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("printer: write to %s: %w", t, err)
	}

	if cerr := m.connectLocked(ctx, t); cerr != nil {
		return fmt.Errorf("printer: reconnect after write failure (%v): %w", err, cerr)
	}
	conn = m.cached(t.ID)
	if err := WriteChunked(ctx, conn.link, data, m.policy(t.Transport)); err != nil {
		m.evict(t.ID, err)
		return fmt.Errorf("printer: write to %s after reconnect: %w", t, err)
	}
	m.touch(t.ID)
	return nil
}

// Disconnect closes and forgets the link for id. Close errors are ignored.
func (m *ConnectionManager) Disconnect(id string) {
	lock := m.deviceLock(id)
	lock.Lock()
	defer lock.Unlock()

	m.evict(id, nil)
}

// ClearAll closes every cached link.
func (m *ConnectionManager) ClearAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.conns))
	for id := range m.conns {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Disconnect(id)
	}
}

// IsConnected reports whether a live link is cached for id.
func (m *ConnectionManager) IsConnected(id string) bool {
	return m.cached(id) != nil
}

// Status returns the snapshot for id.
func (m *ConnectionManager) Status(id string) ConnectionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.state[id]; ok {
		return info
	}
	return ConnectionInfo{PrinterID: id, Status: StatusDisconnected}
}

// Connections returns snapshots of all known printers ordered by id.
func (m *ConnectionManager) Connections() []ConnectionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ConnectionInfo, 0, len(m.state))
	for _, info := range m.state {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrinterID < out[j].PrinterID })
	return out
}

func (m *ConnectionManager) connectLocked(ctx context.Context, t Target) error {
	connector, ok := m.connectors[t.Transport]
	if !ok {
		err := ErrNoConnector
		if t.Transport == TransportNetwork || t.Transport == TransportSystem {
			err = ErrUnsupportedTransport
		}
		m.setState(t, StatusError, err)
		return fmt.Errorf("%w: %s", err, t.Transport)
	}

	m.setState(t, StatusConnecting, nil)

	cctx := ctx
	if m.connectTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, m.connectTimeout)
		defer cancel()
	}

	link, err := connector.Connect(cctx, t)
	if err != nil {
		Logger().Error("printer connect failed", "printer_id", t.ID, "target", t.String(), "error", err)
		m.setState(t, StatusError, err)
		return fmt.Errorf("printer: connect %s: %w", t, err)
	}

	m.mu.Lock()
	m.conns[t.ID] = &connection{transport: t.Transport, link: link, lastUsed: m.now()}
	m.state[t.ID] = ConnectionInfo{
		PrinterID: t.ID,
		Type:      t.Transport,
		Status:    StatusConnected,
		LastUsed:  m.now(),
	}
	m.mu.Unlock()

	Logger().Info("printer connected", "printer_id", t.ID, "target", t.String())
	return nil
}

func (m *ConnectionManager) evict(id string, cause error) {
	m.mu.Lock()
	conn := m.conns[id]
	delete(m.conns, id)
	info, ok := m.state[id]
	if ok {
		info.Status = StatusDisconnected
		if cause != nil {
			info.Status = StatusError
			info.LastError = cause.Error()
		}
		m.state[id] = info
	}
	m.mu.Unlock()

	if conn != nil {
		if err := conn.link.Close(); err != nil {
			Logger().Debug("printer close failed", "printer_id", id, "error", err)
		}
	}
}

func (m *ConnectionManager) cached(id string) *connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns[id]
}

func (m *ConnectionManager) touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if conn, ok := m.conns[id]; ok {
		conn.lastUsed = now
	}
	if info, ok := m.state[id]; ok {
		info.LastUsed = now
		m.state[id] = info
	}
}

func (m *ConnectionManager) setState(t Target, status ConnectionStatus, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := m.state[t.ID]
	info.PrinterID = t.ID
	info.Type = t.Transport
	info.Status = status
	info.LastError = ""
	if err != nil {
		info.LastError = err.Error()
	}
	m.state[t.ID] = info
}

func (m *ConnectionManager) policy(t Transport) ChunkPolicy {
	return m.policies[t]
}

func (m *ConnectionManager) deviceLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.perDev[id]
	if !ok {
		l = &sync.Mutex{}
		m.perDev[id] = l
	}
	return l
}
