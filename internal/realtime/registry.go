// Package realtime holds the in-process websocket fan-out: a registry of live
// connections keyed by user identity, an event router that builds and
// delivers domain events, an optional NATS relay for multi-instance
// deployments and the gorilla/websocket transport.
//
// Delivery is best-effort. Nothing here queues or retries; durable state
// lives in the repo package and clients recover missed events by querying it.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Conn is a live duplex handle. Send must not block indefinitely; a returned
// error means the handle is dead and should be dropped.
type Conn interface {
	Send(payload []byte) error
	Close() error
}

// Registry maps a user identity to at most one live Conn.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
	log   zerolog.Logger
}

// NewRegistry returns an empty registry logging through log.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		conns: make(map[string]Conn),
		log:   log.With().Str("component", "registry").Logger(),
	}
}

// Connect registers c for userID, replacing any previous handle. The
// replaced handle (nil if none) is returned so the caller can close it; it
// will not receive further deliveries.
func (r *Registry) Connect(userID string, c Conn) Conn {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = c
	n := len(r.conns)
	r.mu.Unlock()

	wsActive.Set(float64(n))
	if prev != nil && prev != c {
		r.log.Debug().Str("user", userID).Msg("connection replaced")
		return prev
	}
	return nil
}

// Disconnect removes userID only if the stored handle is c. A stale
// disconnect from a replaced handle is a no-op and returns false.
func (r *Registry) Disconnect(userID string, c Conn) bool {
	r.mu.Lock()
	cur, ok := r.conns[userID]
	removed := ok && cur == c
	if removed {
		delete(r.conns, userID)
	}
	n := len(r.conns)
	r.mu.Unlock()

	if removed {
		wsActive.Set(float64(n))
	}
	return removed
}

// Online reports whether userID has a registered handle.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	_, ok := r.conns[userID]
	r.mu.RUnlock()
	return ok
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// SendTo serializes payload and transmits it to userID. It returns false when
// the user is offline, when serialization fails, or when the transmit fails;
// in the last case the handle is dropped.
func (r *Registry) SendTo(userID string, payload any) bool {
	b, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Str("user", userID).Msg("marshal payload")
		return false
	}
	return r.SendRaw(userID, b)
}

// SendRaw transmits pre-serialized bytes to userID with SendTo semantics.
func (r *Registry) SendRaw(userID string, b []byte) bool {
	r.mu.RLock()
	c, ok := r.conns[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if err := c.Send(b); err != nil {
		r.log.Warn().Err(err).Str("user", userID).Msg("delivery failed; dropping connection")
		if r.Disconnect(userID, c) {
			_ = c.Close()
		}
		return false
	}
	return true
}

// Broadcast serializes payload once and sends it to every registered
// handle. Sends happen outside the lock; failed handles are dropped. It
// returns the number of successful deliveries.
func (r *Registry) Broadcast(payload any) int {
	b, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Msg("marshal broadcast payload")
		return 0
	}
	return r.BroadcastRaw(b)
}

// BroadcastRaw is Broadcast for pre-serialized bytes.
func (r *Registry) BroadcastRaw(b []byte) int {
	type entry struct {
		user string
		conn Conn
	}
	r.mu.RLock()
	snap := make([]entry, 0, len(r.conns))
	for u, c := range r.conns {
		snap = append(snap, entry{u, c})
	}
	r.mu.RUnlock()

	delivered := 0
	for _, e := range snap {
		if err := e.conn.Send(b); err != nil {
			r.log.Warn().Err(err).Str("user", e.user).Msg("broadcast delivery failed; dropping connection")
			if r.Disconnect(e.user, e.conn) {
				_ = e.conn.Close()
			}
			continue
		}
		delivered++
	}
	return delivered
}

// CloseAll removes and closes every handle. Used on shutdown, since
// http.Server.Shutdown does not wait for hijacked connections.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	snap := r.conns
	r.conns = make(map[string]Conn)
	r.mu.Unlock()

	wsActive.Set(0)
	for _, c := range snap {
		_ = c.Close()
	}
	return len(snap)
}
