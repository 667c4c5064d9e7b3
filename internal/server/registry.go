package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/playperu/blindtest/internal/game"
	"github.com/playperu/blindtest/internal/metrics"
)

var (
	errSessionNotFound = errors.New("session not found")
	errNoSession       = errors.New("no valid session")
)

// LiveSession is a game.Session held in memory. Every call into game must
// hold mu.
type LiveSession struct {
	ID string

	mu       sync.Mutex
	game     *game.Session
	digest   [blake2b.Size256]byte
	lastSeen atomic.Int64
	stop     context.CancelFunc
}

// stopCountdown cancels the running countdown driver, if any. Caller holds mu.
func (ls *LiveSession) stopCountdown() {
	if ls.stop != nil {
		ls.stop()
		ls.stop = nil
	}
}

// Registry owns every live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*LiveSession
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*LiveSession),
		now:      time.Now,
	}
}

// Create registers g under a fresh ID and returns the session with its bearer
// token. Only the token's digest is kept.
func (r *Registry) Create(g *game.Session) (*LiveSession, string) {
	token := newToken()
	ls := &LiveSession{
		ID:     uuid.NewString(),
		game:   g,
		digest: blake2b.Sum256([]byte(token)),
	}
	ls.lastSeen.Store(r.now().UnixNano())

	r.mu.Lock()
	r.sessions[ls.ID] = ls
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return ls, token
}

func (r *Registry) Get(id string) (*LiveSession, error) {
	r.mu.RLock()
	ls, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errSessionNotFound
	}
	return ls, nil
}

// Authenticate resolves id and checks token against its digest. A successful
// check counts as activity for idle expiry.
func (r *Registry) Authenticate(id, token string) (*LiveSession, error) {
	ls, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errNoSession
	}
	digest := blake2b.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(digest[:], ls.digest[:]) != 1 {
		return nil, errNoSession
	}
	ls.lastSeen.Store(r.now().UnixNano())
	return ls, nil
}

// Delete removes the session and stops its countdown.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return false
	}

	ls.mu.Lock()
	ls.stopCountdown()
	ls.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return true
}

// Sweep deletes sessions with no authenticated activity for longer than idle
// and returns their IDs.
func (r *Registry) Sweep(idle time.Duration) []string {
	cutoff := r.now().Add(-idle).UnixNano()

	r.mu.RLock()
	var stale []string
	for id, ls := range r.sessions {
		if ls.lastSeen.Load() < cutoff {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	var removed []string
	for _, id := range stale {
		if r.Delete(id) {
			removed = append(removed, id)
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
