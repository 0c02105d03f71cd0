package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/dragdrop"
	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/session"
	"github.com/google/uuid"
)

// Workspace is one open lesson or mission: the session state plus the widget
// board and drag controller bound to it. Fields other than the immutable
// identifiers are accessed with the session lock held.
type Workspace struct {
	Session *session.Session
	Board   *render.Board
	Drag    *dragdrop.Controller
	UserID  string

	// Mission is nil for lesson sessions.
	Mission *models.Mission
	chapter int

	lastUsed atomic.Int64
}

func newWorkspace(lessonID, userID string, set models.QuestionSet, cfg EngineConfig, renderer *render.Renderer) *Workspace {
	s := session.New(uuid.NewString(), lessonID, set, session.Options{
		SingleOccupancy:    cfg.SingleOccupancy,
		MissingStartWindow: cfg.MissingStartWindow,
		Clock:              cfg.Clock,
	})
	ws := &Workspace{
		Session: s,
		Board:   render.NewBoard(s, renderer),
		Drag:    dragdrop.NewController(s),
		UserID:  userID,
	}
	ws.touch(s.Now())
	return ws
}

func (w *Workspace) ID() string { return w.Session.ID }

func (w *Workspace) IsMission() bool { return w.Mission != nil }

// Chapter returns the current chapter index of a mission session.
func (w *Workspace) Chapter() int { return w.chapter }

func (w *Workspace) touch(now time.Time) {
	w.lastUsed.Store(now.Unix())
}

// resetRound clears every per-question map and returns a mission to its first chapter.
// Callers hold the session lock.
func (w *Workspace) resetRound() {
	w.Session.Reset()
	w.Drag.Reset()
	w.Board.InvalidateAll()
	w.chapter = 0
}

// SessionRegistry owns every open workspace of the process.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Workspace
	clock    session.Clock
}

func NewSessionRegistry(clock session.Clock) *SessionRegistry {
	if clock == nil {
		clock = time.Now
	}
	return &SessionRegistry{
		sessions: make(map[string]*Workspace),
		clock:    clock,
	}
}

func (r *SessionRegistry) Add(ws *Workspace) {
	r.mu.Lock()
	r.sessions[ws.ID()] = ws
	r.mu.Unlock()
}

// Get returns the workspace of sessionID and marks it as used.
func (r *SessionRegistry) Get(sessionID string) (*Workspace, error) {
	r.mu.RLock()
	ws, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	ws.touch(r.clock())
	return ws, nil
}

func (r *SessionRegistry) Remove(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were dropped.
func (r *SessionRegistry) Sweep(maxIdle time.Duration) int {
	cutoff := r.clock().Add(-maxIdle).Unix()

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ws := range r.sessions {
		if ws.lastUsed.Load() < cutoff {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
