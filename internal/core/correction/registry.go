package correction

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/redlinehq/redline/internal/core/eventbus"
	"github.com/redlinehq/redline/internal/core/logging"
	"github.com/redlinehq/redline/internal/core/oplock"
	"github.com/redlinehq/redline/internal/provider"
)

// Registry owns one Session per open document identity. Sessions are
// created lazily on first access and persist while a document is merely
// hidden, so background correction resumes where it left off. A session is
// discarded only when its document is confirmed closed.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	provider  provider.Provider
	locks     *oplock.Locker
	busBuffer int
	log       zerolog.Logger
}

// NewRegistry creates a registry. busBuffer sizes each session's event bus.
func NewRegistry(prov provider.Provider, busBuffer int) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		provider:  prov,
		locks:     oplock.New(),
		busBuffer: busBuffer,
		log:       logging.Component("registry"),
	}
}

// Session returns the document's session, creating it on first access. The
// applier is only used when the session is created; an existing session
// keeps its original applier.
func (r *Registry) Session(documentID string, applier Applier) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[documentID]; ok {
		return s
	}

	bus := eventbus.New(r.busBuffer)
	s := NewSession(documentID, applier, r.provider, bus, r.locks)
	r.sessions[documentID] = s

	r.log.Debug().Str("document_id", documentID).Str("session_id", s.ID()).Msg("session created")
	bus.PublishSessionCreated(eventbus.SessionCreatedPayload{SessionID: s.ID(), DocumentID: documentID})
	return s
}

// Peek returns the document's session without creating one.
func (r *Registry) Peek(documentID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[documentID]
	return s, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close discards the document's session and frees its locks. Call only
// when the document is confirmed closed, never on mere visibility loss.
// Returns false if no session exists.
func (r *Registry) Close(documentID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[documentID]
	if ok {
		delete(r.sessions, documentID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	r.locks.ReleaseDocument(documentID)
	s.bus.PublishSessionClosed(eventbus.SessionClosedPayload{SessionID: s.ID(), DocumentID: documentID})
	s.bus.Drain()

	r.log.Debug().Str("document_id", documentID).Msg("session closed")
	return true
}
