// Package oplock provides non-blocking advisory mutual exclusion for
// document operations. A lock is identified by document id, operation kind,
// and an optional paragraph id.
//
// TryAcquire never waits: a held key means "operation already in progress"
// and the caller drops its request. Locks are leaf-level; holders must not
// acquire a second lock.
package oplock

import "sync"

// Kind names a class of operation that must not run concurrently with
// itself on the same key.
type Kind string

const (
	// KindCorrect covers the full-document and selection correction
	// workflows, which share the document-level key.
	KindCorrect Kind = "correct"
	// KindResolve covers accept/reject/dismiss on a single paragraph.
	KindResolve Kind = "resolve"
	// KindBulkResolve covers accept-all and reject-all.
	KindBulkResolve Kind = "bulk-resolve"
)

// Key identifies one lock. ParagraphID is empty for document-scoped
// operations.
type Key struct {
	DocumentID  string
	Kind        Kind
	ParagraphID string
}

// Locker tracks held keys. The zero value is not usable; call New.
type Locker struct {
	mu   sync.Mutex
	held map[Key]struct{}
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{held: make(map[Key]struct{})}
}

// TryAcquire claims the key if it is free. It returns false immediately if
// the key is already held; there is no queueing.
func (l *Locker) TryAcquire(key Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

// Release frees the key. Releasing a key that is not held is a no-op, so
// callers can release unconditionally in deferred cleanup.
func (l *Locker) Release(key Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

// Held reports whether the key is currently held. It is a read-only probe,
// not an acquisition.
func (l *Locker) Held(key Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// ReleaseDocument frees every key belonging to the document. Used when a
// document is confirmed closed.
func (l *Locker) ReleaseDocument(documentID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.held {
		if key.DocumentID == documentID {
			delete(l.held, key)
		}
	}
}
