package correction

import "errors"

var (
	// ErrBusy means a conflicting operation currently holds the relevant
	// lock. The caller's action is dropped, not queued; this is an
	// expected signal, not a failure.
	ErrBusy = errors.New("operation already in progress")

	// ErrNoDocument means the session has not segmented a document yet.
	ErrNoDocument = errors.New("no document loaded in session")

	// ErrOverlap means a selection collides with a paragraph that is
	// mid-flight or awaiting resolution.
	ErrOverlap = errors.New("selection overlaps an active paragraph")
)
