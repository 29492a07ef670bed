package sessions

import "context"

// Repo defines the session store.
type Repo interface {
	// Create stores a new session and assigns its ID and initial version.
	Create(ctx context.Context, session *Session) (*Session, error)

	// Save updates an existing session including its roster. The session's Version must match
	// the stored one, otherwise errors.ErrStaleVersion is returned and nothing is written.
	// The returned session carries the new version.
	Save(ctx context.Context, session *Session) (*Session, error)

	// GetByID returns an error wrapping errors.ErrNotFound for unknown IDs
	GetByID(ctx context.Context, id int64) (*Session, error)

	// Delete removes a session and its roster
	Delete(ctx context.Context, id int64) error

	// List returns every session ordered by ID
	List(ctx context.Context) ([]*Session, error)
}
