package simulation

import "context"

// SessionStore persists simulation sessions.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	SetStatus(ctx context.Context, sessionID string, status Status) error
}
