package profile

import "context"

// Store persists the singleton BusinessProfile. Load substitutes defaults
// for a missing or corrupt record and only surfaces infrastructure errors
// (unreachable backend, unreadable file).
type Store interface {
	Load(ctx context.Context) (*BusinessProfile, error)
	Save(ctx context.Context, p *BusinessProfile) error
}
