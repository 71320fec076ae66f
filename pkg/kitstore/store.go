// Package kitstore persists per-user brand kits behind a pluggable Store
// interface with file, Redis, and MongoDB backends.
package kitstore

import (
	"context"
	"time"

	"github.com/matzehuels/brandkit/pkg/brand"
)

// DefaultTimeout bounds a single load or save round trip.
const DefaultTimeout = 10 * time.Second

// Store loads and saves a user's brand kit.
//
// Load returns KIT_NOT_FOUND when no kit exists for the user. Save replaces
// the user's kit wholesale.
type Store interface {
	Load(ctx context.Context, userID string) (*brand.Config, error)
	Save(ctx context.Context, userID string, cfg *brand.Config) error
	Close() error
}
