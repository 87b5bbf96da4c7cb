// Package directory exposes the user-profile lookup capability the ledger
// consumes. The ledger never owns user records; it resolves counterpart ids
// to display profiles through this interface, which also backs the
// add-participant search box.
package directory

import (
	"context"

	"github.com/splitpal/splitpal/internal/models"
)

// minQueryLen is the shortest query Search will act on; anything shorter
// returns no results rather than scanning the whole user table.
const minQueryLen = 2

// Directory resolves user ids to public profiles and supports fuzzy search
// by name or email.
type Directory interface {
	// Lookup returns the profile for the given user id, or an error
	// wrapping storage.ErrNotFound.
	Lookup(ctx context.Context, userID string) (models.Profile, error)

	// Search finds users by name or email substring, excluding the caller.
	// Queries shorter than two characters yield an empty result.
	Search(ctx context.Context, query, excludingID string) ([]models.Profile, error)
}

// UserReader is the slice of the store the directory needs.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SearchUsers(ctx context.Context, query, excludeID string) ([]models.User, error)
}

// StoreDirectory serves directory lookups from the user store.
type StoreDirectory struct {
	users UserReader
}

// New creates a directory backed by the given user store.
func New(users UserReader) *StoreDirectory {
	return &StoreDirectory{users: users}
}

func (d *StoreDirectory) Lookup(ctx context.Context, userID string) (models.Profile, error) {
	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}

func (d *StoreDirectory) Search(ctx context.Context, query, excludingID string) ([]models.Profile, error) {
	if len(query) < minQueryLen {
		return []models.Profile{}, nil
	}
	users, err := d.users.SearchUsers(ctx, query, excludingID)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.Profile, len(users))
	for i, u := range users {
		profiles[i] = u.Profile()
	}
	return profiles, nil
}

var _ Directory = (*StoreDirectory)(nil)
