package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/storage"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return user, nil
}

func (f fakeUsers) SearchUsers(_ context.Context, query, excludeID string) ([]models.User, error) {
	var users []models.User
	for id, u := range f {
		if id == excludeID {
			continue
		}
		if strings.Contains(u.Name, query) || strings.Contains(u.Email, query) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func TestLookup(t *testing.T) {
	dir := New(fakeUsers{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com", PasswordHash: "secret"},
	})

	profile, err := dir.Lookup(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if profile.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", profile.Name)
	}

	if _, err := dir.Lookup(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Lookup(missing) = %v, want ErrNotFound", err)
	}
}

func TestSearchMinimumQueryLength(t *testing.T) {
	dir := New(fakeUsers{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com"},
	})

	for _, query := range []string{"", "a"} {
		profiles, err := dir.Search(context.Background(), query, "")
		if err != nil {
			t.Fatalf("Search(%q) error = %v", query, err)
		}
		if len(profiles) != 0 {
			t.Errorf("Search(%q) = %+v, want empty", query, profiles)
		}
	}

	profiles, err := dir.Search(context.Background(), "Ali", "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("Search(Ali) returned %d profiles, want 1", len(profiles))
	}
}
