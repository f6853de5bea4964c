package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
)

// failingUsers errors on every lookup.
type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) FindByID(context.Context, string) (*repository.User, error) {
	return nil, errors.New("connection refused")
}

func (failingUsers) FindByExternalID(context.Context, string) (*repository.User, error) {
	return nil, errors.New("connection refused")
}

func (failingUsers) FindByEmail(context.Context, string) (*repository.User, error) {
	return nil, errors.New("connection refused")
}

func seededUsers(t *testing.T) (repository.UserRepository, *repository.User) {
	t.Helper()
	users := repository.NewInMemoryUserRepository()
	ext := "auth0|42"
	user := &repository.User{Email: "Priya@Example.com", Name: "Priya", ExternalID: &ext}
	require.NoError(t, users.Create(context.Background(), user))
	return users, user
}

func TestResolve_ByEveryIdentifierForm(t *testing.T) {
	users, user := seededUsers(t)
	r := NewResolver(users)
	ctx := context.Background()

	for _, raw := range []string{user.ID, "auth0|42", "priya@example.com", "PRIYA@example.com"} {
		id := r.Resolve(ctx, raw)
		assert.Equal(t, raw, id.Raw)
		assert.Equal(t, "priya@example.com", id.Canonical, raw)
	}
}

func TestResolve_CarriesEveryKnownForm(t *testing.T) {
	users, user := seededUsers(t)
	id := NewResolver(users).Resolve(context.Background(), "priya@example.com")

	assert.Equal(t, []string{"priya@example.com", user.ID, "auth0|42"}, id.Forms())
	assert.True(t, id.Matches(user.ID))
	assert.True(t, id.Matches("AUTH0|42"))
}

func TestResolve_UnknownFallsBackToRaw(t *testing.T) {
	users, _ := seededUsers(t)
	id := NewResolver(users).Resolve(context.Background(), "nobody")

	assert.Equal(t, Identity{Raw: "nobody", Canonical: "nobody"}, id)
	assert.Equal(t, []string{"nobody"}, id.Forms())
}

func TestResolve_LookupErrorsAreNotFatal(t *testing.T) {
	r := NewResolver(failingUsers{})

	id := r.Resolve(context.Background(), "u-1")
	assert.Equal(t, "u-1", id.Canonical)
	assert.Equal(t, "u-1", r.DisplayName(context.Background(), "u-1"))
	assert.Nil(t, r.Lookup(context.Background(), "u-1"))
}

func TestIdentity_Matches(t *testing.T) {
	id := Identity{Raw: "u-1", Canonical: "priya@example.com"}

	assert.True(t, id.Matches("u-1"))
	assert.True(t, id.Matches("Priya@Example.com"))
	assert.False(t, id.Matches("someone@example.com"))
	assert.False(t, id.Matches(""))
	assert.Equal(t, []string{"u-1", "priya@example.com"}, id.Forms())
}

func TestDisplayName(t *testing.T) {
	users, user := seededUsers(t)
	r := NewResolver(users)

	assert.Equal(t, "Priya", r.DisplayName(context.Background(), user.ID))
	assert.Equal(t, "ghost@example.com", r.DisplayName(context.Background(), "ghost@example.com"))
}
