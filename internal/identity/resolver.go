// Package identity reconciles the different identifiers a traveler can
// arrive with. Tokens may carry an internal user id, an auth-provider id or
// an email, while group records store whichever form was current when they
// were written. Authorization compares against every form the caller is
// known by.
package identity

import (
	"context"
	"strings"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
)

// Identity is a caller as presented (Raw) and as resolved. Canonical is the
// lower-cased email when the user is known. Aliases holds the user's other
// ids, so records keyed by internal id still match a caller who arrived
// with an email.
type Identity struct {
	Raw       string
	Canonical string
	Aliases   []string
}

// Matches reports whether id names this identity in any form.
// Comparison ignores case so stored emails match regardless of casing.
func (i Identity) Matches(id string) bool {
	if id == "" {
		return false
	}
	for _, form := range i.Forms() {
		if strings.EqualFold(id, form) {
			return true
		}
	}
	return false
}

// Forms returns the distinct identifiers, raw first.
func (i Identity) Forms() []string {
	forms := []string{i.Raw}
	for _, f := range append([]string{i.Canonical}, i.Aliases...) {
		if f == "" {
			continue
		}
		dup := false
		for _, seen := range forms {
			if strings.EqualFold(seen, f) {
				dup = true
				break
			}
		}
		if !dup {
			forms = append(forms, f)
		}
	}
	return forms
}

type Resolver struct {
	users repository.UserRepository
}

func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve never fails. A lookup error or a miss leaves Canonical equal to
// Raw.
func (r *Resolver) Resolve(ctx context.Context, raw string) Identity {
	id := Identity{Raw: raw, Canonical: raw}

	user := r.lookup(ctx, raw)
	if user == nil {
		return id
	}
	if user.Email != "" {
		id.Canonical = strings.ToLower(user.Email)
	}
	id.Aliases = append(id.Aliases, user.ID)
	if user.ExternalID != nil {
		id.Aliases = append(id.Aliases, *user.ExternalID)
	}
	return id
}

// DisplayName returns the user's name, or raw when it cannot be resolved.
func (r *Resolver) DisplayName(ctx context.Context, raw string) string {
	if user := r.lookup(ctx, raw); user != nil && user.Name != "" {
		return user.Name
	}
	return raw
}

// Lookup exposes the same id -> external id -> email search for callers
// that need the full record.
func (r *Resolver) Lookup(ctx context.Context, raw string) *repository.User {
	return r.lookup(ctx, raw)
}

func (r *Resolver) lookup(ctx context.Context, raw string) *repository.User {
	raw = strings.TrimSpace(raw)
	if raw == "" || r.users == nil {
		return nil
	}

	finders := []struct {
		by   string
		find func(context.Context, string) (*repository.User, error)
	}{
		{"id", r.users.FindByID},
		{"external_id", r.users.FindByExternalID},
		{"email", r.users.FindByEmail},
	}

	for _, f := range finders {
		user, err := f.find(ctx, raw)
		if err != nil {
			logger.Component("identity").WithError(err).
				WithField("by", f.by).
				Warn("user lookup failed")
			continue
		}
		if user != nil {
			return user
		}
	}
	return nil
}
