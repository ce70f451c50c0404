// AngelaMos | 2026
// policy.go

package policy

import (
	"fmt"

	"github.com/angelamos/revue/internal/core"
)

const (
	roleModerator = "moderator"
	roleAdmin     = "admin"
)

// Actor is a point-in-time snapshot of the caller, built by the auth
// middleware from the account's current stored state on every request.
// The zero value is an anonymous caller.
type Actor struct {
	ID          string
	Username    string
	Role        string
	IsStaff     bool
	IsSuperuser bool
}

func (a Actor) Authenticated() bool {
	return a.ID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == roleAdmin || a.IsStaff || a.IsSuperuser
}

func (a Actor) IsModerator() bool {
	return a.Role == roleModerator
}

// CanWriteCatalog gates mutations on categories, genres and titles.
// Reads are open to everyone and never consult policy.
func CanWriteCatalog(a Actor) error {
	if !a.Authenticated() {
		return fmt.Errorf("catalog write: %w", core.ErrUnauthorized)
	}
	if !a.IsAdmin() {
		return fmt.Errorf("catalog write: %w", core.ErrForbidden)
	}
	return nil
}

// CanCreateAuthored gates creation of reviews and comments.
func CanCreateAuthored(a Actor) error {
	if !a.Authenticated() {
		return fmt.Errorf("authored write: %w", core.ErrUnauthorized)
	}
	return nil
}

// CanModifyAuthored gates edits and deletes of a review or comment owned
// by authorID. Moderators may act on others' content; admins on anything.
func CanModifyAuthored(a Actor, authorID string) error {
	if !a.Authenticated() {
		return fmt.Errorf("authored modify: %w", core.ErrUnauthorized)
	}
	if a.ID == authorID || a.IsModerator() || a.IsAdmin() {
		return nil
	}
	return fmt.Errorf("authored modify: %w", core.ErrForbidden)
}

// CanAdministerAccounts gates the account administration surface.
func CanAdministerAccounts(a Actor) error {
	if !a.Authenticated() {
		return fmt.Errorf("account admin: %w", core.ErrUnauthorized)
	}
	if !a.IsAdmin() {
		return fmt.Errorf("account admin: %w", core.ErrForbidden)
	}
	return nil
}
