// AngelaMos | 2026
// entity.go

package account

import (
	"fmt"
	"regexp"
	"time"

	"github.com/angelamos/revue/internal/core"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

const (
	MaxUsernameLen = 150
	MaxEmailLen    = 254
)

// ReservedUsername collides with the self-service /users/me route.
const ReservedUsername = "me"

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

type Account struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Bio          string    `db:"bio"`
	Role         string    `db:"role"`
	IsStaff      bool      `db:"is_staff"`
	IsSuperuser  bool      `db:"is_superuser"`
	PasswordHash string    `db:"password_hash"`
	Confirmed    bool      `db:"confirmed"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IsAdmin evaluates the stored state on every call; staff and superuser
// flags are admin-equivalent.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin || a.IsStaff || a.IsSuperuser
}

func (a *Account) IsModerator() bool {
	return a.Role == RoleModerator
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleModerator || role == RoleAdmin
}

// ValidateUsername enforces the allowed-character pattern and the reserved
// "me" name.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required: %w", core.ErrInvalidInput)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf(
			"username exceeds %d characters: %w",
			MaxUsernameLen,
			core.ErrInvalidInput,
		)
	}
	if username == ReservedUsername {
		return fmt.Errorf(
			"username %q is reserved: %w",
			ReservedUsername,
			core.ErrInvalidInput,
		)
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf(
			"username may only contain letters, digits and @/./+/-/_: %w",
			core.ErrInvalidInput,
		)
	}
	return nil
}
