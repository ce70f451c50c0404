// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/policy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*Account, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Create provisions an account through the admin path; the role is honored
// and an optional initial password may be set.
func (s *Service) Create(
	ctx context.Context,
	req CreateAccountRequest,
) (*Account, error) {
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"create account: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	acc := &Account{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
		Confirmed: true,
	}

	if req.Password != nil {
		hash, err := core.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		acc.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetOrCreate backs sign-up. An exact (username, email) match returns the
// existing account so a lost confirmation code can be re-requested; a
// partial match means the username or email belongs to someone else.
func (s *Service) GetOrCreate(
	ctx context.Context,
	username, email string,
) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	email = strings.ToLower(email)

	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		if existing.Email == email {
			return existing, nil
		}
		return nil, fmt.Errorf(
			"username %q is taken: %w",
			username,
			core.ErrDuplicateKey,
		)
	}
	if !isNotFound(err) {
		return nil, err
	}

	_, err = s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf(
			"email %q is taken: %w",
			email,
			core.ErrDuplicateKey,
		)
	}
	if !isNotFound(err) {
		return nil, err
	}

	acc := &Account{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Role:     RoleUser,
	}

	// The unique constraints on username/email close the lookup-then-insert
	// race; Create remaps the violation to ErrDuplicateKey.
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) UpdateByUsername(
	ctx context.Context,
	username string,
	req UpdateAccountRequest,
) (*Account, error) {
	acc, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		if err := ValidateUsername(*req.Username); err != nil {
			return nil, err
		}
		acc.Username = *req.Username
	}
	if req.Email != nil {
		acc.Email = strings.ToLower(*req.Email)
	}
	if req.FirstName != nil {
		acc.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		acc.LastName = *req.LastName
	}
	if req.Bio != nil {
		acc.Bio = *req.Bio
	}
	if req.Role != nil {
		if !ValidRole(*req.Role) {
			return nil, fmt.Errorf(
				"update account: invalid role %q: %w",
				*req.Role,
				core.ErrInvalidInput,
			)
		}
		acc.Role = *req.Role
	}

	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) DeleteByUsername(
	ctx context.Context,
	username string,
) error {
	acc, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, acc.ID)
}

func (s *Service) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateMe applies a partial self-service update. The role field is pinned:
// whatever the payload carries, the stored role is kept as-is.
func (s *Service) UpdateMe(
	ctx context.Context,
	id string,
	req UpdateMeRequest,
) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		if err := ValidateUsername(*req.Username); err != nil {
			return nil, err
		}
		acc.Username = *req.Username
	}
	if req.Email != nil {
		acc.Email = strings.ToLower(*req.Email)
	}
	if req.FirstName != nil {
		acc.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		acc.LastName = *req.LastName
	}
	if req.Bio != nil {
		acc.Bio = *req.Bio
	}

	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) Confirm(ctx context.Context, id string) error {
	return s.repo.SetConfirmed(ctx, id)
}

// ActorByID snapshots the account's current state for policy checks. Called
// by the auth middleware on every authenticated request.
func (s *Service) ActorByID(
	ctx context.Context,
	id string,
) (policy.Actor, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return policy.Actor{}, err
	}

	return policy.Actor{
		ID:          acc.ID,
		Username:    acc.Username,
		Role:        acc.Role,
		IsStaff:     acc.IsStaff,
		IsSuperuser: acc.IsSuperuser,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
