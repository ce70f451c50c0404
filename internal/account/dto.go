// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type CreateAccountRequest struct {
	Username  string  `json:"username"   validate:"required,max=150"`
	Email     string  `json:"email"      validate:"required,email,max=254"`
	FirstName string  `json:"first_name" validate:"omitempty,max=150"`
	LastName  string  `json:"last_name"  validate:"omitempty,max=150"`
	Bio       string  `json:"bio"        validate:"omitempty,max=2000"`
	Role      string  `json:"role"       validate:"omitempty,oneof=user moderator admin"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}

// UpdateAccountRequest is the admin-side partial update; role is honored.
type UpdateAccountRequest struct {
	Username  *string `json:"username,omitempty"   validate:"omitempty,max=150"`
	Email     *string `json:"email,omitempty"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=2000"`
	Role      *string `json:"role,omitempty"       validate:"omitempty,oneof=user moderator admin"`
}

// UpdateMeRequest is the self-service partial update. A role value is
// accepted in the payload but never applied; the stored role is pinned.
type UpdateMeRequest struct {
	Username  *string `json:"username,omitempty"   validate:"omitempty,max=150"`
	Email     *string `json:"email,omitempty"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=2000"`
	Role      *string `json:"role,omitempty"       validate:"omitempty,oneof=user moderator admin"`
}

type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ListAccountsParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListAccountsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListAccountsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Bio:       a.Bio,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

func ToAccountResponseList(accounts []Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, ToAccountResponse(&a))
	}
	return responses
}
