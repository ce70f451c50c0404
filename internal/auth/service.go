// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angelamos/revue/internal/account"
	"github.com/angelamos/revue/internal/config"
	"github.com/angelamos/revue/internal/notify"
)

var ErrInvalidCode = errors.New("invalid confirmation code")

const dispatchTimeout = 30 * time.Second

type Service struct {
	accounts *account.Service
	codes    *CodeGenerator
	jwt      *JWTManager
	sender   notify.Sender
	tokenTTL time.Duration
	appName  string
}

func NewService(
	accounts *account.Service,
	codes *CodeGenerator,
	jwtManager *JWTManager,
	sender notify.Sender,
	cfg *config.Config,
) *Service {
	return &Service{
		accounts: accounts,
		codes:    codes,
		jwt:      jwtManager,
		sender:   sender,
		tokenTTL: cfg.JWT.AccessTokenExpire,
		appName:  cfg.App.Name,
	}
}

// SignUp registers (or re-requests a code for) an account and dispatches
// the confirmation code by mail. Delivery is fire-and-forget: a failed
// send is logged and the sign-up still succeeds.
func (s *Service) SignUp(
	ctx context.Context,
	req SignUpRequest,
) (*SignUpResponse, error) {
	acc, err := s.accounts.GetOrCreate(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	code := s.codes.Generate(acc)

	go s.dispatchCode(acc.Email, code)

	return &SignUpResponse{
		Username: acc.Username,
		Email:    acc.Email,
	}, nil
}

func (s *Service) dispatchCode(recipient, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	subject := fmt.Sprintf("%s registration", s.appName)
	body := fmt.Sprintf("Your confirmation code: %s", code)

	if err := s.sender.Send(ctx, recipient, subject, body); err != nil {
		slog.Error("confirmation code delivery failed",
			"recipient", recipient,
			"error", err,
		)
	}
}

// ExchangeToken trades a confirmation code for a bearer access token and
// marks the account confirmed, which rotates the code state and burns the
// used code.
func (s *Service) ExchangeToken(
	ctx context.Context,
	req TokenRequest,
) (*TokenResponse, error) {
	acc, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if !s.codes.Check(acc, req.ConfirmationCode) {
		return nil, fmt.Errorf("exchange token: %w", ErrInvalidCode)
	}

	if !acc.Confirmed {
		if err := s.accounts.Confirm(ctx, acc.ID); err != nil {
			return nil, fmt.Errorf("confirm account: %w", err)
		}
	}

	accessToken, err := s.jwt.CreateAccessToken(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL / time.Second),
	}, nil
}
