// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/revue/internal/account"
	"github.com/angelamos/revue/internal/config"
	"github.com/angelamos/revue/internal/core"
)

type memAccountRepo struct {
	byID map[string]*account.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{byID: make(map[string]*account.Account)}
}

func (m *memAccountRepo) Create(_ context.Context, acc *account.Account) error {
	for _, existing := range m.byID {
		if existing.Username == acc.Username || existing.Email == acc.Email {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
	}
	stored := *acc
	m.byID[acc.ID] = &stored
	return nil
}

func (m *memAccountRepo) GetByID(
	_ context.Context,
	id string,
) (*account.Account, error) {
	if acc, ok := m.byID[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
}

func (m *memAccountRepo) GetByUsername(
	_ context.Context,
	username string,
) (*account.Account, error) {
	for _, acc := range m.byID {
		if acc.Username == username {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get account by username: %w", core.ErrNotFound)
}

func (m *memAccountRepo) GetByEmail(
	_ context.Context,
	email string,
) (*account.Account, error) {
	for _, acc := range m.byID {
		if acc.Email == email {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
}

func (m *memAccountRepo) Update(_ context.Context, acc *account.Account) error {
	if _, ok := m.byID[acc.ID]; !ok {
		return fmt.Errorf("update account: %w", core.ErrNotFound)
	}
	stored := *acc
	m.byID[acc.ID] = &stored
	return nil
}

func (m *memAccountRepo) SetConfirmed(_ context.Context, id string) error {
	acc, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("confirm account: %w", core.ErrNotFound)
	}
	acc.Confirmed = true
	return nil
}

func (m *memAccountRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memAccountRepo) List(
	_ context.Context,
	_ account.ListAccountsParams,
) ([]account.Account, int, error) {
	return nil, 0, nil
}

type captureSender struct {
	sent chan string
}

func (c *captureSender) Send(
	_ context.Context,
	recipient, subject, body string,
) error {
	c.sent <- body
	return nil
}

func newSignUpService(t *testing.T) (*Service, *CodeGenerator, *captureSender) {
	t.Helper()

	accounts := account.NewService(newMemAccountRepo())
	codes := NewCodeGenerator(config.AuthConfig{
		CodeSecret: "test-secret",
		CodeTTL:    24 * time.Hour,
	})
	sender := &captureSender{sent: make(chan string, 1)}

	cfg := &config.Config{}
	cfg.App.Name = "Revue API"
	cfg.JWT.AccessTokenExpire = time.Hour

	// No JWT manager: these tests stop before token issuance.
	return NewService(accounts, codes, nil, sender, cfg), codes, sender
}

func TestSignUpDispatchesCode(t *testing.T) {
	svc, _, sender := newSignUpService(t)

	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "reader", resp.Username)
	assert.Equal(t, "reader@example.com", resp.Email)

	select {
	case body := <-sender.sent:
		assert.Contains(t, body, "confirmation code")
	case <-time.After(time.Second):
		t.Fatal("confirmation code was never dispatched")
	}
}

func TestSignUpRepeatReissuesCode(t *testing.T) {
	svc, _, sender := newSignUpService(t)

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})
	require.NoError(t, err)
	<-sender.sent

	// Same pair again: not a conflict, just another code.
	_, err = svc.SignUp(context.Background(), SignUpRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})
	require.NoError(t, err)

	select {
	case <-sender.sent:
	case <-time.After(time.Second):
		t.Fatal("repeat sign-up did not dispatch a code")
	}
}

func TestSignUpPartialMatchRejected(t *testing.T) {
	svc, _, sender := newSignUpService(t)

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})
	require.NoError(t, err)
	<-sender.sent

	_, err = svc.SignUp(context.Background(), SignUpRequest{
		Username: "reader",
		Email:    "impostor@example.com",
	})
	assert.True(t, errors.Is(err, core.ErrDuplicateKey))
}

func TestExchangeTokenRejectsBadCode(t *testing.T) {
	svc, _, sender := newSignUpService(t)

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})
	require.NoError(t, err)
	<-sender.sent

	_, err = svc.ExchangeToken(context.Background(), TokenRequest{
		Username:         "reader",
		ConfirmationCode: "1abc-notthedigest",
	})
	assert.True(t, errors.Is(err, ErrInvalidCode))
}

func TestExchangeTokenUnknownUser(t *testing.T) {
	svc, _, _ := newSignUpService(t)

	_, err := svc.ExchangeToken(context.Background(), TokenRequest{
		Username:         "ghost",
		ConfirmationCode: "whatever",
	})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
