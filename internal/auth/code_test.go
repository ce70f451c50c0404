// AngelaMos | 2026
// code_test.go

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/revue/internal/account"
	"github.com/angelamos/revue/internal/config"
)

func newTestGenerator(now time.Time) *CodeGenerator {
	g := NewCodeGenerator(config.AuthConfig{
		CodeSecret: "test-secret",
		CodeTTL:    24 * time.Hour,
	})
	g.now = func() time.Time { return now }
	return g
}

func testAccount() *account.Account {
	return &account.Account{
		ID:        "5d9f2f30-1f3e-4a0d-9c8e-000000000001",
		Username:  "reader",
		Email:     "reader@example.com",
		Role:      account.RoleUser,
		Confirmed: false,
	}
}

func TestCodeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(now)
	acc := testAccount()

	code := g.Generate(acc)
	require.NotEmpty(t, code)

	assert.True(t, g.Check(acc, code))
}

func TestCodeExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(issued)
	acc := testAccount()

	code := g.Generate(acc)

	g.now = func() time.Time { return issued.Add(23 * time.Hour) }
	assert.True(t, g.Check(acc, code), "still inside the TTL")

	g.now = func() time.Time { return issued.Add(25 * time.Hour) }
	assert.False(t, g.Check(acc, code), "past the TTL")
}

func TestCodeInvalidatedByStateChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(now)
	acc := testAccount()

	code := g.Generate(acc)
	require.True(t, g.Check(acc, code))

	// Confirming the account rotates the MAC state, burning the code.
	acc.Confirmed = true
	assert.False(t, g.Check(acc, code))

	reissued := g.Generate(acc)
	assert.True(t, g.Check(acc, reissued))
	assert.NotEqual(t, code, reissued)
}

func TestCodeBoundToAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(now)

	first := testAccount()
	second := testAccount()
	second.ID = "5d9f2f30-1f3e-4a0d-9c8e-000000000002"

	code := g.Generate(first)
	assert.False(t, g.Check(second, code))
}

func TestCodeRejectsGarbage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(now)
	acc := testAccount()

	assert.False(t, g.Check(acc, ""))
	assert.False(t, g.Check(acc, "no-dash-separator!"))
	assert.False(t, g.Check(acc, "zzzz-deadbeef"))

	code := g.Generate(acc)
	assert.False(t, g.Check(acc, code+"0"), "tampered digest")
}

func TestCodeRejectsWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	acc := testAccount()

	issuer := newTestGenerator(now)
	code := issuer.Generate(acc)

	verifier := NewCodeGenerator(config.AuthConfig{
		CodeSecret: "different-secret",
		CodeTTL:    24 * time.Hour,
	})
	verifier.now = func() time.Time { return now }

	assert.False(t, verifier.Check(acc, code))
}
