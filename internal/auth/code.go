// AngelaMos | 2026
// code.go

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelamos/revue/internal/account"
	"github.com/angelamos/revue/internal/config"
)

const codeDigestLen = 32

// CodeGenerator issues stateless confirmation codes of the form
// "<base36 timestamp>-<truncated hmac>". The MAC covers the account ID,
// password hash and confirmed flag, so any change to that state (first
// confirmation included) invalidates every outstanding code without
// server-side bookkeeping.
type CodeGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodeGenerator(cfg config.AuthConfig) *CodeGenerator {
	return &CodeGenerator{
		secret: []byte(cfg.CodeSecret),
		ttl:    cfg.CodeTTL,
		now:    time.Now,
	}
}

func (g *CodeGenerator) Generate(acc *account.Account) string {
	ts := g.now().Unix()
	return g.codeAt(acc, ts)
}

func (g *CodeGenerator) Check(acc *account.Account, code string) bool {
	tsPart, _, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}

	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	expected := g.codeAt(acc, ts)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return false
	}

	issued := time.Unix(ts, 0)
	return g.now().Sub(issued) <= g.ttl
}

func (g *CodeGenerator) codeAt(acc *account.Account, ts int64) string {
	state := fmt.Sprintf(
		"%s:%s:%t:%d",
		acc.ID,
		acc.PasswordHash,
		acc.Confirmed,
		ts,
	)

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(state))
	digest := hex.EncodeToString(mac.Sum(nil))[:codeDigestLen]

	return strconv.FormatInt(ts, 36) + "-" + digest
}
