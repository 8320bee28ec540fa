// Package signer issues the proof tokens used in email verification.
// A token is an HMAC over the user's identity-relevant state plus an
// issue timestamp. Because the signed state includes the verified flag,
// the active flag and the password hash, a token stops validating as soon
// as the verification it proves has been applied — single-use in effect,
// with no server-side token table.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sellpoint/api/internal/domain"
)

// Generator makes and checks state-bound proof tokens.
type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Make issues a proof token for the user's current state.
func (g *Generator) Make(u *domain.User) string {
	ts := g.now().Unix()
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), g.sign(u, ts))
}

// Check validates a token against the user's current state. A token is
// rejected if it is malformed, expired, or signed over state that has
// since changed.
func (g *Generator) Check(u *domain.User, token string) bool {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return false
	}
	ts, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil {
		return false
	}
	if g.now().Sub(time.Unix(ts, 0)) > g.ttl {
		return false
	}
	return hmac.Equal([]byte(parts[1]), []byte(g.sign(u, ts)))
}

func (g *Generator) sign(u *domain.User, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s|%s|%t|%t|%s|%d", u.UserID, u.Email, u.EmailVerified, u.Active, u.PasswordHash, ts)
	return hex.EncodeToString(mac.Sum(nil))
}
