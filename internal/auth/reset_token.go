package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/hrm/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

const resetPurpose = "password_reset"

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// PasswordResetTokens mints and checks password reset tokens. The signing key
// mixes in the user's current password hash and last login, so a token stops
// working as soon as either changes.
type PasswordResetTokens struct {
	secret  string
	timeout time.Duration
	now     func() time.Time
}

func NewPasswordResetTokens(secret string, timeout time.Duration) *PasswordResetTokens {
	return &PasswordResetTokens{secret: secret, timeout: timeout, now: time.Now}
}

func (p *PasswordResetTokens) WithClock(now func() time.Time) *PasswordResetTokens {
	p.now = now
	return p
}

func (p *PasswordResetTokens) Make(u *user.User) (string, error) {
	now := p.now()
	claims := resetClaims{
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.timeout)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key(u))
}

func (p *PasswordResetTokens) Check(u *user.User, token string) bool {
	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.key(u), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
		jwt.WithSubject(strconv.FormatInt(u.ID, 10)),
	)
	return err == nil && parsed.Valid && claims.Purpose == resetPurpose
}

func (p *PasswordResetTokens) key(u *user.User) []byte {
	var lastLogin int64
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.UTC().Unix()
	}
	return []byte(fmt.Sprintf("%s|%d|%s|%d", p.secret, u.ID, u.PasswordHash, lastLogin))
}

// EncodeUID renders a user id as the opaque uid used in reset links.
func EncodeUID(userID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(userID, 10)))
}

func DecodeUID(uid string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid uid")
	}
	return id, nil
}
