package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrm/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair is returned by login and refresh.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// CodeIssue describes a compare-and-swap write of a fresh verification code.
// The write only lands while the user is unverified and holds no live code.
// PasswordHash is applied too when non-empty.
type CodeIssue struct {
	UserID       int64
	CodeHash     string
	ExpiresAt    time.Time
	Now          time.Time
	PasswordHash string
}

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, userID int64) (*user.User, error)
	CreatePending(ctx context.Context, u *user.User) error
	IssueCode(ctx context.Context, issue CodeIssue) (bool, error)
	MarkVerified(ctx context.Context, userID int64, codeHash string, now time.Time) (bool, error)
	SetPassword(ctx context.Context, userID int64, oldHash, newHash string) (bool, error)
	TouchLastLogin(ctx context.Context, userID int64, now time.Time) error
	LatestTenantID(ctx context.Context, userID int64) (*int64, error)
}

type TokenGeneratorAPI interface {
	GeneratePair(userID int64, email string) (TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// TokenBlacklist revokes refresh tokens. Revoke reports false when the token
// had already been revoked, which makes rotation first-writer-wins.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (bool, error)
}

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
