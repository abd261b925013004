package user

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/hrm/internal/core/datamodel/user"
)

// UnusablePasswordPrefix marks a password hash that can never match. Users
// created on behalf of a tenant start with one until they reset it.
const UnusablePasswordPrefix = "!"

type User struct {
	ID                         int64      `json:"id"`
	Email                      string     `json:"email"`
	PasswordHash               string     `json:"-"`
	FirstName                  string     `json:"first_name"`
	LastName                   string     `json:"last_name"`
	Role                       string     `json:"role"`
	IsActive                   bool       `json:"is_active"`
	IsVerified                 bool       `json:"is_verified"`
	VerificationCode           string     `json:"-"`
	VerificationCodeExpiresAt  *time.Time `json:"-"`
	VerificationCodeVerifiedAt *time.Time `json:"verified_at,omitempty"`
	ManagerID                  *int64     `json:"manager_id,omitempty"`
	LastLogin                  *time.Time `json:"last_login,omitempty"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// HasLiveCode reports whether an issued verification code is still inside its
// expiry window at now.
func (u *User) HasLiveCode(now time.Time) bool {
	return u.VerificationCode != "" &&
		u.VerificationCodeExpiresAt != nil &&
		u.VerificationCodeExpiresAt.After(now)
}

func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != "" && !strings.HasPrefix(u.PasswordHash, UnusablePasswordPrefix)
}

// UnusablePassword returns a random marker hash that bcrypt will never accept.
func UnusablePassword() string {
	buf := make([]byte, 20)
	_, _ = rand.Read(buf)
	return UnusablePasswordPrefix + hex.EncodeToString(buf)
}

type TenantSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func ToDataModel(u *User) *userDatamodel.User {
	dm := &userDatamodel.User{
		ID:                         u.ID,
		Email:                      u.Email,
		PasswordHash:               u.PasswordHash,
		FirstName:                  u.FirstName,
		LastName:                   u.LastName,
		Role:                       u.Role,
		IsActive:                   u.IsActive,
		IsVerified:                 u.IsVerified,
		VerificationCodeExpiresAt:  u.VerificationCodeExpiresAt,
		VerificationCodeVerifiedAt: u.VerificationCodeVerifiedAt,
		ManagerID:                  u.ManagerID,
		LastLogin:                  u.LastLogin,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
	if u.VerificationCode != "" {
		code := u.VerificationCode
		dm.VerificationCode = &code
	}
	if dm.Role == "" {
		dm.Role = "employee"
	}
	return dm
}

func FromDataModel(u *userDatamodel.User) *User {
	out := &User{
		ID:                         u.ID,
		Email:                      u.Email,
		PasswordHash:               u.PasswordHash,
		FirstName:                  u.FirstName,
		LastName:                   u.LastName,
		Role:                       u.Role,
		IsActive:                   u.IsActive,
		IsVerified:                 u.IsVerified,
		VerificationCodeExpiresAt:  u.VerificationCodeExpiresAt,
		VerificationCodeVerifiedAt: u.VerificationCodeVerifiedAt,
		ManagerID:                  u.ManagerID,
		LastLogin:                  u.LastLogin,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
	if u.VerificationCode != nil {
		out.VerificationCode = *u.VerificationCode
	}
	return out
}
