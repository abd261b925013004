package user

import "time"

// User lives in the public schema and is shared by reference across tenants.
type User struct {
	ID                         int64      `gorm:"primaryKey"`
	Email                      string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash               string     `gorm:"column:password_hash;not null"`
	FirstName                  string     `gorm:"column:first_name"`
	LastName                   string     `gorm:"column:last_name"`
	Role                       string     `gorm:"column:role;not null"`
	IsActive                   bool       `gorm:"column:is_active;not null"`
	IsVerified                 bool       `gorm:"column:is_verified;not null"`
	VerificationCode           *string    `gorm:"column:verification_code"`
	VerificationCodeExpiresAt  *time.Time `gorm:"column:verification_code_expires_at"`
	VerificationCodeVerifiedAt *time.Time `gorm:"column:verification_code_verified_at"`
	ManagerID                  *int64     `gorm:"column:manager_id"`
	LastLogin                  *time.Time `gorm:"column:last_login"`
	CreatedAt                  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Membership links a user to a tenant they may act in.
type Membership struct {
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ClientID  int64     `gorm:"column:client_id;primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Membership) TableName() string {
	return "user_tenants"
}

// BlacklistedToken records a rotated refresh token until it would have expired.
type BlacklistedToken struct {
	JTI       string    `gorm:"column:jti;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (BlacklistedToken) TableName() string {
	return "token_blacklist"
}
