package auth

import "time"

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	Refresh string `json:"refresh" validate:"required"`
}

type VerifyEmailDTO struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verification_code" validate:"required,len=6,alphanum"`
}

type ResendVerificationDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmDTO struct {
	UID          string `json:"uid" validate:"required"`
	Token        string `json:"token" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required,password"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

type RegisterResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Detail    string    `json:"detail"`
}

type VerifyEmailResponse struct {
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

// LoginResult carries the token pair and the tenant the caller most recently
// joined, if any.
type LoginResult struct {
	Tokens          TokenPair
	RelatedTenantID *int64
}
