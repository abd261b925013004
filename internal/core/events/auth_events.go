package events

import "time"

const (
	EventTypeVerificationCodeIssued = "auth.verification_code_issued"
	EventTypePasswordResetRequested = "auth.password_reset_requested"
	EventTypeEmailVerified          = "auth.email_verified"
)

const (
	VerificationReasonRegistration = "registration"
	VerificationReasonResend       = "resend"
)

// VerificationCodeIssuedEvent carries the raw code. It is the only place the
// plaintext exists after minting and must never be persisted.
type VerificationCodeIssuedEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Reason    string    `json:"reason"`
}

func NewVerificationCodeIssuedEvent(userID int64, email, code string, expiresAt time.Time, reason string) *VerificationCodeIssuedEvent {
	return &VerificationCodeIssuedEvent{
		BaseEvent: newBaseEvent(EventTypeVerificationCodeIssued, map[string]interface{}{
			"user_id":    userID,
			"email":      email,
			"expires_at": expiresAt,
			"reason":     reason,
		}),
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		Reason:    reason,
	}
}

type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	ResetURL string `json:"-"`
}

func NewPasswordResetRequestedEvent(userID int64, email, resetURL string) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: newBaseEvent(EventTypePasswordResetRequested, map[string]interface{}{
			"user_id": userID,
			"email":   email,
		}),
		UserID:   userID,
		Email:    email,
		ResetURL: resetURL,
	}
}

type EmailVerifiedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func NewEmailVerifiedEvent(userID int64, email string) *EmailVerifiedEvent {
	return &EmailVerifiedEvent{
		BaseEvent: newBaseEvent(EventTypeEmailVerified, map[string]interface{}{
			"user_id": userID,
			"email":   email,
		}),
		UserID: userID,
		Email:  email,
	}
}
