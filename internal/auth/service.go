package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/core/common/validation"
	"github.com/frahmantamala/hrm/internal/core/events"
	"github.com/frahmantamala/hrm/internal/core/role"
	"github.com/frahmantamala/hrm/internal/observability"
	"github.com/frahmantamala/hrm/internal/user"
	"github.com/frahmantamala/hrm/pkg/logger"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

var tracer = otel.Tracer("github.com/frahmantamala/hrm/internal/auth")

type ServiceConfig struct {
	BCryptCost          int
	VerificationCodeTTL time.Duration
	FrontendURL         string
}

// Service is the main auth service with dependencies
type Service struct {
	repo      RepositoryAPI
	tokens    TokenGeneratorAPI
	resets    *PasswordResetTokens
	blacklist TokenBlacklist
	publisher events.Publisher
	cfg       ServiceConfig
	now       func() time.Time
	dummyHash []byte
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, resets *PasswordResetTokens, blacklist TokenBlacklist, publisher events.Publisher, cfg ServiceConfig) *Service {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.VerificationCodeTTL <= 0 {
		cfg.VerificationCodeTTL = 15 * time.Minute
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("timing-equaliser"), cfg.BCryptCost)
	return &Service{
		repo:      repo,
		tokens:    tokens,
		resets:    resets,
		blacklist: blacklist,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// WithClock swaps the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login authenticates by email and password. Unknown emails still pay for a
// bcrypt comparison so response timing does not reveal which emails exist.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (res *LoginResult, err error) {
	dto.Email = NormalizeEmail(dto.Email)
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()
	defer func() { observability.ObserveAuth("login", err) }()

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("Failed to load user", err)
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(dto.Password))
		return nil, internal.ErrInvalidCredentials()
	}

	passwordOK := false
	if u.HasUsablePassword() {
		passwordOK = VerifyPassword(u.PasswordHash, dto.Password) == nil
	} else {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(dto.Password))
	}

	switch {
	case !u.IsVerified:
		return nil, internal.ErrUserNotVerified()
	case !passwordOK:
		return nil, internal.ErrInvalidCredentials()
	case !u.IsActive:
		return nil, internal.ErrUserNotActive()
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID, s.now()); err != nil {
		return nil, internal.NewInternalError("Failed to record login", err)
	}

	pair, err := s.tokens.GeneratePair(u.ID, u.Email)
	if err != nil {
		return nil, internal.NewInternalError("Failed to issue tokens", err)
	}

	tenantID, err := s.repo.LatestTenantID(ctx, u.ID)
	if err != nil {
		logger.From(ctx).Warn("failed to resolve related tenant", "user_id", u.ID, "error", err)
		tenantID = nil
	}

	logger.From(ctx).Info("user logged in", "user_id", u.ID)
	return &LoginResult{Tokens: pair, RelatedTenantID: tenantID}, nil
}

// Register creates an inactive, unverified account and sends it a
// verification code. An unverified account whose code has lapsed is given a
// fresh code and the newly supplied password.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (res *RegisterResponse, err error) {
	dto.Email = NormalizeEmail(dto.Email)
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()
	defer func() { observability.ObserveAuth("register", err) }()

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	email := dto.Email
	now := s.now()

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, internal.NewInternalError("Failed to load user", err)
	}
	if existing != nil {
		return s.reissueForRegistration(ctx, existing, dto.Password, now)
	}

	passwordHash, err := HashPassword(dto.Password, s.cfg.BCryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to hash password", err)
	}
	code, codeHash, err := s.mintCode()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.cfg.VerificationCodeTTL)

	u := &user.User{
		Email:                     email,
		PasswordHash:              passwordHash,
		Role:                      role.Employee.String(),
		IsActive:                  false,
		IsVerified:                false,
		VerificationCode:          codeHash,
		VerificationCodeExpiresAt: &expiresAt,
	}
	if err := s.repo.CreatePending(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// lost a race with a concurrent registration
			current, gerr := s.repo.GetByEmail(ctx, email)
			if gerr != nil || current == nil {
				return nil, internal.ErrUserAlreadyExists()
			}
			return nil, s.conflictFor(current, s.now())
		}
		return nil, internal.NewInternalError("Failed to create user", err)
	}

	s.publish(ctx, events.NewVerificationCodeIssuedEvent(u.ID, u.Email, code, expiresAt, events.VerificationReasonRegistration))
	logger.From(ctx).Info("user registered", "user_id", u.ID)

	return &RegisterResponse{Email: u.Email, ExpiresAt: expiresAt.UTC(), Detail: "Verification code sent"}, nil
}

func (s *Service) reissueForRegistration(ctx context.Context, existing *user.User, password string, now time.Time) (*RegisterResponse, error) {
	if existing.IsVerified || existing.HasLiveCode(now) {
		return nil, s.conflictFor(existing, now)
	}

	passwordHash, err := HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to hash password", err)
	}
	code, codeHash, err := s.mintCode()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.cfg.VerificationCodeTTL)

	ok, err := s.repo.IssueCode(ctx, CodeIssue{
		UserID:       existing.ID,
		CodeHash:     codeHash,
		ExpiresAt:    expiresAt,
		Now:          now,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, internal.NewInternalError("Failed to issue verification code", err)
	}
	if !ok {
		return nil, s.reloadConflict(ctx, existing.ID)
	}

	s.publish(ctx, events.NewVerificationCodeIssuedEvent(existing.ID, existing.Email, code, expiresAt, events.VerificationReasonRegistration))
	return &RegisterResponse{Email: existing.Email, ExpiresAt: expiresAt.UTC(), Detail: "Verification code sent"}, nil
}

// VerifyEmail consumes a live verification code. Success verifies and
// activates the account exactly once.
func (s *Service) VerifyEmail(ctx context.Context, dto VerifyEmailDTO) (res *VerifyEmailResponse, err error) {
	dto.Email = NormalizeEmail(dto.Email)
	ctx, span := tracer.Start(ctx, "auth.VerifyEmail")
	defer span.End()
	defer func() { observability.ObserveAuth("verify_email", err) }()

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	now := s.now()

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("Failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidCredentials()
	}
	if u.IsVerified {
		return nil, internal.ErrAlreadyVerified()
	}
	if !u.HasLiveCode(now) || !VerificationCodeMatches(u.VerificationCode, dto.VerificationCode) {
		return nil, internal.ErrInvalidOrExpiredCode()
	}

	ok, err := s.repo.MarkVerified(ctx, u.ID, u.VerificationCode, now)
	if err != nil {
		return nil, internal.NewInternalError("Failed to verify user", err)
	}
	if !ok {
		current, gerr := s.repo.GetByID(ctx, u.ID)
		if gerr == nil && current != nil && current.IsVerified {
			return nil, internal.ErrAlreadyVerified()
		}
		return nil, internal.ErrInvalidOrExpiredCode()
	}

	s.publish(ctx, events.NewEmailVerifiedEvent(u.ID, u.Email))
	logger.From(ctx).Info("email verified", "user_id", u.ID)

	return &VerifyEmailResponse{Email: u.Email, IsVerified: true}, nil
}

// ResendVerification issues a new code once the previous one has lapsed.
func (s *Service) ResendVerification(ctx context.Context, dto ResendVerificationDTO) (res *RegisterResponse, err error) {
	dto.Email = NormalizeEmail(dto.Email)
	ctx, span := tracer.Start(ctx, "auth.ResendVerification")
	defer span.End()
	defer func() { observability.ObserveAuth("resend_verification", err) }()

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	now := s.now()

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("Failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidCredentials()
	}
	if u.IsVerified {
		return nil, internal.ErrAlreadyVerified()
	}
	if u.HasLiveCode(now) {
		return nil, internal.ErrAlreadyInVerificationProcess(*u.VerificationCodeExpiresAt)
	}

	code, codeHash, err := s.mintCode()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.cfg.VerificationCodeTTL)

	ok, err := s.repo.IssueCode(ctx, CodeIssue{UserID: u.ID, CodeHash: codeHash, ExpiresAt: expiresAt, Now: now})
	if err != nil {
		return nil, internal.NewInternalError("Failed to issue verification code", err)
	}
	if !ok {
		current, gerr := s.repo.GetByID(ctx, u.ID)
		if gerr != nil || current == nil {
			return nil, internal.ErrInvalidOrExpiredCode()
		}
		if current.IsVerified {
			return nil, internal.ErrAlreadyVerified()
		}
		return nil, s.conflictFor(current, s.now())
	}

	s.publish(ctx, events.NewVerificationCodeIssuedEvent(u.ID, u.Email, code, expiresAt, events.VerificationReasonResend))
	return &RegisterResponse{Email: u.Email, ExpiresAt: expiresAt.UTC(), Detail: "Verification code sent"}, nil
}

// Refresh rotates a refresh token. The presented token is blacklisted before
// the new pair is issued, so each refresh token can be used once.
func (s *Service) Refresh(ctx context.Context, dto RefreshTokenDTO) (pair TokenPair, err error) {
	ctx, span := tracer.Start(ctx, "auth.Refresh")
	defer span.End()
	defer func() { observability.ObserveAuth("refresh", err) }()

	if err := validation.Struct(dto); err != nil {
		return TokenPair{}, err
	}

	claims, err := s.tokens.ValidateRefreshToken(dto.Refresh)
	if err != nil {
		return TokenPair{}, internal.ErrInvalidToken()
	}

	fresh, err := s.blacklist.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("Failed to rotate refresh token", err)
	}
	if !fresh {
		logger.From(ctx).Warn("blacklisted refresh token presented", "user_id", claims.UserID)
		return TokenPair{}, internal.ErrInvalidToken()
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("Failed to load user", err)
	}
	if u == nil || !u.IsActive {
		return TokenPair{}, internal.ErrInvalidToken()
	}

	pair, err = s.tokens.GeneratePair(u.ID, u.Email)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("Failed to issue tokens", err)
	}
	return pair, nil
}

// Logout blacklists a refresh token. Presenting an already revoked token is
// not an error.
func (s *Service) Logout(ctx context.Context, dto RefreshTokenDTO) (err error) {
	defer func() { observability.ObserveAuth("logout", err) }()

	if err := validation.Struct(dto); err != nil {
		return err
	}
	claims, err := s.tokens.ValidateRefreshToken(dto.Refresh)
	if err != nil {
		return internal.ErrInvalidToken()
	}
	if _, err := s.blacklist.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return internal.NewInternalError("Failed to revoke refresh token", err)
	}
	return nil
}

// RequestPasswordReset mails a reset link to an active account. Unknown or
// inactive emails are accepted silently.
func (s *Service) RequestPasswordReset(ctx context.Context, dto PasswordResetDTO) (err error) {
	dto.Email = NormalizeEmail(dto.Email)
	ctx, span := tracer.Start(ctx, "auth.RequestPasswordReset")
	defer span.End()
	defer func() { observability.ObserveAuth("password_reset", err) }()

	if err := validation.Struct(dto); err != nil {
		return err
	}

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return internal.NewInternalError("Failed to load user", err)
	}
	if u == nil || !u.IsActive {
		logger.From(ctx).Debug("password reset requested for unknown or inactive account")
		return nil
	}

	token, err := s.resets.Make(u)
	if err != nil {
		return internal.NewInternalError("Failed to create reset token", err)
	}

	s.publish(ctx, events.NewPasswordResetRequestedEvent(u.ID, u.Email, s.resetURL(u.ID, token)))
	return nil
}

// ConfirmPasswordReset sets a new password given a valid reset link. The
// update is conditioned on the old hash, which also invalidates the link.
func (s *Service) ConfirmPasswordReset(ctx context.Context, dto PasswordResetConfirmDTO) (err error) {
	ctx, span := tracer.Start(ctx, "auth.ConfirmPasswordReset")
	defer span.End()
	defer func() { observability.ObserveAuth("password_reset_confirm", err) }()

	if err := validation.Struct(dto); err != nil {
		return err
	}
	if dto.NewPassword1 != dto.NewPassword2 {
		return internal.NewValidationFieldError("new_password2", "The two password fields didn't match", internal.ErrCodePasswordMismatch)
	}

	userID, err := DecodeUID(dto.UID)
	if err != nil {
		return internal.ErrInvalidResetLink()
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("Failed to load user", err)
	}
	if u == nil || !s.resets.Check(u, dto.Token) {
		return internal.ErrInvalidResetLink()
	}

	newHash, err := HashPassword(dto.NewPassword1, s.cfg.BCryptCost)
	if err != nil {
		return internal.NewInternalError("Failed to hash password", err)
	}
	ok, err := s.repo.SetPassword(ctx, u.ID, u.PasswordHash, newHash)
	if err != nil {
		return internal.NewInternalError("Failed to update password", err)
	}
	if !ok {
		return internal.ErrInvalidResetLink()
	}

	logger.From(ctx).Info("password reset completed", "user_id", u.ID)
	return nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

func (s *Service) mintCode() (code, hash string, err error) {
	code, err = GenerateVerificationCode()
	if err != nil {
		return "", "", internal.NewInternalError("Failed to generate verification code", err)
	}
	hash, err = HashVerificationCode(code, s.cfg.BCryptCost)
	if err != nil {
		return "", "", internal.NewInternalError("Failed to hash verification code", err)
	}
	return code, hash, nil
}

func (s *Service) conflictFor(u *user.User, now time.Time) error {
	if u.IsVerified {
		return internal.ErrUserAlreadyExists()
	}
	if u.HasLiveCode(now) {
		return internal.ErrAlreadyInVerificationProcess(*u.VerificationCodeExpiresAt)
	}
	return internal.ErrUserAlreadyExists()
}

func (s *Service) reloadConflict(ctx context.Context, userID int64) error {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil || current == nil {
		return internal.ErrUserAlreadyExists()
	}
	return s.conflictFor(current, s.now())
}

func (s *Service) resetURL(userID int64, token string) string {
	q := url.Values{}
	q.Set("uid", EncodeUID(userID))
	q.Set("token", token)
	return fmt.Sprintf("%s/password-reset/confirm?%s", strings.TrimRight(s.cfg.FrontendURL, "/"), q.Encode())
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.From(ctx).Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
