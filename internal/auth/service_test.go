package auth_test

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/core/events"
	"github.com/frahmantamala/hrm/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func expectCode(err error, code internal.ErrorCode) {
	GinkgoHelper()
	Expect(err).To(HaveOccurred())
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected an AppError, got %v", err)
	Expect(appErr.Code).To(Equal(code))
}

var _ = Describe("Auth Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		blacklist *MockBlacklist
		publisher *RecordingPublisher
		tokens    *auth.JWTTokenGenerator
		resets    *auth.PasswordResetTokens
		service   *auth.Service
		now       time.Time
	)

	clock := func() time.Time { return now }

	verifiedUser := func(email, password string, active bool) *user.User {
		hash, err := auth.HashPassword(password, bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return repo.AddUser(&user.User{
			Email:        email,
			PasswordHash: hash,
			Role:         "employee",
			IsActive:     active,
			IsVerified:   true,
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		repo = NewMockRepository()
		blacklist = NewMockBlacklist()
		publisher = &RecordingPublisher{}
		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Hour, 24*time.Hour).WithClock(clock)
		resets = auth.NewPasswordResetTokens("reset-secret", 72*time.Hour).WithClock(clock)
		service = auth.NewService(repo, tokens, resets, blacklist, publisher, auth.ServiceConfig{
			BCryptCost:          bcrypt.MinCost,
			VerificationCodeTTL: 15 * time.Minute,
			FrontendURL:         "https://app.example.com/",
		}).WithClock(clock)
	})

	Describe("Register", func() {
		Context("when the email is new", func() {
			It("should create an inactive unverified user and send a code", func() {
				res, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "s3cretpass"})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Email).To(Equal("a@x.com"))
				Expect(res.ExpiresAt).To(Equal(now.Add(15 * time.Minute)))

				stored := repo.Snapshot("a@x.com")
				Expect(stored).NotTo(BeNil())
				Expect(stored.IsActive).To(BeFalse())
				Expect(stored.IsVerified).To(BeFalse())

				code := publisher.LastCode()
				Expect(code).To(MatchRegexp(`^[A-Z0-9]{6}$`))
				Expect(stored.VerificationCode).NotTo(Equal(code))
				Expect(auth.VerificationCodeMatches(stored.VerificationCode, code)).To(BeTrue())
			})

			It("should lowercase the domain part of the email", func() {
				_, err := service.Register(ctx, auth.RegisterDTO{Email: " Jane@Example.COM ", Password: "s3cretpass"})
				Expect(err).NotTo(HaveOccurred())
				Expect(repo.Snapshot("Jane@example.com")).NotTo(BeNil())
			})
		})

		It("should accept short passwords at registration", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.LastCode()).NotTo(BeEmpty())
		})

		It("should require a password", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com"})
			expectCode(err, internal.ErrCodeValidationFailed)
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("should refuse an already verified email", func() {
			verifiedUser("a@x.com", "s3cretpass", true)

			_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "s3cretpass"})
			expectCode(err, internal.ErrCodeUserAlreadyExists)
		})

		Context("when an unverified account already exists", func() {
			BeforeEach(func() {
				_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "s3cretpass"})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should report the pending verification while the code is live", func() {
				now = now.Add(5 * time.Minute)

				_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "s3cretpass"})
				expectCode(err, internal.ErrCodeAlreadyInVerificationProcess)

				appErr, _ := internal.IsAppError(err)
				Expect(appErr.Details).To(HaveKeyWithValue("expires_at", time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)))
			})

			It("should issue a fresh code and take the new password once the old code expired", func() {
				first := publisher.LastCode()
				before := repo.Snapshot("a@x.com")
				now = now.Add(16 * time.Minute)

				res, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "an0therpass"})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.ExpiresAt).To(Equal(now.Add(15 * time.Minute)))

				after := repo.Snapshot("a@x.com")
				Expect(after.ID).To(Equal(before.ID))
				Expect(after.PasswordHash).NotTo(Equal(before.PasswordHash))
				Expect(publisher.LastCode()).NotTo(Equal(first))
			})
		})
	})

	Describe("Login", func() {
		It("should fail with invalid credentials for unknown users", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Email: "ghost@x.com", Password: "whatever1"})
			expectCode(err, internal.ErrCodeInvalidCredentials)
		})

		It("should fail with invalid credentials for a wrong password", func() {
			verifiedUser("a@x.com", "s3cretpass", true)

			_, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "wrongpass"})
			expectCode(err, internal.ErrCodeInvalidCredentials)
		})

		It("should fail with not active for verified but inactive users", func() {
			verifiedUser("a@x.com", "s3cretpass", false)

			_, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "s3cretpass"})
			expectCode(err, internal.ErrCodeUserNotActive)
		})

		DescribeTable("unverified users always fail with not verified",
			func(password string) {
				_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "s3cretpass"})
				Expect(err).NotTo(HaveOccurred())

				_, err = service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: password})
				expectCode(err, internal.ErrCodeUserNotVerified)
			},
			Entry("correct password", "s3cretpass"),
			Entry("wrong password", "not-the-password"),
		)

		It("should issue a token pair, touch last login and expose the related tenant", func() {
			u := verifiedUser("a@x.com", "s3cretpass", true)
			repo.SetLatestTenant(u.ID, 42)

			res, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "s3cretpass"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Tokens.Access).NotTo(BeEmpty())
			Expect(res.Tokens.Refresh).NotTo(BeEmpty())
			Expect(*res.RelatedTenantID).To(Equal(int64(42)))

			claims, err := tokens.ValidateAccessToken(res.Tokens.Access)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(u.ID))

			Expect(repo.Snapshot("a@x.com").LastLogin).NotTo(BeNil())
		})

		It("should wrap repository failures as internal errors", func() {
			repo.SetShouldFail(errDatabase)

			_, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "s3cretpass"})
			expectCode(err, internal.ErrCodeInternal)
		})
	})

	Describe("VerifyEmail", func() {
		var code string

		BeforeEach(func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			code = publisher.LastCode()
		})

		It("should complete the register, verify, login flow", func() {
			wrong := "ZZZZZZ"
			if code == wrong {
				wrong = "YYYYYY"
			}
			_, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: wrong})
			expectCode(err, internal.ErrCodeInvalidOrExpiredCode)

			res, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: code})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsVerified).To(BeTrue())

			stored := repo.Snapshot("a@x.com")
			Expect(stored.IsActive).To(BeTrue())
			Expect(stored.VerificationCode).To(BeEmpty())
			Expect(stored.VerificationCodeExpiresAt).To(BeNil())
			Expect(stored.VerificationCodeVerifiedAt).NotTo(BeNil())

			login, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(login.Tokens.Access).NotTo(BeEmpty())
		})

		It("should accept lowercase input for the code", func() {
			_, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: strings.ToLower(code)})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject a replay with already verified", func() {
			_, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: code})
			Expect(err).NotTo(HaveOccurred())
			verifiedEvents := 0
			for _, ev := range publisher.Events() {
				if ev.EventType() == events.EventTypeEmailVerified {
					verifiedEvents++
				}
			}

			_, err = service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: code})
			expectCode(err, internal.ErrCodeAlreadyVerified)

			after := 0
			for _, ev := range publisher.Events() {
				if ev.EventType() == events.EventTypeEmailVerified {
					after++
				}
			}
			Expect(after).To(Equal(verifiedEvents))
		})

		It("should reject an expired code", func() {
			now = now.Add(15 * time.Minute)

			_, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: code})
			expectCode(err, internal.ErrCodeInvalidOrExpiredCode)
			Expect(repo.Snapshot("a@x.com").IsVerified).To(BeFalse())
		})

		It("should fail with invalid credentials for unknown emails", func() {
			_, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "ghost@x.com", VerificationCode: code})
			expectCode(err, internal.ErrCodeInvalidCredentials)
		})
	})

	Describe("ResendVerification", func() {
		BeforeEach(func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Email: "a@x.com", Password: "s3cretpass"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse while the previous code is live", func() {
			now = now.Add(14 * time.Minute)

			_, err := service.ResendVerification(ctx, auth.ResendVerificationDTO{Email: "a@x.com"})
			expectCode(err, internal.ErrCodeAlreadyInVerificationProcess)
		})

		It("should mint a different code with a later expiry once expired", func() {
			oldCode := publisher.LastCode()
			oldExpiry := *repo.Snapshot("a@x.com").VerificationCodeExpiresAt
			now = now.Add(20 * time.Minute)

			res, err := service.ResendVerification(ctx, auth.ResendVerificationDTO{Email: "a@x.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ExpiresAt.After(oldExpiry)).To(BeTrue())

			newCode := publisher.LastCode()
			Expect(newCode).NotTo(Equal(oldCode))

			_, err = service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: oldCode})
			expectCode(err, internal.ErrCodeInvalidOrExpiredCode)
			_, err = service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: newCode})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should refuse verified users", func() {
			_, err := service.VerifyEmail(ctx, auth.VerifyEmailDTO{Email: "a@x.com", VerificationCode: publisher.LastCode()})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ResendVerification(ctx, auth.ResendVerificationDTO{Email: "a@x.com"})
			expectCode(err, internal.ErrCodeAlreadyVerified)
		})

		It("should fail with invalid credentials for unknown emails", func() {
			_, err := service.ResendVerification(ctx, auth.ResendVerificationDTO{Email: "ghost@x.com"})
			expectCode(err, internal.ErrCodeInvalidCredentials)
		})
	})

	Describe("Refresh", func() {
		var pair auth.TokenPair

		BeforeEach(func() {
			verifiedUser("a@x.com", "s3cretpass", true)
			res, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "s3cretpass"})
			Expect(err).NotTo(HaveOccurred())
			pair = res.Tokens
		})

		It("should rotate the pair and blacklist the presented token", func() {
			next, err := service.Refresh(ctx, auth.RefreshTokenDTO{Refresh: pair.Refresh})
			Expect(err).NotTo(HaveOccurred())
			Expect(next.Refresh).NotTo(Equal(pair.Refresh))

			_, err = service.Refresh(ctx, auth.RefreshTokenDTO{Refresh: pair.Refresh})
			expectCode(err, internal.ErrCodeInvalidToken)

			_, err = service.Refresh(ctx, auth.RefreshTokenDTO{Refresh: next.Refresh})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject an access token presented as a refresh token", func() {
			_, err := service.Refresh(ctx, auth.RefreshTokenDTO{Refresh: pair.Access})
			expectCode(err, internal.ErrCodeInvalidToken)
		})

		It("should reject an expired refresh token", func() {
			now = now.Add(25 * time.Hour)

			_, err := service.Refresh(ctx, auth.RefreshTokenDTO{Refresh: pair.Refresh})
			expectCode(err, internal.ErrCodeInvalidToken)
		})

		It("should reject tokens revoked by logout", func() {
			Expect(service.Logout(ctx, auth.RefreshTokenDTO{Refresh: pair.Refresh})).To(Succeed())

			_, err := service.Refresh(ctx, auth.RefreshTokenDTO{Refresh: pair.Refresh})
			expectCode(err, internal.ErrCodeInvalidToken)
		})
	})

	Describe("Password reset", func() {
		It("should silently accept unknown emails", func() {
			Expect(service.RequestPasswordReset(ctx, auth.PasswordResetDTO{Email: "ghost@x.com"})).To(Succeed())
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("should silently accept inactive accounts", func() {
			verifiedUser("a@x.com", "s3cretpass", false)

			Expect(service.RequestPasswordReset(ctx, auth.PasswordResetDTO{Email: "a@x.com"})).To(Succeed())
			Expect(publisher.Events()).To(BeEmpty())
		})

		Context("for an active account", func() {
			var uid, token string

			BeforeEach(func() {
				verifiedUser("a@x.com", "s3cretpass", true)
				Expect(service.RequestPasswordReset(ctx, auth.PasswordResetDTO{Email: "a@x.com"})).To(Succeed())

				link, err := url.Parse(publisher.LastResetURL())
				Expect(err).NotTo(HaveOccurred())
				Expect(link.Host).To(Equal("app.example.com"))
				Expect(link.Path).To(Equal("/password-reset/confirm"))
				uid = link.Query().Get("uid")
				token = link.Query().Get("token")
			})

			It("should set the new password and invalidate the link", func() {
				dto := auth.PasswordResetConfirmDTO{UID: uid, Token: token, NewPassword1: "brand-new-pass", NewPassword2: "brand-new-pass"}
				Expect(service.ConfirmPasswordReset(ctx, dto)).To(Succeed())

				_, err := service.Login(ctx, auth.LoginDTO{Email: "a@x.com", Password: "brand-new-pass"})
				Expect(err).NotTo(HaveOccurred())

				dto.NewPassword1, dto.NewPassword2 = "yet-another-pass", "yet-another-pass"
				expectCode(service.ConfirmPasswordReset(ctx, dto), internal.ErrCodeInvalidResetLink)
			})

			It("should require matching passwords", func() {
				err := service.ConfirmPasswordReset(ctx, auth.PasswordResetConfirmDTO{UID: uid, Token: token, NewPassword1: "brand-new-pass", NewPassword2: "other-pass-1"})
				expectCode(err, internal.ErrCodeValidationFailed)
				appErr, _ := internal.IsAppError(err)
				Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodePasswordMismatch)))
			})

			It("should reject an expired link", func() {
				now = now.Add(73 * time.Hour)

				err := service.ConfirmPasswordReset(ctx, auth.PasswordResetConfirmDTO{UID: uid, Token: token, NewPassword1: "brand-new-pass", NewPassword2: "brand-new-pass"})
				expectCode(err, internal.ErrCodeInvalidResetLink)
			})

			It("should reject a tampered uid", func() {
				err := service.ConfirmPasswordReset(ctx, auth.PasswordResetConfirmDTO{UID: auth.EncodeUID(999), Token: token, NewPassword1: "brand-new-pass", NewPassword2: "brand-new-pass"})
				expectCode(err, internal.ErrCodeInvalidResetLink)
			})
		})
	})
})
