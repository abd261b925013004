package auth_test

import (
	"time"

	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/user"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tokens", func() {
	var (
		now time.Time
		gen *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		gen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Hour, 24*time.Hour).
			WithClock(func() time.Time { return now })
	})

	Describe("JWTTokenGenerator", func() {
		It("should carry the user id and a unique jti", func() {
			first, err := gen.GeneratePair(7, "a@x.com")
			Expect(err).NotTo(HaveOccurred())
			second, err := gen.GeneratePair(7, "a@x.com")
			Expect(err).NotTo(HaveOccurred())

			a, err := gen.ValidateRefreshToken(first.Refresh)
			Expect(err).NotTo(HaveOccurred())
			b, err := gen.ValidateRefreshToken(second.Refresh)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.UserID).To(Equal(int64(7)))
			Expect(a.ID).NotTo(Equal(b.ID))
			Expect(a.ExpiresAt.Time).To(BeTemporally("==", now.Add(24*time.Hour)))
		})

		It("should not accept a token of the other kind", func() {
			pair, err := gen.GeneratePair(7, "a@x.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = gen.ValidateAccessToken(pair.Refresh)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
			_, err = gen.ValidateRefreshToken(pair.Access)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should report expiry separately", func() {
			pair, err := gen.GeneratePair(7, "a@x.com")
			Expect(err).NotTo(HaveOccurred())

			now = now.Add(2 * time.Hour)
			_, err = gen.ValidateAccessToken(pair.Access)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("should reject tokens signed with another algorithm", func() {
			claims := &auth.Claims{
				UserID:    7,
				TokenType: auth.TokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{
					ID:        "x",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}
			unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())

			_, err = gen.ValidateAccessToken(unsigned)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("PasswordResetTokens", func() {
		var (
			resets *auth.PasswordResetTokens
			u      *user.User
		)

		BeforeEach(func() {
			resets = auth.NewPasswordResetTokens("reset-secret", 72*time.Hour).WithClock(func() time.Time { return now })
			u = &user.User{ID: 3, Email: "a@x.com", PasswordHash: "hash-1"}
		})

		It("should be bound to the password hash", func() {
			token, err := resets.Make(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(resets.Check(u, token)).To(BeTrue())

			u.PasswordHash = "hash-2"
			Expect(resets.Check(u, token)).To(BeFalse())
		})

		It("should be bound to the last login", func() {
			token, err := resets.Make(u)
			Expect(err).NotTo(HaveOccurred())

			login := now.Add(time.Minute)
			u.LastLogin = &login
			Expect(resets.Check(u, token)).To(BeFalse())
		})

		It("should not validate for another user", func() {
			token, err := resets.Make(u)
			Expect(err).NotTo(HaveOccurred())

			other := *u
			other.ID = 4
			Expect(resets.Check(&other, token)).To(BeFalse())
		})

		It("should round trip uids", func() {
			id, err := auth.DecodeUID(auth.EncodeUID(12345))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(12345)))

			_, err = auth.DecodeUID("!!not-base64")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Verification codes", func() {
		It("should produce six uppercase alphanumerics", func() {
			for i := 0; i < 20; i++ {
				code, err := auth.GenerateVerificationCode()
				Expect(err).NotTo(HaveOccurred())
				Expect(code).To(MatchRegexp(`^[A-Z0-9]{6}$`))
			}
		})

		It("should compare hashes case-insensitively", func() {
			hash, err := auth.HashVerificationCode("AB12CD", 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.VerificationCodeMatches(hash, "ab12cd")).To(BeTrue())
			Expect(auth.VerificationCodeMatches(hash, "AB12CE")).To(BeFalse())
			Expect(auth.VerificationCodeMatches("", "AB12CD")).To(BeFalse())
		})
	})
})
