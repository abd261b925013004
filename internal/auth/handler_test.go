package auth_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
	return body.Error.Code
}

var _ = Describe("Auth Handler", func() {
	var (
		repo      *MockRepository
		publisher *RecordingPublisher
		handler   *auth.Handler
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		publisher = &RecordingPublisher{}
		tokens := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
		resets := auth.NewPasswordResetTokens("reset-secret", 72*time.Hour)
		service := auth.NewService(repo, tokens, resets, NewMockBlacklist(), publisher, auth.ServiceConfig{
			BCryptCost:  bcrypt.MinCost,
			FrontendURL: "http://localhost:3000",
		})
		handler = auth.NewHandler(transport.NewBaseHandler(slogger), service)

		hash, err := auth.HashPassword("s3cretpass", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		u := repo.AddUser(&user.User{Email: "owner@acme.io", PasswordHash: hash, IsActive: true, IsVerified: true})
		repo.SetLatestTenant(u.ID, 9)
	})

	Describe("POST /auth/login", func() {
		It("should return the pair and the related tenant header", func() {
			w := postJSON(handler.Login, `{"email":"owner@acme.io","password":"s3cretpass"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get(auth.RelatedTenantHeader)).To(Equal("9"))

			var pair auth.TokenPair
			Expect(json.Unmarshal(w.Body.Bytes(), &pair)).To(Succeed())
			Expect(pair.Access).NotTo(BeEmpty())
			Expect(pair.Refresh).NotTo(BeEmpty())
		})

		It("should return 401 for bad credentials", func() {
			w := postJSON(handler.Login, `{"email":"owner@acme.io","password":"nope-nope"}`)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(w)).To(Equal("INVALID_CREDENTIALS"))
		})

		It("should return 400 for malformed bodies", func() {
			w := postJSON(handler.Login, `{"email":"owner@acme.io","password":"x","extra":true}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal("INVALID_REQUEST_BODY"))
		})
	})

	Describe("POST /auth/register", func() {
		It("should return 200 and dispatch a code", func() {
			w := postJSON(handler.Register, `{"email":"new@acme.io","password":"s3cretpass"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(publisher.LastCode()).NotTo(BeEmpty())
			Expect(w.Body.String()).NotTo(ContainSubstring(publisher.LastCode()))
		})

		It("should return 400 when the user already exists", func() {
			w := postJSON(handler.Register, `{"email":"owner@acme.io","password":"s3cretpass"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal("USER_ALREADY_EXISTS"))
		})
	})

	Describe("POST /auth/token/refresh", func() {
		It("should return 400 for an invalid token", func() {
			w := postJSON(handler.RefreshToken, `{"refresh":"not-a-jwt"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal("INVALID_TOKEN"))
		})
	})

	Describe("POST /auth/password/reset", func() {
		It("should answer the same for known and unknown emails", func() {
			known := postJSON(handler.PasswordReset, `{"email":"owner@acme.io"}`)
			unknown := postJSON(handler.PasswordReset, `{"email":"ghost@acme.io"}`)

			Expect(known.Code).To(Equal(http.StatusOK))
			Expect(unknown.Code).To(Equal(http.StatusOK))
			Expect(known.Body.String()).To(Equal(unknown.Body.String()))
		})

		It("should answer the same for malformed input", func() {
			known := postJSON(handler.PasswordReset, `{"email":"owner@acme.io"}`)

			for _, body := range []string{`{"email":"not-an-email"}`, `{}`, `not json`} {
				w := postJSON(handler.PasswordReset, body)
				Expect(w.Code).To(Equal(http.StatusOK), body)
				Expect(w.Body.String()).To(Equal(known.Body.String()), body)
			}
		})

		It("should still surface server failures", func() {
			repo.SetShouldFail(errDatabase)

			w := postJSON(handler.PasswordReset, `{"email":"owner@acme.io"}`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("POST /auth/password/reset/confirm", func() {
		It("should return 400 for a bogus link", func() {
			w := postJSON(handler.PasswordResetConfirm, `{"uid":"MQ","token":"bogus","new_password1":"brand-new-pass","new_password2":"brand-new-pass"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal("INVALID_RESET_LINK"))
		})
	})
})
