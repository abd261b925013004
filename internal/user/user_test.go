package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type FakeRepository struct {
	users   map[int64]*user.User
	tenants map[int64][]user.TenantSummary
	err     error
}

func (f *FakeRepository) GetByID(_ context.Context, userID int64) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[userID], nil
}

func (f *FakeRepository) ListTenants(_ context.Context, userID int64) ([]user.TenantSummary, error) {
	return f.tenants[userID], nil
}

var _ = Describe("User", func() {
	Describe("passwords and codes", func() {
		It("should never treat an unusable password as usable", func() {
			u := &user.User{PasswordHash: user.UnusablePassword()}
			Expect(u.HasUsablePassword()).To(BeFalse())
			Expect(strings.HasPrefix(u.PasswordHash, user.UnusablePasswordPrefix)).To(BeTrue())

			u.PasswordHash = "$2a$10$abc"
			Expect(u.HasUsablePassword()).To(BeTrue())
		})

		It("should only report a live code inside its window", func() {
			now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			later := now.Add(time.Minute)
			u := &user.User{VerificationCode: "hash", VerificationCodeExpiresAt: &later}

			Expect(u.HasLiveCode(now)).To(BeTrue())
			Expect(u.HasLiveCode(later)).To(BeFalse())

			u.VerificationCode = ""
			Expect(u.HasLiveCode(now)).To(BeFalse())
		})

		It("should default the role when mapping to the data model", func() {
			dm := user.ToDataModel(&user.User{Email: "a@x.com", VerificationCode: "h"})
			Expect(dm.Role).To(Equal("employee"))
			Expect(*dm.VerificationCode).To(Equal("h"))

			back := user.FromDataModel(dm)
			Expect(back.VerificationCode).To(Equal("h"))
		})
	})

	Describe("GET /users/me", func() {
		var (
			repo    *FakeRepository
			handler *user.Handler
		)

		BeforeEach(func() {
			repo = &FakeRepository{
				users: map[int64]*user.User{
					7: {ID: 7, Email: "jane@acme.io", PasswordHash: "secret", IsActive: true},
				},
				tenants: map[int64][]user.TenantSummary{},
			}
			handler = user.NewHandler(transport.NewBaseHandler(nil), user.NewService(repo))
		})

		get := func(ctx context.Context) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil).WithContext(ctx)
			w := httptest.NewRecorder()
			handler.GetCurrentUser(w, req)
			return w
		}

		It("should return the profile with an empty tenant list", func() {
			w := get(internal.ContextWithPrincipal(context.Background(), &internal.Principal{UserID: 7}))

			Expect(w.Code).To(Equal(http.StatusOK))
			var body map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body["email"]).To(Equal("jane@acme.io"))
			Expect(body["tenants"]).To(BeEmpty())
			Expect(body).NotTo(HaveKey("PasswordHash"))
			Expect(w.Body.String()).NotTo(ContainSubstring("secret"))
		})

		It("should list the caller's tenants", func() {
			repo.tenants[7] = []user.TenantSummary{{ID: 2, Name: "Acme", Slug: "acme"}}

			w := get(internal.ContextWithPrincipal(context.Background(), &internal.Principal{UserID: 7}))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"slug":"acme"`))
		})

		It("should return 401 without a principal", func() {
			Expect(get(context.Background()).Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 404 for a vanished user", func() {
			w := get(internal.ContextWithPrincipal(context.Background(), &internal.Principal{UserID: 99}))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return 500 on repository failure", func() {
			repo.err = errors.New("connection reset")

			w := get(internal.ContextWithPrincipal(context.Background(), &internal.Principal{UserID: 7}))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("connection reset"))
		})
	})
})
