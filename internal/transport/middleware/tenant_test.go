package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type FakeDirectory struct {
	tenants map[int64]*internal.TenantRef
	members map[int64][]int64
	err     error
}

func (d *FakeDirectory) Lookup(_ context.Context, clientID int64) (*internal.TenantRef, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.tenants[clientID], nil
}

func (d *FakeDirectory) IsActiveMember(_ context.Context, userID, clientID int64) (bool, error) {
	for _, id := range d.members[userID] {
		if id == clientID {
			return true, nil
		}
	}
	return false, nil
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

var _ = Describe("SchemaRouter", func() {
	var (
		directory *FakeDirectory
		tokens    *auth.JWTTokenGenerator
		router    *middleware.SchemaRouter
		seen      *internal.TenantRef
		principal *internal.Principal
		handler   http.Handler
		capture   http.HandlerFunc
	)

	BeforeEach(func() {
		base := transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
		directory = &FakeDirectory{
			tenants: map[int64]*internal.TenantRef{
				1: {ID: 1, Schema: "public", Public: true},
				2: {ID: 2, Schema: "acme"},
				3: {ID: 3, Schema: "globex"},
			},
			members: map[int64][]int64{
				10: {1, 2},
			},
		}
		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
		router = middleware.NewSchemaRouter(directory, tokens, "", base)

		seen, principal = nil, nil
		capture = func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.TenantFromContext(r.Context())
			principal, _ = internal.PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}
		handler = router.Handler(capture)
	})

	request := func(client, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
		if client != "" {
			req.Header.Set("X-Client", client)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	accessFor := func(userID int64) string {
		pair, err := tokens.GeneratePair(userID, "someone@acme.io")
		Expect(err).NotTo(HaveOccurred())
		return pair.Access
	}

	It("should bind a member to the requested tenant", func() {
		w := request("2", accessFor(10))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(seen).NotTo(BeNil())
		Expect(seen.Schema).To(Equal("acme"))
		Expect(principal.UserID).To(Equal(int64(10)))
	})

	It("should let anonymous requests through against the tenant", func() {
		w := request("1", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(seen.Public).To(BeTrue())
		Expect(principal).To(BeNil())
	})

	DescribeTable("should answer every resolution failure the same way",
		func(client string, userID int64) {
			token := ""
			if userID != 0 {
				token = accessFor(userID)
			}

			w := request(client, token)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(w)).To(Equal("TENANT_NOT_FOUND"))
			Expect(seen).To(BeNil())
		},
		Entry("missing header", "", int64(0)),
		Entry("garbage header", "acme", int64(0)),
		Entry("unknown tenant", "99", int64(10)),
		Entry("tenant the caller does not belong to", "3", int64(10)),
	)

	It("should make cross-tenant access indistinguishable from a missing tenant", func() {
		crossTenant := request("3", accessFor(10))
		missing := request("99", accessFor(10))

		Expect(crossTenant.Code).To(Equal(missing.Code))
		Expect(crossTenant.Body.String()).To(Equal(missing.Body.String()))
	})

	It("should reject invalid bearer tokens before looking up the tenant", func() {
		w := request("99", "not-a-jwt")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(w)).To(Equal("INVALID_TOKEN"))
	})

	It("should reject refresh tokens used as bearer tokens", func() {
		pair, err := tokens.GeneratePair(10, "someone@acme.io")
		Expect(err).NotTo(HaveOccurred())

		w := request("2", pair.Refresh)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should surface directory failures as 500", func() {
		directory.err = errors.New("connection refused")

		w := request("2", "")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("connection refused"))
	})

	Describe("RequireTenantSchema", func() {
		BeforeEach(func() {
			handler = router.Handler(router.RequireTenantSchema(capture))
		})

		It("should refuse the public schema", func() {
			w := request("1", accessFor(10))

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(w)).To(Equal("TENANT_NOT_FOUND"))
		})

		It("should pass tenant schemas", func() {
			w := request("2", accessFor(10))

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})
})
