package tenant_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/tenant"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tenant Handler", func() {
	const ownerID int64 = 10

	var (
		repo   *MockRepository
		router chi.Router
	)

	do := func(method, path, body string, userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if userID != 0 {
			req = req.WithContext(internal.ContextWithPrincipal(req.Context(), &internal.Principal{UserID: userID}))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		public := repo.AddClient(&tenant.Client{Name: "Public", Slug: "public", SchemaName: "public", IsActive: true})
		repo.AddMember(ownerID, public.ID)

		service := tenant.NewService(repo, &FakeProvisioner{}, &FakeEnroller{})
		handler := tenant.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Get("/clients", handler.ListClients)
		router.Post("/clients", handler.CreateClient)
		router.Get("/clients/{id}", handler.GetClient)
		router.Patch("/clients/{id}", handler.UpdateClient)
		router.Delete("/clients/{id}", handler.DeleteClient)
		router.Post("/clients/{id}/activate", handler.ActivateClient)
	})

	It("creates and lists companies", func() {
		w := do(http.MethodPost, "/clients", `{"name":"Acme","slug":"acme"}`, ownerID)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())
		Expect(created["slug"]).To(Equal("acme"))
		Expect(created["owner"]).To(BeNumerically("==", ownerID))
		Expect(created).NotTo(HaveKey("SchemaName"))

		w = do(http.MethodGet, "/clients", "", ownerID)
		Expect(w.Code).To(Equal(http.StatusOK))
		var page transport.Page[map[string]interface{}]
		Expect(json.Unmarshal(w.Body.Bytes(), &page)).To(Succeed())
		Expect(page.Count).To(Equal(int64(1)))
		Expect(page.Next).To(BeNil())
		Expect(page.Results[0]["name"]).To(Equal("Acme"))
	})

	It("requires an authenticated caller", func() {
		w := do(http.MethodGet, "/clients", "", 0)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("answers 404 for companies the caller does not belong to", func() {
		other := repo.AddClient(&tenant.Client{Name: "Globex", Slug: "globex", SchemaName: "globex", IsActive: true})
		w := do(http.MethodGet, "/clients/"+itoa(other.ID), "", ownerID)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a malformed id", func() {
		w := do(http.MethodGet, "/clients/abc", "", ownerID)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("deletes with 204 and activates again", func() {
		c, err := tenant.NewService(repo, &FakeProvisioner{}, &FakeEnroller{}).
			Create(context.Background(), ownerID, tenant.CreateClientDTO{Name: "Acme", Slug: "acme"})
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodDelete, "/clients/"+itoa(c.ID), "", ownerID)
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(repo.Stored(c.ID).IsActive).To(BeFalse())

		w = do(http.MethodPost, "/clients/"+itoa(c.ID)+"/activate", "", ownerID)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(repo.Stored(c.ID).IsActive).To(BeTrue())
	})
})
