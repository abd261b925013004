package tenant

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, ownerID int64, dto CreateClientDTO) (*Client, error)
	Get(ctx context.Context, userID, clientID int64) (*Client, error)
	List(ctx context.Context, userID int64, page transport.PageRequest) ([]*Client, int64, error)
	Update(ctx context.Context, userID, clientID int64, dto UpdateClientDTO) (*Client, error)
	Delete(ctx context.Context, userID, clientID int64) error
	Activate(ctx context.Context, userID, clientID int64) (*Client, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// ListClients handles GET /clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	page, err := transport.ParsePage(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	clients, total, err := h.Service.List(r.Context(), principal.UserID, page)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewPage(r, page, total, clients))
}

// CreateClient handles POST /clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	var dto CreateClientDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Create(r.Context(), principal.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

// GetClient handles GET /clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Get(r.Context(), principal.UserID, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// UpdateClient handles PUT and PATCH /clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto UpdateClientDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Update(r.Context(), principal.UserID, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

// DeleteClient handles DELETE /clients/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), principal.UserID, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateClient handles POST /clients/{id}/activate
func (h *Handler) ActivateClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Activate(r.Context(), principal.UserID, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*internal.Principal, bool) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrAuthenticationRequired())
		return nil, false
	}
	return p, true
}
