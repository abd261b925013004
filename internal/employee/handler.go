package employee

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, page transport.PageRequest) ([]*Employee, int64, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	Me(ctx context.Context, userID int64) (*Employee, error)
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error)
	Delete(ctx context.Context, id int64, force bool) error
	GetPersonalDetail(ctx context.Context, actor *auth.Actor, employeeID int64) (*PersonalDetail, error)
	SavePersonalDetail(ctx context.Context, actor *auth.Actor, employeeID int64, dto PersonalDetailDTO) (*PersonalDetail, bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListEmployees handles GET /employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := transport.ParsePage(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	employees, total, err := h.Service.List(r.Context(), page)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transport.NewPage(r, page, total, employees))
}

// CreateEmployee handles POST /employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	e, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}

// GetEmployee handles GET /employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

// GetCurrentEmployee handles GET /employees/me
func (h *Handler) GetCurrentEmployee(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrAuthenticationRequired())
		return
	}
	e, err := h.Service.Me(r.Context(), principal.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

// UpdateEmployee handles PUT and PATCH /employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto UpdateEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	e, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

// DeleteEmployee handles DELETE /employees/{id}?force=true
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	force := strings.EqualFold(r.URL.Query().Get("force"), "true")
	if err := h.Service.Delete(r.Context(), id, force); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPersonalDetail handles GET /employees/{id}/personal-detail
func (h *Handler) GetPersonalDetail(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.personalDetailTarget(w, r)
	if !ok {
		return
	}
	pd, err := h.Service.GetPersonalDetail(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, pd)
}

// SavePersonalDetail handles POST (201) and PATCH (200)
// /employees/{id}/personal-detail
func (h *Handler) SavePersonalDetail(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.personalDetailTarget(w, r)
	if !ok {
		return
	}
	var dto PersonalDetailDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	pd, _, err := h.Service.SavePersonalDetail(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, pd)
}

func (h *Handler) personalDetailTarget(w http.ResponseWriter, r *http.Request) (*auth.Actor, int64, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrAuthenticationRequired())
		return nil, 0, false
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return nil, 0, false
	}
	return actor, id, true
}
