package auth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hrm/internal"
	"github.com/frahmantamala/hrm/internal/transport"
)

// RelatedTenantHeader exposes the caller's most recently joined tenant on a
// successful login.
const RelatedTenantHeader = "X-Related-Tenant"

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	Register(ctx context.Context, dto RegisterDTO) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, dto VerifyEmailDTO) (*VerifyEmailResponse, error)
	ResendVerification(ctx context.Context, dto ResendVerificationDTO) (*RegisterResponse, error)
	Refresh(ctx context.Context, dto RefreshTokenDTO) (TokenPair, error)
	Logout(ctx context.Context, dto RefreshTokenDTO) error
	RequestPasswordReset(ctx context.Context, dto PasswordResetDTO) error
	ConfirmPasswordReset(ctx context.Context, dto PasswordResetConfirmDTO) error
	ValidateAccessToken(tokenString string) (*Claims, error)
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

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if res.RelatedTenantID != nil {
		w.Header().Set(RelatedTenantHeader, strconv.FormatInt(*res.RelatedTenantID, 10))
	}
	h.WriteJSON(w, http.StatusOK, res.Tokens)
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}

// RefreshToken handles POST /auth/token/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Service.Refresh(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Logout(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyEmail handles POST /auth/email/verify
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var dto VerifyEmailDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.VerifyEmail(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}

// ResendVerification handles POST /auth/email/resend-verification
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var dto ResendVerificationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.ResendVerification(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}

// PasswordReset handles POST /auth/password/reset. The response is the same
// whether or not the email belongs to an account, and malformed input gets
// the same answer too. Only server failures surface.
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var dto PasswordResetDTO
	err := h.DecodeJSON(r, &dto)
	if err == nil {
		err = h.Service.RequestPasswordReset(r.Context(), dto)
	}
	if err != nil && !isClientError(err) {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DetailResponse{Detail: "Password reset e-mail has been sent."})
}

func isClientError(err error) bool {
	appErr, ok := internal.IsAppError(err)
	return ok && appErr.StatusCode < http.StatusInternalServerError
}

// PasswordResetConfirm handles POST /auth/password/reset/confirm
func (h *Handler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var dto PasswordResetConfirmDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.ConfirmPasswordReset(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DetailResponse{Detail: "Password has been reset with the new password."})
}
