package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

// MountProtectedRoutes mounts the endpoints behind the auth middleware.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.Me)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	pair, emp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.logger.Warn("login failed", "username", req.Username)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Login successful", map[string]any{
		"tokens":   pair,
		"employee": emp,
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	pair, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Token refreshed", pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Logged out", nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	employeeID := shared.ActorID(r.Context())
	if employeeID == 0 {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	emp, err := h.service.Me(r.Context(), employeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Account retrieved", emp)
}
