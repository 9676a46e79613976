package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the customer endpoints directly over the repository.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/clear-bin", h.ClearBin)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/restore", h.Restore)
	})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.PageParams(r)
	filter := ListFilter{
		Query:          r.URL.Query().Get("q"),
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
		Limit:          limit,
		Offset:         offset,
	}
	rows, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list customers failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Customers retrieved",
		Data:       rows,
		Pagination: shared.NewPagination(limit, offset, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Customer retrieved", customer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.repo.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create customer failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Customer created", customer)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateCustomerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.repo.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Customer updated", customer)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Customer moved to recycle bin", nil)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.repo.Restore(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Customer restored", customer)
}

func (h *Handler) ClearBin(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.ClearBin(r.Context())
	if err != nil {
		h.logger.Error("clear customer bin failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Recycle bin cleared", map[string]any{"deleted": count})
}
