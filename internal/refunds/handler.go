package refunds

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the refund endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditRecorder
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditRecorder) *Handler {
	return &Handler{logger: logger, service: service, audit: audit}
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
	q := r.URL.Query()

	filter := ListFilter{
		Status: q.Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if v := q.Get("order_id"); v != "" {
		filter.OrderID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &t
		}
	}

	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list refunds failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Refunds retrieved",
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
	refund, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Refund retrieved", refund)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRefundRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	refund, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create refund failed", "error", err, "order_id", req.OrderID)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Refund created", refund)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRefundRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	refund, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Refund updated", refund)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRefundStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	refund, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update refund status failed", "error", err, "id", id, "status", req.Status)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Refund status updated", refund)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.logger.Error("delete refund failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "refund.delete", strconv.FormatInt(id, 10))
	httpx.OK(w, "Refund deleted", nil)
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string) {
	if h.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  shared.ActorID(r.Context()),
		Action:   action,
		Entity:   "refund",
		EntityID: entityID,
	}
	if err := h.audit.Record(r.Context(), log); err != nil {
		h.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
