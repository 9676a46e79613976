package payments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the payment endpoints.
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
		Status:         q.Get("status"),
		IncludeDeleted: q.Get("include_deleted") == "true",
		Limit:          limit,
		Offset:         offset,
	}
	if v := q.Get("order_id"); v != "" {
		filter.OrderID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("purchase_order_id"); v != "" {
		filter.PurchaseOrderID, _ = strconv.ParseInt(v, 10, 64)
	}

	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list payments failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Payments retrieved",
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
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Payment retrieved", payment)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create payment failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Payment recorded", result)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdatePaymentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update payment failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Payment updated", payment)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.logger.Error("delete payment failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "payment.delete", strconv.FormatInt(id, 10), nil)
	httpx.OK(w, "Payment moved to recycle bin", nil)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payment, err := h.service.Restore(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "payment.restore", strconv.FormatInt(id, 10), nil)
	httpx.OK(w, "Payment restored", payment)
}

func (h *Handler) ClearBin(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ClearBin(r.Context())
	if err != nil {
		h.logger.Error("clear payment bin failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "payment.clear_bin", "", map[string]any{"purged": count})
	httpx.OK(w, "Recycle bin cleared", map[string]any{"deleted": count})
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, meta map[string]any) {
	if h.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  shared.ActorID(r.Context()),
		Action:   action,
		Entity:   "payment",
		EntityID: entityID,
		Meta:     meta,
	}
	if err := h.audit.Record(r.Context(), log); err != nil {
		h.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
