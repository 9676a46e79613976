package procurement

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the purchase order endpoints.
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
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	}
	if v := q.Get("supplier_id"); v != "" {
		filter.SupplierID, _ = strconv.ParseInt(v, 10, 64)
	}

	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list purchase orders failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Purchase orders retrieved",
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
	po, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Purchase order retrieved", po)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePORequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create purchase order failed", "error", err, "supplier_id", req.SupplierID)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Purchase order created", po)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdatePOStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update purchase order status failed", "error", err, "id", id, "status", req.Status)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Purchase order status updated", po)
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdatePOPaymentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	po, err := h.service.UpdatePayment(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update purchase order payment failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Payment updated", po)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.logger.Error("delete purchase order failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "purchase_order.delete", strconv.FormatInt(id, 10))
	httpx.OK(w, "Purchase order deleted", nil)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.PageParams(r)
	var poID int64
	if v := r.URL.Query().Get("purchase_order_id"); v != "" {
		poID, _ = strconv.ParseInt(v, 10, 64)
	}
	items, total, err := h.service.ListItems(r.Context(), poID, limit, offset)
	if err != nil {
		h.logger.Error("list purchase order items failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Purchase order items retrieved",
		Data:       items,
		Pagination: shared.NewPagination(limit, offset, total),
	})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Purchase order item retrieved", item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdatePOItemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.UpdateItem(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update purchase order item failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Purchase order item updated", item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveItem(r.Context(), id); err != nil {
		h.logger.Error("delete purchase order item failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Purchase order item deleted", nil)
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string) {
	if h.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  shared.ActorID(r.Context()),
		Action:   action,
		Entity:   "purchase_order",
		EntityID: entityID,
	}
	if err := h.audit.Record(r.Context(), log); err != nil {
		h.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
