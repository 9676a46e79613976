package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the order endpoints.
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

	var customerID int64
	if v := q.Get("customer_id"); v != "" {
		customerID, _ = strconv.ParseInt(v, 10, 64)
	}

	filter := ListFilter{
		Status:         q.Get("status"),
		CustomerID:     customerID,
		DateFrom:       q.Get("date_from"),
		DateTo:         q.Get("date_to"),
		Query:          q.Get("q"),
		IncludeDeleted: q.Get("include_deleted") == "true",
		Limit:          limit,
		Offset:         offset,
	}

	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Orders retrieved",
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
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Order retrieved", detail)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create order failed", "error", err, "customer_id", req.CustomerID)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Order created", order)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update order status failed", "error", err, "id", id, "status", req.Status)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Order updated", order)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.logger.Error("delete order failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "order.delete", strconv.FormatInt(id, 10), nil)
	httpx.OK(w, "Order moved to recycle bin", nil)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.Restore(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "order.restore", strconv.FormatInt(id, 10), nil)
	httpx.OK(w, "Order restored", order)
}

func (h *Handler) ClearBin(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ClearBin(r.Context())
	if err != nil {
		h.logger.Error("clear order bin failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "order.clear_bin", "", map[string]any{"purged": count})
	httpx.OK(w, "Recycle bin cleared", map[string]any{"deleted": count})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.PageParams(r)
	var orderID int64
	if v := r.URL.Query().Get("order_id"); v != "" {
		orderID, _ = strconv.ParseInt(v, 10, 64)
	}
	items, total, err := h.service.ListItems(r.Context(), orderID, limit, offset)
	if err != nil {
		h.logger.Error("list order items failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Order items retrieved",
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
	httpx.OK(w, "Order item retrieved", item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateOrderItemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.UpdateItem(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update order item failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Order item updated", item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveItem(r.Context(), id); err != nil {
		h.logger.Error("delete order item failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Order item deleted", nil)
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string, meta map[string]any) {
	if h.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  shared.ActorID(r.Context()),
		Action:   action,
		Entity:   "order",
		EntityID: entityID,
		Meta:     meta,
	}
	if err := h.audit.Record(r.Context(), log); err != nil {
		h.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
