package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the product endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
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
		Query:          q.Get("q"),
		IncludeDeleted: q.Get("include_deleted") == "true",
		DeletedOnly:    q.Get("deleted_only") == "true",
		Sort:           q.Get("sort"),
		Order:          q.Get("order"),
		Limit:          limit,
		Offset:         offset,
	}
	if v := q.Get("category_id"); v != "" {
		filter.CategoryID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("supplier_id"); v != "" {
		filter.SupplierID, _ = strconv.ParseInt(v, 10, 64)
	}

	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Products retrieved",
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
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Product retrieved", product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create product failed", "error", err, "name", req.Name)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Product created", product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateProductRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update product failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Product updated", product)
}

func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateStockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.UpdateStock(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Stock updated", product)
}

func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req RestockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	stock, err := h.service.Restock(r.Context(), id, req)
	if err != nil {
		h.logger.Error("restock product failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Stock added with average cost", stock)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Product moved to recycle bin", nil)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Restore(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Product restored", product)
}

func (h *Handler) ClearBin(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ClearBin(r.Context())
	if err != nil {
		h.logger.Error("clear product bin failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Recycle bin cleared", report)
}
