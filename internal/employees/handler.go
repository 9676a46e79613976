package employees

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
	"github.com/abed1srour/POS-backend/internal/shared"
)

// Handler exposes the employee endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditRecorder
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditRecorder) *Handler {
	return &Handler{logger: logger, service: service, audit: audit}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ErrValidation
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := shared.PageParams(r)
	filter := ListFilter{
		Query:          r.URL.Query().Get("q"),
		Status:         r.URL.Query().Get("status"),
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
		Limit:          limit,
		Offset:         offset,
	}
	rows, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list employees failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{
		Message:    "Employees retrieved",
		Data:       rows,
		Pagination: shared.NewPagination(limit, offset, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Employee retrieved", employee)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create employee failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Employee created", employee)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateEmployeeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Employee updated", employee)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "employee.delete", strconv.FormatInt(id, 10))
	httpx.OK(w, "Employee moved to recycle bin", nil)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.service.Restore(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Employee restored", employee)
}

func (h *Handler) ClearBin(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ClearBin(r.Context())
	if err != nil {
		h.logger.Error("clear employee bin failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Recycle bin cleared", map[string]any{"deleted": count})
}

func (h *Handler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListTimeEntries(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Time entries retrieved", entries)
}

func (h *Handler) AddTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req TimeEntryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.AddTimeEntry(r.Context(), id, req)
	if err != nil {
		h.logger.Error("add time entry failed", "error", err, "employee_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Time entry added", entry)
}

func (h *Handler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req TimeEntryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.UpdateTimeEntry(r.Context(), id, entryID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Time entry updated", entry)
}

func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveTimeEntry(r.Context(), id, entryID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Time entry deleted", nil)
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	withdrawals, err := h.service.ListWithdrawals(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Withdrawals retrieved", withdrawals)
}

func (h *Handler) AddWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req WithdrawalRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	withdrawal, err := h.service.AddWithdrawal(r.Context(), id, req)
	if err != nil {
		h.logger.Error("add withdrawal failed", "error", err, "employee_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Withdrawal added", withdrawal)
}

func (h *Handler) UpdateWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	withdrawalID, err := pathID(r, "withdrawalID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req WithdrawalRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	withdrawal, err := h.service.UpdateWithdrawal(r.Context(), id, withdrawalID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Withdrawal updated", withdrawal)
}

func (h *Handler) DeleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	withdrawalID, err := pathID(r, "withdrawalID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveWithdrawal(r.Context(), id, withdrawalID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Withdrawal deleted", nil)
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string) {
	if h.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  shared.ActorID(r.Context()),
		Action:   action,
		Entity:   "employee",
		EntityID: entityID,
	}
	if err := h.audit.Record(r.Context(), log); err != nil {
		h.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
