package employees

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/clear-bin", h.ClearBin)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/restore", h.Restore)

		r.Route("/{id}/time-entries", func(r chi.Router) {
			r.Get("/", h.ListTimeEntries)
			r.Post("/", h.AddTimeEntry)
			r.Put("/{entryID}", h.UpdateTimeEntry)
			r.Delete("/{entryID}", h.DeleteTimeEntry)
		})
		r.Route("/{id}/withdrawals", func(r chi.Router) {
			r.Get("/", h.ListWithdrawals)
			r.Post("/", h.AddWithdrawal)
			r.Put("/{withdrawalID}", h.UpdateWithdrawal)
			r.Delete("/{withdrawalID}", h.DeleteWithdrawal)
		})
	})
}
