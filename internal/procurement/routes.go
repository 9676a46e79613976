package procurement

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Put("/{id}/payment", h.UpdatePayment)
		r.Delete("/{id}", h.Delete)
	})
	r.Route("/purchase-order-items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Get("/{id}", h.GetItem)
		r.Put("/{id}", h.UpdateItem)
		r.Delete("/{id}", h.DeleteItem)
	})
}
