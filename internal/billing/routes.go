package billing

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes wires the billing endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sessions", h.OpenSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.ShowSession)
		r.Delete("/", h.CloseSession)
		r.Post("/rows", h.AddRow)
		r.Post("/rows/{rowID}/field", h.SetField)
		r.Delete("/rows/{rowID}", h.RemoveRow)
		r.Post("/rows/{rowID}/product", h.SelectProduct)
		r.Post("/rows/{rowID}/return", h.ReturnItem)
		r.Post("/returns/{rowID}/undo", h.UndoReturn)
		r.Post("/scan", h.Scan)
		r.Post("/keys", h.KeyInput)
		r.Post("/save", h.Save)
	})

	r.Get("/customers/{customerID}/bills", h.ListBills)
	r.Post("/customers/{customerID}/document", h.GenerateDocument)
	r.Post("/bills/{billID}/payment-status", h.RequestPaymentChange)
	r.Post("/payment-confirmations/{token}", h.ConfirmPaymentChange)
}
