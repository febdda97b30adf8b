package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civiceye/backend/internal/handlers"
)

// Gate guards mutating routes. Reads stay open because sibling services
// validate references through them.
type Gate func(http.Handler) http.Handler

// UserRoutes mounts the identity registry.
func UserRoutes(h *handlers.UserHandler, gate Gate) func(r chi.Router) {
	return func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Get("/", h.List)
			r.Get("/exists", h.Exists)
			r.Get("/email/{email}", h.GetByEmail)
			r.Get("/username/{username}", h.GetByUsername)
			r.Get("/{id}", h.Get)

			r.Group(func(r chi.Router) {
				r.Use(gate)
				r.Put("/{id}", h.Update)
				r.Delete("/{id}", h.Delete)
			})
		})
	}
}

// ComplaintRoutes mounts the complaint ledger.
func ComplaintRoutes(h *handlers.ComplaintHandler, gate Gate) func(r chi.Router) {
	return func(r chi.Router) {
		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/count", h.Count)
			r.Get("/user/{userId}", h.ListByUser)
			r.Get("/{id}", h.Get)

			r.Group(func(r chi.Router) {
				r.Use(gate)
				r.Post("/", h.Create)
				r.Put("/{id}", h.Update)
				r.Put("/{id}/status", h.SetStatus)
				r.Delete("/{id}", h.Delete)
			})
		})
	}
}

// MediaRoutes mounts the media vault.
func MediaRoutes(h *handlers.MediaHandler, gate Gate) func(r chi.Router) {
	return func(r chi.Router) {
		r.Route("/media", func(r chi.Router) {
			r.Get("/complaint/{complaintId}", h.ListByComplaint)
			r.Get("/{id}", h.Get)
			r.Get("/{id}/download", h.Download)

			r.Group(func(r chi.Router) {
				r.Use(gate)
				r.Post("/upload", h.Upload)
				r.Delete("/{id}", h.Delete)
			})
		})
	}
}

// NotificationRoutes mounts the notification relay. Creation is not gated:
// the complaint ledger posts here without a user token.
func NotificationRoutes(h *handlers.NotificationHandler, gate Gate) func(r chi.Router) {
	return func(r chi.Router) {
		r.Route("/notifications", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Get("/user/{userId}", h.ListByUser)
			r.Get("/{id}", h.Get)

			r.Group(func(r chi.Router) {
				r.Use(gate)
				r.Put("/{id}/read", h.MarkRead)
				r.Delete("/{id}", h.Delete)
			})
		})
	}
}
