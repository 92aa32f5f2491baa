package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campus-hub/campus-events-api/internal/auth"
)

type Handlers struct {
	Auth          *auth.AuthHandler
	Events        *EventHandler
	Registrations *RegistrationHandler
	Locations     *LocationHandler
	Settings      *SettingHandler
	Messages      *MessageHandler
	Users         *UserHandler
	APIKeys       *APIKeyHandler
	Attachments   *AttachmentHandler
}

func RegisterRoutes(r *chi.Mux, h Handlers) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Campus Events API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"apiKey": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKey": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth routes
	r.Post("/auth/login", h.Auth.HandleLogin)
	r.Post("/auth/logout", h.Auth.HandleLogout)
	r.Get("/auth/sso/login", h.Auth.HandleSSOLogin)
	r.Get("/auth/sso/callback", h.Auth.HandleSSOCallback)

	// Users
	huma.Get(api, "/me", h.Users.HandleMe, secured)
	huma.Get(api, "/users", h.Users.HandleList, secured)
	huma.Post(api, "/users", h.Users.HandleCreate, secured)
	huma.Put(api, "/users/{id}", h.Users.HandleUpdate, secured)

	// API keys
	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	// Events
	huma.Post(api, "/events", h.Events.HandleCreate, secured)
	huma.Get(api, "/events", h.Events.HandleList, secured)
	huma.Get(api, "/events/{id}", h.Events.HandleGet)
	huma.Put(api, "/events/{id}", h.Events.HandleUpdate, secured)
	huma.Delete(api, "/events/{id}", h.Events.HandleDelete, secured)
	huma.Post(api, "/events/{id}/submit", h.Events.HandleSubmit, secured)
	huma.Post(api, "/events/{id}/approve", h.Events.HandleApprove, secured)
	huma.Post(api, "/events/{id}/request-revision", h.Events.HandleRequestRevision, secured)
	huma.Post(api, "/events/{id}/publish", h.Events.HandlePublish, secured)
	huma.Post(api, "/events/{id}/cancel", h.Events.HandleCancel, secured)
	huma.Get(api, "/events/{id}/history", h.Events.HandleHistory, secured)

	// Registrations
	huma.Post(api, "/events/{id}/register", h.Registrations.HandleRegister, secured)
	huma.Delete(api, "/events/{id}/register", h.Registrations.HandleUnregister, secured)
	huma.Get(api, "/events/{id}/stats", h.Registrations.HandleStats)
	huma.Get(api, "/events/{id}/registrations", h.Registrations.HandleListForEvent, secured)
	huma.Get(api, "/registrations", h.Registrations.HandleMyRegistrations, secured)

	// Locations
	huma.Get(api, "/locations", h.Locations.HandleList)
	huma.Post(api, "/locations", h.Locations.HandleCreate, secured)
	huma.Put(api, "/locations/{id}", h.Locations.HandleUpdate, secured)

	// Settings
	huma.Get(api, "/settings/public", h.Settings.HandlePublic)
	huma.Get(api, "/settings", h.Settings.HandleList, secured)
	huma.Put(api, "/settings", h.Settings.HandleUpsert, secured)

	// Messages
	huma.Post(api, "/messages", h.Messages.HandleCreate, secured)
	huma.Get(api, "/messages", h.Messages.HandleList, secured)
	huma.Post(api, "/messages/{id}/read", h.Messages.HandleMarkRead, secured)

	// Attachments go through plain chi routes (multipart/raw bytes).
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Middleware)
		r.Post("/events/{id}/attachments", h.Attachments.HandleUpload)
		r.Get("/events/{id}/attachments", h.Attachments.HandleListForEvent)
		r.Get("/attachments/{attachmentID}", h.Attachments.HandleDownload)
	})
}
