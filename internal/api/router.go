package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/goalservice"
	"github.com/starford/jera/internal/models"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer tokens are resolved; with it off
// every request runs as localUser. sseHandler, if non-nil, is mounted at
// GET /events inside the auth group.
func NewRouter(svc *goalservice.Service, authEnabled bool, tokens map[string]models.UserID, localUser models.UserID, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, tokens, localUser))

	// Goals CRUD and lifecycle.
	r.Get("/goals", h.ListGoals)
	r.Post("/goals", h.CreateGoal)
	r.Get("/goals/trash", h.ListTrash)
	r.Get("/goals/search", h.SearchGoals)
	r.Get("/goals/{id}", h.GetGoal)
	r.Patch("/goals/{id}", h.UpdateGoal)
	r.Delete("/goals/{id}", h.DeleteGoal)
	r.Post("/goals/{id}/archive", h.ArchiveGoal)
	r.Post("/goals/{id}/restore", h.RestoreGoal)
	r.Delete("/goals/{id}/start-date", h.ClearStartDate)
	r.Delete("/goals/{id}/end-date", h.ClearEndDate)

	// Calendar views and the selection flow.
	r.Get("/calendar/{year}", h.Calendar)
	r.Get("/calendar/{year}/export.ics", h.ExportICS)
	r.Get("/calendar/check", h.CheckDates)
	r.Post("/calendar/select", h.Select)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
