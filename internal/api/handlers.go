package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/goalservice"
	"github.com/starford/jera/internal/ics"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/schedule"
)

// Handler holds API route handlers.
type Handler struct {
	svc *goalservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *goalservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListGoals handles GET /api/goals.
//
//	@Summary		List the caller's active goals
//	@Tags			goals
//	@Produce		json
//	@Success		200	{object}	GoalListResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals [get]
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.List(r.Context(), CurrentUser(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GoalListResponse{Goals: toGoalResponses(goals), Total: len(goals)})
}

// ListTrash handles GET /api/goals/trash.
//
//	@Summary		List the caller's archived goals
//	@Tags			goals
//	@Produce		json
//	@Success		200	{object}	GoalListResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/trash [get]
func (h *Handler) ListTrash(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.Trash(r.Context(), CurrentUser(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GoalListResponse{Goals: toGoalResponses(goals), Total: len(goals)})
}

// SearchGoals handles GET /api/goals/search.
//
//	@Summary		Full-text search over the caller's active goals
//	@Tags			goals
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	GoalListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/search [get]
func (h *Handler) SearchGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	goals, err := h.svc.Search(r.Context(), CurrentUser(r), q, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GoalListResponse{Goals: toGoalResponses(goals), Total: len(goals)})
}

// GetGoal handles GET /api/goals/{id}.
//
//	@Summary		Get a single goal
//	@Tags			goals
//	@Produce		json
//	@Param			id	path		string	true	"Goal ID"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id} [get]
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Get(r.Context(), CurrentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// CreateGoal handles POST /api/goals.
//
//	@Summary		Create a goal
//	@Tags			goals
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateGoalRequest	true	"Goal to create"
//	@Success		201		{object}	GoalResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals [post]
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	g, err := h.svc.Create(r.Context(), CurrentUser(r), goalservice.CreateRequest{
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
		Start:   millisToTime(req.StartDate),
		End:     millisToTime(req.EndDate),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

// UpdateGoal handles PATCH /api/goals/{id}.
//
//	@Summary		Partially update a goal with optimistic concurrency
//	@Tags			goals
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Goal ID"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateGoalRequest	true	"Fields to change"
//	@Success		200			{object}	GoalResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id} [patch]
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	g, err := h.svc.Update(r.Context(), CurrentUser(r), chi.URLParam(r, "id"), goalservice.Patch{
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
		Start:   millisToTime(req.StartDate),
		End:     millisToTime(req.EndDate),
	}, ifMatch)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// ArchiveGoal handles POST /api/goals/{id}/archive.
//
//	@Summary		Move a goal to the trash
//	@Tags			goals
//	@Produce		json
//	@Param			id	path		string	true	"Goal ID"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id}/archive [post]
func (h *Handler) ArchiveGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Archive(r.Context(), CurrentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// RestoreGoal handles POST /api/goals/{id}/restore.
//
//	@Summary		Restore a goal from the trash
//	@Tags			goals
//	@Produce		json
//	@Param			id	path		string	true	"Goal ID"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id}/restore [post]
func (h *Handler) RestoreGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Restore(r.Context(), CurrentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// DeleteGoal handles DELETE /api/goals/{id}.
//
//	@Summary		Permanently delete a goal
//	@Tags			goals
//	@Param			id	path	string	true	"Goal ID"
//	@Success		204	"Goal deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id} [delete]
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), CurrentUser(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearStartDate handles DELETE /api/goals/{id}/start-date.
//
//	@Summary		Remove a goal's start date
//	@Tags			goals
//	@Produce		json
//	@Param			id	path		string	true	"Goal ID"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id}/start-date [delete]
func (h *Handler) ClearStartDate(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.ClearStart(r.Context(), CurrentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// ClearEndDate handles DELETE /api/goals/{id}/end-date.
//
//	@Summary		Remove a goal's end date
//	@Tags			goals
//	@Produce		json
//	@Param			id	path		string	true	"Goal ID"
//	@Success		200	{object}	GoalResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goals/{id}/end-date [delete]
func (h *Handler) ClearEndDate(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.ClearEnd(r.Context(), CurrentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

// Calendar handles GET /api/calendar/{year}.
//
//	@Summary		Render the twelve-month occupancy view for a year
//	@Tags			calendar
//	@Produce		json
//	@Param			year	path		int	true	"Calendar year"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/{year} [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid year"))
		return
	}
	months, err := h.svc.Calendar(r.Context(), CurrentUser(r), year, time.Now().UTC())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": months,
	})
}

// ExportICS handles GET /api/calendar/{year}/export.ics.
//
//	@Summary		Export a year of dated goals as an iCalendar feed
//	@Tags			calendar
//	@Produce		text/calendar
//	@Param			year	path	int	true	"Calendar year"
//	@Success		200		{string}	string	"iCalendar data"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/{year}/export.ics [get]
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid year"))
		return
	}
	goals, err := h.svc.Year(r.Context(), CurrentUser(r), year)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="goals-`+strconv.Itoa(year)+`.ics"`)
	_, _ = w.Write([]byte(ics.Export(goals, year)))
}

// CheckDates handles GET /api/calendar/check.
//
//	@Summary		Check whether a candidate date range collides with existing goals
//	@Tags			calendar
//	@Produce		json
//	@Param			start	query		int		false	"Start date, Unix milliseconds"
//	@Param			end		query		int		false	"End date, Unix milliseconds"
//	@Param			exclude	query		string	false	"Goal ID to ignore"
//	@Success		200		{object}	CheckResponse
//	@Failure		401		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/check [get]
func (h *Handler) CheckDates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	candidate := models.DateRange{
		Start: parseMillisParam(q.Get("start")),
		End:   parseMillisParam(q.Get("end")),
	}
	conflict, err := h.svc.Check(r.Context(), CurrentUser(r), candidate, q.Get("exclude"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Conflict: conflict})
}

func parseMillisParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// Select handles POST /api/calendar/select.
//
//	@Summary		Advance the two-click selection flow by one calendar click
//	@Tags			calendar
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectRequest	true	"Click and current selection state"
//	@Success		200		{object}	SelectResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/select [post]
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sel := schedule.Selection{Anchor: millisToTime(req.Anchor)}
	res, err := h.svc.Select(r.Context(), CurrentUser(r), sel, *millisToTime(req.Day))
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := SelectResponse{
		Anchor:   timeToMillis(res.State.Anchor),
		Rejected: res.Reject,
	}
	if res.Created != nil {
		gr := toGoalResponse(res.Created)
		resp.Created = &gr
	}
	writeJSON(w, http.StatusOK, resp)
}
