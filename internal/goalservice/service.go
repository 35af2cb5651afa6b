// Package goalservice coordinates goal operations: ownership scoping,
// date-conflict enforcement at every mutation boundary, and change
// notifications. All validation happens before any write; a rejected
// operation leaves the goal set untouched.
package goalservice

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/schedule"
	"github.com/starford/jera/internal/store"
)

// Notifier receives change events after successful mutations.
// Satisfied by *sse.Broker; nil disables notifications.
type Notifier interface {
	PublishGoalEvent(kind, id string)
}

// Service coordinates store access and conflict validation.
type Service struct {
	store  store.GoalStore
	notify Notifier

	// mu serializes the conflict scan with the write that follows it.
	// Without it two racing writers can both scan, both see no overlap,
	// and both insert, storing overlapping goals.
	mu sync.Mutex
}

// NewService creates a new goal service. notify may be nil.
func NewService(st store.GoalStore, notify Notifier) *Service {
	return &Service{store: st, notify: notify}
}

func (s *Service) publish(kind, id string) {
	if s.notify != nil {
		s.notify.PublishGoalEvent(kind, id)
	}
}

// Checksum returns the optimistic-concurrency tag for a goal record. Any
// successful write changes UpdatedAt, so any write invalidates the tag.
func Checksum(g *models.Goal) string {
	data, _ := json.Marshal(g)
	return checksum.Sum(data)
}

// CreateRequest carries the fields for a new goal.
type CreateRequest struct {
	Title   string
	Content string
	Color   string
	Start   *time.Time
	End     *time.Time
}

// Create validates and stores a new goal. An empty title defaults to
// "Untitled". When either bound is present the candidate range is checked
// against the owner's dated goals; ErrDateConflict rejects before any
// write. This is the authoritative check: client-side prechecks are
// advisory only and two clients can race past them.
func (s *Service) Create(ctx context.Context, owner models.UserID, req CreateRequest) (*models.Goal, error) {
	if owner == "" {
		return nil, apperr.ErrNotAuthenticated
	}

	title := req.Title
	if title == "" {
		title = models.DefaultTitle
	}
	r := models.DateRange{Start: req.Start, End: req.End}.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.HasDates() {
		existing, err := s.store.ListDated(owner)
		if err != nil {
			return nil, err
		}
		if schedule.HasConflict(r, existing, "") {
			return nil, apperr.ErrDateConflict
		}
	}

	now := time.Now().UTC()
	g := &models.Goal{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Title:     title,
		Content:   req.Content,
		Color:     req.Color,
		Range:     r,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(g); err != nil {
		return nil, err
	}
	s.publish("created", g.ID)
	return g, nil
}

// Get returns a single goal. Non-archived goals are readable by anyone,
// identity or not; archived goals are visible to their owner only.
func (s *Service) Get(ctx context.Context, caller models.UserID, id string) (*models.Goal, error) {
	g, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !g.Archived {
		return g, nil
	}
	if caller == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	if g.OwnerID != caller {
		return nil, apperr.ErrUnauthorized
	}
	return g, nil
}

// owned loads a goal and enforces that caller owns it.
func (s *Service) owned(caller models.UserID, id string) (*models.Goal, error) {
	if caller == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	g, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != caller {
		return nil, apperr.ErrUnauthorized
	}
	return g, nil
}

// Patch carries a partial update. Nil fields keep the stored value;
// clearing a bound goes through ClearStart/ClearEnd instead.
type Patch struct {
	Title   *string
	Content *string
	Color   *string
	Start   *time.Time
	End     *time.Time
}

func (p Patch) touchesDates() bool {
	return p.Start != nil || p.End != nil
}

// Update applies a partial update with ownership and conflict enforcement.
// When the patch touches a range field, the patched bounds merge with the
// stored ones and the merged range is re-checked against the owner's other
// goals before anything is written. A non-empty ifMatch must equal the
// stored record's checksum or the update fails with ErrStale.
func (s *Service) Update(ctx context.Context, owner models.UserID, id string, p Patch, ifMatch string) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.owned(owner, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != Checksum(g) {
		return nil, apperr.ErrStale
	}

	if p.touchesDates() {
		merged := g.Range
		if p.Start != nil {
			merged.Start = p.Start
		}
		if p.End != nil {
			merged.End = p.End
		}
		merged = merged.Normalized()

		existing, err := s.store.ListDated(owner)
		if err != nil {
			return nil, err
		}
		if schedule.HasConflict(merged, existing, id) {
			return nil, apperr.ErrDateConflict
		}
		g.Range = merged
	}

	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Content != nil {
		g.Content = *p.Content
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
	g.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(g); err != nil {
		return nil, err
	}
	s.publish("updated", g.ID)
	return g, nil
}

// ClearStart removes the start bound. Dropping a bound never widens the
// goal's occupancy, so no conflict re-check is needed.
func (s *Service) ClearStart(ctx context.Context, owner models.UserID, id string) (*models.Goal, error) {
	return s.clearBound(owner, id, true)
}

// ClearEnd removes the end bound.
func (s *Service) ClearEnd(ctx context.Context, owner models.UserID, id string) (*models.Goal, error) {
	return s.clearBound(owner, id, false)
}

func (s *Service) clearBound(owner models.UserID, id string, start bool) (*models.Goal, error) {
	g, err := s.owned(owner, id)
	if err != nil {
		return nil, err
	}
	if start {
		g.Range.Start = nil
	} else {
		g.Range.End = nil
	}
	g.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(g); err != nil {
		return nil, err
	}
	s.publish("updated", g.ID)
	return g, nil
}

// Archive soft-deletes a goal, removing it from listings and conflict
// checks. Archiving an already-archived goal is a no-op.
func (s *Service) Archive(ctx context.Context, owner models.UserID, id string) (*models.Goal, error) {
	return s.setArchived(owner, id, true, "archived")
}

// Restore clears the archived flag. Restoring an active goal is a no-op.
func (s *Service) Restore(ctx context.Context, owner models.UserID, id string) (*models.Goal, error) {
	return s.setArchived(owner, id, false, "restored")
}

func (s *Service) setArchived(owner models.UserID, id string, archived bool, kind string) (*models.Goal, error) {
	g, err := s.owned(owner, id)
	if err != nil {
		return nil, err
	}
	if g.Archived == archived {
		return g, nil
	}
	now := time.Now().UTC()
	if err := s.store.SetArchived(id, archived, now); err != nil {
		return nil, err
	}
	g.Archived = archived
	g.UpdatedAt = now
	s.publish(kind, g.ID)
	return g, nil
}

// Remove hard-deletes a goal from either archive state.
func (s *Service) Remove(ctx context.Context, owner models.UserID, id string) error {
	if _, err := s.owned(owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.publish("deleted", id)
	return nil
}

// List returns the owner's active goals, newest first.
func (s *Service) List(ctx context.Context, owner models.UserID) ([]models.Goal, error) {
	if owner == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	return s.store.ListByOwner(owner, false)
}

// Trash returns the owner's archived goals.
func (s *Service) Trash(ctx context.Context, owner models.UserID) ([]models.Goal, error) {
	if owner == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	return s.store.ListByOwner(owner, true)
}

// Search returns the owner's active goals matching query.
func (s *Service) Search(ctx context.Context, owner models.UserID, query string, limit int) ([]models.Goal, error) {
	if owner == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	return s.store.Search(owner, query, limit)
}

// Year returns the owner's goals touching the given calendar year.
func (s *Service) Year(ctx context.Context, owner models.UserID, year int) ([]models.Goal, error) {
	if owner == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	if year < 1 || year > 9999 {
		return nil, apperr.ErrInvalidInput
	}
	return s.store.ListByYear(owner, year)
}

// Calendar builds the twelve per-day occupancy indexes for a year.
func (s *Service) Calendar(ctx context.Context, owner models.UserID, year int, today time.Time) ([]schedule.Month, error) {
	goals, err := s.Year(ctx, owner, year)
	if err != nil {
		return nil, err
	}
	months := make([]schedule.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, schedule.BuildMonth(year, m, goals, today))
	}
	return months, nil
}

// Check runs the shared conflict predicate for a candidate range without
// writing anything. Backs the date-picker precheck endpoint.
func (s *Service) Check(ctx context.Context, owner models.UserID, candidate models.DateRange, excludeID string) (bool, error) {
	if owner == "" {
		return false, apperr.ErrNotAuthenticated
	}
	existing, err := s.store.ListDated(owner)
	if err != nil {
		return false, err
	}
	return schedule.HasConflict(candidate.Normalized(), existing, excludeID), nil
}

// SelectResult is the outcome of one selection click.
type SelectResult struct {
	State   schedule.Selection
	Created *models.Goal
	Reject  string
}

// Select feeds one calendar click through the selection state machine.
// When the machine emits a creation range, the goal is created through
// Create, which re-validates server-side; a conflict there surfaces as a
// rejection notice with the selection already reset. Creation failure
// never resurrects the selection.
func (s *Service) Select(ctx context.Context, owner models.UserID, sel schedule.Selection, day time.Time) (*SelectResult, error) {
	if owner == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	goals, err := s.store.ListDated(owner)
	if err != nil {
		return nil, err
	}

	out := schedule.Click(sel, day, goals)
	res := &SelectResult{State: out.State, Reject: out.Reject}
	if out.Create == nil {
		return res, nil
	}

	g, err := s.Create(ctx, owner, CreateRequest{Start: out.Create.Start, End: out.Create.End})
	if err != nil {
		if errors.Is(err, apperr.ErrDateConflict) {
			res.Reject = schedule.RejectOverlap
			return res, nil
		}
		return nil, err
	}
	res.Created = g
	return res, nil
}

// PurgeTrash hard-deletes archived goals untouched for longer than
// retention and returns how many were removed.
func (s *Service) PurgeTrash(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteArchivedBefore(time.Now().UTC().Add(-retention))
}
