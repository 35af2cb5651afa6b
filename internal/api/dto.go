package api

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/goalservice"
	"github.com/starford/jera/internal/models"
)

// Dates cross the wire as Unix milliseconds, matching how they are stored.
// Day truncation is a comparison concern inside the engine, never a wire
// concern.

func millisToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

func timeToMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

func colorRule(value any) error {
	s, _ := value.(string)
	if s == "" || s == models.ColorTransparent {
		return nil
	}
	if !hexColorRe.MatchString(s) {
		return validation.NewError("validation_color", "must be a hex color or \"transparent\"")
	}
	return nil
}

// CreateGoalRequest is the request body for creating a goal.
type CreateGoalRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Color     string `json:"color"`
	StartDate *int64 `json:"start_date"`
	EndDate   *int64 `json:"end_date"`
}

// Validate validates the create request.
func (r CreateGoalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 256)),
		validation.Field(&r.Color, validation.By(colorRule)),
	)
}

// UpdateGoalRequest is the request body for a partial goal update. Absent
// fields keep their stored values; clearing a date bound uses the
// dedicated DELETE endpoints.
type UpdateGoalRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Color     *string `json:"color"`
	StartDate *int64  `json:"start_date"`
	EndDate   *int64  `json:"end_date"`
}

// Validate validates the update request.
func (r UpdateGoalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 256)),
		validation.Field(&r.Color, validation.By(func(v any) error {
			s, _ := v.(*string)
			if s == nil {
				return nil
			}
			return colorRule(*s)
		})),
	)
}

// SelectRequest carries one calendar click plus the caller's current
// selection state. The state is a plain value round-tripped through the
// client; the server holds nothing between clicks.
type SelectRequest struct {
	Anchor *int64 `json:"anchor"`
	Day    *int64 `json:"day"`
}

// Validate validates the select request.
func (r SelectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Day, validation.NotNil),
	)
}

// GoalResponse is the wire representation of a goal.
type GoalResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Color     string    `json:"color,omitempty"`
	StartDate *int64    `json:"start_date,omitempty"`
	EndDate   *int64    `json:"end_date,omitempty"`
	Archived  bool      `json:"archived"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toGoalResponse(g *models.Goal) GoalResponse {
	return GoalResponse{
		ID:        g.ID,
		OwnerID:   string(g.OwnerID),
		Title:     g.Title,
		Content:   g.Content,
		Color:     g.Color,
		StartDate: timeToMillis(g.Range.Start),
		EndDate:   timeToMillis(g.Range.End),
		Archived:  g.Archived,
		Checksum:  goalservice.Checksum(g),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toGoalResponses(goals []models.Goal) []GoalResponse {
	out := make([]GoalResponse, len(goals))
	for i := range goals {
		out[i] = toGoalResponse(&goals[i])
	}
	return out
}

// GoalListResponse wraps goal listings.
type GoalListResponse struct {
	Goals []GoalResponse `json:"goals"`
	Total int            `json:"total"`
}

// CheckResponse is the date-picker precheck result.
type CheckResponse struct {
	Conflict bool `json:"conflict"`
}

// SelectResponse is the outcome of one selection click.
type SelectResponse struct {
	Anchor   *int64        `json:"anchor,omitempty"`
	Created  *GoalResponse `json:"created,omitempty"`
	Rejected string        `json:"rejected,omitempty"`
}
