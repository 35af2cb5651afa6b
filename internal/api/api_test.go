package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/jera/internal/goalservice"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/testutil"
)

const testUser models.UserID = "local"

// testEnv sets up a temp SQLite store, service, and router in disabled
// auth mode, where every request runs as testUser.
func testEnv(t *testing.T) (*goalservice.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := goalservice.NewService(db, nil)
	router := NewRouter(svc, false, nil, testUser, nil)
	return svc, router
}

func tokenEnv(t *testing.T, tokens map[string]models.UserID) (*goalservice.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := goalservice.NewService(db, nil)
	router := NewRouter(svc, true, tokens, "", nil)
	return svc, router
}

func millis(day int) int64 {
	return time.Date(2025, time.June, day, 9, 15, 0, 0, time.UTC).UnixMilli()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createGoal(t *testing.T, router http.Handler, body map[string]any) GoalResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/goals", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var g GoalResponse
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return g
}

func TestCreateAndGetGoal(t *testing.T) {
	_, router := testEnv(t)

	g := createGoal(t, router, map[string]any{
		"title":      "Ship v1",
		"color":      "#3366ff",
		"start_date": millis(3),
		"end_date":   millis(7),
	})
	if g.ID == "" {
		t.Fatal("empty goal id")
	}
	if g.Checksum == "" {
		t.Error("response should carry a checksum")
	}

	w := doJSON(t, router, http.MethodGet, "/goals/"+g.ID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got GoalResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Ship v1" {
		t.Errorf("title = %q", got.Title)
	}
	if got.StartDate == nil || *got.StartDate != millis(3) {
		t.Errorf("start_date = %v, want %d", got.StartDate, millis(3))
	}
}

func TestCreateDefaultsTitle(t *testing.T) {
	_, router := testEnv(t)
	g := createGoal(t, router, map[string]any{})
	if g.Title != models.DefaultTitle {
		t.Errorf("title = %q, want %q", g.Title, models.DefaultTitle)
	}
}

func TestCreateRejectsBadColor(t *testing.T) {
	_, router := testEnv(t)
	w := doJSON(t, router, http.MethodPost, "/goals", map[string]any{"color": "red-ish"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad color status = %d, want 400", w.Code)
	}
}

func TestCreateOverlapConflict(t *testing.T) {
	_, router := testEnv(t)
	createGoal(t, router, map[string]any{"title": "first", "start_date": millis(3), "end_date": millis(7)})

	w := doJSON(t, router, http.MethodPost, "/goals", map[string]any{
		"title":      "second",
		"start_date": millis(7),
		"end_date":   millis(9),
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("overlap status = %d, want 409, body = %s", w.Code, w.Body.String())
	}

	// Adjacent days are fine.
	w = doJSON(t, router, http.MethodPost, "/goals", map[string]any{
		"title":      "third",
		"start_date": millis(8),
		"end_date":   millis(9),
	}, nil)
	if w.Code != http.StatusCreated {
		t.Errorf("adjacent status = %d, want 201, body = %s", w.Code, w.Body.String())
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t)
	g := createGoal(t, router, map[string]any{"title": "v1"})

	// Stale checksum is rejected.
	w := doJSON(t, router, http.MethodPatch, "/goals/"+g.ID,
		map[string]any{"title": "v2"}, map[string]string{"If-Match": "deadbeef"})
	if w.Code != http.StatusConflict {
		t.Fatalf("stale update status = %d, want 409", w.Code)
	}

	// Matching checksum goes through, quoted ETag form included.
	w = doJSON(t, router, http.MethodPatch, "/goals/"+g.ID,
		map[string]any{"title": "v2"}, map[string]string{"If-Match": `"` + g.Checksum + `"`})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated GoalResponse
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title != "v2" {
		t.Errorf("title = %q, want v2", updated.Title)
	}
	if updated.Checksum == g.Checksum {
		t.Error("checksum should change after a write")
	}
}

func TestClearDateBounds(t *testing.T) {
	_, router := testEnv(t)
	g := createGoal(t, router, map[string]any{"start_date": millis(3), "end_date": millis(7)})

	w := doJSON(t, router, http.MethodDelete, "/goals/"+g.ID+"/start-date", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear start status = %d", w.Code)
	}
	var got GoalResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.StartDate != nil {
		t.Error("start_date should be cleared")
	}
	if got.EndDate == nil {
		t.Error("end_date should survive")
	}

	w = doJSON(t, router, http.MethodDelete, "/goals/"+g.ID+"/end-date", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear end status = %d", w.Code)
	}
	got = GoalResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.EndDate != nil {
		t.Error("end_date should be cleared")
	}
}

func TestArchiveRestoreDelete(t *testing.T) {
	_, router := testEnv(t)
	g := createGoal(t, router, map[string]any{"title": "temp"})

	w := doJSON(t, router, http.MethodPost, "/goals/"+g.ID+"/archive", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("archive status = %d", w.Code)
	}

	// Archived goal shows in trash, not in the active list.
	var list GoalListResponse
	w = doJSON(t, router, http.MethodGet, "/goals", nil, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 0 {
		t.Errorf("active list total = %d, want 0", list.Total)
	}
	w = doJSON(t, router, http.MethodGet, "/goals/trash", nil, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 {
		t.Errorf("trash total = %d, want 1", list.Total)
	}

	w = doJSON(t, router, http.MethodPost, "/goals/"+g.ID+"/restore", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restore status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/goals/"+g.ID, nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/goals/"+g.ID, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestCalendarRender(t *testing.T) {
	_, router := testEnv(t)
	createGoal(t, router, map[string]any{
		"title":      "June block",
		"color":      "#00aa00",
		"start_date": millis(10),
		"end_date":   millis(12),
	})

	w := doJSON(t, router, http.MethodGet, "/calendar/2025", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("calendar status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Year   int `json:"year"`
		Months []struct {
			Month int `json:"month"`
			Days  []struct {
				Day   int `json:"day"`
				Goals []struct {
					Role string `json:"role"`
				} `json:"goals"`
			} `json:"days"`
		} `json:"months"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if len(resp.Months) != 12 {
		t.Fatalf("months = %d, want 12", len(resp.Months))
	}
	june := resp.Months[5]
	if len(june.Days[9].Goals) != 1 || june.Days[9].Goals[0].Role != "start" {
		t.Errorf("June 10 goals = %+v, want one start", june.Days[9].Goals)
	}
	if len(june.Days[11].Goals) != 1 || june.Days[11].Goals[0].Role != "end" {
		t.Errorf("June 12 goals = %+v, want one end", june.Days[11].Goals)
	}
}

func TestCalendarInvalidYear(t *testing.T) {
	_, router := testEnv(t)
	w := doJSON(t, router, http.MethodGet, "/calendar/nope", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric year = %d, want 400", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/calendar/0", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("year 0 = %d, want 400", w.Code)
	}
}

func TestCheckDates(t *testing.T) {
	_, router := testEnv(t)
	g := createGoal(t, router, map[string]any{"start_date": millis(3), "end_date": millis(7)})

	w := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/calendar/check?start=%d&end=%d", millis(5), millis(9)), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("check status = %d", w.Code)
	}
	var resp CheckResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Conflict {
		t.Error("overlapping range should report conflict")
	}

	// Excluding the colliding goal clears the conflict.
	w = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/calendar/check?start=%d&end=%d&exclude=%s", millis(5), millis(9), g.ID), nil, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Conflict {
		t.Error("excluded goal should not conflict with itself")
	}
}

func TestSelectFlow(t *testing.T) {
	_, router := testEnv(t)

	// First click anchors.
	w := doJSON(t, router, http.MethodPost, "/calendar/select", map[string]any{"day": millis(3)}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first click status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SelectResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Anchor == nil {
		t.Fatal("first click should anchor")
	}
	if resp.Created != nil || resp.Rejected != "" {
		t.Fatalf("unexpected outcome: %+v", resp)
	}

	// Second click creates the goal and resets the selection.
	w = doJSON(t, router, http.MethodPost, "/calendar/select",
		map[string]any{"anchor": *resp.Anchor, "day": millis(6)}, nil)
	resp = SelectResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Created == nil {
		t.Fatalf("second click should create, got %+v", resp)
	}
	if resp.Anchor != nil {
		t.Error("selection should reset after creation")
	}
	if resp.Created.Title != models.DefaultTitle {
		t.Errorf("created title = %q", resp.Created.Title)
	}

	// Clicking an occupied day is rejected and keeps no anchor.
	w = doJSON(t, router, http.MethodPost, "/calendar/select", map[string]any{"day": millis(4)}, nil)
	resp = SelectResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Rejected == "" {
		t.Error("occupied day click should reject")
	}

	// Missing day is a validation error.
	w = doJSON(t, router, http.MethodPost, "/calendar/select", map[string]any{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing day status = %d, want 400", w.Code)
	}
}

func TestExportICS(t *testing.T) {
	_, router := testEnv(t)
	createGoal(t, router, map[string]any{"title": "Trip", "start_date": millis(10), "end_date": millis(12)})

	w := doJSON(t, router, http.MethodGet, "/calendar/2025/export.ics", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !bytes.Contains([]byte(body), []byte("SUMMARY:Trip")) {
		t.Errorf("missing event in export:\n%s", body)
	}
}

func TestTokenAuthMode(t *testing.T) {
	_, router := tokenEnv(t, map[string]models.UserID{"s3cret": "alice"})

	// No token: writes are rejected as unauthenticated.
	w := doJSON(t, router, http.MethodPost, "/goals", map[string]any{"title": "x"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create = %d, want 401", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/goals", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list = %d, want 401", w.Code)
	}

	// Valid token resolves to its user.
	auth := map[string]string{"Authorization": "Bearer s3cret"}
	w = doJSON(t, router, http.MethodPost, "/goals", map[string]any{"title": "mine"}, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("authed create = %d, body = %s", w.Code, w.Body.String())
	}
	var g GoalResponse
	_ = json.Unmarshal(w.Body.Bytes(), &g)
	if g.OwnerID != "alice" {
		t.Errorf("owner = %q, want alice", g.OwnerID)
	}

	// Anonymous direct-id read of a non-archived goal still works.
	w = doJSON(t, router, http.MethodGet, "/goals/"+g.ID, nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("anonymous direct read = %d, want 200", w.Code)
	}

	// Unknown token behaves like anonymous.
	w = doJSON(t, router, http.MethodGet, "/goals", nil,
		map[string]string{"Authorization": "Bearer wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown token list = %d, want 401", w.Code)
	}
}
