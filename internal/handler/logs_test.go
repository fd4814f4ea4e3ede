package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/security/audit"
)

func newLogsFixture(t *testing.T) (*LogsHandler, *audit.Recorder) {
	t.Helper()
	recorder := audit.NewRecorder(&memAuditRepo{}, nil)
	return NewLogsHandler(recorder, nil, false), recorder
}

func TestLogsList(t *testing.T) {
	h, recorder := newLogsFixture(t)
	for i := 1; i <= 5; i++ {
		if _, err := recorder.Record(1, 1, fmt.Sprintf("User '1' added a new employee with ID %d", i),
			"employee", int64(i), nil, ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	// Entries for another tenant must not appear.
	if _, err := recorder.Record(2, 2, "User '2' logged in", "", 0, nil, ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	r := authedRequest(t, http.MethodGet, "/api/logs", nil, 1)
	rec := httptest.NewRecorder()
	h.List(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeResponse(t, rec)
	if env.Count == nil || *env.Count != 5 {
		t.Fatalf("expected count 5, got %v", env.Count)
	}

	var entries []*domain.AuditEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	// Newest first.
	if entries[0].ID <= entries[1].ID {
		t.Fatalf("expected newest-first ordering, got ids %d, %d", entries[0].ID, entries[1].ID)
	}
}

func TestLogsListPagination(t *testing.T) {
	h, recorder := newLogsFixture(t)
	for i := 1; i <= 5; i++ {
		if _, err := recorder.Record(1, 1, "User '1' logged in", "", 0, nil, ""); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	r := authedRequest(t, http.MethodGet, "/api/logs?limit=2&offset=1", nil, 1)
	rec := httptest.NewRecorder()
	h.List(rec, r)
	env := decodeResponse(t, rec)
	if env.Count == nil || *env.Count != 2 {
		t.Fatalf("expected count 2, got %v", env.Count)
	}

	// Malformed values fall back to the defaults instead of erroring.
	r = authedRequest(t, http.MethodGet, "/api/logs?limit=abc&offset=-9", nil, 1)
	rec = httptest.NewRecorder()
	h.List(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for malformed paging, got %d", rec.Code)
	}
	env = decodeResponse(t, rec)
	if env.Count == nil || *env.Count != 5 {
		t.Fatalf("expected count 5, got %v", env.Count)
	}
}

func TestLogsListByEntity(t *testing.T) {
	h, recorder := newLogsFixture(t)
	if _, err := recorder.Record(1, 1, "User '1' added a new employee with ID 3", "employee", 3, nil, ""); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := recorder.Record(1, 1, "User '1' added a new team with ID 3", "team", 3, nil, ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	r := authedRequest(t, http.MethodGet, "/api/logs/employee/3", nil, 1)
	r.SetPathValue("entity_type", "employee")
	r.SetPathValue("entity_id", "3")
	rec := httptest.NewRecorder()
	h.ListByEntity(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeResponse(t, rec)
	if env.Count == nil || *env.Count != 1 {
		t.Fatalf("expected count 1, got %v", env.Count)
	}
}

func TestLogsListByEntityBadID(t *testing.T) {
	h, _ := newLogsFixture(t)

	r := authedRequest(t, http.MethodGet, "/api/logs/employee/abc", nil, 1)
	r.SetPathValue("entity_type", "employee")
	r.SetPathValue("entity_id", "abc")
	rec := httptest.NewRecorder()
	h.ListByEntity(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogsUnauthenticated(t *testing.T) {
	h, _ := newLogsFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	h.List(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
