package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/security/audit"
)

func newEmployeeHandler() (*EmployeeHandler, *memEmployeeRepo, *memAuditRepo) {
	repo := newMemEmployeeRepo()
	auditRepo := &memAuditRepo{}
	return NewEmployeeHandler(repo, audit.NewRecorder(auditRepo, nil), nil, false), repo, auditRepo
}

func strptr(s string) *string { return &s }

func createEmployee(t *testing.T, h *EmployeeHandler, orgID int64, email string) *domain.Employee {
	t.Helper()
	req := EmployeeRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Position:  strptr("Engineer"),
		HireDate:  strptr("2024-03-01"),
	}
	r := authedRequest(t, http.MethodPost, "/api/employees", req, orgID)
	rec := httptest.NewRecorder()
	h.Create(rec, r)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create employee: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var e domain.Employee
	env := decodeResponse(t, rec)
	if err := json.Unmarshal(env.Data, &e); err != nil {
		t.Fatalf("decode employee: %v", err)
	}
	return &e
}

func TestEmployeeCreate(t *testing.T) {
	h, _, auditRepo := newEmployeeHandler()

	e := createEmployee(t, h, 1, "ada@acme.test")
	if e.ID == 0 || e.OrganizationID != 1 {
		t.Fatalf("unexpected employee %+v", e)
	}
	if e.HireDate == nil || e.HireDate.Format("2006-01-02") != "2024-03-01" {
		t.Fatalf("unexpected hire date %v", e.HireDate)
	}
	if len(auditRepo.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(auditRepo.entries))
	}
	if got := auditRepo.entries[0].Action; got != "User '1' added a new employee with ID 1" {
		t.Fatalf("unexpected audit action %q", got)
	}
}

func TestEmployeeCreateValidation(t *testing.T) {
	h, _, _ := newEmployeeHandler()

	cases := []EmployeeRequest{
		{LastName: "Lovelace", Email: "ada@acme.test"},
		{FirstName: "Ada", Email: "ada@acme.test"},
		{FirstName: "Ada", LastName: "Lovelace", Email: "not-an-email"},
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.test", HireDate: strptr("01/03/2024")},
	}
	for i, req := range cases {
		r := authedRequest(t, http.MethodPost, "/api/employees", req, 1)
		rec := httptest.NewRecorder()
		h.Create(rec, r)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestEmployeeGetCrossTenant(t *testing.T) {
	h, _, _ := newEmployeeHandler()
	e := createEmployee(t, h, 1, "ada@acme.test")

	// Same id, different organization: must look missing.
	r := authedRequest(t, http.MethodGet, "/api/employees/1", nil, 2)
	r.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Get(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-tenant read, got %d", rec.Code)
	}

	// Owning organization still sees it.
	r = authedRequest(t, http.MethodGet, "/api/employees/1", nil, 1)
	r.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	h.Get(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.Employee
	env := decodeResponse(t, rec)
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode employee: %v", err)
	}
	if got.ID != e.ID {
		t.Fatalf("expected employee %d, got %d", e.ID, got.ID)
	}
}

func TestEmployeeGetBadID(t *testing.T) {
	h, _, _ := newEmployeeHandler()

	for _, raw := range []string{"abc", "0", "-5"} {
		r := authedRequest(t, http.MethodGet, "/api/employees/"+raw, nil, 1)
		r.SetPathValue("id", raw)
		rec := httptest.NewRecorder()
		h.Get(rec, r)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for id %q, got %d", raw, rec.Code)
		}
	}
}

func TestEmployeeList(t *testing.T) {
	h, _, _ := newEmployeeHandler()
	createEmployee(t, h, 1, "ada@acme.test")
	createEmployee(t, h, 1, "grace@acme.test")
	createEmployee(t, h, 2, "other@tenant.test")

	r := authedRequest(t, http.MethodGet, "/api/employees", nil, 1)
	rec := httptest.NewRecorder()
	h.List(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeResponse(t, rec)
	if env.Count == nil || *env.Count != 2 {
		t.Fatalf("expected count 2, got %v", env.Count)
	}
}

func TestEmployeeUpdate(t *testing.T) {
	h, _, _ := newEmployeeHandler()
	e := createEmployee(t, h, 1, "ada@acme.test")

	req := EmployeeRequest{FirstName: "Ada", LastName: "King", Email: "ada@acme.test"}
	r := authedRequest(t, http.MethodPut, "/api/employees/1", req, 1)
	r.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Update(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.Employee
	env := decodeResponse(t, rec)
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode employee: %v", err)
	}
	if got.LastName != "King" || got.ID != e.ID {
		t.Fatalf("unexpected employee %+v", got)
	}

	// Update under the wrong tenant must look missing.
	r = authedRequest(t, http.MethodPut, "/api/employees/1", req, 2)
	r.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	h.Update(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-tenant update, got %d", rec.Code)
	}
}

func TestEmployeeDelete(t *testing.T) {
	h, repo, auditRepo := newEmployeeHandler()
	createEmployee(t, h, 1, "ada@acme.test")

	r := authedRequest(t, http.MethodDelete, "/api/employees/1", nil, 1)
	r.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Delete(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.rows) != 0 {
		t.Fatalf("expected employee removed, %d rows remain", len(repo.rows))
	}
	last := auditRepo.entries[len(auditRepo.entries)-1]
	if last.Action != "User '1' deleted employee 1" {
		t.Fatalf("unexpected audit action %q", last.Action)
	}

	// Second delete is a 404.
	r = authedRequest(t, http.MethodDelete, "/api/employees/1", nil, 1)
	r.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	h.Delete(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", rec.Code)
	}
}

func TestEmployeeTeamsEmpty(t *testing.T) {
	h, _, _ := newEmployeeHandler()
	createEmployee(t, h, 1, "ada@acme.test")

	r := authedRequest(t, http.MethodGet, "/api/employees/1/teams", nil, 1)
	r.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Teams(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeResponse(t, rec)
	if env.Count == nil || *env.Count != 0 {
		t.Fatalf("expected count 0, got %v", env.Count)
	}
}
