package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/security/auth"
	"github.com/yourorg/hrms/internal/security/middleware"
)

// In-memory repository fakes shared by the handler tests. They model the
// same tenant-scoping contract the postgres repositories implement:
// cross-tenant ids behave exactly like missing ids.

type memOrgRepo struct {
	nextID  int64
	byID    map[int64]*domain.Organization
	byEmail map[string]*domain.Organization
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{byID: map[int64]*domain.Organization{}, byEmail: map[string]*domain.Organization{}}
}

func (m *memOrgRepo) Create(org *domain.Organization) error {
	if _, ok := m.byEmail[org.Email]; ok {
		return domain.ErrDuplicate
	}
	m.nextID++
	org.ID = m.nextID
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	stored := *org
	m.byID[org.ID] = &stored
	m.byEmail[org.Email] = &stored
	return nil
}

func (m *memOrgRepo) GetByEmail(email string) (*domain.Organization, error) {
	org, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (m *memOrgRepo) GetByID(id int64) (*domain.Organization, error) {
	org, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *org
	cp.PasswordHash = ""
	return &cp, nil
}

func (m *memOrgRepo) UpdatePassword(id int64, hash string) error {
	org, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	org.PasswordHash = hash
	return nil
}

type memEmployeeRepo struct {
	nextID int64
	rows   map[int64]*domain.Employee
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{rows: map[int64]*domain.Employee{}}
}

func (m *memEmployeeRepo) Create(orgID int64, e *domain.Employee) error {
	for _, row := range m.rows {
		if row.OrganizationID == orgID && row.Email == e.Email {
			return domain.ErrDuplicate
		}
	}
	m.nextID++
	e.ID = m.nextID
	e.OrganizationID = orgID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	e.Teams = []domain.EmployeeTeam{}
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *memEmployeeRepo) List(orgID int64) ([]*domain.Employee, error) {
	out := []*domain.Employee{}
	for _, row := range m.rows {
		if row.OrganizationID == orgID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memEmployeeRepo) GetByID(id, orgID int64) (*domain.Employee, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memEmployeeRepo) Update(id, orgID int64, e *domain.Employee) error {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return domain.ErrNotFound
	}
	e.ID = id
	e.OrganizationID = orgID
	e.CreatedAt = row.CreatedAt
	e.UpdatedAt = time.Now()
	e.Teams = row.Teams
	cp := *e
	m.rows[id] = &cp
	return nil
}

func (m *memEmployeeRepo) Delete(id, orgID int64) (*domain.Employee, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, domain.ErrNotFound
	}
	delete(m.rows, id)
	return row, nil
}

func (m *memEmployeeRepo) Teams(employeeID, orgID int64) ([]*domain.AssignedTeam, error) {
	if _, err := m.GetByID(employeeID, orgID); err != nil {
		return nil, err
	}
	return []*domain.AssignedTeam{}, nil
}

type memTeamRepo struct {
	nextID int64
	rows   map[int64]*domain.Team
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{rows: map[int64]*domain.Team{}}
}

func (m *memTeamRepo) Create(orgID int64, t *domain.Team) error {
	for _, row := range m.rows {
		if row.OrganizationID == orgID && row.Name == t.Name {
			return domain.ErrDuplicate
		}
	}
	m.nextID++
	t.ID = m.nextID
	t.OrganizationID = orgID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	t.Members = []domain.TeamMember{}
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memTeamRepo) List(orgID int64) ([]*domain.Team, error) {
	out := []*domain.Team{}
	for _, row := range m.rows {
		if row.OrganizationID == orgID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTeamRepo) GetByID(id, orgID int64) (*domain.Team, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memTeamRepo) Update(id, orgID int64, t *domain.Team) error {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return domain.ErrNotFound
	}
	t.ID = id
	t.OrganizationID = orgID
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = time.Now()
	t.Members = row.Members
	cp := *t
	m.rows[id] = &cp
	return nil
}

func (m *memTeamRepo) Delete(id, orgID int64) (*domain.Team, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, domain.ErrNotFound
	}
	delete(m.rows, id)
	return row, nil
}

func (m *memTeamRepo) Members(teamID, orgID int64) ([]*domain.AssignedEmployee, error) {
	if _, err := m.GetByID(teamID, orgID); err != nil {
		return nil, err
	}
	return []*domain.AssignedEmployee{}, nil
}

type memAssignmentRepo struct {
	employees *memEmployeeRepo
	teams     *memTeamRepo
	nextID    int64
	pairs     map[[2]int64]*domain.Assignment
}

func newMemAssignmentRepo(employees *memEmployeeRepo, teams *memTeamRepo) *memAssignmentRepo {
	return &memAssignmentRepo{
		employees: employees,
		teams:     teams,
		pairs:     map[[2]int64]*domain.Assignment{},
	}
}

func (m *memAssignmentRepo) Assign(employeeID, teamID, orgID int64) (*domain.Assignment, error) {
	if _, err := m.employees.GetByID(employeeID, orgID); err != nil {
		return nil, domain.ErrNotFound
	}
	if _, err := m.teams.GetByID(teamID, orgID); err != nil {
		return nil, domain.ErrNotFound
	}
	key := [2]int64{employeeID, teamID}
	if _, ok := m.pairs[key]; ok {
		return nil, domain.ErrAlreadyAssigned
	}
	m.nextID++
	a := &domain.Assignment{ID: m.nextID, EmployeeID: employeeID, TeamID: teamID, AssignedAt: time.Now()}
	m.pairs[key] = a
	return a, nil
}

func (m *memAssignmentRepo) Unassign(employeeID, teamID, orgID int64) (*domain.Assignment, error) {
	if _, err := m.employees.GetByID(employeeID, orgID); err != nil {
		return nil, domain.ErrNotFound
	}
	if _, err := m.teams.GetByID(teamID, orgID); err != nil {
		return nil, domain.ErrNotFound
	}
	key := [2]int64{employeeID, teamID}
	a, ok := m.pairs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(m.pairs, key)
	return a, nil
}

type memAuditRepo struct {
	entries []*domain.AuditEntry
}

func (m *memAuditRepo) Insert(entry *domain.AuditEntry) error {
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditRepo) List(orgID int64, limit, offset int) ([]*domain.AuditEntry, error) {
	out := []*domain.AuditEntry{}
	// Newest first, like the postgres query.
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].OrganizationID == orgID {
			out = append(out, m.entries[i])
		}
	}
	if offset >= len(out) {
		return []*domain.AuditEntry{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAuditRepo) ListByEntity(orgID int64, entityType string, entityID int64, limit int) ([]*domain.AuditEntry, error) {
	out := []*domain.AuditEntry{}
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if e.OrganizationID != orgID || e.EntityType == nil || e.EntityID == nil {
			continue
		}
		if *e.EntityType == entityType && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// authedRequest builds a request carrying the claims the JWT middleware
// would have attached for the given organization.
func authedRequest(t *testing.T, method, target string, body any, orgID int64) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)

	claims := &auth.Claims{
		UserID:         orgID,
		OrganizationID: orgID,
		Email:          "admin@acme.test",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey{}, claims)
	ctx = context.WithValue(ctx, middleware.TokenContextKey{}, "test-token")
	return r.WithContext(ctx)
}

// decodeResponse unmarshals the standard envelope, leaving data raw for
// per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}
