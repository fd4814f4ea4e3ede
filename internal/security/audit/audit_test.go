package audit

import (
	"errors"
	"testing"

	"github.com/yourorg/hrms/internal/domain"
)

type memAuditRepo struct {
	entries   []*domain.AuditEntry
	insertErr error

	lastLimit  int
	lastOffset int
}

func (m *memAuditRepo) Insert(entry *domain.AuditEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditRepo) List(orgID int64, limit, offset int) ([]*domain.AuditEntry, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	out := []*domain.AuditEntry{}
	for _, e := range m.entries {
		if e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuditRepo) ListByEntity(orgID int64, entityType string, entityID int64, limit int) ([]*domain.AuditEntry, error) {
	m.lastLimit = limit
	out := []*domain.AuditEntry{}
	for _, e := range m.entries {
		if e.OrganizationID != orgID || e.EntityType == nil || e.EntityID == nil {
			continue
		}
		if *e.EntityType == entityType && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecordStoresNullableFields(t *testing.T) {
	repo := &memAuditRepo{}
	r := NewRecorder(repo, nil)

	entry, err := r.Record(1, 1, "User '1' added a new employee with ID 5", "employee", 5,
		map[string]string{"first_name": "Ada"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if entry.EntityType == nil || *entry.EntityType != "employee" {
		t.Fatalf("unexpected entity type %v", entry.EntityType)
	}
	if entry.EntityID == nil || *entry.EntityID != 5 {
		t.Fatalf("unexpected entity id %v", entry.EntityID)
	}
	if entry.Details == nil || *entry.Details != `{"first_name":"Ada"}` {
		t.Fatalf("unexpected details %v", entry.Details)
	}
	if entry.IPAddress == nil || *entry.IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected ip %v", entry.IPAddress)
	}
}

func TestRecordZeroValuesBecomeNull(t *testing.T) {
	repo := &memAuditRepo{}
	r := NewRecorder(repo, nil)

	entry, err := r.Record(1, 1, "User '1' logged out", "", 0, nil, "")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if entry.EntityType != nil || entry.EntityID != nil || entry.Details != nil || entry.IPAddress != nil {
		t.Fatalf("expected nil optional fields, got %+v", entry)
	}
}

func TestRecordSurfacesInsertError(t *testing.T) {
	repo := &memAuditRepo{insertErr: errors.New("connection reset")}
	r := NewRecorder(repo, nil)

	if _, err := r.Record(1, 1, "User '1' logged in", "", 0, nil, ""); err == nil {
		t.Fatal("expected insert error to surface")
	}
}

func TestListClampsLimitAndOffset(t *testing.T) {
	repo := &memAuditRepo{}
	r := NewRecorder(repo, nil)

	if _, err := r.List(1, 0, -3); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastLimit != DefaultLimit || repo.lastOffset != 0 {
		t.Fatalf("expected limit=%d offset=0, got limit=%d offset=%d", DefaultLimit, repo.lastLimit, repo.lastOffset)
	}

	if _, err := r.List(1, 10_000, 20); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastLimit != MaxLimit || repo.lastOffset != 20 {
		t.Fatalf("expected limit=%d offset=20, got limit=%d offset=%d", MaxLimit, repo.lastLimit, repo.lastOffset)
	}
}

func TestListByEntityCapped(t *testing.T) {
	repo := &memAuditRepo{}
	r := NewRecorder(repo, nil)

	if _, err := r.ListByEntity(1, "employee", 5); err != nil {
		t.Fatalf("list by entity failed: %v", err)
	}
	if repo.lastLimit != MaxLimit {
		t.Fatalf("expected limit=%d, got %d", MaxLimit, repo.lastLimit)
	}
}
