package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/security/audit"
	"github.com/yourorg/hrms/internal/security/middleware"
)

// EmployeeHandler handles the employee CRUD surface. Every operation is
// scoped to the authenticated organization; ids belonging to other tenants
// are indistinguishable from missing ids.
type EmployeeHandler struct {
	employees   domain.EmployeeRepository
	auditor     *audit.Recorder
	logger      *slog.Logger
	development bool
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employees domain.EmployeeRepository, auditor *audit.Recorder, logger *slog.Logger, development bool) *EmployeeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeHandler{
		employees:   employees,
		auditor:     auditor,
		logger:      logger,
		development: development,
	}
}

// EmployeeRequest represents the create/update payload
type EmployeeRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
	HireDate   *string `json:"hire_date"` // YYYY-MM-DD
}

// parse validates the payload and converts it to a domain employee. All
// validation happens here, before any persistence call.
func (req *EmployeeRequest) parse() (*domain.Employee, string) {
	if req.FirstName == "" {
		return nil, "First name is required"
	}
	if req.LastName == "" {
		return nil, "Last name is required"
	}
	if !validEmail(req.Email) {
		return nil, "Valid email is required"
	}

	e := &domain.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Department: req.Department,
	}
	if req.HireDate != nil && *req.HireDate != "" {
		d, err := time.Parse("2006-01-02", *req.HireDate)
		if err != nil {
			return nil, "Valid hire date is required (YYYY-MM-DD)"
		}
		e.HireDate = &d
	}
	return e, ""
}

// Create handles POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, msg := req.parse()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.employees.Create(claims.OrganizationID, e); err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("added a new employee with ID %d", e.ID)),
		"employee", e.ID,
		map[string]string{"name": e.FirstName + " " + e.LastName, "email": e.Email},
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusCreated, "Employee created successfully", e)
}

// List handles GET /api/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employees, err := h.employees.List(claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}
	respondList(w, employees, len(employees))
}

// Get handles GET /api/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid employee ID is required")
		return
	}

	e, err := h.employees.GetByID(id, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "Employee not found", h.development)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: e})
}

// Update handles PUT /api/employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid employee ID is required")
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, msg := req.parse()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.employees.Update(id, claims.OrganizationID, e); err != nil {
		respondDomainError(w, err, "Employee not found", h.development)
		return
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("updated employee %d", e.ID)),
		"employee", e.ID,
		req,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusOK, "Employee updated successfully", e)
}

// Delete handles DELETE /api/employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid employee ID is required")
		return
	}

	e, err := h.employees.Delete(id, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "Employee not found", h.development)
		return
	}

	_, err = h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("deleted employee %d", e.ID)),
		"employee", e.ID,
		map[string]string{"name": e.FirstName + " " + e.LastName, "email": e.Email},
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusOK, "Employee deleted successfully", e)
}

// Teams handles GET /api/employees/{id}/teams
func (h *EmployeeHandler) Teams(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid employee ID is required")
		return
	}

	teams, err := h.employees.Teams(id, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}
	respondList(w, teams, len(teams))
}
