package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/security/audit"
	"github.com/yourorg/hrms/internal/security/middleware"
)

// TeamHandler handles the team CRUD surface and the employee-team
// assignment operations.
type TeamHandler struct {
	teams       domain.TeamRepository
	assignments domain.AssignmentRepository
	auditor     *audit.Recorder
	logger      *slog.Logger
	development bool
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams domain.TeamRepository, assignments domain.AssignmentRepository, auditor *audit.Recorder, logger *slog.Logger, development bool) *TeamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamHandler{
		teams:       teams,
		assignments: assignments,
		auditor:     auditor,
		logger:      logger,
		development: development,
	}
}

// TeamRequest represents the create/update payload
type TeamRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// AssignmentRequest represents the assign/unassign payload
type AssignmentRequest struct {
	EmployeeID int64 `json:"employee_id"`
	TeamID     int64 `json:"team_id"`
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	t := &domain.Team{Name: req.Name, Description: req.Description}
	if err := h.teams.Create(claims.OrganizationID, t); err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("added a new team with ID %d", t.ID)),
		"team", t.ID,
		map[string]string{"name": t.Name},
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusCreated, "Team created successfully", t)
}

// List handles GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teams, err := h.teams.List(claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}
	respondList(w, teams, len(teams))
}

// Get handles GET /api/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid team ID is required")
		return
	}

	t, err := h.teams.GetByID(id, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "Team not found", h.development)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: t})
}

// Update handles PUT /api/teams/{id}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid team ID is required")
		return
	}

	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Team name is required")
		return
	}

	t := &domain.Team{Name: req.Name, Description: req.Description}
	if err := h.teams.Update(id, claims.OrganizationID, t); err != nil {
		respondDomainError(w, err, "Team not found", h.development)
		return
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("updated team %d", t.ID)),
		"team", t.ID,
		req,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusOK, "Team updated successfully", t)
}

// Delete handles DELETE /api/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid team ID is required")
		return
	}

	t, err := h.teams.Delete(id, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "Team not found", h.development)
		return
	}

	_, err = h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("deleted team %d", t.ID)),
		"team", t.ID,
		map[string]string{"name": t.Name},
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusOK, "Team deleted successfully", t)
}

// Members handles GET /api/teams/{id}/members
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Valid team ID is required")
		return
	}

	members, err := h.teams.Members(id, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}
	respondList(w, members, len(members))
}

// Assign handles POST /api/teams/assign
func (h *TeamHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmployeeID < 1 || req.TeamID < 1 {
		respondError(w, http.StatusBadRequest, "Valid employee ID and team ID are required")
		return
	}

	a, err := h.assignments.Assign(req.EmployeeID, req.TeamID, claims.OrganizationID)
	if err != nil {
		respondDomainError(w, err, "Employee or Team not found in this organization", h.development)
		return
	}

	_, err = h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("assigned employee %d to team %d", req.EmployeeID, req.TeamID)),
		"employee_team", a.ID,
		req,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusCreated, "Employee assigned to team successfully", a)
}

// Unassign handles POST /api/teams/unassign
func (h *TeamHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmployeeID < 1 || req.TeamID < 1 {
		respondError(w, http.StatusBadRequest, "Valid employee ID and team ID are required")
		return
	}

	if _, err := h.assignments.Unassign(req.EmployeeID, req.TeamID, claims.OrganizationID); err != nil {
		respondDomainError(w, err, "Assignment not found", h.development)
		return
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, fmt.Sprintf("unassigned employee %d from team %d", req.EmployeeID, req.TeamID)),
		"employee_team", 0,
		req,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Employee unassigned from team successfully"})
}
