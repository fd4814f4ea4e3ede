package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourorg/hrms/internal/domain"
)

// aggTime decodes timestamps inside json_agg aggregates. Postgres renders
// TIMESTAMP (without time zone) columns in json_build_object as ISO
// strings with no zone suffix, which time.Time's RFC3339 decoder rejects.
// Offset-less values are taken as UTC, matching how CURRENT_TIMESTAMP is
// stored.
type aggTime struct {
	time.Time
}

var aggTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *aggTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range aggTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q in aggregate", s)
}

type employeeTeamRow struct {
	TeamID     int64   `json:"team_id"`
	TeamName   string  `json:"team_name"`
	AssignedAt aggTime `json:"assigned_at"`
}

// decodeEmployeeTeams unpacks the teams aggregate column. A SQL NULL
// (no memberships) arrives as an empty or "null" payload.
func decodeEmployeeTeams(raw []byte) ([]domain.EmployeeTeam, error) {
	out := []domain.EmployeeTeam{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var rows []employeeTeamRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, domain.EmployeeTeam{
			TeamID:     row.TeamID,
			TeamName:   row.TeamName,
			AssignedAt: row.AssignedAt.Time,
		})
	}
	return out, nil
}

type teamMemberRow struct {
	EmployeeID int64   `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Position   *string `json:"position"`
	AssignedAt aggTime `json:"assigned_at"`
}

// decodeTeamMembers unpacks the members aggregate column.
func decodeTeamMembers(raw []byte) ([]domain.TeamMember, error) {
	out := []domain.TeamMember{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var rows []teamMemberRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out = append(out, domain.TeamMember{
			EmployeeID: row.EmployeeID,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			Email:      row.Email,
			Position:   row.Position,
			AssignedAt: row.AssignedAt.Time,
		})
	}
	return out, nil
}
