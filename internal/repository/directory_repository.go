package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
)

var (
	DefaultManagerRoles = []string{"manager", "team_lead"}
	DefaultHRRoles      = []string{"hr", "hr_admin"}
)

// DirectoryRepository resolves who is scored and who gets alerted.
type DirectoryRepository struct {
	base
	managerRoles []string
	hrRoles      []string
}

func NewDirectoryRepository(db *sql.DB, driver string, managerRoles, hrRoles []string) *DirectoryRepository {
	if len(managerRoles) == 0 {
		managerRoles = DefaultManagerRoles
	}
	if len(hrRoles) == 0 {
		hrRoles = DefaultHRRoles
	}
	return &DirectoryRepository{
		base:         base{db: db, driver: driver},
		managerRoles: managerRoles,
		hrRoles:      hrRoles,
	}
}

// EligibleEmployees lists profiles that have not opted out of attrition
// analysis. TeamID is the lowest team id the employee belongs to.
func (r *DirectoryRepository) EligibleEmployees(ctx context.Context) ([]domain.Employee, error) {
	const query = `
		SELECT
			p.id,
			p.display_name,
			p.job_title,
			p.hired_at,
			COALESCE((SELECT MIN(tm.team_id) FROM team_members AS tm WHERE tm.user_id = p.id), '') AS team_id
		FROM profiles AS p
		WHERE p.attrition_opt_out = ?
		ORDER BY p.id
	`

	rows, err := r.db.QueryContext(ctx, r.q(query), false)
	if err != nil {
		return nil, fmt.Errorf("query EligibleEmployees: %w", err)
	}
	defer rows.Close()

	var results []domain.Employee
	for rows.Next() {
		var e domain.Employee
		var hiredAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.JobTitle, &hiredAt, &e.TeamID); err != nil {
			return nil, fmt.Errorf("scan EligibleEmployees row: %w", err)
		}
		if hiredAt.Valid {
			t := hiredAt.Time
			e.HiredAt = &t
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate EligibleEmployees: %w", err)
	}
	return results, nil
}

// TeamManagers returns holders of a manager role in any team the employee
// belongs to, excluding the employee.
func (r *DirectoryRepository) TeamManagers(ctx context.Context, employeeID string) ([]domain.User, error) {
	query := `
		SELECT DISTINCT mgr.user_id, COALESCE(p.display_name, '')
		FROM team_members AS emp
		JOIN team_members AS mgr ON mgr.team_id = emp.team_id
		JOIN user_roles AS ur ON ur.user_id = mgr.user_id
		LEFT JOIN profiles AS p ON p.id = mgr.user_id
		WHERE emp.user_id = ?
			AND mgr.user_id <> ?
			AND ur.role IN (` + placeholders(len(r.managerRoles)) + `)
		ORDER BY mgr.user_id
	`
	args := []any{employeeID, employeeID}
	for _, role := range r.managerRoles {
		args = append(args, role)
	}

	return r.queryUsers(ctx, "TeamManagers", query, args...)
}

// HRUsers returns every user holding an HR role.
func (r *DirectoryRepository) HRUsers(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT DISTINCT ur.user_id, COALESCE(p.display_name, '')
		FROM user_roles AS ur
		LEFT JOIN profiles AS p ON p.id = ur.user_id
		WHERE ur.role IN (` + placeholders(len(r.hrRoles)) + `)
		ORDER BY ur.user_id
	`
	args := make([]any, 0, len(r.hrRoles))
	for _, role := range r.hrRoles {
		args = append(args, role)
	}

	return r.queryUsers(ctx, "HRUsers", query, args...)
}

func (r *DirectoryRepository) queryUsers(ctx context.Context, op, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	var results []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}
