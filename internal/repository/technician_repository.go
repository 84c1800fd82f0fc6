package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// TechnicianRepository reads the technician pool and keeps workload counts.
type TechnicianRepository interface {
	ListTechnicians(ctx context.Context) ([]domain.Technician, error)
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	IncrementWorkload(ctx context.Context, id string) error
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

// ListTechnicians returns active technicians, least loaded first, then by name.
func (r *technicianRepository) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	const query = `
        SELECT id, name, email, role, skills, specializations, current_workload
        FROM technicians
        WHERE active_flag = TRUE
        ORDER BY current_workload ASC, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Technician{}
	for rows.Next() {
		tech, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tech)
	}
	return result, rows.Err()
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	const query = `
        SELECT id, name, email, role, skills, specializations, current_workload
        FROM technicians WHERE id=$1`
	return scanTechnician(r.pool.QueryRow(ctx, query, id))
}

func (r *technicianRepository) IncrementWorkload(ctx context.Context, id string) error {
	const query = `UPDATE technicians SET current_workload = current_workload + 1, updated_at = NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTechnician(row pgx.Row) (*domain.Technician, error) {
	var (
		tech            domain.Technician
		role            *string
		skills          *string
		specializations *string
	)
	if err := row.Scan(
		&tech.ID,
		&tech.Name,
		&tech.Email,
		&role,
		&skills,
		&specializations,
		&tech.CurrentWorkload,
	); err != nil {
		return nil, err
	}
	if role != nil {
		tech.Role = *role
	}
	tech.Skills = parseSkillList(deref(skills))
	tech.Specializations = parseSkillList(deref(specializations))
	return &tech, nil
}

// parseSkillList reads a skills column holding either a JSON array or a
// comma-separated list.
func parseSkillList(raw string) []string {
	raw = strings.TrimSpace(raw)
	out := []string{}
	if raw == "" {
		return out
	}

	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			items = strings.Split(strings.Trim(raw, "[]"), ",")
		}
	} else {
		items = strings.Split(raw, ",")
	}

	for _, item := range items {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
