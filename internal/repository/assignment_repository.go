package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// AssignmentRepository stores assignment results with their audit trail.
type AssignmentRepository interface {
	Create(ctx context.Context, result *domain.AssignmentResult) error
	GetLatestByTicket(ctx context.Context, ticketID string) (*domain.AssignmentResult, error)
	ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.AssignmentResult, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `id, ticket_id, status, technician_id, technician_name, technician_email,
               tier, skill_match_percentage, skill_classification, available, matched_skills,
               missing_skills, required_skills, reasoning, failure_code, rejected_candidates, assigned_at`

func (r *assignmentRepository) Create(ctx context.Context, result *domain.AssignmentResult) error {
	const query = `
        INSERT INTO ticket_assignments (id, ticket_id, status, technician_id, technician_name, technician_email,
            tier, skill_match_percentage, skill_classification, available, matched_skills,
            missing_skills, required_skills, reasoning, failure_code, rejected_candidates, assigned_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	matched, err := json.Marshal(result.MatchedSkills)
	if err != nil {
		return fmt.Errorf("encode matched skills: %w", err)
	}
	missing, err := json.Marshal(result.MissingSkills)
	if err != nil {
		return fmt.Errorf("encode missing skills: %w", err)
	}
	required, err := json.Marshal(result.RequiredSkills)
	if err != nil {
		return fmt.Errorf("encode required skills: %w", err)
	}
	rejected, err := json.Marshal(result.Rejected)
	if err != nil {
		return fmt.Errorf("encode rejected candidates: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.TicketID,
		result.Status,
		nullIfEmpty(result.TechnicianID),
		nullIfEmpty(result.TechnicianName),
		nullIfEmpty(result.TechnicianEmail),
		result.Tier,
		result.SkillMatchPercentage,
		nullIfEmpty(string(result.SkillClassification)),
		result.Available,
		matched,
		missing,
		required,
		result.Reasoning,
		nullIfEmpty(result.FailureCode),
		rejected,
		result.AssignedAt,
	)
	return err
}

func (r *assignmentRepository) GetLatestByTicket(ctx context.Context, ticketID string) (*domain.AssignmentResult, error) {
	query := `SELECT ` + assignmentColumns + `
        FROM ticket_assignments WHERE ticket_id=$1
        ORDER BY assigned_at DESC LIMIT 1`

	row := r.pool.QueryRow(ctx, query, ticketID)
	return scanAssignment(row)
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.AssignmentResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s
        FROM ticket_assignments WHERE ticket_id=$1
        ORDER BY assigned_at DESC LIMIT %d`, assignmentColumns, limit)

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentResult
	for rows.Next() {
		item, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*domain.AssignmentResult, error) {
	var (
		result                               domain.AssignmentResult
		techID, techName, techEmail          *string
		classification, failureCode          *string
		matched, missing, required, rejected []byte
	)
	if err := row.Scan(
		&result.ID,
		&result.TicketID,
		&result.Status,
		&techID,
		&techName,
		&techEmail,
		&result.Tier,
		&result.SkillMatchPercentage,
		&classification,
		&result.Available,
		&matched,
		&missing,
		&required,
		&result.Reasoning,
		&failureCode,
		&rejected,
		&result.AssignedAt,
	); err != nil {
		return nil, err
	}

	result.TechnicianID = deref(techID)
	result.TechnicianName = deref(techName)
	result.TechnicianEmail = deref(techEmail)
	result.SkillClassification = domain.Classification(deref(classification))
	result.FailureCode = deref(failureCode)

	if err := decodeJSON(matched, &result.MatchedSkills); err != nil {
		return nil, fmt.Errorf("decode matched skills: %w", err)
	}
	if err := decodeJSON(missing, &result.MissingSkills); err != nil {
		return nil, fmt.Errorf("decode missing skills: %w", err)
	}
	if err := decodeJSON(required, &result.RequiredSkills); err != nil {
		return nil, fmt.Errorf("decode required skills: %w", err)
	}
	if err := decodeJSON(rejected, &result.Rejected); err != nil {
		return nil, fmt.Errorf("decode rejected candidates: %w", err)
	}
	result.AssignedAt = result.AssignedAt.UTC()
	return &result, nil
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
