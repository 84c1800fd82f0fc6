package dto

import (
	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// AssignTicketRequest payload. Omitting technicians assigns from the stored pool;
// an explicit empty list routes straight to fallback.
type AssignTicketRequest struct {
	Ticket      TicketPayload       `json:"ticket"`
	Technicians []TechnicianPayload `json:"technicians" validate:"omitempty,dive"`
}

// TicketPayload is the ticket as produced by intake.
type TicketPayload struct {
	ID             string                `json:"ticket_id" validate:"required"`
	Summary        string                `json:"summary"`
	Description    string                `json:"description"`
	IssueType      string                `json:"issue_type"`
	SubIssueType   string                `json:"sub_issue_type"`
	Category       string                `json:"ticket_category"`
	Priority       domain.TicketPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	DueDate        string                `json:"due_date" validate:"required"`
	RequesterName  string                `json:"requester_name"`
	RequesterEmail string                `json:"requester_email" validate:"required,email"`
}

// TechnicianPayload is one member of a caller-supplied pool.
type TechnicianPayload struct {
	ID              string   `json:"technician_id" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Skills          []string `json:"skills"`
	Specializations []string `json:"specializations"`
	CurrentWorkload int      `json:"current_workload" validate:"gte=0"`
}

// ToTicket converts the payload.
func (p TicketPayload) ToTicket() domain.Ticket {
	return domain.Ticket{
		ID:             p.ID,
		Summary:        p.Summary,
		Description:    p.Description,
		IssueType:      p.IssueType,
		SubIssueType:   p.SubIssueType,
		Category:       p.Category,
		Priority:       p.Priority,
		DueDate:        p.DueDate,
		RequesterName:  p.RequesterName,
		RequesterEmail: p.RequesterEmail,
	}
}

// ToTechnicians converts the pool, preserving nil.
func ToTechnicians(items []TechnicianPayload) []domain.Technician {
	if items == nil {
		return nil
	}
	out := make([]domain.Technician, 0, len(items))
	for _, t := range items {
		out = append(out, domain.Technician{
			ID:              t.ID,
			Name:            t.Name,
			Email:           t.Email,
			Role:            t.Role,
			Skills:          t.Skills,
			Specializations: t.Specializations,
			CurrentWorkload: t.CurrentWorkload,
		})
	}
	return out
}

// TechnicianSummary response.
type TechnicianSummary struct {
	ID              string   `json:"technician_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role,omitempty"`
	Skills          []string `json:"skills"`
	Specializations []string `json:"specializations"`
	CurrentWorkload int      `json:"current_workload"`
}

// NewTechnicianSummary builds the response item.
func NewTechnicianSummary(t domain.Technician) TechnicianSummary {
	return TechnicianSummary{
		ID:              t.ID,
		Name:            t.Name,
		Email:           t.Email,
		Role:            t.Role,
		Skills:          t.Skills,
		Specializations: t.Specializations,
		CurrentWorkload: t.CurrentWorkload,
	}
}
