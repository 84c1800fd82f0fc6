package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAssigned     EventType = "ticket_assigned"
	EventAssignmentFallback EventType = "assignment_fallback"
	EventAssignmentFailed   EventType = "assignment_failed"
)

// AssignmentEventTypes lists every event emitted for an assignment outcome.
var AssignmentEventTypes = []EventType{EventTicketAssigned, EventAssignmentFallback, EventAssignmentFailed}

// Actor identifies the caller that requested the assignment.
type Actor struct {
	Subject string `json:"subject"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AssignmentPayload carries the outcome downstream consumers act on.
type AssignmentPayload struct {
	AssignmentID         string                  `json:"assignment_id"`
	Status               domain.AssignmentStatus `json:"status"`
	TechnicianID         string                  `json:"technician_id,omitempty"`
	TechnicianName       string                  `json:"technician_name,omitempty"`
	TechnicianEmail      string                  `json:"technician_email,omitempty"`
	Tier                 int                     `json:"tier"`
	SkillMatchPercentage int                     `json:"skill_match_percentage"`
	RequiredSkills       []string                `json:"required_skills"`
	Reasoning            string                  `json:"reasoning"`
	FailureCode          string                  `json:"failure_code,omitempty"`
	TicketSummary        string                  `json:"ticket_summary,omitempty"`
	TicketPriority       domain.TicketPriority   `json:"ticket_priority,omitempty"`
	DueDate              string                  `json:"due_date,omitempty"`
}

// EventTypeFor maps an assignment status to its event type.
func EventTypeFor(status domain.AssignmentStatus) EventType {
	switch status {
	case domain.AssignmentStatusAssigned:
		return EventTicketAssigned
	case domain.AssignmentStatusFallback:
		return EventAssignmentFallback
	default:
		return EventAssignmentFailed
	}
}

// NewAssignmentEvent builds the event announcing result for ticket.
func NewAssignmentEvent(ticket domain.Ticket, result domain.AssignmentResult, actor Actor) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventTypeFor(result.Status),
		TicketID:  result.TicketID,
		Actor:     actor,
		Timestamp: result.AssignedAt,
		Payload: AssignmentPayload{
			AssignmentID:         result.ID,
			Status:               result.Status,
			TechnicianID:         result.TechnicianID,
			TechnicianName:       result.TechnicianName,
			TechnicianEmail:      result.TechnicianEmail,
			Tier:                 result.Tier,
			SkillMatchPercentage: result.SkillMatchPercentage,
			RequiredSkills:       result.RequiredSkills.Skills,
			Reasoning:            result.Reasoning,
			FailureCode:          result.FailureCode,
			TicketSummary:        ticket.Summary,
			TicketPriority:       ticket.Priority,
			DueDate:              ticket.DueDate,
		},
	}
}
