package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketPriority enumerates SLA urgency as produced by classification.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Rank orders priorities Low < Medium < High < Critical. Unknown values rank 0.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityLow:
		return 1
	case TicketPriorityMedium:
		return 2
	case TicketPriorityHigh:
		return 3
	case TicketPriorityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	return p.Rank() > 0
}

// Ticket is a classified support request handed over by intake.
type Ticket struct {
	ID             string         `json:"ticket_id" validate:"required"`
	Summary        string         `json:"summary"`
	Description    string         `json:"description"`
	IssueType      string         `json:"issue_type"`
	SubIssueType   string         `json:"sub_issue_type"`
	Category       string         `json:"ticket_category"`
	Priority       TicketPriority `json:"priority"`
	DueDate        string         `json:"due_date"`
	RequesterName  string         `json:"requester_name"`
	RequesterEmail string         `json:"requester_email" validate:"required,email"`
}

// DueTime parses the ticket's due date.
func (t Ticket) DueTime() (time.Time, error) {
	return ParseDueDate(t.DueDate)
}

var offsetLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDueDate accepts RFC 3339 timestamps and common offset-less forms.
// Values without an offset are interpreted as UTC. The result is always UTC.
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised due date %q", raw)
}
