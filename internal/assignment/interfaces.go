package assignment

import (
	"context"
	"time"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// TechnicianSource lists the technician pool ordered by current workload
// ascending, then name ascending. Selection tie-breaks rely on that order.
type TechnicianSource interface {
	ListTechnicians(ctx context.Context) ([]domain.Technician, error)
}

// SkillInferrer proposes the skills a ticket needs. Implementations never fail:
// outages resolve to a rule-based skill set.
type SkillInferrer interface {
	Infer(ctx context.Context, ticket domain.Ticket) domain.RequiredSkillSet
}

// AvailabilityChecker answers whether a technician is free until deadline.
// Implementations return true whenever the answer is unknown.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, email string, deadline time.Time) bool
}

// AlwaysAvailable is the checker used when no calendar is configured.
type AlwaysAvailable struct{}

// IsAvailable always reports true.
func (AlwaysAvailable) IsAvailable(context.Context, string, time.Time) bool {
	return true
}
