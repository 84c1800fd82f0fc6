package assignment

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	apperrors "github.com/helpdesk-ops/ticket-assignment/pkg/util/errorutil"
)

// FallbackTechnicianID identifies the sentinel technician of fallback results.
const FallbackTechnicianID = "fallback"

// Engine orchestrates inference, evaluation and selection for one ticket.
type Engine struct {
	inferrer  SkillInferrer
	evaluator *Evaluator
	source    TechnicianSource
	validate  *validator.Validate
	fallback  domain.Technician
	logger    *zap.Logger
	now       func() time.Time
}

// Dependencies bundles the engine's collaborators.
type Dependencies struct {
	Inferrer      SkillInferrer
	Availability  AvailabilityChecker
	Source        TechnicianSource
	Workers       int
	FallbackName  string
	FallbackEmail string
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewEngine creates the engine.
func NewEngine(deps Dependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	name := deps.FallbackName
	if name == "" {
		name = "Fallback Support"
	}
	email := deps.FallbackEmail
	if email == "" {
		email = "fallback@company.com"
	}
	return &Engine{
		inferrer:  deps.Inferrer,
		evaluator: NewEvaluator(deps.Availability, deps.Workers, logger),
		source:    deps.Source,
		validate:  newTicketValidator(),
		fallback:  domain.Technician{ID: FallbackTechnicianID, Name: name, Email: email},
		logger:    logger,
		now:       now,
	}
}

// AssignTicket picks a technician for ticket out of technicians. It always
// returns exactly one result. The error is non-nil only for FAILED results:
// invalid input or a cancelled context.
func (e *Engine) AssignTicket(ctx context.Context, ticket domain.Ticket, technicians []domain.Technician) (domain.AssignmentResult, error) {
	if err := e.Validate(ticket); err != nil {
		return e.failed(ticket.ID, domain.FailureValidation, err.Error(), domain.RequiredSkillSet{}), err
	}
	return e.assign(ctx, ticket, technicians)
}

// AssignFromSource loads the pool from the technician source and assigns.
// An unreachable source yields a FAILED result, never a fallback.
func (e *Engine) AssignFromSource(ctx context.Context, ticket domain.Ticket) (domain.AssignmentResult, error) {
	if err := e.Validate(ticket); err != nil {
		return e.failed(ticket.ID, domain.FailureValidation, err.Error(), domain.RequiredSkillSet{}), err
	}
	if e.source == nil {
		err := apperrors.NewAssignmentFailed(ticket.ID, errors.New("technician source not configured"))
		return e.failed(ticket.ID, domain.FailureAssignment, err.Error(), domain.RequiredSkillSet{}), err
	}

	technicians, err := e.source.ListTechnicians(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e.cancelled(ticket.ID, domain.RequiredSkillSet{}, ctxErr)
		}
		e.logger.Error("technician source unavailable", zap.String("ticket_id", ticket.ID), zap.Error(err))
		wrapped := apperrors.NewAssignmentFailed(ticket.ID, fmt.Errorf("list technicians: %w", err))
		return e.failed(ticket.ID, domain.FailureAssignment, wrapped.Error(), domain.RequiredSkillSet{}), wrapped
	}
	return e.assign(ctx, ticket, technicians)
}

// Validate checks the fields assignment depends on: id, requester e-mail and a
// parseable due date.
func (e *Engine) Validate(ticket domain.Ticket) error {
	details := map[string]any{}
	if err := e.validate.Struct(ticket); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.NewValidationError("invalid ticket", map[string]any{"ticket": err.Error()})
		}
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	if _, err := ticket.DueTime(); err != nil {
		details["due_date"] = "unparsable"
	}
	if len(details) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid ticket: "+describeDetails(details), details)
}

func (e *Engine) assign(ctx context.Context, ticket domain.Ticket, technicians []domain.Technician) (domain.AssignmentResult, error) {
	required := e.infer(ctx, ticket)
	if err := ctx.Err(); err != nil {
		return e.cancelled(ticket.ID, required, err)
	}

	candidates, err := e.evaluator.Evaluate(ctx, ticket, required, technicians)
	if err != nil {
		return e.cancelled(ticket.ID, required, err)
	}

	sel, ok := Select(candidates)
	if !ok {
		reason := fallbackReason(len(technicians))
		e.logger.Info("no eligible technician, routing to fallback",
			zap.String("ticket_id", ticket.ID),
			zap.Int("pool_size", len(technicians)))
		return e.fallbackResult(ticket.ID, required, sel.Rejected, reason), nil
	}

	w := sel.Winner
	e.logger.Info("ticket assigned",
		zap.String("ticket_id", ticket.ID),
		zap.String("technician_id", w.Technician.ID),
		zap.Int("tier", w.Tier),
		zap.Int("match_percentage", w.SkillMatch.Percentage))

	return domain.AssignmentResult{
		ID:                   uuid.NewString(),
		TicketID:             ticket.ID,
		Status:               domain.AssignmentStatusAssigned,
		TechnicianID:         w.Technician.ID,
		TechnicianName:       w.Technician.Name,
		TechnicianEmail:      w.Technician.Email,
		Tier:                 w.Tier,
		SkillMatchPercentage: w.SkillMatch.Percentage,
		SkillClassification:  w.SkillMatch.Classification,
		Available:            w.Available,
		MatchedSkills:        w.SkillMatch.MatchedSkills,
		MissingSkills:        w.SkillMatch.MissingSkills,
		RequiredSkills:       required,
		Reasoning:            fmt.Sprintf("%s (Tier %d: %s)", w.Reasoning, w.Tier, TierDescription(w.Tier)),
		Rejected:             audit(sel.Rejected),
		AssignedAt:           e.now().UTC(),
	}, nil
}

func (e *Engine) infer(ctx context.Context, ticket domain.Ticket) domain.RequiredSkillSet {
	if e.inferrer == nil {
		return domain.RequiredSkillSet{
			Skills:         []string{"General IT Support"},
			Complexity:     1,
			Source:         domain.InferenceSourceFallback,
			DegradedReason: "no skill inferrer configured",
		}
	}
	return e.inferrer.Infer(ctx, ticket)
}

func (e *Engine) fallbackResult(ticketID string, required domain.RequiredSkillSet, rejected []domain.Candidate, reason string) domain.AssignmentResult {
	return domain.AssignmentResult{
		ID:              uuid.NewString(),
		TicketID:        ticketID,
		Status:          domain.AssignmentStatusFallback,
		TechnicianID:    e.fallback.ID,
		TechnicianName:  e.fallback.Name,
		TechnicianEmail: e.fallback.Email,
		Tier:            domain.FallbackTier,
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
		RequiredSkills:  required,
		Reasoning:       reason,
		Rejected:        audit(rejected),
		AssignedAt:      e.now().UTC(),
	}
}

func (e *Engine) failed(ticketID, code, reason string, required domain.RequiredSkillSet) domain.AssignmentResult {
	return domain.AssignmentResult{
		ID:             uuid.NewString(),
		TicketID:       ticketID,
		Status:         domain.AssignmentStatusFailed,
		MatchedSkills:  []string{},
		MissingSkills:  []string{},
		RequiredSkills: required,
		Reasoning:      reason,
		FailureCode:    code,
		Rejected:       []domain.CandidateAudit{},
		AssignedAt:     e.now().UTC(),
	}
}

func (e *Engine) cancelled(ticketID string, required domain.RequiredSkillSet, cause error) (domain.AssignmentResult, error) {
	err := apperrors.NewCancelled(ticketID, cause)
	e.logger.Warn("assignment abandoned", zap.String("ticket_id", ticketID), zap.Error(cause))
	return e.failed(ticketID, domain.FailureCancelled, err.Error(), required), err
}

func fallbackReason(poolSize int) string {
	if poolSize == 0 {
		return "No technicians in the pool; assigned to fallback for manual handling"
	}
	return fmt.Sprintf("None of %d evaluated technicians is available before the due date; assigned to fallback for manual handling", poolSize)
}

func audit(candidates []domain.Candidate) []domain.CandidateAudit {
	out := make([]domain.CandidateAudit, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.CandidateAudit{
			TechnicianID:   c.Technician.ID,
			TechnicianName: c.Technician.Name,
			Tier:           c.Tier,
			Percentage:     c.SkillMatch.Percentage,
			Classification: c.SkillMatch.Classification,
			Available:      c.Available,
			Reasoning:      c.Reasoning,
		})
	}
	return out
}

func newTicketValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func describeDetails(details map[string]any) string {
	parts := make([]string, 0, len(details))
	for _, field := range []string{"ticket_id", "requester_email", "due_date"} {
		if rule, ok := details[field]; ok {
			parts = append(parts, fmt.Sprintf("%s %v", field, rule))
		}
	}
	return strings.Join(parts, ", ")
}
