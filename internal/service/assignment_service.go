package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	"github.com/helpdesk-ops/ticket-assignment/internal/events"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
	"github.com/helpdesk-ops/ticket-assignment/internal/repository"
	apperrors "github.com/helpdesk-ops/ticket-assignment/pkg/util/errorutil"
)

// Assigner is the assignment engine as seen by the service.
type Assigner interface {
	AssignTicket(ctx context.Context, ticket domain.Ticket, technicians []domain.Technician) (domain.AssignmentResult, error)
	AssignFromSource(ctx context.Context, ticket domain.Ticket) (domain.AssignmentResult, error)
}

// AssignmentService runs the engine and records what it decided.
type AssignmentService struct {
	engine      Assigner
	assignments repository.AssignmentRepository
	technicians repository.TechnicianRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// AssignmentDependencies bundles collaborators. Only Engine is required.
type AssignmentDependencies struct {
	Engine         Assigner
	AssignmentRepo repository.AssignmentRepository
	TechnicianRepo repository.TechnicianRepository
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Now            func() time.Time
}

// AssignRequest is one assignment call. A nil Technicians slice means the pool
// is loaded from the technician store.
type AssignRequest struct {
	Ticket      domain.Ticket
	Technicians []domain.Technician
	Actor       string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		engine:      deps.Engine,
		assignments: deps.AssignmentRepo,
		technicians: deps.TechnicianRepo,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         now,
	}
}

// Assign runs the engine, then persists and announces the result. Storage and
// event failures are logged; they never change the returned result.
func (s *AssignmentService) Assign(ctx context.Context, req AssignRequest) (domain.AssignmentResult, error) {
	start := s.now()
	fromStore := req.Technicians == nil

	var (
		result domain.AssignmentResult
		err    error
	)
	if fromStore {
		result, err = s.engine.AssignFromSource(ctx, req.Ticket)
	} else {
		result, err = s.engine.AssignTicket(ctx, req.Ticket, req.Technicians)
	}
	s.metrics.RecordAssignment(string(result.Status), result.Tier, s.now().Sub(start))

	if result.FailureCode == domain.FailureValidation {
		return result, err
	}

	// the caller's deadline may already be gone; bookkeeping gets its own
	bookCtx := context.WithoutCancel(ctx)
	s.persist(bookCtx, result)
	if fromStore && result.Status == domain.AssignmentStatusAssigned {
		s.bumpWorkload(bookCtx, result)
	}
	s.publish(bookCtx, req, result)
	return result, err
}

// GetLatest returns the most recent assignment recorded for ticketID.
func (s *AssignmentService) GetLatest(ctx context.Context, ticketID string) (*domain.AssignmentResult, error) {
	if s.assignments == nil {
		return nil, apperrors.NewNotFound("assignment", map[string]any{"ticket_id": ticketID})
	}
	result, err := s.assignments.GetLatestByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// History returns up to limit assignments for ticketID, newest first.
func (s *AssignmentService) History(ctx context.Context, ticketID string, limit int) ([]domain.AssignmentResult, error) {
	if s.assignments == nil {
		return []domain.AssignmentResult{}, nil
	}
	items, err := s.assignments.ListByTicket(ctx, ticketID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.AssignmentResult{}
	}
	return items, nil
}

// ListTechnicians returns the pool in the order the engine sees it.
func (s *AssignmentService) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	if s.technicians == nil {
		return []domain.Technician{}, nil
	}
	techs, err := s.technicians.ListTechnicians(ctx)
	if err != nil {
		return nil, apperrors.MapError(fmt.Errorf("list technicians: %w", err))
	}
	return techs, nil
}

// GetTechnician returns one technician from the store.
func (s *AssignmentService) GetTechnician(ctx context.Context, id string) (*domain.Technician, error) {
	if s.technicians == nil {
		return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": id})
	}
	tech, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": id})
		}
		return nil, apperrors.MapError(fmt.Errorf("get technician: %w", err))
	}
	return tech, nil
}

func (s *AssignmentService) persist(ctx context.Context, result domain.AssignmentResult) {
	if s.assignments == nil {
		return
	}
	if err := s.assignments.Create(ctx, &result); err != nil {
		s.logger.Error("failed to store assignment",
			zap.String("ticket_id", result.TicketID),
			zap.String("assignment_id", result.ID),
			zap.Error(err))
	}
}

func (s *AssignmentService) bumpWorkload(ctx context.Context, result domain.AssignmentResult) {
	if s.technicians == nil {
		return
	}
	if err := s.technicians.IncrementWorkload(ctx, result.TechnicianID); err != nil {
		s.logger.Warn("failed to update technician workload",
			zap.String("technician_id", result.TechnicianID),
			zap.Error(err))
	}
}

func (s *AssignmentService) publish(ctx context.Context, req AssignRequest, result domain.AssignmentResult) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewAssignmentEvent(req.Ticket, result, events.Actor{Subject: req.Actor})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("assignment event delivery incomplete",
			zap.String("ticket_id", result.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
