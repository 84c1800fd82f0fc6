package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

const defaultWorkers = 8

// Evaluator turns every technician in a pool into a Candidate.
type Evaluator struct {
	availability AvailabilityChecker
	workers      int
	logger       *zap.Logger
}

// NewEvaluator builds an evaluator running at most workers checks at once.
func NewEvaluator(availability AvailabilityChecker, workers int, logger *zap.Logger) *Evaluator {
	if availability == nil {
		availability = AlwaysAvailable{}
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{availability: availability, workers: workers, logger: logger}
}

// Evaluate returns one Candidate per technician in input order. Nobody is
// filtered out here so the audit trail covers the whole pool. The only error is
// the context's, in which case no candidates are returned.
func (e *Evaluator) Evaluate(ctx context.Context, ticket domain.Ticket, required domain.RequiredSkillSet, technicians []domain.Technician) ([]domain.Candidate, error) {
	deadline, err := ticket.DueTime()
	if err != nil {
		// zero deadline is an empty window, which the checker treats as available
		deadline = time.Time{}
	}

	candidates := make([]domain.Candidate, len(technicians))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range technicians {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidates[i] = e.evaluateOne(gctx, technicians[i], required.Skills, deadline)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("candidates evaluated",
		zap.String("ticket_id", ticket.ID),
		zap.Int("count", len(candidates)))
	return candidates, nil
}

func (e *Evaluator) evaluateOne(ctx context.Context, tech domain.Technician, required []string, deadline time.Time) domain.Candidate {
	match := Match(required, tech.Skills)
	available := e.availability.IsAvailable(ctx, tech.Email, deadline)
	return domain.Candidate{
		Technician: tech,
		SkillMatch: match,
		Available:  available,
		Tier:       TierFor(available, match.Classification),
		Reasoning:  reasoning(tech, match, available),
	}
}

func reasoning(tech domain.Technician, match domain.SkillMatchResult, available bool) string {
	return fmt.Sprintf("Technician: %s, Skill Match: %s (%d%%), Available: %t, Current Workload: %d, Matched Skills: [%s]",
		tech.Name,
		match.Classification,
		match.Percentage,
		available,
		tech.CurrentWorkload,
		strings.Join(match.MatchedSkills, ", "))
}
