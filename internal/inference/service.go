package inference

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
)

const defaultTimeout = 20 * time.Second

// Service infers the skills a ticket needs. It asks the completion endpoint once
// and falls back to the issue-type table on any failure, so Infer always
// returns a usable skill set.
type Service struct {
	client  CompletionClient
	mapping SkillMapping
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Options configures a Service. A nil Client runs the service in fallback-only mode.
type Options struct {
	Client  CompletionClient
	Mapping SkillMapping
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewService creates the inference service.
func NewService(opts Options) *Service {
	s := &Service{
		client:  opts.Client,
		mapping: opts.Mapping,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.mapping == nil {
		s.mapping = DefaultSkillMapping()
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Infer returns the required skills for ticket. It never retries; a timeout is
// treated like any other failure.
func (s *Service) Infer(ctx context.Context, ticket domain.Ticket) domain.RequiredSkillSet {
	if s.client == nil {
		return s.mapping.Fallback(ticket, "inference endpoint not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.Complete(callCtx, BuildPrompt(ticket))
	if err != nil {
		return s.degrade(ticket, fmt.Sprintf("completion failed: %v", err))
	}

	set, err := ParseAnalysis(text)
	if err != nil {
		return s.degrade(ticket, err.Error())
	}
	set.Source = domain.InferenceSourceLLM

	s.logger.Debug("skills inferred",
		zap.String("ticket_id", ticket.ID),
		zap.Strings("skills", set.Skills),
		zap.Int("complexity", set.Complexity))
	return set
}

func (s *Service) degrade(ticket domain.Ticket, reason string) domain.RequiredSkillSet {
	s.metrics.RecordDegraded(observability.DegradedInference)
	s.logger.Warn("skill inference degraded, using issue type mapping",
		zap.String("ticket_id", ticket.ID),
		zap.String("issue_type", ticket.IssueType),
		zap.String("reason", reason))
	return s.mapping.Fallback(ticket, reason)
}
