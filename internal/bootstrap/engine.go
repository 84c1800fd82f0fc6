// Package bootstrap builds the assignment engine from configuration. The HTTP
// service and the CLI share it.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/assignment"
	"github.com/helpdesk-ops/ticket-assignment/internal/calendar"
	"github.com/helpdesk-ops/ticket-assignment/internal/config"
	"github.com/helpdesk-ops/ticket-assignment/internal/inference"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
)

// NewEngine wires inference, availability and the technician source into an
// engine. The returned cleanup releases the inference client.
func NewEngine(ctx context.Context, cfg *config.Config, source assignment.TechnicianSource, logger *zap.Logger, metrics *observability.Metrics) (*assignment.Engine, func(), error) {
	cleanup := func() {}

	mapping, err := inference.LoadSkillMapping(cfg.Inference.SkillMappingFile)
	if err != nil {
		return nil, cleanup, err
	}

	var client inference.CompletionClient
	if cfg.Inference.Enabled() {
		gemini, err := inference.NewGeminiClient(ctx, cfg.Inference.APIKey, cfg.Inference.Model)
		if err != nil {
			return nil, cleanup, fmt.Errorf("init inference client: %w", err)
		}
		client = gemini
		cleanup = func() { _ = gemini.Close() }
	} else {
		logger.Warn("GEMINI_API_KEY not provided; skills come from the issue type table")
	}

	inferrer := inference.NewService(inference.Options{
		Client:  client,
		Mapping: mapping,
		Timeout: cfg.Inference.Timeout(),
		Logger:  logger.Named("inference"),
		Metrics: metrics,
	})

	var availability assignment.AvailabilityChecker = assignment.AlwaysAvailable{}
	if cfg.Calendar.Enabled() {
		oracle, err := calendar.NewFreeBusyOracle(ctx, cfg.Calendar, calendar.Options{
			Logger:  logger.Named("calendar"),
			Metrics: metrics,
		})
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("init calendar oracle: %w", err)
		}
		availability = oracle
	} else {
		logger.Warn("CALENDAR_CREDENTIALS_FILE not provided; every technician counts as available")
	}

	engine := assignment.NewEngine(assignment.Dependencies{
		Inferrer:      inferrer,
		Availability:  availability,
		Source:        source,
		Workers:       cfg.Assignment.WorkerPoolSize,
		FallbackName:  cfg.Assignment.FallbackName,
		FallbackEmail: cfg.Assignment.FallbackEmail,
		Logger:        logger.Named("assignment"),
	})
	return engine, cleanup, nil
}
