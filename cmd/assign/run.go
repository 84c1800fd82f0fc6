package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/bootstrap"
	"github.com/helpdesk-ops/ticket-assignment/internal/config"
	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	"github.com/helpdesk-ops/ticket-assignment/internal/events"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
	"github.com/helpdesk-ops/ticket-assignment/internal/persistence"
	"github.com/helpdesk-ops/ticket-assignment/internal/repository"
	"github.com/helpdesk-ops/ticket-assignment/internal/service"
	"github.com/helpdesk-ops/ticket-assignment/internal/worker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assign one ticket and print the result as JSON",
	Long:  "Reads a ticket JSON file, runs the assignment engine and prints the AssignmentResult. Without --technicians the pool is loaded from Postgres.",
	RunE:  runAssign,
}

var (
	runTicketFile      string
	runTechniciansFile string
	runPersist         bool
)

func init() {
	runCmd.Flags().StringVarP(&runTicketFile, "ticket", "t", "", "Path to ticket JSON file (required)")
	runCmd.Flags().StringVar(&runTechniciansFile, "technicians", "", "Path to technician pool JSON file (default: load from database)")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "Store the result and publish the assignment event")
	_ = runCmd.MarkFlagRequired("ticket")

	rootCmd.AddCommand(runCmd)
}

func runAssign(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the result
	cfg.Logger.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	var ticket domain.Ticket
	if err := readJSON(runTicketFile, &ticket); err != nil {
		return fmt.Errorf("failed to read ticket: %w", err)
	}

	var pool []domain.Technician
	if runTechniciansFile != "" {
		if err := readJSON(runTechniciansFile, &pool); err != nil {
			return fmt.Errorf("failed to read technicians: %w", err)
		}
		if pool == nil {
			pool = []domain.Technician{}
		}
	}

	needDB := pool == nil || runPersist
	deps := service.AssignmentDependencies{Logger: logger}
	var source repository.TechnicianRepository
	if needDB {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		defer pg.Close()
		if pg.PoolHandle() == nil {
			return fmt.Errorf("POSTGRES_DSN is required without --technicians or with --persist")
		}
		source = repository.NewTechnicianRepository(pg.PoolHandle())
		deps.TechnicianRepo = source
		if runPersist {
			deps.AssignmentRepo = repository.NewAssignmentRepository(pg.PoolHandle())
		}
	}
	if runPersist {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		dispatcher := events.NewInMemoryDispatcher()
		worker.StartEventWorkers(dispatcher, events.NewChannelForwarder(redis, cfg.Redis.Channel, logger), nil, logger)
		deps.Dispatcher = dispatcher
	}

	engine, closeEngine, err := bootstrap.NewEngine(ctx, cfg, source, logger, nil)
	if err != nil {
		return err
	}
	defer closeEngine()
	deps.Engine = engine

	result, assignErr := service.NewAssignmentService(deps).Assign(ctx, service.AssignRequest{
		Ticket:      ticket,
		Technicians: pool,
		Actor:       "cli",
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if assignErr != nil {
		logger.Error("assignment failed", zap.String("ticket_id", ticket.ID), zap.Error(assignErr))
		return assignErr
	}
	return nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
