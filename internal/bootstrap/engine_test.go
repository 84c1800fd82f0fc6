package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/config"
	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
)

func baseConfig() *config.Config {
	return &config.Config{
		Inference:  config.InferenceConfig{TimeoutSeconds: 1},
		Calendar:   config.CalendarConfig{TimeoutSeconds: 1},
		Assignment: config.AssignmentConfig{WorkerPoolSize: 2, FallbackName: "Desk", FallbackEmail: "desk@example.com"},
	}
}

func TestNewEngine_OfflineDefaults(t *testing.T) {
	metrics := observability.NewMetrics()
	engine, cleanup, err := NewEngine(context.Background(), baseConfig(), nil, zap.NewNop(), metrics)
	require.NoError(t, err)
	defer cleanup()

	ticket := domain.Ticket{
		ID:             "T-1",
		IssueType:      "Network",
		Priority:       domain.TicketPriorityLow,
		DueDate:        "2030-01-01",
		RequesterEmail: "u@example.com",
	}
	pool := []domain.Technician{{ID: "n", Name: "Net", Email: "net@example.com", Skills: []string{"Network Troubleshooting", "WiFi Setup", "Router Configuration"}}}

	result, err := engine.AssignTicket(context.Background(), ticket, pool)
	require.NoError(t, err)
	assert.Equal(t, "n", result.TechnicianID)
	assert.Equal(t, domain.InferenceSourceFallback, result.RequiredSkills.Source)
	assert.Equal(t, 2, result.RequiredSkills.Complexity)

	result, err = engine.AssignTicket(context.Background(), ticket, nil)
	require.NoError(t, err)
	assert.Equal(t, "desk@example.com", result.TechnicianEmail)
	assert.Equal(t, "Desk", result.TechnicianName)
}

func TestNewEngine_BadSkillMapping(t *testing.T) {
	cfg := baseConfig()
	cfg.Inference.SkillMappingFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err := NewEngine(context.Background(), cfg, nil, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestNewEngine_MappingOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Network:\n  - Cisco IOS\n"), 0o600))
	cfg := baseConfig()
	cfg.Inference.SkillMappingFile = path

	engine, cleanup, err := NewEngine(context.Background(), cfg, nil, zap.NewNop(), nil)
	require.NoError(t, err)
	defer cleanup()

	ticket := domain.Ticket{ID: "T-2", IssueType: "Network", DueDate: "2030-01-01", RequesterEmail: "u@example.com"}
	result, err := engine.AssignTicket(context.Background(), ticket, []domain.Technician{{ID: "c", Name: "C", Skills: []string{"Cisco IOS"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cisco IOS"}, result.RequiredSkills.Skills)
	assert.Equal(t, 100, result.SkillMatchPercentage)
}
