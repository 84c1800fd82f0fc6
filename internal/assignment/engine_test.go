package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	"github.com/helpdesk-ops/ticket-assignment/internal/inference"
	apperrors "github.com/helpdesk-ops/ticket-assignment/pkg/util/errorutil"
)

var fixedNow = time.Date(2029, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(inf SkillInferrer, avail AvailabilityChecker, src TechnicianSource) *Engine {
	return NewEngine(Dependencies{
		Inferrer:     inf,
		Availability: avail,
		Source:       src,
		Workers:      4,
		Now:          func() time.Time { return fixedNow },
	})
}

func exchangeSkills() *fakeInferrer {
	return &fakeInferrer{set: domain.RequiredSkillSet{
		Skills:     []string{"Exchange Server", "SMTP"},
		Complexity: 3,
		Source:     domain.InferenceSourceLLM,
	}}
}

func exchangePool() []domain.Technician {
	return []domain.Technician{
		{ID: "tech-a", Name: "Alex", Email: "alex@example.com", Skills: []string{"Exchange Server 2019", "SMTP relay"}},
		{ID: "tech-b", Name: "Blair", Email: "blair@example.com", Skills: []string{"Hardware Repair"}},
	}
}

func TestAssignTicket_StrongMatchWins(t *testing.T) {
	engine := newTestEngine(exchangeSkills(), &fakeAvailability{}, nil)

	result, err := engine.AssignTicket(context.Background(), validTicket(), exchangePool())
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentStatusAssigned, result.Status)
	assert.Equal(t, "tech-a", result.TechnicianID)
	assert.Equal(t, "Alex", result.TechnicianName)
	assert.Equal(t, 1, result.Tier)
	assert.Equal(t, 100, result.SkillMatchPercentage)
	assert.Equal(t, domain.ClassificationStrong, result.SkillClassification)
	assert.True(t, result.Available)
	assert.Equal(t, []string{"Exchange Server", "SMTP"}, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, fixedNow, result.AssignedAt)
	assert.NotEmpty(t, result.ID)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "tech-b", result.Rejected[0].TechnicianID)
	assert.Equal(t, 3, result.Rejected[0].Tier)
	assert.Equal(t, 0, result.Rejected[0].Percentage)
}

func TestAssignTicket_AvailabilityBeatsSkill(t *testing.T) {
	avail := &fakeAvailability{busy: map[string]bool{"alex@example.com": true}}
	engine := newTestEngine(exchangeSkills(), avail, nil)

	result, err := engine.AssignTicket(context.Background(), validTicket(), exchangePool())
	require.NoError(t, err)

	assert.Equal(t, domain.AssignmentStatusAssigned, result.Status)
	assert.Equal(t, "tech-b", result.TechnicianID)
	assert.Equal(t, 3, result.Tier)
	assert.Equal(t, 0, result.SkillMatchPercentage)
	assert.Equal(t, domain.ClassificationWeak, result.SkillClassification)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, domain.FallbackTier, result.Rejected[0].Tier)
	assert.False(t, result.Rejected[0].Available)
}

func TestAssignTicket_EmptyPoolFallsBack(t *testing.T) {
	engine := newTestEngine(exchangeSkills(), &fakeAvailability{}, nil)

	for _, pool := range [][]domain.Technician{nil, {}} {
		result, err := engine.AssignTicket(context.Background(), validTicket(), pool)
		require.NoError(t, err)
		assert.Equal(t, domain.AssignmentStatusFallback, result.Status)
		assert.Equal(t, domain.FallbackTier, result.Tier)
		assert.Equal(t, FallbackTechnicianID, result.TechnicianID)
		assert.Equal(t, "fallback@company.com", result.TechnicianEmail)
		assert.Equal(t, 0, result.SkillMatchPercentage)
		assert.Empty(t, result.MatchedSkills)
		assert.NotEmpty(t, result.Reasoning)
		assert.Empty(t, result.Rejected)
	}
}

func TestAssignTicket_AllUnavailableFallsBack(t *testing.T) {
	avail := &fakeAvailability{busy: map[string]bool{
		"alex@example.com":  true,
		"blair@example.com": true,
	}}
	engine := newTestEngine(exchangeSkills(), avail, nil)

	result, err := engine.AssignTicket(context.Background(), validTicket(), exchangePool())
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentStatusFallback, result.Status)
	assert.Equal(t, domain.FallbackTier, result.Tier)
	assert.Len(t, result.Rejected, 2)
	assert.Contains(t, result.Reasoning, "2 evaluated technicians")
}

func TestAssignTicket_TieGoesToLowerWorkload(t *testing.T) {
	pool := []domain.Technician{
		{ID: "light", Name: "Light", Email: "l@example.com", Skills: []string{"SMTP"}, CurrentWorkload: 1},
		{ID: "heavy", Name: "Heavy", Email: "h@example.com", Skills: []string{"SMTP"}, CurrentWorkload: 9},
	}
	engine := newTestEngine(exchangeSkills(), &fakeAvailability{}, nil)

	result, err := engine.AssignTicket(context.Background(), validTicket(), pool)
	require.NoError(t, err)
	assert.Equal(t, "light", result.TechnicianID)
	assert.Equal(t, 50, result.SkillMatchPercentage)
}

func TestAssignTicket_ValidationFailure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Ticket)
		field  string
	}{
		{"missing id", func(tk *domain.Ticket) { tk.ID = "" }, "ticket_id"},
		{"bad email", func(tk *domain.Ticket) { tk.RequesterEmail = "not-an-email" }, "requester_email"},
		{"bad due date", func(tk *domain.Ticket) { tk.DueDate = "next week" }, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf := exchangeSkills()
			engine := newTestEngine(inf, &fakeAvailability{}, nil)
			ticket := validTicket()
			tt.mutate(&ticket)

			result, err := engine.AssignTicket(context.Background(), ticket, exchangePool())
			require.Error(t, err)

			de := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", de.Code)
			assert.Contains(t, de.Details, tt.field)

			assert.Equal(t, domain.AssignmentStatusFailed, result.Status)
			assert.Equal(t, domain.FailureValidation, result.FailureCode)
			assert.Equal(t, ticket.ID, result.TicketID)
			assert.Empty(t, result.TechnicianID)
			assert.Equal(t, int32(0), inf.calls.Load(), "no assignment work after validation failure")
		})
	}
}

func TestAssignFromSource_UsesSourceOrdering(t *testing.T) {
	src := &fakeSource{technicians: exchangePool()}
	engine := newTestEngine(exchangeSkills(), &fakeAvailability{}, src)

	result, err := engine.AssignFromSource(context.Background(), validTicket())
	require.NoError(t, err)
	assert.Equal(t, "tech-a", result.TechnicianID)
}

func TestAssignFromSource_SourceFailureIsNotFallback(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	engine := newTestEngine(exchangeSkills(), &fakeAvailability{}, src)

	result, err := engine.AssignFromSource(context.Background(), validTicket())
	require.Error(t, err)
	assert.Equal(t, "ASSIGNMENT_FAILED", apperrors.ToDomainError(err).Code)
	assert.Equal(t, domain.AssignmentStatusFailed, result.Status)
	assert.Equal(t, domain.FailureAssignment, result.FailureCode)
	assert.Equal(t, "T-1001", result.TicketID)
	assert.False(t, result.IsFallback())
}

func TestAssignTicket_CancelledReturnsErrorResult(t *testing.T) {
	avail := &fakeAvailability{block: make(chan struct{})}
	engine := newTestEngine(exchangeSkills(), avail, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := engine.AssignTicket(ctx, validTicket(), exchangePool())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.AssignmentStatusFailed, result.Status)
	assert.Equal(t, domain.FailureCancelled, result.FailureCode)
	assert.Empty(t, result.TechnicianID)
}

func TestAssignTicket_MalformedInferenceUsesIssueTypeMapping(t *testing.T) {
	client := inference.CompletionFunc(func(context.Context, string) (string, error) {
		return "I think this needs someone good with email, maybe?", nil
	})
	inf := inference.NewService(inference.Options{Client: client})
	pool := []domain.Technician{
		{ID: "hw", Name: "Hardware Hank", Email: "hank@example.com", Skills: []string{"PC Repair"}},
		{ID: "mail", Name: "Mail Mia", Email: "mia@example.com", Skills: []string{"Outlook Support", "Exchange Server", "Email Configuration"}},
	}
	engine := newTestEngine(inf, &fakeAvailability{}, nil)

	result, err := engine.AssignTicket(context.Background(), validTicket(), pool)
	require.NoError(t, err)

	assert.Equal(t, domain.InferenceSourceFallback, result.RequiredSkills.Source)
	assert.Equal(t, []string{"Email Configuration", "Outlook Support", "Exchange Server"}, result.RequiredSkills.Skills)
	assert.Equal(t, "mail", result.TechnicianID)
	assert.Equal(t, 1, result.Tier)
	assert.Equal(t, 100, result.SkillMatchPercentage)
}

func TestAssignTicket_WithoutInferrerUsesGenericSkill(t *testing.T) {
	engine := newTestEngine(nil, &fakeAvailability{}, nil)
	pool := []domain.Technician{{ID: "gen", Name: "Gen", Email: "g@example.com", Skills: []string{"General IT Support"}}}

	result, err := engine.AssignTicket(context.Background(), validTicket(), pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"General IT Support"}, result.RequiredSkills.Skills)
	assert.Equal(t, 1, result.Tier)
}
