package assignment

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

type fakeAvailability struct {
	busy      map[string]bool
	calls     atomic.Int32
	mu        sync.Mutex
	deadlines []time.Time
	block     chan struct{}
	hold      time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeAvailability) IsAvailable(ctx context.Context, email string, deadline time.Time) bool {
	f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if cur <= peak || f.maxInFlight.CompareAndSwap(peak, cur) {
			break
		}
	}
	if f.hold > 0 {
		time.Sleep(f.hold)
	}
	f.mu.Lock()
	f.deadlines = append(f.deadlines, deadline)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return true
		}
	}
	return !f.busy[email]
}

type fakeInferrer struct {
	set   domain.RequiredSkillSet
	calls atomic.Int32
}

func (f *fakeInferrer) Infer(context.Context, domain.Ticket) domain.RequiredSkillSet {
	f.calls.Add(1)
	return f.set
}

type fakeSource struct {
	technicians []domain.Technician
	err         error
}

func (f *fakeSource) ListTechnicians(context.Context) ([]domain.Technician, error) {
	return f.technicians, f.err
}

func validTicket() domain.Ticket {
	return domain.Ticket{
		ID:             "T-1001",
		Summary:        "Mail relay rejecting outbound messages",
		Description:    "Exchange is bouncing all external mail since this morning",
		IssueType:      "Email",
		SubIssueType:   "Mail Flow",
		Category:       "Incident",
		Priority:       domain.TicketPriorityHigh,
		DueDate:        "2030-01-01T17:00:00Z",
		RequesterName:  "Dana Field",
		RequesterEmail: "dana.field@example.com",
	}
}
