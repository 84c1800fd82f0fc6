package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdesk-ops/ticket-assignment/internal/config"
	"github.com/helpdesk-ops/ticket-assignment/internal/events"
)

// NotificationService e-mails the technician who received a ticket.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. A nil mailer only logs.
func NewNotificationService(dispatcher events.Dispatcher, mailer Mailer, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleAssigned)
	n.dispatcher.Subscribe(events.EventAssignmentFallback, n.handleAssigned)
	n.dispatcher.Subscribe(events.EventAssignmentFailed, n.handleFailed)
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AssignmentPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("TicketAssigned",
		zap.String("ticket_id", event.TicketID),
		zap.String("status", string(payload.Status)),
		zap.String("technician_id", payload.TechnicianID),
		zap.Int("tier", payload.Tier))

	if strings.TrimSpace(payload.TechnicianEmail) == "" {
		return nil
	}
	return n.send(event, payload.TechnicianEmail,
		fmt.Sprintf("[%s] Ticket %s assigned to you", payload.TicketPriority, event.TicketID),
		assignmentBody(event.TicketID, payload))
}

func (n *NotificationService) handleFailed(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AssignmentPayload)
	n.logger.Warn("AssignmentFailed",
		zap.String("ticket_id", event.TicketID),
		zap.String("failure_code", payload.FailureCode),
		zap.String("reason", payload.Reasoning))
	return nil
}

func (n *NotificationService) send(event events.Event, to, subject, body string) error {
	if n.mailer == nil {
		n.logger.Debug("email delivery disabled",
			zap.String("to", to),
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)))
		return nil
	}
	if err := n.mailer.Send(to, subject, body); err != nil {
		n.logger.Warn("failed to send assignment email",
			zap.String("to", to),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return fmt.Errorf("send assignment email: %w", err)
	}
	return nil
}

func assignmentBody(ticketID string, p events.AssignmentPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", p.TechnicianName)
	fmt.Fprintf(&b, "Ticket %s has been assigned to you.\n\n", ticketID)
	if p.TicketSummary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", p.TicketSummary)
	}
	if p.TicketPriority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", p.TicketPriority)
	}
	if p.DueDate != "" {
		fmt.Fprintf(&b, "Due: %s\n", p.DueDate)
	}
	if len(p.RequiredSkills) > 0 {
		fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(p.RequiredSkills, ", "))
	}
	fmt.Fprintf(&b, "\nReasoning: %s\n", p.Reasoning)
	return b.String()
}
