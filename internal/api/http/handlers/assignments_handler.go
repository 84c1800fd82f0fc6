package handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-ops/ticket-assignment/internal/api/dto"
	"github.com/helpdesk-ops/ticket-assignment/internal/auth"
	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	"github.com/helpdesk-ops/ticket-assignment/internal/service"
	apperrors "github.com/helpdesk-ops/ticket-assignment/pkg/util/errorutil"
)

// AssignmentService is what the handler needs from the service layer.
type AssignmentService interface {
	Assign(ctx context.Context, req service.AssignRequest) (domain.AssignmentResult, error)
	GetLatest(ctx context.Context, ticketID string) (*domain.AssignmentResult, error)
	History(ctx context.Context, ticketID string, limit int) ([]domain.AssignmentResult, error)
	ListTechnicians(ctx context.Context) ([]domain.Technician, error)
	GetTechnician(ctx context.Context, id string) (*domain.Technician, error)
}

// AssignmentsHandler exposes the assignment engine over HTTP.
type AssignmentsHandler struct {
	service  AssignmentService
	validate *validator.Validate
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(svc AssignmentService) *AssignmentsHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &AssignmentsHandler{service: svc, validate: v}
}

// Assign POST /assignments.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	actor := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = principal.Subject
	}

	result, err := h.service.Assign(c.UserContext(), service.AssignRequest{
		Ticket:      req.Ticket.ToTicket(),
		Technicians: dto.ToTechnicians(req.Technicians),
		Actor:       actor,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": result})
}

// GetLatest GET /assignments/:ticket_id.
func (h *AssignmentsHandler) GetLatest(c *fiber.Ctx) error {
	result, err := h.service.GetLatest(c.UserContext(), c.Params("ticket_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// History GET /assignments/:ticket_id/history.
func (h *AssignmentsHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		return apperrors.NewValidationError("limit must be between 1 and 100", map[string]any{"limit": limit})
	}
	items, err := h.service.History(c.UserContext(), c.Params("ticket_id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTechnicians GET /technicians.
func (h *AssignmentsHandler) ListTechnicians(c *fiber.Ctx) error {
	techs, err := h.service.ListTechnicians(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianSummary, 0, len(techs))
	for _, t := range techs {
		items = append(items, dto.NewTechnicianSummary(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTechnician GET /technicians/:id.
func (h *AssignmentsHandler) GetTechnician(c *fiber.Ctx) error {
	tech, err := h.service.GetTechnician(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTechnicianSummary(*tech)})
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[strings.TrimPrefix(fe.Namespace(), "AssignTicketRequest.")] = fe.Tag()
	}
	return apperrors.NewValidationError("invalid payload", details)
}
