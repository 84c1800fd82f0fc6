package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/helpdesk-ops/ticket-assignment/internal/config"
	"github.com/helpdesk-ops/ticket-assignment/internal/observability"
)

const defaultTimeout = 10 * time.Second

// FreeBusyOracle answers availability questions from calendar free/busy data.
// Any doubt resolves to available.
type FreeBusyOracle struct {
	service  *gcal.Service
	validate *validator.Validate
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Options tunes an oracle.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// NewFreeBusyOracle connects to the calendar API with the configured credentials.
func NewFreeBusyOracle(ctx context.Context, cfg config.CalendarConfig, opts Options) (*FreeBusyOracle, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("calendar credentials file is required")
	}
	clientOpts := []option.ClientOption{
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gcal.CalendarReadonlyScope),
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	if opts.Timeout <= 0 {
		opts.Timeout = cfg.Timeout()
	}
	return NewWithClientOptions(ctx, opts, clientOpts...)
}

// NewWithClientOptions builds an oracle from raw client options.
func NewWithClientOptions(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*FreeBusyOracle, error) {
	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	o := &FreeBusyOracle{
		service:  svc,
		validate: validator.New(),
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// IsAvailable reports false only when the calendar for email shows a busy
// interval between now and deadline. Unparsable intervals are skipped; they
// only matter when no other interval overlaps.
func (o *FreeBusyOracle) IsAvailable(ctx context.Context, email string, deadline time.Time) bool {
	if err := o.validate.Var(email, "required,email"); err != nil {
		return o.unknown(email, "malformed address")
	}
	start := o.now().UTC()
	end := deadline.UTC()
	if deadline.IsZero() || !end.After(start) {
		return true
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.service.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: email}},
	}).Context(callCtx).Do()
	if err != nil {
		return o.unknown(email, err.Error())
	}

	cal, ok := resp.Calendars[email]
	if !ok {
		return o.unknown(email, "calendar missing from response")
	}
	if len(cal.Errors) > 0 {
		return o.unknown(email, "calendar error: "+cal.Errors[0].Reason)
	}

	unparsable := 0
	for _, period := range cal.Busy {
		if period == nil {
			continue
		}
		busyStart, errStart := time.Parse(time.RFC3339, period.Start)
		busyEnd, errEnd := time.Parse(time.RFC3339, period.End)
		if errStart != nil || errEnd != nil {
			unparsable++
			continue
		}
		if busyStart.Before(end) && busyEnd.After(start) {
			return false
		}
	}
	if unparsable > 0 {
		return o.unknown(email, fmt.Sprintf("%d unparsable busy interval(s)", unparsable))
	}
	return true
}

func (o *FreeBusyOracle) unknown(email, reason string) bool {
	o.metrics.RecordDegraded(observability.DegradedAvailability)
	o.logger.Warn("availability unknown, assuming available",
		zap.String("email", email),
		zap.String("reason", reason))
	return true
}
