package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/folio-sh/folio/internal/logging"
	"github.com/folio-sh/folio/internal/statedb"
)

var contactLog = logging.ForComponent(logging.CompContact)

// ErrRateLimited is returned when submissions arrive faster than allowed.
var ErrRateLimited = errors.New("contact: too many submissions, try again shortly")

// SuccessBannerDuration is how long the form shows its success message.
const SuccessBannerDuration = 5 * time.Second

// FormName labels contact submissions in analytics.
const FormName = "contact"

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Outbox persists submissions.
type Outbox interface {
	SaveOutbox(r *statedb.OutboxRow) error
	MarkOutbox(id, status, errMsg string) error
}

// Tracker records form outcomes.
type Tracker interface {
	TrackFormSubmission(form string, success bool)
}

// Receipt describes a delivered submission.
type Receipt struct {
	ID     string    `json:"id"`
	SentAt time.Time `json:"sentAt"`
}

// Service validates, rate limits, records and sends submissions.
type Service struct {
	sender  Sender
	outbox  Outbox
	tracker Tracker
	limiter *rate.Limiter
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithOutbox records every attempt.
func WithOutbox(o Outbox) ServiceOption {
	return func(s *Service) { s.outbox = o }
}

// WithTracker reports outcomes to analytics.
func WithTracker(t Tracker) ServiceOption {
	return func(s *Service) { s.tracker = t }
}

// WithRate allows perMinute submissions with the given burst.
func WithRate(perMinute float64, burst int) ServiceOption {
	return func(s *Service) {
		if perMinute <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perMinute/60), burst)
	}
}

// NewService builds a Service around sender. The default rate is three
// submissions per minute.
func NewService(sender Sender, opts ...ServiceOption) *Service {
	s := &Service{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(3.0/60), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates m and delivers it. Validation failures do not consume
// the rate limit and are not recorded.
func (s *Service) Submit(ctx context.Context, m Message) (*Receipt, error) {
	m = m.Trim()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if !s.limiter.AllowN(s.now(), 1) {
		contactLog.Warn("submission_rate_limited")
		return nil, ErrRateLimited
	}

	id := uuid.NewString()
	if s.outbox != nil {
		if err := s.outbox.SaveOutbox(&statedb.OutboxRow{
			ID:      id,
			Name:    m.Name,
			Email:   m.Email,
			Subject: m.Subject,
			Message: m.Message,
			Status:  statedb.OutboxPending,
		}); err != nil {
			// keep going; the outbox is a record, not a queue
			contactLog.Warn("outbox_save_failed", slog.String("id", id), slog.String("error", err.Error()))
		}
	}

	sendErr := s.sender.Send(ctx, m)
	s.record(id, sendErr)

	if sendErr != nil {
		contactLog.Warn("submission_failed", slog.String("id", id), slog.String("error", sendErr.Error()))
		return nil, sendErr
	}
	contactLog.Info("submission_sent", slog.String("id", id))
	return &Receipt{ID: id, SentAt: s.now()}, nil
}

func (s *Service) record(id string, sendErr error) {
	if s.tracker != nil {
		s.tracker.TrackFormSubmission(FormName, sendErr == nil)
	}
	if s.outbox == nil {
		return
	}
	status, msg := statedb.OutboxSent, ""
	if sendErr != nil {
		status, msg = statedb.OutboxFailed, sendErr.Error()
	}
	if err := s.outbox.MarkOutbox(id, status, msg); err != nil {
		contactLog.Warn("outbox_mark_failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// UserMessage turns a Submit error into text for the form.
func UserMessage(err error) string {
	var (
		verr *ValidationError
		rerr *RelayError
		nerr net.Error
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		f := verr.Fields[0]
		return fmt.Sprintf("%s %s", f.Field, f.Message)
	case errors.Is(err, ErrRateLimited):
		return "Too many messages. Please wait a minute and try again."
	case errors.As(err, &rerr):
		return rerr.Message
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &nerr) && nerr.Timeout():
		return "The form service timed out. Please try again."
	}
	return "Failed to send message. Please try again later."
}
