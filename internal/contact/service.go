package contact

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"portfolio-service/internal/auth"
	"portfolio-service/internal/metrics"
)

const AcknowledgementMessage = "Thank you for your message! I'll get back to you soon."

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrContactNotFound  = errors.New("contact not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidInput     = errors.New("invalid input")
)

// ValidationError carries every violated rule of a rejected submission.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Notifier is told about stored submissions. Failures are logged, never returned.
type Notifier interface {
	NotifySubmitted(ctx context.Context, event SubmittedEvent) error
}

// Caller identifies who sent a submission.
type Caller struct {
	IPAddress string
	UserAgent string
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest, caller Caller) (*Submission, error)
	ListAll(ctx context.Context, credential string) ([]Submission, error)
	UpdateStatus(ctx context.Context, credential string, id int64, status Status) error
}

type service struct {
	repo         Repository
	verifier     auth.Verifier
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
	queryTimeout time.Duration
	now          func() time.Time
}

type Option func(*service)

// WithNotifier publishes an event after every stored submission.
func WithNotifier(n Notifier) Option {
	return func(s *service) { s.notifier = n }
}

// WithQueryTimeout bounds every store call.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *service) { s.queryTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(repo Repository, verifier auth.Verifier, m *metrics.Metrics, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		repo:         repo,
		verifier:     verifier,
		metrics:      m,
		logger:       logger,
		queryTimeout: 3 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, req SubmitRequest, caller Caller) (*Submission, error) {
	if violations := Validate(req.Name, req.Email, req.Message); len(violations) > 0 {
		s.metrics.RecordSubmissionRejected(ctx)
		return nil, &ValidationError{Violations: violations}
	}

	submission := &Submission{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Message:   strings.TrimSpace(req.Message),
		UserAgent: caller.UserAgent,
		CreatedAt: s.now().UTC(),
		Status:    StatusNew,
	}
	if submission.UserAgent == "" {
		submission.UserAgent = UnknownUserAgent
	}
	if caller.IPAddress != "" {
		ip := caller.IPAddress
		submission.IPAddress = &ip
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.repo.Create(storeCtx, submission); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "new contact submission",
		"name", submission.Name,
		"email", submission.Email,
		"id", submission.ID,
	)
	s.metrics.RecordSubmissionAccepted(ctx)

	if s.notifier != nil {
		event := SubmittedEvent{
			ID:        submission.ID,
			Name:      submission.Name,
			Email:     submission.Email,
			Message:   submission.Message,
			CreatedAt: submission.CreatedAt,
		}
		if err := s.notifier.NotifySubmitted(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish submission event", "id", submission.ID, "error", err)
		}
	}

	return submission, nil
}

func (s *service) ListAll(ctx context.Context, credential string) ([]Submission, error) {
	if err := s.verifier.Verify(ctx, credential); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.repo.GetAll(storeCtx)
}

// UpdateStatus rejects an unknown status before looking at the credential.
func (s *service) UpdateStatus(ctx context.Context, credential string, id int64, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.verifier.Verify(ctx, credential); err != nil {
		return err
	}
	if id <= 0 {
		return ErrInvalidInput
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.repo.UpdateStatus(storeCtx, id, status); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "contact status updated", "id", id, "status", status)
	s.metrics.RecordStatusUpdated(ctx, string(status))
	return nil
}
