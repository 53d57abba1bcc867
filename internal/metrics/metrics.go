package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	submissionsAccepted metric.Int64Counter
	submissionsRejected metric.Int64Counter
	requestsRateLimited metric.Int64Counter
	statusUpdates       metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.submissionsAccepted, err = meter.Int64Counter(
		"portfolio.contact.submissions.accepted",
		metric.WithDescription("Total number of stored contact submissions"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsRejected, err = meter.Int64Counter(
		"portfolio.contact.submissions.rejected",
		metric.WithDescription("Total number of contact submissions that failed validation"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.requestsRateLimited, err = meter.Int64Counter(
		"portfolio.requests.rate_limited",
		metric.WithDescription("Total number of requests rejected by a rate limit policy"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.statusUpdates, err = meter.Int64Counter(
		"portfolio.contact.status_updates",
		metric.WithDescription("Total number of contact status changes"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordSubmissionAccepted(ctx context.Context) {
	if m != nil && m.submissionsAccepted != nil {
		m.submissionsAccepted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSubmissionRejected(ctx context.Context) {
	if m != nil && m.submissionsRejected != nil {
		m.submissionsRejected.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRateLimited(ctx context.Context, policy string) {
	if m != nil && m.requestsRateLimited != nil {
		m.requestsRateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("policy", policy)))
	}
}

func (m *Metrics) RecordStatusUpdated(ctx context.Context, status string) {
	if m != nil && m.statusUpdates != nil {
		m.statusUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
