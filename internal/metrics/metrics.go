package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Submission outcomes recorded on registration_service.submissions.
const (
	OutcomeAccepted      = "accepted"
	OutcomeRejected      = "rejected"
	OutcomeMalformed     = "malformed"
	OutcomeStorageFailed = "storage_failed"
)

type Metrics struct {
	submissions       metric.Int64Counter
	validationErrors  metric.Int64Counter
	adminLogins       metric.Int64Counter
	registrationsRead metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.submissions, err = meter.Int64Counter(
		"registration_service.submissions",
		metric.WithDescription("Registration submissions by outcome"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.validationErrors, err = meter.Int64Counter(
		"registration_service.validation.field_errors",
		metric.WithDescription("Field errors reported by the registration validator"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.adminLogins, err = meter.Int64Counter(
		"registration_service.admin.logins",
		metric.WithDescription("Admin login attempts by result"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.registrationsRead, err = meter.Int64Counter(
		"registration_service.registrations.list_viewed",
		metric.WithDescription("Total number of times the registrations list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NewMock returns a Metrics whose Record* calls do nothing.
func NewMock() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordSubmission(ctx context.Context, outcome string) {
	if m != nil && m.submissions != nil {
		m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m *Metrics) RecordValidationErrors(ctx context.Context, n int) {
	if m != nil && m.validationErrors != nil && n > 0 {
		m.validationErrors.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordAdminLogin(ctx context.Context, success bool) {
	if m != nil && m.adminLogins != nil {
		m.adminLogins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

func (m *Metrics) RecordRegistrationsListed(ctx context.Context) {
	if m != nil && m.registrationsRead != nil {
		m.registrationsRead.Add(ctx, 1)
	}
}
