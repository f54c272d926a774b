package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/sitecrew/backoffice"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Provisioning outcomes, attributed by outcome and role
	ProvisionTotal       metric.Int64Counter
	ProvisionErrorsTotal metric.Int64Counter
	ProvisionDuration    metric.Float64Histogram

	// Reconciliation paths
	IdentityConflictsTotal metric.Int64Counter
	CompanyConflictsTotal  metric.Int64Counter
	ProfileConflictsTotal  metric.Int64Counter

	// Best-effort side effects
	RegistrationUpdateFailuresTotal metric.Int64Counter
	NotificationsSentTotal          metric.Int64Counter
	NotificationFailuresTotal       metric.Int64Counter

	// Registration workflow
	RegistrationsSubmittedTotal metric.Int64Counter
	RegistrationsRejectedTotal  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ProvisionTotal, _ = meter.Int64Counter(
		"backoffice.provision.total",
		metric.WithDescription("Total number of successful provisioning calls"),
		metric.WithUnit("{request}"),
	)

	m.ProvisionErrorsTotal, _ = meter.Int64Counter(
		"backoffice.provision.errors.total",
		metric.WithDescription("Total number of failed provisioning calls"),
		metric.WithUnit("{error}"),
	)

	m.ProvisionDuration, _ = meter.Float64Histogram(
		"backoffice.provision.duration",
		metric.WithDescription("Duration of provisioning calls"),
		metric.WithUnit("ms"),
	)

	m.IdentityConflictsTotal, _ = meter.Int64Counter(
		"backoffice.provision.identity_conflicts.total",
		metric.WithDescription("Identity creations that lost a race and were re-resolved"),
		metric.WithUnit("{conflict}"),
	)

	m.CompanyConflictsTotal, _ = meter.Int64Counter(
		"backoffice.provision.company_conflicts.total",
		metric.WithDescription("Company bootstraps that lost a race and were re-resolved"),
		metric.WithUnit("{conflict}"),
	)

	m.ProfileConflictsTotal, _ = meter.Int64Counter(
		"backoffice.provision.profile_conflicts.total",
		metric.WithDescription("Profile creations that found a concurrently created row"),
		metric.WithUnit("{conflict}"),
	)

	m.RegistrationUpdateFailuresTotal, _ = meter.Int64Counter(
		"backoffice.provision.registration_update_failures.total",
		metric.WithDescription("Registration request status updates that failed and were ignored"),
		metric.WithUnit("{error}"),
	)

	m.NotificationsSentTotal, _ = meter.Int64Counter(
		"backoffice.notifications.sent.total",
		metric.WithDescription("Total number of welcome emails accepted for delivery"),
		metric.WithUnit("{email}"),
	)

	m.NotificationFailuresTotal, _ = meter.Int64Counter(
		"backoffice.notifications.failures.total",
		metric.WithDescription("Total number of welcome emails that could not be delivered"),
		metric.WithUnit("{error}"),
	)

	m.RegistrationsSubmittedTotal, _ = meter.Int64Counter(
		"backoffice.registrations.submitted.total",
		metric.WithDescription("Total number of company registrations submitted"),
		metric.WithUnit("{registration}"),
	)

	m.RegistrationsRejectedTotal, _ = meter.Int64Counter(
		"backoffice.registrations.rejected.total",
		metric.WithDescription("Total number of company registrations rejected"),
		metric.WithUnit("{registration}"),
	)

	return m
}
