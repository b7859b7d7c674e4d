package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Registry receives the exported series. Nil uses the default registerer
	// and the returned handler serves the default gatherer.
	Registry    *prometheus.Registry
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	var exporterOpts []promexporter.Option
	handler := promhttp.Handler()
	if cfg.Registry != nil {
		exporterOpts = append(exporterOpts, promexporter.WithRegisterer(cfg.Registry))
		handler = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})
	}

	exporter, err := promexporter.New(exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	providerOpts := []sdkmetric.Option{sdkmetric.WithReader(exporter)}
	if cfg.ServiceName != "" {
		providerOpts = append(providerOpts, sdkmetric.WithResource(serviceResource(cfg.ServiceName)))
	}

	return sdkmetric.NewMeterProvider(providerOpts...), handler, nil
}

// AssessmentMetrics records risk assessment outcomes. A nil *AssessmentMetrics
// is valid and records nothing.
type AssessmentMetrics struct {
	assessments metric.Int64Counter
	failures    metric.Int64Counter
	outcomes    metric.Int64Counter
	riskScore   metric.Float64Histogram
	loanAmount  metric.Float64Histogram
}

// NewAssessmentMetrics registers the assessment instruments on meter.
func NewAssessmentMetrics(meter metric.Meter) (*AssessmentMetrics, error) {
	assessments, err := meter.Int64Counter("risk_assessments_total",
		metric.WithDescription("Risk assessments completed, by tier and decision"))
	if err != nil {
		return nil, fmt.Errorf("create assessments counter: %w", err)
	}
	failures, err := meter.Int64Counter("risk_assessment_failures_total",
		metric.WithDescription("Risk assessments that failed, by reason"))
	if err != nil {
		return nil, fmt.Errorf("create failures counter: %w", err)
	}
	outcomes, err := meter.Int64Counter("loan_outcomes_recorded_total",
		metric.WithDescription("Observed loan outcomes fed back for monitoring"))
	if err != nil {
		return nil, fmt.Errorf("create outcomes counter: %w", err)
	}
	riskScore, err := meter.Float64Histogram("risk_score",
		metric.WithDescription("Distribution of predicted default probabilities"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.65, 0.8, 0.9, 1))
	if err != nil {
		return nil, fmt.Errorf("create risk score histogram: %w", err)
	}
	loanAmount, err := meter.Float64Histogram("recommended_loan_amount",
		metric.WithDescription("Distribution of recommended maximum loan amounts"),
		metric.WithExplicitBucketBoundaries(0, 5000, 10000, 25000, 50000, 100000, 250000, 500000))
	if err != nil {
		return nil, fmt.Errorf("create loan amount histogram: %w", err)
	}

	return &AssessmentMetrics{
		assessments: assessments,
		failures:    failures,
		outcomes:    outcomes,
		riskScore:   riskScore,
		loanAmount:  loanAmount,
	}, nil
}

// RecordAssessment counts one completed assessment.
func (m *AssessmentMetrics) RecordAssessment(ctx context.Context, tierCode, decision string, riskScore, recommendedLoan float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tier_code", tierCode),
		attribute.String("decision", decision),
	)
	m.assessments.Add(ctx, 1, attrs)
	m.riskScore.Record(ctx, riskScore, metric.WithAttributes(attribute.String("tier_code", tierCode)))
	m.loanAmount.Record(ctx, recommendedLoan, metric.WithAttributes(attribute.String("tier_code", tierCode)))
}

// RecordFailure counts one failed assessment.
func (m *AssessmentMetrics) RecordFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordOutcome counts one outcome report.
func (m *AssessmentMetrics) RecordOutcome(ctx context.Context, matched bool) {
	if m == nil {
		return
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("matched", matched)))
}

func serviceResource(name string) *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", name))
}
