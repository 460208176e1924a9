package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the commission pipeline instruments.
type Metrics struct {
	journalsIngested  metric.Int64Counter
	lineItemsDropped  metric.Int64Counter
	coercionFailures  metric.Int64Counter
	accountsCreated   metric.Int64Counter
	feesGenerated     metric.Int64Counter
	ledgerEntries     metric.Int64Counter
	journalsCommitted metric.Int64Counter
	chargesRolled     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New creates the domain instruments on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "commission"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	var err error
	if m.journalsIngested, err = meter.Int64Counter("commission_journals_ingested_total"); err != nil {
		return nil, err
	}
	if m.lineItemsDropped, err = meter.Int64Counter("commission_line_items_dropped_total"); err != nil {
		return nil, err
	}
	if m.coercionFailures, err = meter.Int64Counter("commission_coercion_failures_total"); err != nil {
		return nil, err
	}
	if m.accountsCreated, err = meter.Int64Counter("commission_client_accounts_created_total"); err != nil {
		return nil, err
	}
	if m.feesGenerated, err = meter.Int64Counter("commission_fees_generated_total"); err != nil {
		return nil, err
	}
	if m.ledgerEntries, err = meter.Int64Counter("commission_ledger_entries_total"); err != nil {
		return nil, err
	}
	if m.journalsCommitted, err = meter.Int64Counter("commission_journals_committed_total"); err != nil {
		return nil, err
	}
	if m.chargesRolled, err = meter.Int64Counter("commission_charges_rolled_total"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordJournalIngested counts an ingested journal with its drop and
// coercion tallies.
func (m *Metrics) RecordJournalIngested(ctx context.Context, producer string, dropped, coercionFailures, accountsCreated int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(attribute.String("producer", strings.TrimSpace(producer)))...)
	m.journalsIngested.Add(ctx, 1, attrs)
	m.lineItemsDropped.Add(ctx, int64(dropped), attrs)
	m.coercionFailures.Add(ctx, int64(coercionFailures), attrs)
	m.accountsCreated.Add(ctx, int64(accountsCreated), attrs)
}

// RecordJournalCommitted counts a committed journal and the fees it produced.
func (m *Metrics) RecordJournalCommitted(ctx context.Context, producer string, fees int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(attribute.String("producer", strings.TrimSpace(producer)))...)
	m.journalsCommitted.Add(ctx, 1, attrs)
	m.feesGenerated.Add(ctx, int64(fees), attrs)
}

// RecordLedgerEntry increments ledger entry counts.
func (m *Metrics) RecordLedgerEntry(ctx context.Context, sourceType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source_type", strings.TrimSpace(sourceType)))
	m.ledgerEntries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordChargesRolled counts charges touched by a period rollover.
func (m *Metrics) RecordChargesRolled(ctx context.Context, outcome string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.chargesRolled.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"producer":    {},
	"source_type": {},
	"outcome":     {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
