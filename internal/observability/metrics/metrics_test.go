package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("producer", "SFG"),
		attribute.String("journal_id", "456"),
		attribute.String("outcome", "deferred"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("producer"), attrs[0].Key)
	assert.Equal(t, attribute.Key("outcome"), attrs[1].Key)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordJournalIngested(context.Background(), "SFG", 1, 2, 3)
		m.RecordJournalCommitted(context.Background(), "SFG", 4)
		m.RecordLedgerEntry(context.Background(), "journal_commit")
		m.RecordChargesRolled(context.Background(), "deferred", 1)
	})
}

func TestNewOnNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordJournalCommitted(context.Background(), "FNS", 10)
	})
}
