package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmonti/air-quality-etl/internal/dataset"
	"github.com/pmonti/air-quality-etl/internal/observability"
	"github.com/pmonti/air-quality-etl/internal/table"
)

type mockExtractor struct {
	export dataset.Export
	err    error
	calls  int
}

func (m *mockExtractor) Extract(context.Context) (dataset.Export, error) {
	m.calls++
	return m.export, m.err
}

type mockSink struct {
	name     string
	received [][]dataset.Record
	err      error
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Publish(_ context.Context, records []dataset.Record) error {
	m.received = append(m.received, records)
	return m.err
}

func rawExport(t *testing.T, fingerprint string) dataset.Export {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: dataset.ColDate, Cells: []table.Cell{
			table.StringCell("3/10/2004"), table.StringCell("3/10/2004"),
		}},
		table.Column{Name: dataset.ColTime, Cells: []table.Cell{
			table.StringCell("19.00.00"), table.StringCell("18.00.00"),
		}},
		table.Column{Name: dataset.ColCO, Cells: []table.Cell{
			table.StringCell("2,6"), table.StringCell("-200"),
		}},
	)
	require.NoError(t, err)
	return dataset.Export{Table: tbl, Fingerprint: fingerprint, Source: "test.csv"}
}

func newTestService(extractor Extractor, sinks ...Sink) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(extractor, sinks, logger, observability.NewMetricsForTesting(), 4)
}

func TestRun_NormalizesAndStoresSnapshot(t *testing.T) {
	svc := newTestService(&mockExtractor{export: rawExport(t, "fp-1")})

	require.Error(t, svc.CheckReadiness(context.Background()))
	_, loaded := svc.Dataset()
	require.False(t, loaded)

	require.NoError(t, svc.Run(context.Background()))

	require.NoError(t, svc.CheckReadiness(context.Background()))
	got, loaded := svc.Dataset()
	require.True(t, loaded)

	// Sorted by derived timestamp: the 18:00 row comes first, and its
	// sentinel reading resolved to absent.
	assert.True(t, got.Cell(dataset.ColCO, 0).IsAbsent())
	second, ok := got.Cell(dataset.ColCO, 1).Float()
	require.True(t, ok)
	assert.Equal(t, 2.6, second)
	assert.True(t, got.HasColumn(dataset.ColDateTime))
	assert.True(t, got.HasColumn(dataset.ColDatetimeAlias))
}

func TestRun_ExtractFailure(t *testing.T) {
	extractErr := errors.New("open export: no such file")
	svc := newTestService(&mockExtractor{err: extractErr})

	err := svc.Run(context.Background())
	require.ErrorIs(t, err, extractErr)

	assert.Error(t, svc.CheckReadiness(context.Background()),
		"a failed load leaves the service not ready")
	_, loaded := svc.Dataset()
	assert.False(t, loaded)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.LoadFailures))
}

func TestRun_PublishesToAllSinks(t *testing.T) {
	a := &mockSink{name: "kafka"}
	b := &mockSink{name: "postgres"}
	svc := newTestService(&mockExtractor{export: rawExport(t, "fp-1")}, a, b)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, a.received, 1)
	require.Len(t, b.received, 1)
	assert.Len(t, a.received[0], 2)
	assert.Equal(t, a.received[0][0].ID, b.received[0][0].ID,
		"both sinks see the same deterministic record IDs")
}

func TestRun_SinkFailureKeepsSnapshot(t *testing.T) {
	sink := &mockSink{name: "kafka", err: errors.New("broker unreachable")}
	svc := newTestService(&mockExtractor{export: rawExport(t, "fp-1")}, sink)

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")

	_, loaded := svc.Dataset()
	assert.True(t, loaded, "the normalized snapshot survives a publish failure")
	assert.NoError(t, svc.CheckReadiness(context.Background()))
}

func TestRun_MemoizesByFingerprint(t *testing.T) {
	extractor := &mockExtractor{export: rawExport(t, "fp-same")}
	svc := newTestService(extractor)

	require.NoError(t, svc.Run(context.Background()))
	first, _ := svc.Dataset()

	require.NoError(t, svc.Run(context.Background()))
	second, _ := svc.Dataset()

	assert.Equal(t, 2, extractor.calls)
	assert.True(t, first.Equal(second))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.CacheLookups.WithLabelValues("miss")))
}

func TestRun_DistinctFingerprintsMiss(t *testing.T) {
	extractor := &mockExtractor{export: rawExport(t, "fp-1")}
	svc := newTestService(extractor)

	require.NoError(t, svc.Run(context.Background()))
	extractor.export = rawExport(t, "fp-2")
	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.metrics.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 0.0, testutil.ToFloat64(svc.metrics.CacheLookups.WithLabelValues("hit")))
}

func TestResultCache_LRUEviction(t *testing.T) {
	c := newResultCache(2)
	tbl := table.Table{}

	c.put("a", tbl)
	c.put("b", tbl)
	_, ok := c.get("a") // refresh a
	require.True(t, ok)
	c.put("c", tbl) // evicts b

	_, ok = c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}
