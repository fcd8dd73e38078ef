package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/propdesk/internal/config"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.False(t, p.Enabled())
	require.NotNil(t, p.Tracer())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(config.TracingConfig{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(config.TracingConfig{Enabled: true, Exporter: "file"})
	require.Error(t, err)
}

func TestNilProvider_TracerIsUsable(t *testing.T) {
	var p *Provider
	require.NotNil(t, p.Tracer())
	require.False(t, p.Enabled())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestFileExporter_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := tp.Tracer("test")

	ctx, parent := tracer.Start(context.Background(), "http.GET", trace.WithSpanKind(trace.SpanKindClient))
	parent.SetAttributes(attribute.String(AttrHTTPPath, "/city"), attribute.Int(AttrHTTPStatus, 500))
	parent.SetStatus(codes.Error, "server error")
	_, child := tracer.Start(ctx, "decode")
	child.End()
	parent.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		records = append(records, r)
	}
	require.Len(t, records, 2)

	require.Equal(t, "decode", records[0].Name)
	require.NotEmpty(t, records[0].ParentSpanID)

	require.Equal(t, "http.GET", records[1].Name)
	require.Equal(t, "client", records[1].Kind)
	require.Equal(t, "ERROR", records[1].Status)
	require.Equal(t, "server error", records[1].StatusMsg)
	require.Equal(t, "/city", records[1].Attributes[AttrHTTPPath])
	require.EqualValues(t, 500, records[1].Attributes[AttrHTTPStatus])
}

func TestFileExporter_ExportAfterShutdownFails(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Error(t, exporter.ExportSpans(context.Background(), nil))
}
