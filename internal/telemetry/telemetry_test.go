package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()

	logger, closeFn, err := InitLogger(dir, true)
	if err != nil {
		t.Fatalf("init logger failed: %v", err)
	}

	logger.Debug("history fetch failed", "error", "boom")
	closeFn()

	data, err := os.ReadFile(filepath.Join(dir, "askchat.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"history fetch failed"`) {
		t.Errorf("missing message in log: %s", line)
	}
	if !strings.Contains(line, `"service":"askchat"`) {
		t.Errorf("missing service attribute in log: %s", line)
	}
}

func TestInitTelemetry(t *testing.T) {
	dir := t.TempDir()

	tracer, meter, cleanup, err := InitTelemetry(context.Background(), dir)
	if err != nil {
		t.Fatalf("init telemetry failed: %v", err)
	}
	defer cleanup()

	_, span := tracer.Start(context.Background(), "test_span")
	span.End()

	if _, err := meter.Int64Counter("askchat.test"); err != nil {
		t.Errorf("create counter failed: %v", err)
	}
}

func TestInitTelemetry_RequestDurationBuckets(t *testing.T) {
	dir := t.TempDir()

	_, meter, cleanup, err := InitTelemetry(context.Background(), dir)
	if err != nil {
		t.Fatalf("init telemetry failed: %v", err)
	}

	hist, err := meter.Float64Histogram("http.client.request.duration")
	if err != nil {
		t.Fatalf("create histogram failed: %v", err)
	}
	hist.Record(context.Background(), 12000)
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "askchat_metrics.log"))
	if err != nil {
		t.Fatalf("read metrics failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "http.client.request.duration") {
		t.Fatalf("histogram not exported:\n%s", out)
	}
	if !strings.Contains(out, "60000") {
		t.Errorf("expected custom bucket bounds in export:\n%s", out)
	}
}
