package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

func TestLogHealthMetricRejectsUnknownType(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(newFakeGateway())
	out, err := executor(context.Background(), testScope(), ToolLogHealthMetric, map[string]any{
		"metric_type": "mood",
		"value":       "great",
		"unit":        "n/a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected metric_type validation error in result")
	}
}

func TestLogHealthMetricStampsRecordedAt(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	executor := NewExecutor(gw, WithClock(fixedClock()))

	out, err := executor(context.Background(), testScope(), ToolLogHealthMetric, map[string]any{
		"metric_type": "Blood_Pressure",
		"value":       "120/80",
		"unit":        "mmHg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}

	metric := out.Result.(contractx.HealthMetric)
	if metric.MetricType != contractx.MetricBloodPressure {
		t.Fatalf("metric type = %s, want blood_pressure", metric.MetricType)
	}
	if !metric.RecordedAt.Equal(fixedClock()()) {
		t.Fatalf("recorded_at = %v, want %v", metric.RecordedAt, fixedClock()())
	}
}

func TestHealthTrendWindowAndOrder(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-mid", "user_id": "U1", "metric_type": "weight", "value": "81.0",
		"unit": "kg", "recorded_at": "2026-08-20T08:00:00Z",
	})
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-old", "user_id": "U1", "metric_type": "weight", "value": "83.5",
		"unit": "kg", "recorded_at": "2026-07-01T08:00:00Z",
	})
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-early", "user_id": "U1", "metric_type": "weight", "value": "82.0",
		"unit": "kg", "recorded_at": "2026-08-05T08:00:00Z",
	})
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-late", "user_id": "U1", "metric_type": "weight", "value": "80.5",
		"unit": "kg", "recorded_at": "2026-08-30T08:00:00Z",
	})
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-bp", "user_id": "U1", "metric_type": "blood_pressure", "value": "120/80",
		"unit": "mmHg", "recorded_at": "2026-08-25T08:00:00Z",
	})
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-other-user", "user_id": "U2", "metric_type": "weight", "value": "90.0",
		"unit": "kg", "recorded_at": "2026-08-22T08:00:00Z",
	})

	executor := NewExecutor(gw, WithClock(fixedClock()))
	out, err := executor(context.Background(), testScope(), ToolHealthTrend, map[string]any{
		"metric_type": "weight",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics := out.Result.([]contractx.HealthMetric)
	if len(metrics) != 3 {
		t.Fatalf("expected 3 metrics in the default 30-day window, got %d", len(metrics))
	}
	want := []string{"h-early", "h-mid", "h-late"}
	for i, id := range want {
		if metrics[i].ID != id {
			t.Fatalf("metrics[%d].ID = %s, want %s", i, metrics[i].ID, id)
		}
	}
}

func TestHealthTrendDaysCoercion(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-recent", "user_id": "U1", "metric_type": "weight", "value": "80.5",
		"unit": "kg", "recorded_at": "2026-08-29T08:00:00Z",
	})
	gw.seed(contractx.TableHealthMetrics, map[string]any{
		"id": "h-older", "user_id": "U1", "metric_type": "weight", "value": "82.0",
		"unit": "kg", "recorded_at": "2026-08-10T08:00:00Z",
	})

	executor := NewExecutor(gw, WithClock(fixedClock()))
	ctx := context.Background()

	// JSON numbers arrive as float64.
	out, err := executor(ctx, testScope(), ToolHealthTrend, map[string]any{
		"metric_type": "weight",
		"days":        float64(7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics := out.Result.([]contractx.HealthMetric)
	if len(metrics) != 1 || metrics[0].ID != "h-recent" {
		t.Fatalf("expected only h-recent in the 7-day window, got %+v", metrics)
	}

	// Some models send the number as a string.
	out, err = executor(ctx, testScope(), ToolHealthTrend, map[string]any{
		"metric_type": "weight",
		"days":        "7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics = out.Result.([]contractx.HealthMetric)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric for string days arg, got %d", len(metrics))
	}
}

func TestHealthTrendGatewayFailureYieldsEmptyList(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.selectErr = errors.New("gateway unreachable")

	executor := NewExecutor(gw)
	out, err := executor(context.Background(), testScope(), ToolHealthTrend, map[string]any{
		"metric_type": "weight",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics := out.Result.([]contractx.HealthMetric)
	if len(metrics) != 0 {
		t.Fatalf("expected empty list, got %d metrics", len(metrics))
	}
}
