package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

const defaultTrendDays = 30

func (e *executor) logHealthMetric(ctx context.Context, scope contractx.Scope, args map[string]any) contractx.ToolResult {
	rawType, err := requiredString(args, "metric_type")
	if err != nil {
		return contractx.ToolResult{Tool: ToolLogHealthMetric, Error: err.Error()}
	}
	metricType, ok := contractx.ParseMetricType(rawType)
	if !ok {
		return contractx.ToolResult{Tool: ToolLogHealthMetric, Error: fmt.Sprintf("metric_type %q is not supported", rawType)}
	}
	value, err := requiredString(args, "value")
	if err != nil {
		return contractx.ToolResult{Tool: ToolLogHealthMetric, Error: err.Error()}
	}
	unit, err := requiredString(args, "unit")
	if err != nil {
		return contractx.ToolResult{Tool: ToolLogHealthMetric, Error: err.Error()}
	}

	row := map[string]any{
		"user_id":     scope.UserID,
		"metric_type": string(metricType),
		"value":       value,
		"unit":        unit,
		"notes":       optionalString(args, "notes"),
		"recorded_at": e.now().UTC().Format(time.RFC3339),
	}

	raw, err := e.gateway.Insert(ctx, contractx.TableHealthMetrics, row)
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolLogHealthMetric).
			Str("table", contractx.TableHealthMetrics).
			Msg("gateway insert failed")
		return contractx.ToolResult{Tool: ToolLogHealthMetric, Error: "failed to log health metric: " + err.Error()}
	}

	var metric contractx.HealthMetric
	if err := json.Unmarshal(raw, &metric); err != nil {
		log.Error().Err(err).
			Str("tool", ToolLogHealthMetric).
			Str("table", contractx.TableHealthMetrics).
			Msg("decode inserted row failed")
		return contractx.ToolResult{Tool: ToolLogHealthMetric, Error: "failed to read back the new metric"}
	}

	return contractx.ToolResult{Tool: ToolLogHealthMetric, Result: metric}
}

// healthTrend returns metrics of one type inside the trailing window,
// oldest first, so the model can describe the trend chronologically.
func (e *executor) healthTrend(ctx context.Context, scope contractx.Scope, args map[string]any) contractx.ToolResult {
	rawType, err := requiredString(args, "metric_type")
	if err != nil {
		return contractx.ToolResult{Tool: ToolHealthTrend, Error: err.Error()}
	}
	metricType, ok := contractx.ParseMetricType(rawType)
	if !ok {
		return contractx.ToolResult{Tool: ToolHealthTrend, Error: fmt.Sprintf("metric_type %q is not supported", rawType)}
	}

	days := daysArg(args, "days", defaultTrendDays)
	from := e.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	rows, err := e.gateway.Select(ctx, contractx.TableHealthMetrics, contractx.Query{
		Filters: []contractx.Filter{
			contractx.Eq("user_id", scope.UserID),
			contractx.Eq("metric_type", string(metricType)),
			contractx.Gte("recorded_at", from.Format(time.RFC3339)),
		},
		Order: &contractx.Order{Column: "recorded_at"},
	})
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolHealthTrend).
			Str("table", contractx.TableHealthMetrics).
			Msg("gateway select failed")
		return contractx.ToolResult{Tool: ToolHealthTrend, Result: []contractx.HealthMetric{}}
	}

	metrics, err := decodeRows[contractx.HealthMetric](rows)
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolHealthTrend).
			Str("table", contractx.TableHealthMetrics).
			Msg("decode rows failed")
		return contractx.ToolResult{Tool: ToolHealthTrend, Result: []contractx.HealthMetric{}}
	}

	return contractx.ToolResult{Tool: ToolHealthTrend, Result: metrics}
}
