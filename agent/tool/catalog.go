// Package tool declares the fixed catalog of operations the model
// backend may invoke, and the executor that dispatches them against the
// record gateway under a per-turn user scope.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

const (
	ToolListMedications     = "medications.list"
	ToolAddMedication       = "medications.add"
	ToolListAppointments    = "appointments.list"
	ToolScheduleAppointment = "appointments.schedule"
	ToolLogHealthMetric     = "health_metrics.log"
	ToolHealthTrend         = "health_metrics.trend"
)

// Executor runs one tool invocation under a turn scope. Gateway and
// argument faults are contained in the ToolResult; a non-nil error means
// a contract violation (unknown tool, missing scope) that is fatal to
// the turn.
type Executor func(ctx context.Context, scope contractx.Scope, tool string, args map[string]any) (contractx.ToolResult, error)

// ExecutorOption customizes the executor.
type ExecutorOption func(*executor)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *executor) {
		if now != nil {
			e.now = now
		}
	}
}

type executor struct {
	gateway contractx.RecordGateway
	now     func() time.Time
}

// BuildCatalog returns the tool descriptors published to the model and
// the executor that serves them. The catalog is fixed at construction;
// nothing registers tools at runtime.
func BuildCatalog(gateway contractx.RecordGateway, opts ...ExecutorOption) ([]*schema.ToolInfo, Executor) {
	return Infos(), NewExecutor(gateway, opts...)
}

// NewExecutor builds the closed-set dispatcher over the six catalog
// tools. The tool name requested by the model is matched exhaustively;
// anything else is a schema violation, never a dynamic lookup.
func NewExecutor(gateway contractx.RecordGateway, opts ...ExecutorOption) Executor {
	e := &executor{
		gateway: gateway,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return func(ctx context.Context, scope contractx.Scope, tool string, args map[string]any) (contractx.ToolResult, error) {
		if !scope.Valid() {
			return contractx.ToolResult{}, fmt.Errorf("%w: tool=%s", contractx.ErrScopeViolation, tool)
		}

		switch tool {
		case ToolListMedications:
			return e.listMedications(ctx, scope), nil
		case ToolAddMedication:
			return e.addMedication(ctx, scope, args), nil
		case ToolListAppointments:
			return e.listAppointments(ctx, scope), nil
		case ToolScheduleAppointment:
			return e.scheduleAppointment(ctx, scope, args), nil
		case ToolLogHealthMetric:
			return e.logHealthMetric(ctx, scope, args), nil
		case ToolHealthTrend:
			return e.healthTrend(ctx, scope, args), nil
		default:
			return contractx.ToolResult{}, fmt.Errorf("%w: unknown tool=%s", contractx.ErrSchemaViolation, tool)
		}
	}
}

// Infos describes the six catalog tools for tool binding.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name:        ToolListMedications,
			Desc:        "List the user's current active medications.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolAddMedication,
			Desc: "Add a new medication for the user.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":       {Type: schema.String, Desc: "Medication name", Required: true},
				"dosage":     {Type: schema.String, Desc: "Dosage amount, e.g. \"500mg\"", Required: true},
				"frequency":  {Type: schema.String, Desc: "How often to take, e.g. \"twice daily\"", Required: true},
				"start_date": {Type: schema.String, Desc: "Start date (YYYY-MM-DD)", Required: true},
				"notes":      {Type: schema.String, Desc: "Additional notes"},
			}),
		},
		{
			Name:        ToolListAppointments,
			Desc:        "List the user's upcoming scheduled appointments, earliest first.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolScheduleAppointment,
			Desc: "Schedule a new doctor appointment for the user.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"doctor_name": {Type: schema.String, Desc: "Doctor's name", Required: true},
				"specialty":   {Type: schema.String, Desc: "Medical specialty", Required: true},
				"date_time":   {Type: schema.String, Desc: "Appointment date and time (ISO 8601)", Required: true},
				"location":    {Type: schema.String, Desc: "Appointment location", Required: true},
				"notes":       {Type: schema.String, Desc: "Additional notes"},
			}),
		},
		{
			Name: ToolLogHealthMetric,
			Desc: "Log a health metric measurement for the user, timestamped now.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"metric_type": {Type: schema.String, Desc: "One of: blood_pressure, blood_sugar, weight, temperature, heart_rate, oxygen_saturation", Required: true},
				"value":       {Type: schema.String, Desc: "Metric value, e.g. \"120/80\" or \"98.6\"", Required: true},
				"unit":        {Type: schema.String, Desc: "Unit of measurement", Required: true},
				"notes":       {Type: schema.String, Desc: "Additional notes"},
			}),
		},
		{
			Name: ToolHealthTrend,
			Desc: "Get the user's health metrics of one type over a trailing window, oldest first.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"metric_type": {Type: schema.String, Desc: "One of: blood_pressure, blood_sugar, weight, temperature, heart_rate, oxygen_saturation", Required: true},
				"days":        {Type: schema.Integer, Desc: "Number of days to look back (default 30)"},
			}),
		},
	}
}

func decodeRows[T any](rows []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}
