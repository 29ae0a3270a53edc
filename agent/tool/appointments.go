package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

// listAppointments returns future scheduled appointments, earliest
// first. Past and cancelled rows are filtered out at the gateway.
func (e *executor) listAppointments(ctx context.Context, scope contractx.Scope) contractx.ToolResult {
	rows, err := e.gateway.Select(ctx, contractx.TableAppointments, contractx.Query{
		Filters: []contractx.Filter{
			contractx.Eq("user_id", scope.UserID),
			contractx.Eq("status", string(contractx.AppointmentScheduled)),
			contractx.Gte("date_time", e.now().UTC().Format(time.RFC3339)),
		},
		Order: &contractx.Order{Column: "date_time"},
	})
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolListAppointments).
			Str("table", contractx.TableAppointments).
			Msg("gateway select failed")
		return contractx.ToolResult{Tool: ToolListAppointments, Result: []contractx.Appointment{}}
	}

	appts, err := decodeRows[contractx.Appointment](rows)
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolListAppointments).
			Str("table", contractx.TableAppointments).
			Msg("decode rows failed")
		return contractx.ToolResult{Tool: ToolListAppointments, Result: []contractx.Appointment{}}
	}

	return contractx.ToolResult{Tool: ToolListAppointments, Result: appts}
}

func (e *executor) scheduleAppointment(ctx context.Context, scope contractx.Scope, args map[string]any) contractx.ToolResult {
	doctorName, err := requiredString(args, "doctor_name")
	if err != nil {
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: err.Error()}
	}
	specialty, err := requiredString(args, "specialty")
	if err != nil {
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: err.Error()}
	}
	rawDateTime, err := requiredString(args, "date_time")
	if err != nil {
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: err.Error()}
	}
	dateTime, err := parseDateTime(rawDateTime)
	if err != nil {
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: err.Error()}
	}
	location, err := requiredString(args, "location")
	if err != nil {
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: err.Error()}
	}

	row := map[string]any{
		"user_id":     scope.UserID,
		"doctor_name": doctorName,
		"specialty":   specialty,
		"date_time":   dateTime.UTC().Format(time.RFC3339),
		"location":    location,
		"notes":       optionalString(args, "notes"),
		"status":      string(contractx.AppointmentScheduled),
	}

	raw, err := e.gateway.Insert(ctx, contractx.TableAppointments, row)
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolScheduleAppointment).
			Str("table", contractx.TableAppointments).
			Msg("gateway insert failed")
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: "failed to schedule appointment: " + err.Error()}
	}

	var appt contractx.Appointment
	if err := json.Unmarshal(raw, &appt); err != nil {
		log.Error().Err(err).
			Str("tool", ToolScheduleAppointment).
			Str("table", contractx.TableAppointments).
			Msg("decode inserted row failed")
		return contractx.ToolResult{Tool: ToolScheduleAppointment, Error: "failed to read back the new appointment"}
	}

	return contractx.ToolResult{Tool: ToolScheduleAppointment, Result: appt}
}
