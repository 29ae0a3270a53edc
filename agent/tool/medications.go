package tool

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

// listMedications returns the scoped user's active medications. Gateway
// faults degrade to an empty list so the turn keeps going.
func (e *executor) listMedications(ctx context.Context, scope contractx.Scope) contractx.ToolResult {
	rows, err := e.gateway.Select(ctx, contractx.TableMedications, contractx.Query{
		Filters: []contractx.Filter{
			contractx.Eq("user_id", scope.UserID),
			contractx.Eq("active", "true"),
		},
	})
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolListMedications).
			Str("table", contractx.TableMedications).
			Msg("gateway select failed")
		return contractx.ToolResult{Tool: ToolListMedications, Result: []contractx.Medication{}}
	}

	meds, err := decodeRows[contractx.Medication](rows)
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolListMedications).
			Str("table", contractx.TableMedications).
			Msg("decode rows failed")
		return contractx.ToolResult{Tool: ToolListMedications, Result: []contractx.Medication{}}
	}

	return contractx.ToolResult{Tool: ToolListMedications, Result: meds}
}

func (e *executor) addMedication(ctx context.Context, scope contractx.Scope, args map[string]any) contractx.ToolResult {
	name, err := requiredString(args, "name")
	if err != nil {
		return contractx.ToolResult{Tool: ToolAddMedication, Error: err.Error()}
	}
	dosage, err := requiredString(args, "dosage")
	if err != nil {
		return contractx.ToolResult{Tool: ToolAddMedication, Error: err.Error()}
	}
	frequency, err := requiredString(args, "frequency")
	if err != nil {
		return contractx.ToolResult{Tool: ToolAddMedication, Error: err.Error()}
	}
	rawStart, err := requiredString(args, "start_date")
	if err != nil {
		return contractx.ToolResult{Tool: ToolAddMedication, Error: err.Error()}
	}
	startDate, err := parseDate(rawStart)
	if err != nil {
		return contractx.ToolResult{Tool: ToolAddMedication, Error: err.Error()}
	}

	row := map[string]any{
		"user_id":    scope.UserID,
		"name":       name,
		"dosage":     dosage,
		"frequency":  frequency,
		"start_date": startDate,
		"notes":      optionalString(args, "notes"),
		"active":     true,
	}

	raw, err := e.gateway.Insert(ctx, contractx.TableMedications, row)
	if err != nil {
		log.Error().Err(err).
			Str("tool", ToolAddMedication).
			Str("table", contractx.TableMedications).
			Msg("gateway insert failed")
		return contractx.ToolResult{Tool: ToolAddMedication, Error: "failed to add medication: " + err.Error()}
	}

	var med contractx.Medication
	if err := json.Unmarshal(raw, &med); err != nil {
		log.Error().Err(err).
			Str("tool", ToolAddMedication).
			Str("table", contractx.TableMedications).
			Msg("decode inserted row failed")
		return contractx.ToolResult{Tool: ToolAddMedication, Error: "failed to read back the new medication"}
	}

	return contractx.ToolResult{Tool: ToolAddMedication, Result: med}
}
