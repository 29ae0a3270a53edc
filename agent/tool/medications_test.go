package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

func TestListMedicationsScopedToUser(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.seed(contractx.TableMedications, map[string]any{
		"id": "m1", "user_id": "U1", "name": "Metformin", "dosage": "500mg",
		"frequency": "twice daily", "start_date": "2026-01-10", "active": true,
	})
	gw.seed(contractx.TableMedications, map[string]any{
		"id": "m2", "user_id": "U1", "name": "Old med", "dosage": "10mg",
		"frequency": "daily", "start_date": "2025-01-01", "active": false,
	})
	gw.seed(contractx.TableMedications, map[string]any{
		"id": "m3", "user_id": "U2", "name": "Lisinopril", "dosage": "10mg",
		"frequency": "daily", "start_date": "2026-02-01", "active": true,
	})

	executor := NewExecutor(gw)
	out, err := executor(context.Background(), testScope(), ToolListMedications, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}

	meds, ok := out.Result.([]contractx.Medication)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if len(meds) != 1 {
		t.Fatalf("expected 1 medication, got %d", len(meds))
	}
	if meds[0].ID != "m1" || meds[0].UserID != "U1" {
		t.Fatalf("unexpected medication: %+v", meds[0])
	}
}

func TestListMedicationsGatewayFailureYieldsEmptyList(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.selectErr = errors.New("gateway unreachable")

	executor := NewExecutor(gw)
	out, err := executor(context.Background(), testScope(), ToolListMedications, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("read tool must not surface an error, got %s", out.Error)
	}

	meds, ok := out.Result.([]contractx.Medication)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if len(meds) != 0 {
		t.Fatalf("expected empty list, got %d medications", len(meds))
	}
}

func TestAddMedicationThenList(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	executor := NewExecutor(gw)
	ctx := context.Background()

	out, err := executor(ctx, testScope(), ToolAddMedication, map[string]any{
		"name":       "Metformin",
		"dosage":     "500mg",
		"frequency":  "twice daily",
		"start_date": "2026-08-01",
		"notes":      "with food",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}

	created, ok := out.Result.(contractx.Medication)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if created.ID == "" || !created.Active {
		t.Fatalf("unexpected created medication: %+v", created)
	}
	if created.UserID != "U1" {
		t.Fatalf("created medication bound to user %s, want U1", created.UserID)
	}

	listed, err := executor(ctx, testScope(), ToolListMedications, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meds := listed.Result.([]contractx.Medication)
	if len(meds) != 1 || meds[0].ID != created.ID {
		t.Fatalf("newly added medication missing from list: %+v", meds)
	}
}

func TestAddMedicationMissingArgs(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(newFakeGateway())
	out, err := executor(context.Background(), testScope(), ToolAddMedication, map[string]any{
		"name": "Metformin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected validation error in result")
	}
}

func TestAddMedicationInvalidStartDate(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(newFakeGateway())
	out, err := executor(context.Background(), testScope(), ToolAddMedication, map[string]any{
		"name":       "Metformin",
		"dosage":     "500mg",
		"frequency":  "twice daily",
		"start_date": "next tuesday",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected start_date validation error in result")
	}
}

func TestAddMedicationGatewayFailureContained(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.insertErr = errors.New("constraint violation")

	executor := NewExecutor(gw)
	out, err := executor(context.Background(), testScope(), ToolAddMedication, map[string]any{
		"name":       "Metformin",
		"dosage":     "500mg",
		"frequency":  "twice daily",
		"start_date": "2026-08-01",
	})
	if err != nil {
		t.Fatalf("write tool fault must be contained, got error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected structured error in result")
	}
}
