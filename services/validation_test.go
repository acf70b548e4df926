package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func str(s string) *string { return &s }
func num(n int) *int       { return &n }
func flag(b bool) *bool    { return &b }

func expectInvalid(t *testing.T, err error, field string, kind ValidationKind) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != field || ve.Kind != kind {
		t.Fatalf("expected %s/%s, got %s/%s (%s)", field, kind, ve.Field, ve.Kind, ve.Message)
	}
}

func TestValidateJourneyCreate(t *testing.T) {
	tests := []struct {
		name  string
		in    JourneyInput
		field string
		kind  ValidationKind
	}{
		{"missing name", JourneyInput{}, "name", InvalidRequired},
		{"blank name", JourneyInput{Name: str("   ")}, "name", InvalidLength},
		{"long name", JourneyInput{Name: str(strings.Repeat("x", 31))}, "name", InvalidLength},
		{"long description", JourneyInput{Name: str("Q3"), Description: str(strings.Repeat("d", 501))}, "description", InvalidLength},
		{"duplicate columns", JourneyInput{Name: str("Q3"), Columns: &[]ColumnSeed{{Name: str("Todo")}, {Name: str("todo ")}}}, "columns", InvalidDuplicate},
		{"column without name", JourneyInput{Name: str("Q3"), Columns: &[]ColumnSeed{{Color: str("red")}}}, "columns[0].name", InvalidRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInvalid(t, ValidateJourneyCreate(tt.in), tt.field, tt.kind)
		})
	}

	ok := JourneyInput{Name: str(strings.Repeat("x", 30)), Columns: &[]ColumnSeed{{Name: str("Todo")}, {Name: str("Done")}}}
	if err := ValidateJourneyCreate(ok); err != nil {
		t.Fatalf("expected valid journey, got %v", err)
	}
}

func TestValidateUpdatesRejectEmptyBody(t *testing.T) {
	checks := map[string]error{
		"journey": ValidateJourneyUpdate(JourneyInput{}),
		"column":  ValidateColumnUpdate(ColumnInput{}, "journey_id"),
		"mission": ValidateMissionUpdate(MissionInput{}),
		"task":    ValidateTaskUpdate(TaskInput{}),
		"subtask": ValidateSubtaskUpdate(SubtaskInput{}),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNoData) {
			t.Fatalf("%s: expected ErrNoData, got %v", name, err)
		}
	}
}

func TestValidateColumn(t *testing.T) {
	journeyID := uuid.NewString()
	tests := []struct {
		name  string
		in    ColumnInput
		field string
		kind  ValidationKind
	}{
		{"missing parent", ColumnInput{Name: str("Todo"), Color: str("red")}, "journey_id", InvalidRequired},
		{"bad parent", ColumnInput{JourneyID: str("nope"), Name: str("Todo"), Color: str("red")}, "journey_id", InvalidFormat},
		{"missing color", ColumnInput{JourneyID: &journeyID, Name: str("Todo")}, "color", InvalidRequired},
		{"long name", ColumnInput{JourneyID: &journeyID, Name: str(strings.Repeat("n", 21)), Color: str("red")}, "name", InvalidLength},
		{"negative position", ColumnInput{JourneyID: &journeyID, Name: str("Todo"), Color: str("red"), Position: num(-1)}, "position", InvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInvalid(t, ValidateColumnCreate(tt.in, "journey_id"), tt.field, tt.kind)
		})
	}

	err := ValidateColumnUpdate(ColumnInput{JourneyID: &journeyID}, "mission_id")
	expectInvalid(t, err, "journey_id", InvalidFormat)
}

func TestValidateTask(t *testing.T) {
	columnID := uuid.NewString()
	tests := []struct {
		name  string
		in    TaskInput
		field string
		kind  ValidationKind
	}{
		{"missing column", TaskInput{Name: str("T"), Points: num(1)}, "column_id", InvalidRequired},
		{"missing points", TaskInput{ColumnID: &columnID, Name: str("T")}, "points", InvalidRequired},
		{"negative points", TaskInput{ColumnID: &columnID, Name: str("T"), Points: num(-3)}, "points", InvalidRange},
		{"bad related id", TaskInput{ColumnID: &columnID, Name: str("T"), Points: num(1), RelatedTasks: &[]string{"x"}}, "related_tasks[0]", InvalidFormat},
		{"subtask without name", TaskInput{ColumnID: &columnID, Name: str("T"), Points: num(1), Subtasks: &[]SubtaskInput{{Completed: flag(true)}}}, "subtasks[0].name", InvalidRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectInvalid(t, ValidateTaskCreate(tt.in), tt.field, tt.kind)
		})
	}

	if err := ValidateTaskUpdate(TaskInput{Completed: flag(false)}); err != nil {
		t.Fatalf("expected completed:false alone to be a valid update, got %v", err)
	}
}

func TestValidateMissionUsers(t *testing.T) {
	err := ValidateMissionUpdate(MissionInput{Users: &[]string{uuid.NewString(), "bob"}})
	expectInvalid(t, err, "users[1]", InvalidFormat)
}

func TestDiffIDs(t *testing.T) {
	add, remove := diffIDs([]string{"a", "b", "c"}, []string{"c", "d", "d", "a"})
	if len(add) != 1 || add[0] != "d" {
		t.Fatalf("expected to add [d], got %v", add)
	}
	if len(remove) != 1 || remove[0] != "b" {
		t.Fatalf("expected to remove [b], got %v", remove)
	}
}
