package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type ValidationKind string

const (
	InvalidRequired  ValidationKind = "required"
	InvalidType      ValidationKind = "type"
	InvalidLength    ValidationKind = "length"
	InvalidFormat    ValidationKind = "format"
	InvalidRange     ValidationKind = "range"
	InvalidDuplicate ValidationKind = "duplicate"
	InvalidEmpty     ValidationKind = "empty"
)

// ValidationError describes the first rule a payload broke.
type ValidationError struct {
	Field   string
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field string, kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrNoData rejects an update body that names no field.
var ErrNoData = &ValidationError{Kind: InvalidEmpty, Message: "No data to update"}

const (
	maxJourneyName        = 30
	maxJourneyDescription = 500
	maxColumnName         = 20
	maxColor              = 32
	maxItemName           = 120
)

type ColumnSeed struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type JourneyInput struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Completed   *bool         `json:"completed"`
	Columns     *[]ColumnSeed `json:"columns"`
}

func (in JourneyInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.Completed == nil && in.Columns == nil
}

// ColumnInput carries either JourneyID or MissionID depending on the family
// being written.
type ColumnInput struct {
	JourneyID *string `json:"journey_id"`
	MissionID *string `json:"mission_id"`
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	Position  *int    `json:"position"`
}

func (in ColumnInput) IsEmpty() bool {
	return in.JourneyID == nil && in.MissionID == nil && in.Name == nil && in.Color == nil && in.Position == nil
}

type MissionInput struct {
	ColumnID    *string   `json:"column_id"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Position    *int      `json:"position"`
	Completed   *bool     `json:"completed"`
	Users       *[]string `json:"users"`
}

func (in MissionInput) IsEmpty() bool {
	return in.ColumnID == nil && in.Name == nil && in.Description == nil &&
		in.Position == nil && in.Completed == nil && in.Users == nil
}

type SubtaskInput struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
}

func (in SubtaskInput) IsEmpty() bool {
	return in.Name == nil && in.Completed == nil
}

type TaskInput struct {
	ColumnID     *string         `json:"column_id"`
	UserID       *string         `json:"user_id"`
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Position     *int            `json:"position"`
	Points       *int            `json:"points"`
	Completed    *bool           `json:"completed"`
	RelatedTasks *[]string       `json:"related_tasks"`
	Subtasks     *[]SubtaskInput `json:"subtasks"`
}

func (in TaskInput) IsEmpty() bool {
	return in.ColumnID == nil && in.UserID == nil && in.Name == nil && in.Description == nil &&
		in.Position == nil && in.Points == nil && in.Completed == nil &&
		in.RelatedTasks == nil && in.Subtasks == nil
}

func ValidateJourneyCreate(in JourneyInput) error {
	if in.Name == nil {
		return invalid("name", InvalidRequired, "Journey name is required")
	}
	if err := validateJourneyFields(in); err != nil {
		return err
	}
	if in.Columns == nil {
		return nil
	}
	seen := make(map[string]bool, len(*in.Columns))
	for i, seed := range *in.Columns {
		field := fmt.Sprintf("columns[%d]", i)
		if seed.Name == nil {
			return invalid(field+".name", InvalidRequired, "Column name is required")
		}
		if err := checkLength(field+".name", "Column name", *seed.Name, maxColumnName); err != nil {
			return err
		}
		if seed.Color != nil {
			if err := checkLength(field+".color", "Column color", *seed.Color, maxColor); err != nil {
				return err
			}
		}
		key := foldName(*seed.Name)
		if seen[key] {
			return invalid("columns", InvalidDuplicate, "Column names must be unique")
		}
		seen[key] = true
	}
	return nil
}

func ValidateJourneyUpdate(in JourneyInput) error {
	if in.IsEmpty() {
		return ErrNoData
	}
	if in.Columns != nil {
		return invalid("columns", InvalidFormat, "Columns are managed through /journeyColumns")
	}
	return validateJourneyFields(in)
}

func validateJourneyFields(in JourneyInput) error {
	if in.Name != nil {
		if err := checkLength("name", "Journey name", *in.Name, maxJourneyName); err != nil {
			return err
		}
	}
	if in.Description != nil && utf8.RuneCountInString(*in.Description) > maxJourneyDescription {
		return invalid("description", InvalidLength, "Journey description cannot be longer than %d characters", maxJourneyDescription)
	}
	return nil
}

// ValidateColumnCreate checks a column payload. parentField is journey_id or
// mission_id.
func ValidateColumnCreate(in ColumnInput, parentField string) error {
	parent := columnParent(in, parentField)
	if parent == nil {
		return invalid(parentField, InvalidRequired, "%s is required", parentField)
	}
	if in.Name == nil {
		return invalid("name", InvalidRequired, "Column name is required")
	}
	if in.Color == nil {
		return invalid("color", InvalidRequired, "Column color is required")
	}
	return validateColumnFields(in, parentField)
}

func ValidateColumnUpdate(in ColumnInput, parentField string) error {
	if in.IsEmpty() {
		return ErrNoData
	}
	if otherParent(in, parentField) != nil {
		return invalid(otherField(parentField), InvalidFormat, "%s cannot be set on this column", otherField(parentField))
	}
	return validateColumnFields(in, parentField)
}

func validateColumnFields(in ColumnInput, parentField string) error {
	if parent := columnParent(in, parentField); parent != nil {
		if err := checkUUID(parentField, *parent); err != nil {
			return err
		}
	}
	if in.Name != nil {
		if err := checkLength("name", "Column name", *in.Name, maxColumnName); err != nil {
			return err
		}
	}
	if in.Color != nil {
		if err := checkLength("color", "Column color", *in.Color, maxColor); err != nil {
			return err
		}
	}
	return checkPosition(in.Position)
}

func columnParent(in ColumnInput, parentField string) *string {
	if parentField == "mission_id" {
		return in.MissionID
	}
	return in.JourneyID
}

func otherParent(in ColumnInput, parentField string) *string {
	if parentField == "mission_id" {
		return in.JourneyID
	}
	return in.MissionID
}

func otherField(parentField string) string {
	if parentField == "mission_id" {
		return "journey_id"
	}
	return "mission_id"
}

func ValidateMissionCreate(in MissionInput) error {
	if in.ColumnID == nil {
		return invalid("column_id", InvalidRequired, "column_id is required")
	}
	if in.Name == nil {
		return invalid("name", InvalidRequired, "Mission name is required")
	}
	return validateMissionFields(in)
}

func ValidateMissionUpdate(in MissionInput) error {
	if in.IsEmpty() {
		return ErrNoData
	}
	return validateMissionFields(in)
}

func validateMissionFields(in MissionInput) error {
	if in.ColumnID != nil {
		if err := checkUUID("column_id", *in.ColumnID); err != nil {
			return err
		}
	}
	if in.Name != nil {
		if err := checkLength("name", "Mission name", *in.Name, maxItemName); err != nil {
			return err
		}
	}
	if err := checkPosition(in.Position); err != nil {
		return err
	}
	if in.Users != nil {
		for i, id := range *in.Users {
			if err := checkUUID(fmt.Sprintf("users[%d]", i), id); err != nil {
				return err
			}
		}
	}
	return nil
}

func ValidateTaskCreate(in TaskInput) error {
	if in.ColumnID == nil {
		return invalid("column_id", InvalidRequired, "column_id is required")
	}
	if in.Name == nil {
		return invalid("name", InvalidRequired, "Task name is required")
	}
	if in.Points == nil {
		return invalid("points", InvalidRequired, "Task points are required")
	}
	return validateTaskFields(in)
}

func ValidateTaskUpdate(in TaskInput) error {
	if in.IsEmpty() {
		return ErrNoData
	}
	return validateTaskFields(in)
}

func validateTaskFields(in TaskInput) error {
	if in.ColumnID != nil {
		if err := checkUUID("column_id", *in.ColumnID); err != nil {
			return err
		}
	}
	if in.UserID != nil {
		if err := checkUUID("user_id", *in.UserID); err != nil {
			return err
		}
	}
	if in.Name != nil {
		if err := checkLength("name", "Task name", *in.Name, maxItemName); err != nil {
			return err
		}
	}
	if in.Points != nil && *in.Points < 0 {
		return invalid("points", InvalidRange, "Task points cannot be less than 0")
	}
	if err := checkPosition(in.Position); err != nil {
		return err
	}
	if in.RelatedTasks != nil {
		for i, id := range *in.RelatedTasks {
			if err := checkUUID(fmt.Sprintf("related_tasks[%d]", i), id); err != nil {
				return err
			}
		}
	}
	if in.Subtasks != nil {
		for i, s := range *in.Subtasks {
			field := fmt.Sprintf("subtasks[%d]", i)
			if s.ID != nil {
				if err := checkUUID(field+".id", *s.ID); err != nil {
					return err
				}
			}
			if s.Name == nil {
				return invalid(field+".name", InvalidRequired, "Subtask name is required")
			}
			if err := checkLength(field+".name", "Subtask name", *s.Name, maxItemName); err != nil {
				return err
			}
		}
	}
	return nil
}

func ValidateSubtaskUpdate(in SubtaskInput) error {
	if in.IsEmpty() {
		return ErrNoData
	}
	if in.Name != nil {
		return checkLength("name", "Subtask name", *in.Name, maxItemName)
	}
	return nil
}

// ValidateID checks a path or body identifier.
func ValidateID(field, id string) error {
	return checkUUID(field, id)
}

func checkUUID(field, value string) error {
	if err := uuid.Validate(value); err != nil {
		return invalid(field, InvalidFormat, "Invalid %s", field)
	}
	return nil
}

func checkLength(field, label, value string, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < 1 {
		return invalid(field, InvalidLength, "%s cannot be empty", label)
	}
	if n > max {
		return invalid(field, InvalidLength, "%s cannot be longer than %d characters", label, max)
	}
	return nil
}

func checkPosition(position *int) error {
	if position != nil && *position < 0 {
		return invalid("position", InvalidRange, "Position cannot be less than 0")
	}
	return nil
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// diffIDs returns the ids only in want (to add) and only in have (to remove),
// each in the order they first appear.
func diffIDs(have, want []string) (add, remove []string) {
	haveSet := make(map[string]bool, len(have))
	for _, id := range have {
		haveSet[id] = true
	}
	wantSet := make(map[string]bool, len(want))
	for _, id := range want {
		if wantSet[id] {
			continue
		}
		wantSet[id] = true
		if !haveSet[id] {
			add = append(add, id)
		}
	}
	for _, id := range have {
		if !wantSet[id] {
			remove = append(remove, id)
		}
	}
	return add, remove
}
