// Package workflow holds the stage-transition rules of the routine authoring
// workflow: configuration validation, session-list reconciliation, the
// muscle-group cascade and schedule planning. Everything here is a pure
// function of its inputs so the rules can be tested without a store or
// network dependency.
package workflow

import (
	"strings"

	"coachdesk/training-app/internal/domain"
)

const minNameLength = 3

// FieldError is a single field-scoped validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the error returned when a stage advance is blocked by
// invalid input. It never reaches the commit engine.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateConfiguration checks all required configuration fields. Template
// drafts require a gender target and must not carry a start date; routine
// drafts are the inverse.
func ValidateConfiguration(cfg domain.RoutineConfiguration, template bool) error {
	var errs ValidationErrors

	if len(strings.TrimSpace(cfg.Name)) < minNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at least 3 characters"})
	}
	if strings.TrimSpace(cfg.Objective) == "" {
		errs = append(errs, FieldError{Field: "objective", Message: "objective is required"})
	}
	if strings.TrimSpace(cfg.Difficulty) == "" {
		errs = append(errs, FieldError{Field: "difficulty", Message: "difficulty is required"})
	}
	if cfg.DurationWeeks < 1 {
		errs = append(errs, FieldError{Field: "durationWeeks", Message: "duration must be a positive number of weeks"})
	}
	if cfg.SessionsPerWeek < 1 || cfg.SessionsPerWeek > 7 {
		errs = append(errs, FieldError{Field: "sessionsPerWeek", Message: "sessions per week must be between 1 and 7"})
	}
	if template {
		if strings.TrimSpace(cfg.GenderTarget) == "" {
			errs = append(errs, FieldError{Field: "genderTarget", Message: "gender target is required for templates"})
		}
	} else {
		if cfg.StartDate == nil {
			errs = append(errs, FieldError{Field: "startDate", Message: "start date is required"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
