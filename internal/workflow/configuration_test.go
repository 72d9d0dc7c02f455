package workflow

import (
	"testing"
	"time"

	"coachdesk/training-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRoutineConfig() domain.RoutineConfiguration {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	return domain.RoutineConfiguration{
		Name:            "Hypertrophy block",
		Objective:       "hypertrophy",
		Difficulty:      "medium",
		DurationWeeks:   8,
		SessionsPerWeek: 4,
		StartDate:       &start,
	}
}

func TestValidateConfiguration_ValidRoutine(t *testing.T) {
	assert.NoError(t, ValidateConfiguration(validRoutineConfig(), false))
}

func TestValidateConfiguration_CollectsAllFieldErrors(t *testing.T) {
	err := ValidateConfiguration(domain.RoutineConfiguration{Name: "ab"}, false)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)

	fields := map[string]bool{}
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["objective"])
	assert.True(t, fields["difficulty"])
	assert.True(t, fields["durationWeeks"])
	assert.True(t, fields["sessionsPerWeek"])
	assert.True(t, fields["startDate"])
}

func TestValidateConfiguration_FrequencyBounds(t *testing.T) {
	cfg := validRoutineConfig()
	cfg.SessionsPerWeek = 8
	assert.Error(t, ValidateConfiguration(cfg, false))

	cfg.SessionsPerWeek = 7
	assert.NoError(t, ValidateConfiguration(cfg, false))

	cfg.SessionsPerWeek = 0
	assert.Error(t, ValidateConfiguration(cfg, false))
}

func TestValidateConfiguration_TemplateRules(t *testing.T) {
	cfg := validRoutineConfig()
	cfg.StartDate = nil

	// Templates need a gender target, not a start date.
	err := ValidateConfiguration(cfg, true)
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "genderTarget", errs[0].Field)

	cfg.GenderTarget = "female"
	assert.NoError(t, ValidateConfiguration(cfg, true))
}
