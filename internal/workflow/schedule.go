package workflow

import "coachdesk/training-app/internal/domain"

// PlanSchedule lays out the execution-session schedule for a finalized
// routine: durationWeeks x sessionsPerWeek occurrences, cycling the session
// templates in order. The result holds draft-local session ids; the commit
// engine maps them to durable ids. Occurrence i (0-based) is bound to
// sessions[i mod len(sessions)].
func PlanSchedule(cfg domain.RoutineConfiguration, sessions []domain.SessionTemplate) []string {
	if len(sessions) == 0 {
		return nil
	}
	total := cfg.DurationWeeks * cfg.SessionsPerWeek
	plan := make([]string, total)
	for i := 0; i < total; i++ {
		plan[i] = sessions[i%len(sessions)].ID
	}
	return plan
}
