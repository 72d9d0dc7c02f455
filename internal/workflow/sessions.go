package workflow

import (
	"errors"

	"coachdesk/training-app/internal/domain"

	"github.com/google/uuid"
)

var ErrUnknownSession = errors.New("session not found in draft")

// CascadeNotice is an informational message produced when a cascade removes
// exercise entries. Surfaced once to the coach, never stored.
type CascadeNotice struct {
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	Removed     int    `json:"removed"`
}

// SessionName returns the auto-generated label for the session at 0-based
// index i: "Session A" .. "Session Z", then "Session AA" and so on.
func SessionName(i int) string {
	letters := ""
	n := i
	for {
		letters = string(rune('A'+n%26)) + letters
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return "Session " + letters
}

// isAutoName reports whether a session name follows the generated lettering
// scheme. Only auto-named sessions are renamed on reorder; custom names are
// kept as the coach wrote them.
func isAutoName(name string) bool {
	const prefix = "Session "
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}
	for _, r := range name[len(prefix):] {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func newSessionTemplate(index int) domain.SessionTemplate {
	return domain.SessionTemplate{
		ID:           uuid.NewString(),
		Name:         SessionName(index),
		MuscleGroups: []string{},
		Order:        index + 1,
	}
}

// SynthesizeSessions creates n empty session templates with sequential names
// and empty muscle-group sets. Used on first entry to the Session Stage.
func SynthesizeSessions(n int) []domain.SessionTemplate {
	sessions := make([]domain.SessionTemplate, n)
	for i := range sessions {
		sessions[i] = newSessionTemplate(i)
	}
	return sessions
}

// ReconcileSessionCount reconciles the session list against the configured
// sessions-per-week frequency (the Configuration -> Sessions boundary).
// Existing sessions and their muscle groups are preserved; an increase
// appends empty templates, a decrease truncates the tail and discards any
// exercise entries keyed to removed sessions. Pure: inputs are not mutated.
func ReconcileSessionCount(
	cfg domain.RoutineConfiguration,
	sessions []domain.SessionTemplate,
	exercises map[string][]domain.ExerciseEntry,
) ([]domain.SessionTemplate, map[string][]domain.ExerciseEntry, []CascadeNotice) {
	want := cfg.SessionsPerWeek

	out := make([]domain.SessionTemplate, 0, want)
	for i := 0; i < len(sessions) && i < want; i++ {
		out = append(out, sessions[i])
	}
	for i := len(out); i < want; i++ {
		out = append(out, newSessionTemplate(i))
	}

	kept := make(map[string]bool, len(out))
	for _, s := range out {
		kept[s.ID] = true
	}

	outExercises := make(map[string][]domain.ExerciseEntry, len(exercises))
	var notices []CascadeNotice
	for id, entries := range exercises {
		if kept[id] {
			outExercises[id] = entries
			continue
		}
		if len(entries) > 0 {
			notices = append(notices, CascadeNotice{
				SessionID:   id,
				SessionName: sessionNameByID(sessions, id),
				Removed:     len(entries),
			})
		}
	}
	return out, outExercises, notices
}

func sessionNameByID(sessions []domain.SessionTemplate, id string) string {
	for i := range sessions {
		if sessions[i].ID == id {
			return sessions[i].Name
		}
	}
	return ""
}

// ReorderSessions rearranges the session list to match orderedIDs, renumbers
// Order 1..n and reassigns generated letter names. orderedIDs must be a
// permutation of the current session ids.
func ReorderSessions(sessions []domain.SessionTemplate, orderedIDs []string) ([]domain.SessionTemplate, error) {
	if len(orderedIDs) != len(sessions) {
		return nil, ErrUnknownSession
	}
	byID := make(map[string]domain.SessionTemplate, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	out := make([]domain.SessionTemplate, 0, len(sessions))
	for i, id := range orderedIDs {
		s, ok := byID[id]
		if !ok {
			return nil, ErrUnknownSession
		}
		delete(byID, id)
		s.Order = i + 1
		if isAutoName(s.Name) {
			s.Name = SessionName(i)
		}
		out = append(out, s)
	}
	return out, nil
}

// SessionCompleteness derives the completed/total counter shown while the
// coach assigns muscle groups. Completeness is a non-empty muscle-group set.
func SessionCompleteness(sessions []domain.SessionTemplate) (completed, total int) {
	for i := range sessions {
		if sessions[i].IsComplete() {
			completed++
		}
	}
	return completed, len(sessions)
}

// AllSessionsComplete reports whether the draft may advance to the Exercise
// Stage.
func AllSessionsComplete(sessions []domain.SessionTemplate) bool {
	done, total := SessionCompleteness(sessions)
	return total > 0 && done == total
}
