package workflow

import (
	"testing"

	"coachdesk/training-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSessionName(t *testing.T) {
	assert.Equal(t, "Session A", SessionName(0))
	assert.Equal(t, "Session B", SessionName(1))
	assert.Equal(t, "Session Z", SessionName(25))
	assert.Equal(t, "Session AA", SessionName(26))
	assert.Equal(t, "Session AB", SessionName(27))
}

func TestSynthesizeSessions(t *testing.T) {
	sessions := SynthesizeSessions(3)
	require.Len(t, sessions, 3)

	seen := map[string]bool{}
	for i, s := range sessions {
		assert.Equal(t, SessionName(i), s.Name)
		assert.Equal(t, i+1, s.Order)
		assert.Empty(t, s.MuscleGroups)
		assert.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "session ids must be unique")
		seen[s.ID] = true
	}
}

func TestReconcileSessionCount_Increase(t *testing.T) {
	cfg := domain.RoutineConfiguration{SessionsPerWeek: 4}
	existing := SynthesizeSessions(2)
	existing[0].MuscleGroups = []string{"Chest"}
	existing[1].Name = "Leg day"

	out, exercises, notices := ReconcileSessionCount(cfg, existing, map[string][]domain.ExerciseEntry{})

	require.Len(t, out, 4)
	assert.Empty(t, notices)
	assert.Empty(t, exercises)
	// Existing sessions survive untouched.
	assert.Equal(t, existing[0].ID, out[0].ID)
	assert.Equal(t, []string{"Chest"}, out[0].MuscleGroups)
	assert.Equal(t, "Leg day", out[1].Name)
	// Appended ones are empty and named by position.
	assert.Equal(t, "Session C", out[2].Name)
	assert.Equal(t, "Session D", out[3].Name)
}

func TestReconcileSessionCount_DecreaseDiscardsExercises(t *testing.T) {
	cfg := domain.RoutineConfiguration{SessionsPerWeek: 1}
	existing := SynthesizeSessions(3)
	exercises := map[string][]domain.ExerciseEntry{
		existing[0].ID: {NewSimpleEntry(primitive.NewObjectID())},
		existing[2].ID: {NewSimpleEntry(primitive.NewObjectID()), NewSimpleEntry(primitive.NewObjectID())},
	}

	out, outExercises, notices := ReconcileSessionCount(cfg, existing, exercises)

	require.Len(t, out, 1)
	assert.Equal(t, existing[0].ID, out[0].ID)
	assert.Len(t, outExercises[existing[0].ID], 1)
	assert.NotContains(t, outExercises, existing[2].ID)

	require.Len(t, notices, 1)
	assert.Equal(t, existing[2].ID, notices[0].SessionID)
	assert.Equal(t, "Session C", notices[0].SessionName)
	assert.Equal(t, 2, notices[0].Removed)
}

func TestReconcileSessionCount_PureInputsUntouched(t *testing.T) {
	cfg := domain.RoutineConfiguration{SessionsPerWeek: 1}
	existing := SynthesizeSessions(3)
	exercises := map[string][]domain.ExerciseEntry{
		existing[1].ID: {NewSimpleEntry(primitive.NewObjectID())},
	}

	ReconcileSessionCount(cfg, existing, exercises)

	assert.Len(t, existing, 3)
	assert.Len(t, exercises, 1)
}

func TestReorderSessions(t *testing.T) {
	sessions := SynthesizeSessions(3)
	sessions[2].Name = "Custom name"

	out, err := ReorderSessions(sessions, []string{sessions[2].ID, sessions[0].ID, sessions[1].ID})
	require.NoError(t, err)

	// Custom names stay put, auto names follow the new position.
	assert.Equal(t, "Custom name", out[0].Name)
	assert.Equal(t, 1, out[0].Order)
	assert.Equal(t, "Session B", out[1].Name)
	assert.Equal(t, "Session C", out[2].Name)
	assert.Equal(t, 3, out[2].Order)
}

func TestReorderSessions_RejectsBadPermutation(t *testing.T) {
	sessions := SynthesizeSessions(2)

	_, err := ReorderSessions(sessions, []string{sessions[0].ID})
	assert.ErrorIs(t, err, ErrUnknownSession)

	_, err = ReorderSessions(sessions, []string{sessions[0].ID, "nope"})
	assert.ErrorIs(t, err, ErrUnknownSession)

	// Duplicated id is not a permutation either.
	_, err = ReorderSessions(sessions, []string{sessions[0].ID, sessions[0].ID})
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestSessionCompleteness(t *testing.T) {
	sessions := SynthesizeSessions(3)
	sessions[0].MuscleGroups = []string{"Back"}

	done, total := SessionCompleteness(sessions)
	assert.Equal(t, 1, done)
	assert.Equal(t, 3, total)
	assert.False(t, AllSessionsComplete(sessions))

	sessions[1].MuscleGroups = []string{"Chest"}
	sessions[2].MuscleGroups = []string{"Legs", "Shoulders"}
	assert.True(t, AllSessionsComplete(sessions))

	assert.False(t, AllSessionsComplete(nil), "empty drafts are never complete")
}
