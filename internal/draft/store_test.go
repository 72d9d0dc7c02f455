package draft

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"coachdesk/training-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleDraft(t *testing.T) *domain.RoutineDraft {
	t.Helper()
	studentID := primitive.NewObjectID()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	second := primitive.NewObjectID()

	d := domain.NewRoutineDraft(&studentID)
	d.Stage = domain.StageExercises
	d.Configuration = domain.RoutineConfiguration{
		Name:            "Strength base",
		Objective:       "strength",
		Difficulty:      "advanced",
		DurationWeeks:   6,
		SessionsPerWeek: 2,
		StartDate:       &start,
		Notes:           "deload on week 4",
	}
	d.Sessions = []domain.SessionTemplate{
		{ID: "s1", Name: "Session A", MuscleGroups: []string{"Chest", "Triceps"}, Order: 1},
		{ID: "s2", Name: "Session B", MuscleGroups: []string{"Back"}, Order: 2, Notes: "row focus"},
	}
	d.ExercisesBySession = map[string][]domain.ExerciseEntry{
		"s1": {
			{
				ID:               "e1",
				Kind:             domain.EntryPaired,
				ExerciseID:       primitive.NewObjectID(),
				SecondExerciseID: &second,
				RestAfterEntry:   120,
				Sets: []domain.SetEntry{
					{SetNumber: 1, Reps: 10, Load: 60, SecondReps: 12, SecondLoad: 20, RestAfterSet: 90},
					{SetNumber: 2, Reps: 8, Load: 65, HasDropset: true, DropsetLoad: 40, RestAfterSet: 90},
				},
			},
		},
	}
	d.AppliedMuscleGroups = map[string][]string{
		"s1": {"Chest", "Triceps"},
		"s2": {"Back"},
	}
	return d
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	d := sampleDraft(t)

	require.NoError(t, store.Save(ctx, "routine:a:b", d))

	loaded, err := store.Load(ctx, "routine:a:b")
	require.NoError(t, err)
	assert.Equal(t, d, loaded, "draft must survive persistence byte for byte")
}

func TestMemoryStore_LoadMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", sampleDraft(t)))
	require.NoError(t, store.Clear(ctx, "k"))

	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing an absent key is not an error.
	assert.NoError(t, store.Clear(ctx, "k"))
}

func TestMemoryStore_SaveIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	d := sampleDraft(t)

	require.NoError(t, store.Save(ctx, "k", d))
	d.Configuration.Name = "mutated after save"

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Strength base", loaded.Configuration.Name)
}

func TestDecodeDraft_VersionMismatch(t *testing.T) {
	raw, err := json.Marshal(document{SchemaVersion: SchemaVersion + 1, Draft: *sampleDraft(t)})
	require.NoError(t, err)

	_, err = decodeDraft(raw)
	assert.ErrorIs(t, err, ErrNotFound, "incompatible schema versions read as absent")
}

func TestDecodeDraft_NormalizesNilMap(t *testing.T) {
	d := domain.NewRoutineDraft(nil)
	d.ExercisesBySession = nil

	raw, err := encodeDraft(d)
	require.NoError(t, err)

	decoded, err := decodeDraft(raw)
	require.NoError(t, err)
	assert.NotNil(t, decoded.ExercisesBySession)
}

func TestScopeKey(t *testing.T) {
	actor := primitive.NewObjectID()
	student := primitive.NewObjectID()

	routineScope := Scope{ActorID: actor, StudentID: &student}
	assert.False(t, routineScope.IsTemplate())
	assert.Equal(t, "routine:"+actor.Hex()+":"+student.Hex(), routineScope.Key())

	templateScope := Scope{ActorID: actor}
	assert.True(t, templateScope.IsTemplate())
	assert.Equal(t, "template:"+actor.Hex(), templateScope.Key())

	// Distinct actors editing the same student never share a key.
	other := Scope{ActorID: primitive.NewObjectID(), StudentID: &student}
	assert.NotEqual(t, routineScope.Key(), other.Key())
}
