package workflow

import (
	"testing"

	"coachdesk/training-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func lookupFor(groups map[primitive.ObjectID]string) MuscleGroupLookup {
	return func(id primitive.ObjectID) (string, bool) {
		g, ok := groups[id]
		return g, ok
	}
}

func TestNewSimpleEntry_Defaults(t *testing.T) {
	id := primitive.NewObjectID()
	entry := NewSimpleEntry(id)

	assert.Equal(t, domain.EntrySimple, entry.Kind)
	assert.Equal(t, id, entry.ExerciseID)
	assert.Equal(t, 90, entry.RestAfterEntry)
	require.Len(t, entry.Sets, 1)
	assert.Equal(t, 1, entry.Sets[0].SetNumber)
	assert.Equal(t, 60, entry.Sets[0].RestAfterSet)
}

func TestNewPairedEntry(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	entry, err := NewPairedEntry(a, b)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryPaired, entry.Kind)
	assert.Equal(t, 120, entry.RestAfterEntry)
	require.Len(t, entry.Sets, 1)
	assert.Equal(t, 90, entry.Sets[0].RestAfterSet)

	_, err = NewPairedEntry(a, a)
	assert.ErrorIs(t, err, ErrPairedSameExercise)
}

func TestSameIdentity_PairedIsUnordered(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	ab, err := NewPairedEntry(a, b)
	require.NoError(t, err)
	ba, err := NewPairedEntry(b, a)
	require.NoError(t, err)

	assert.True(t, SameIdentity(ab, ba))
	assert.True(t, SameIdentity(ab, ab))

	simple := NewSimpleEntry(a)
	assert.False(t, SameIdentity(ab, simple))
	assert.True(t, SameIdentity(simple, NewSimpleEntry(a)))
	assert.False(t, SameIdentity(simple, NewSimpleEntry(b)))
}

func TestMergeSelection_KeepsConfiguredEntries(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	configured := NewSimpleEntry(a)
	configured.Sets = append(configured.Sets, domain.SetEntry{SetNumber: 2, Reps: 12, Load: 80})
	configured.RestAfterEntry = 150
	existing := []domain.ExerciseEntry{configured, NewSimpleEntry(b)}

	// Re-pick a, drop b, add c.
	selection := []domain.ExerciseEntry{NewSimpleEntry(a), NewSimpleEntry(c)}
	merged := MergeSelection(existing, selection)

	require.Len(t, merged, 2)
	assert.Equal(t, configured.ID, merged[0].ID, "matched entry is the existing one, sets intact")
	assert.Len(t, merged[0].Sets, 2)
	assert.Equal(t, 150, merged[0].RestAfterEntry)
	assert.Equal(t, c, merged[1].ExerciseID)
	require.Len(t, merged[1].Sets, 1)
}

func TestReconcileMuscleGroups_FiltersChangedSessions(t *testing.T) {
	chest, legs := primitive.NewObjectID(), primitive.NewObjectID()
	lookup := lookupFor(map[primitive.ObjectID]string{chest: "Chest", legs: "Legs"})

	sessions := SynthesizeSessions(1)
	sessions[0].MuscleGroups = []string{"Legs"}
	exercises := map[string][]domain.ExerciseEntry{
		sessions[0].ID: {NewSimpleEntry(chest), NewSimpleEntry(legs)},
	}
	applied := map[string][]string{sessions[0].ID: {"Chest", "Legs"}}

	out, notices := ReconcileMuscleGroups(applied, sessions, exercises, lookup)

	require.Len(t, out[sessions[0].ID], 1)
	assert.Equal(t, legs, out[sessions[0].ID][0].ExerciseID)
	require.Len(t, notices, 1)
	assert.Equal(t, 1, notices[0].Removed)
	assert.Equal(t, sessions[0].Name, notices[0].SessionName)
}

func TestReconcileMuscleGroups_UnchangedSessionLeftAlone(t *testing.T) {
	chest := primitive.NewObjectID()
	// Lookup says the exercise no longer matches, but the session's group set
	// did not change, so nothing is touched.
	lookup := lookupFor(map[primitive.ObjectID]string{chest: "Chest"})

	sessions := SynthesizeSessions(1)
	sessions[0].MuscleGroups = []string{"Legs"}
	exercises := map[string][]domain.ExerciseEntry{
		sessions[0].ID: {NewSimpleEntry(chest)},
	}
	applied := map[string][]string{sessions[0].ID: {"Legs"}}

	out, notices := ReconcileMuscleGroups(applied, sessions, exercises, lookup)

	assert.Len(t, out[sessions[0].ID], 1)
	assert.Empty(t, notices)
}

func TestReconcileMuscleGroups_Idempotent(t *testing.T) {
	chest, legs := primitive.NewObjectID(), primitive.NewObjectID()
	lookup := lookupFor(map[primitive.ObjectID]string{chest: "Chest", legs: "Legs"})

	sessions := SynthesizeSessions(1)
	sessions[0].MuscleGroups = []string{"Legs"}
	exercises := map[string][]domain.ExerciseEntry{
		sessions[0].ID: {NewSimpleEntry(chest), NewSimpleEntry(legs)},
	}

	once, notices1 := ReconcileMuscleGroups(nil, sessions, exercises, lookup)
	require.Len(t, notices1, 1)

	// Snapshot taken after the first run; running again must be a no-op.
	applied := AppliedSnapshot(sessions)
	twice, notices2 := ReconcileMuscleGroups(applied, sessions, once, lookup)
	assert.Equal(t, once, twice)
	assert.Empty(t, notices2)
}

func TestReconcileMuscleGroups_UnresolvedEntriesRetained(t *testing.T) {
	gone := primitive.NewObjectID()
	lookup := lookupFor(nil)

	sessions := SynthesizeSessions(1)
	sessions[0].MuscleGroups = []string{"Back"}
	exercises := map[string][]domain.ExerciseEntry{
		sessions[0].ID: {NewSimpleEntry(gone)},
	}

	out, notices := ReconcileMuscleGroups(nil, sessions, exercises, lookup)

	assert.Len(t, out[sessions[0].ID], 1, "entries with no resolvable reference survive")
	assert.Empty(t, notices)
}

func TestReconcileMuscleGroups_PairedSurvivesOnOneSide(t *testing.T) {
	chest, legs := primitive.NewObjectID(), primitive.NewObjectID()
	lookup := lookupFor(map[primitive.ObjectID]string{chest: "Chest", legs: "Legs"})

	pair, err := NewPairedEntry(chest, legs)
	require.NoError(t, err)

	sessions := SynthesizeSessions(1)
	sessions[0].MuscleGroups = []string{"Legs"}
	exercises := map[string][]domain.ExerciseEntry{sessions[0].ID: {pair}}

	out, notices := ReconcileMuscleGroups(nil, sessions, exercises, lookup)

	assert.Len(t, out[sessions[0].ID], 1)
	assert.Empty(t, notices)
}

func TestAllSessionsHaveExercises(t *testing.T) {
	sessions := SynthesizeSessions(2)
	exercises := map[string][]domain.ExerciseEntry{
		sessions[0].ID: {NewSimpleEntry(primitive.NewObjectID())},
	}

	assert.False(t, AllSessionsHaveExercises(sessions, exercises))
	exercises[sessions[1].ID] = []domain.ExerciseEntry{NewSimpleEntry(primitive.NewObjectID())}
	assert.True(t, AllSessionsHaveExercises(sessions, exercises))
	assert.False(t, AllSessionsHaveExercises(nil, exercises))
}

func TestMoveEntry(t *testing.T) {
	a := NewSimpleEntry(primitive.NewObjectID())
	b := NewSimpleEntry(primitive.NewObjectID())
	entries := []domain.ExerciseEntry{a, b}

	out, err := MoveEntry(entries, b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, b.ID, out[0].ID)

	// Moving past the ends is a no-op.
	out, err = MoveEntry(entries, a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, a.ID, out[0].ID)

	_, err = MoveEntry(entries, "missing", false)
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestRemoveEntry(t *testing.T) {
	a := NewSimpleEntry(primitive.NewObjectID())
	b := NewSimpleEntry(primitive.NewObjectID())

	out, err := RemoveEntry([]domain.ExerciseEntry{a, b}, a.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)

	_, err = RemoveEntry(out, a.ID)
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestAddAndRemoveSet(t *testing.T) {
	entry := NewSimpleEntry(primitive.NewObjectID())
	AddSet(&entry)
	AddSet(&entry)
	require.Len(t, entry.Sets, 3)
	assert.Equal(t, []int{1, 2, 3}, setNumbers(entry))

	require.NoError(t, RemoveSet(&entry, 2))
	assert.Equal(t, []int{1, 2}, setNumbers(entry), "set numbers renumber contiguously")

	assert.ErrorIs(t, RemoveSet(&entry, 9), ErrUnknownSet)

	require.NoError(t, RemoveSet(&entry, 1))
	assert.ErrorIs(t, RemoveSet(&entry, 1), ErrLastSet)
}

func TestAddSet_PairedRestDefault(t *testing.T) {
	entry, err := NewPairedEntry(primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, err)
	AddSet(&entry)
	assert.Equal(t, 90, entry.Sets[1].RestAfterSet)
}

func TestUpdateSet(t *testing.T) {
	entry := NewSimpleEntry(primitive.NewObjectID())
	err := UpdateSet(&entry, 1, domain.SetEntry{SetNumber: 99, Reps: 10, Load: 72.5, RestAfterSet: 45})
	require.NoError(t, err)

	assert.Equal(t, 1, entry.Sets[0].SetNumber, "set number is positional, not client controlled")
	assert.Equal(t, 10, entry.Sets[0].Reps)
	assert.Equal(t, 72.5, entry.Sets[0].Load)
	assert.Equal(t, 45, entry.Sets[0].RestAfterSet)

	assert.ErrorIs(t, UpdateSet(&entry, 2, domain.SetEntry{}), ErrUnknownSet)
}

func TestToggleDropset(t *testing.T) {
	entry := NewSimpleEntry(primitive.NewObjectID())

	require.NoError(t, ToggleDropset(&entry, 1))
	assert.True(t, entry.Sets[0].HasDropset)

	entry.Sets[0].DropsetLoad = 40
	require.NoError(t, ToggleDropset(&entry, 1))
	assert.False(t, entry.Sets[0].HasDropset)
	assert.Zero(t, entry.Sets[0].DropsetLoad, "disabling a dropset clears its load")

	assert.ErrorIs(t, ToggleDropset(&entry, 5), ErrUnknownSet)
}

func setNumbers(entry domain.ExerciseEntry) []int {
	nums := make([]int, len(entry.Sets))
	for i, s := range entry.Sets {
		nums[i] = s.SetNumber
	}
	return nums
}
