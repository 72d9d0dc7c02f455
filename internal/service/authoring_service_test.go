package service

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/draft"
	"coachdesk/training-app/internal/workflow"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type authoringFixture struct {
	store    draft.Store
	catalog  *fakeCatalog
	users    *fakeUserRepo
	routines *fakeRoutineRepo
	sessions *fakeSessionRepo
	entries  *fakeEntryRepo
	sets     *fakeSetRepo
	svc      AuthoringService

	coach   *domain.User
	student *domain.User
	actor   Actor
	scope   draft.Scope
}

func newAuthoringFixture(t *testing.T) *authoringFixture {
	t.Helper()
	f := &authoringFixture{
		store:    draft.NewMemoryStore(),
		catalog:  newFakeCatalog(),
		users:    newFakeUserRepo(),
		routines: newFakeRoutineRepo(),
		sessions: &fakeSessionRepo{},
		entries:  &fakeEntryRepo{},
		sets:     &fakeSetRepo{},
	}
	f.svc = NewAuthoringService(f.store, f.catalog, f.users, f.routines, f.sessions, f.entries, f.sets)

	f.coach = f.users.add(&domain.User{Name: "Coach", Email: "coach@example.com", Role: domain.RoleCoach})
	f.student = f.users.add(&domain.User{Name: "Student", Email: "student@example.com", Role: domain.RoleStudent, CoachID: &f.coach.ID})
	f.actor = Actor{ID: f.coach.ID, Role: domain.RoleCoach}
	f.scope = draft.Scope{ActorID: f.coach.ID, StudentID: &f.student.ID}
	return f
}

func (f *authoringFixture) validConfig() domain.RoutineConfiguration {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	return domain.RoutineConfiguration{
		Name:            "Push pull legs",
		Objective:       "hypertrophy",
		Difficulty:      "medium",
		DurationWeeks:   4,
		SessionsPerWeek: 3,
		StartDate:       &start,
	}
}

func TestStartOrResume_FreshDraft(t *testing.T) {
	f := newAuthoringFixture(t)

	d, err := f.svc.StartOrResume(context.Background(), f.actor, f.scope)
	require.NoError(t, err)

	assert.Equal(t, domain.StageConfiguration, d.Stage)
	assert.Empty(t, d.Sessions)
	require.NotNil(t, d.StudentID)
	assert.Equal(t, f.student.ID, *d.StudentID)
}

func TestStartOrResume_ResumesSavedSession(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()

	_, err := f.svc.SyncConfiguration(ctx, f.scope, f.validConfig())
	require.NoError(t, err)

	d, err := f.svc.StartOrResume(ctx, f.actor, f.scope)
	require.NoError(t, err)
	assert.Equal(t, "Push pull legs", d.Configuration.Name)
}

func TestSyncConfiguration_EagerAndUnvalidated(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()

	// Half-typed configuration is stored without complaint.
	d, err := f.svc.SyncConfiguration(ctx, f.scope, domain.RoutineConfiguration{Name: "P"})
	require.NoError(t, err)
	assert.Equal(t, "P", d.Configuration.Name)
	assert.Equal(t, domain.StageConfiguration, d.Stage)
}

func TestAdvanceToSessions_ValidatesAndSynthesizes(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()

	_, err := f.svc.SyncConfiguration(ctx, f.scope, domain.RoutineConfiguration{Name: "x"})
	require.NoError(t, err)
	_, err = f.svc.AdvanceToSessions(ctx, f.scope)
	var errs workflow.ValidationErrors
	require.ErrorAs(t, err, &errs)

	_, err = f.svc.SyncConfiguration(ctx, f.scope, f.validConfig())
	require.NoError(t, err)
	result, err := f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)

	assert.Equal(t, domain.StageSessions, result.Draft.Stage)
	require.Len(t, result.Draft.Sessions, 3)
	assert.Equal(t, "Session A", result.Draft.Sessions[0].Name)
	assert.Empty(t, result.Notices)
}

func TestAdvanceToSessions_FrequencyDecreaseCascades(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	chest := f.catalog.addExercise("Bench press", "Chest")

	_, err := f.svc.SyncConfiguration(ctx, f.scope, f.validConfig())
	require.NoError(t, err)
	result, err := f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)

	// Put an exercise on the last session, then shrink the frequency.
	last := result.Draft.Sessions[2]
	_, err = f.svc.UpdateSession(ctx, f.scope, last.ID, SessionUpdate{MuscleGroups: &[]string{"Chest"}})
	require.NoError(t, err)
	_, err = f.svc.AddEntry(ctx, f.scope, last.ID, SelectionChoice{Kind: domain.EntrySimple, ExerciseID: chest})
	require.NoError(t, err)

	cfg := f.validConfig()
	cfg.SessionsPerWeek = 2
	_, err = f.svc.SyncConfiguration(ctx, f.scope, cfg)
	require.NoError(t, err)

	result, err = f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)
	require.Len(t, result.Draft.Sessions, 2)
	require.Len(t, result.Notices, 1)
	assert.Equal(t, last.ID, result.Notices[0].SessionID)
	assert.Equal(t, 1, result.Notices[0].Removed)
}

func TestAdvanceToExercises_RequiresCompleteSessions(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()

	_, err := f.svc.SyncConfiguration(ctx, f.scope, f.validConfig())
	require.NoError(t, err)
	_, err = f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)

	_, err = f.svc.AdvanceToExercises(ctx, f.scope)
	assert.ErrorIs(t, err, ErrSessionsIncomplete)
}

func TestAdvanceToExercises_CascadeAndSnapshot(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	chest := f.catalog.addExercise("Bench press", "Chest")
	squat := f.catalog.addExercise("Squat", "Legs")

	cfg := f.validConfig()
	cfg.SessionsPerWeek = 1
	_, err := f.svc.SyncConfiguration(ctx, f.scope, cfg)
	require.NoError(t, err)
	result, err := f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)
	session := result.Draft.Sessions[0]

	_, err = f.svc.UpdateSession(ctx, f.scope, session.ID, SessionUpdate{MuscleGroups: &[]string{"Chest", "Legs"}})
	require.NoError(t, err)
	advResult, err := f.svc.AdvanceToExercises(ctx, f.scope)
	require.NoError(t, err)
	assert.Equal(t, domain.StageExercises, advResult.Draft.Stage)

	_, err = f.svc.ApplySelection(ctx, f.scope, session.ID, []SelectionChoice{
		{Kind: domain.EntrySimple, ExerciseID: chest},
		{Kind: domain.EntrySimple, ExerciseID: squat},
	})
	require.NoError(t, err)

	// Going back and narrowing the session to Legs drops the chest entry.
	_, err = f.svc.UpdateSession(ctx, f.scope, session.ID, SessionUpdate{MuscleGroups: &[]string{"Legs"}})
	require.NoError(t, err)
	advResult, err = f.svc.AdvanceToExercises(ctx, f.scope)
	require.NoError(t, err)

	entries := advResult.Draft.ExercisesBySession[session.ID]
	require.Len(t, entries, 1)
	assert.Equal(t, squat, entries[0].ExerciseID)
	require.Len(t, advResult.Notices, 1)
	assert.Equal(t, 1, advResult.Notices[0].Removed)

	// Re-advancing without changes is a no-op.
	advResult, err = f.svc.AdvanceToExercises(ctx, f.scope)
	require.NoError(t, err)
	assert.Len(t, advResult.Draft.ExercisesBySession[session.ID], 1)
	assert.Empty(t, advResult.Notices)
}

func TestApplySelection_PreservesMatchedEntries(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	chest := f.catalog.addExercise("Bench press", "Chest")
	fly := f.catalog.addExercise("Cable fly", "Chest")

	cfg := f.validConfig()
	cfg.SessionsPerWeek = 1
	_, err := f.svc.SyncConfiguration(ctx, f.scope, cfg)
	require.NoError(t, err)
	result, err := f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)
	session := result.Draft.Sessions[0]

	d, err := f.svc.ApplySelection(ctx, f.scope, session.ID, []SelectionChoice{
		{Kind: domain.EntrySimple, ExerciseID: chest},
	})
	require.NoError(t, err)
	entryID := d.ExercisesBySession[session.ID][0].ID

	// Configure the entry, then re-pick it together with a new exercise.
	_, err = f.svc.AddSet(ctx, f.scope, session.ID, entryID)
	require.NoError(t, err)
	d, err = f.svc.ApplySelection(ctx, f.scope, session.ID, []SelectionChoice{
		{Kind: domain.EntrySimple, ExerciseID: chest},
		{Kind: domain.EntrySimple, ExerciseID: fly},
	})
	require.NoError(t, err)

	entries := d.ExercisesBySession[session.ID]
	require.Len(t, entries, 2)
	assert.Equal(t, entryID, entries[0].ID)
	assert.Len(t, entries[0].Sets, 2, "configured sets survive a re-pick")
	assert.Len(t, entries[1].Sets, 1)
}

func TestSessionSelection_ResolvesAndFlagsMissing(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	chest := f.catalog.addExercise("Bench press", "Chest")
	missing := primitive.NewObjectID()

	cfg := f.validConfig()
	cfg.SessionsPerWeek = 1
	_, err := f.svc.SyncConfiguration(ctx, f.scope, cfg)
	require.NoError(t, err)
	result, err := f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)
	session := result.Draft.Sessions[0]

	_, err = f.svc.AddEntry(ctx, f.scope, session.ID, SelectionChoice{Kind: domain.EntrySimple, ExerciseID: chest})
	require.NoError(t, err)
	_, err = f.svc.AddEntry(ctx, f.scope, session.ID, SelectionChoice{Kind: domain.EntrySimple, ExerciseID: missing})
	require.NoError(t, err)

	items, err := f.svc.SessionSelection(ctx, f.scope, session.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].Exercises[0].Resolved)
	assert.Equal(t, "Bench press", items[0].Exercises[0].Name)
	assert.False(t, items[1].Exercises[0].Resolved)
	assert.Equal(t, "Unknown exercise", items[1].Exercises[0].Name)
}

func TestAddEntry_PairedNeedsDistinctExercises(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	chest := f.catalog.addExercise("Bench press", "Chest")

	cfg := f.validConfig()
	cfg.SessionsPerWeek = 1
	_, err := f.svc.SyncConfiguration(ctx, f.scope, cfg)
	require.NoError(t, err)
	result, err := f.svc.AdvanceToSessions(ctx, f.scope)
	require.NoError(t, err)
	session := result.Draft.Sessions[0]

	_, err = f.svc.AddEntry(ctx, f.scope, session.ID, SelectionChoice{
		Kind:             domain.EntryPaired,
		ExerciseID:       chest,
		SecondExerciseID: &chest,
	})
	assert.ErrorIs(t, err, workflow.ErrPairedSameExercise)
}

func TestMutations_RequireActiveDraft(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()

	_, err := f.svc.AdvanceToSessions(ctx, f.scope)
	assert.ErrorIs(t, err, ErrNoActiveDraft)
	_, err = f.svc.UpdateSession(ctx, f.scope, "s", SessionUpdate{})
	assert.ErrorIs(t, err, ErrNoActiveDraft)
	_, err = f.svc.AddSet(ctx, f.scope, "s", "e")
	assert.ErrorIs(t, err, ErrNoActiveDraft)
}

func TestDiscard(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()

	_, err := f.svc.SyncConfiguration(ctx, f.scope, f.validConfig())
	require.NoError(t, err)
	require.NoError(t, f.svc.Discard(ctx, f.scope))

	_, err = f.svc.AdvanceToSessions(ctx, f.scope)
	assert.ErrorIs(t, err, ErrNoActiveDraft)
}

func TestStartOrResume_RehydratesDurableDraft(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	chest := f.catalog.addExercise("Bench press", "Chest")
	second := f.catalog.addExercise("Row", "Back")

	// Durable draft tree as the commit engine would have written it.
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	routineID := primitive.NewObjectID()
	_, err := f.routines.Create(ctx, &domain.Routine{
		ID:              routineID,
		CoachID:         f.coach.ID,
		StudentID:       &f.student.ID,
		Kind:            domain.KindRoutine,
		Status:          domain.RoutineStatusDraft,
		Name:            "Saved draft",
		Objective:       "strength",
		Difficulty:      "medium",
		DurationWeeks:   4,
		SessionsPerWeek: 2,
		StartDate:       &start,
		UpdatedAt:       time.Now(),
	})
	require.NoError(t, err)

	sessionA := domain.RoutineSession{ID: primitive.NewObjectID(), RoutineID: routineID, Name: "Session A", MuscleGroups: []string{"Chest"}, Order: 1}
	sessionB := domain.RoutineSession{ID: primitive.NewObjectID(), RoutineID: routineID, Name: "Session B", MuscleGroups: []string{"Back"}, Order: 2}
	require.NoError(t, f.sessions.InsertMany(ctx, []domain.RoutineSession{sessionA, sessionB}))

	entryID := primitive.NewObjectID()
	require.NoError(t, f.entries.InsertMany(ctx, []domain.SessionExercise{
		{ID: entryID, RoutineID: routineID, SessionID: sessionA.ID, Kind: domain.EntrySimple, ExerciseID: chest, RestAfterEntry: 90, Order: 1},
		{ID: primitive.NewObjectID(), RoutineID: routineID, SessionID: sessionB.ID, Kind: domain.EntrySimple, ExerciseID: second, RestAfterEntry: 90, Order: 1},
	}))
	require.NoError(t, f.sets.InsertMany(ctx, []domain.ExerciseSet{
		{ID: primitive.NewObjectID(), RoutineID: routineID, SessionExerciseID: entryID, SetNumber: 1, Reps: 8, Load: 60, RestAfterSet: 60},
		{ID: primitive.NewObjectID(), RoutineID: routineID, SessionExerciseID: entryID, SetNumber: 2, Reps: 8, Load: 62.5, RestAfterSet: 60},
	}))

	d, err := f.svc.StartOrResume(ctx, f.actor, f.scope)
	require.NoError(t, err)

	require.NotNil(t, d.DraftID)
	assert.Equal(t, routineID, *d.DraftID)
	assert.Equal(t, "Saved draft", d.Configuration.Name)
	assert.Equal(t, domain.StageExercises, d.Stage, "complete sessions resume at the exercise stage")
	require.Len(t, d.Sessions, 2)
	assert.NotEmpty(t, d.Sessions[0].ID, "draft-local ids are regenerated")

	entries := d.ExercisesBySession[d.Sessions[0].ID]
	require.Len(t, entries, 1)
	assert.Equal(t, chest, entries[0].ExerciseID)
	require.Len(t, entries[0].Sets, 2)
	assert.Equal(t, 62.5, entries[0].Sets[1].Load)

	// The snapshot is primed so the next exercises-advance cascades nothing.
	assert.Equal(t, workflow.AppliedSnapshot(d.Sessions), d.AppliedMuscleGroups)
}

func TestStartOrResume_AdminRehydratesViaAssignedCoach(t *testing.T) {
	f := newAuthoringFixture(t)
	ctx := context.Background()
	admin := f.users.add(&domain.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin})

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	_, err := f.routines.Create(ctx, &domain.Routine{
		CoachID:         f.coach.ID,
		StudentID:       &f.student.ID,
		Kind:            domain.KindRoutine,
		Status:          domain.RoutineStatusDraft,
		Name:            "Coach draft",
		Objective:       "strength",
		Difficulty:      "medium",
		DurationWeeks:   2,
		SessionsPerWeek: 1,
		StartDate:       &start,
	})
	require.NoError(t, err)

	adminScope := draft.Scope{ActorID: admin.ID, StudentID: &f.student.ID}
	d, err := f.svc.StartOrResume(ctx, Actor{ID: admin.ID, Role: domain.RoleAdmin}, adminScope)
	require.NoError(t, err)
	assert.Equal(t, "Coach draft", d.Configuration.Name, "admin resumes the assigned coach's durable draft")
}
