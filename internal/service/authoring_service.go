package service

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/draft"
	"coachdesk/training-app/internal/repository"
	"coachdesk/training-app/internal/workflow"
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoActiveDraft      = errors.New("no authoring session in progress")
	ErrSessionsIncomplete = errors.New("every session needs at least one muscle group before advancing")
	ErrSessionNotFound    = errors.New("session not found in draft")
)

// Actor is the authenticated identity driving the workflow.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

// SessionUpdate carries partial edits to one session template. Nil fields
// are left untouched.
type SessionUpdate struct {
	Name         *string
	Notes        *string
	MuscleGroups *[]string
}

// SelectionChoice is one picker choice: a single exercise or a pair.
type SelectionChoice struct {
	Kind             domain.EntryKind
	ExerciseID       primitive.ObjectID
	SecondExerciseID *primitive.ObjectID
}

// SelectionExercise is one resolved catalog reference shown in the picker.
// Resolved == false renders with placeholder display attributes.
type SelectionExercise struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	MuscleGroup string             `json:"muscleGroup"`
	Resolved    bool               `json:"resolved"`
}

// SelectionItem is one existing entry, with its references resolved back to
// catalog records so the coach edits the prior selection instead of
// re-creating it.
type SelectionItem struct {
	EntryID   string              `json:"entryId"`
	Kind      domain.EntryKind    `json:"kind"`
	Exercises []SelectionExercise `json:"exercises"`
}

// AdvanceResult bundles the draft after a stage advance with the cascade
// notices the advance produced.
type AdvanceResult struct {
	Draft   *domain.RoutineDraft
	Notices []workflow.CascadeNotice
}

// AuthoringService drives the multi-stage routine authoring workflow. Every
// mutation persists the full draft to the draft store so the session is
// resumable; backward navigation is implicit (the draft keeps all captured
// state regardless of stage).
type AuthoringService interface {
	StartOrResume(ctx context.Context, actor Actor, scope draft.Scope) (*domain.RoutineDraft, error)
	SyncConfiguration(ctx context.Context, scope draft.Scope, cfg domain.RoutineConfiguration) (*domain.RoutineDraft, error)
	AdvanceToSessions(ctx context.Context, scope draft.Scope) (*AdvanceResult, error)
	UpdateSession(ctx context.Context, scope draft.Scope, sessionID string, upd SessionUpdate) (*domain.RoutineDraft, error)
	ReorderSessions(ctx context.Context, scope draft.Scope, orderedIDs []string) (*domain.RoutineDraft, error)
	AdvanceToExercises(ctx context.Context, scope draft.Scope) (*AdvanceResult, error)
	SessionSelection(ctx context.Context, scope draft.Scope, sessionID string) ([]SelectionItem, error)
	ApplySelection(ctx context.Context, scope draft.Scope, sessionID string, choices []SelectionChoice) (*domain.RoutineDraft, error)
	AddEntry(ctx context.Context, scope draft.Scope, sessionID string, choice SelectionChoice) (*domain.RoutineDraft, error)
	RemoveEntry(ctx context.Context, scope draft.Scope, sessionID, entryID string) (*domain.RoutineDraft, error)
	MoveEntry(ctx context.Context, scope draft.Scope, sessionID, entryID string, up bool) (*domain.RoutineDraft, error)
	AddSet(ctx context.Context, scope draft.Scope, sessionID, entryID string) (*domain.RoutineDraft, error)
	RemoveSet(ctx context.Context, scope draft.Scope, sessionID, entryID string, setNumber int) (*domain.RoutineDraft, error)
	UpdateSet(ctx context.Context, scope draft.Scope, sessionID, entryID string, setNumber int, set domain.SetEntry) (*domain.RoutineDraft, error)
	ToggleDropset(ctx context.Context, scope draft.Scope, sessionID, entryID string, setNumber int) (*domain.RoutineDraft, error)
	Discard(ctx context.Context, scope draft.Scope) error
}

// authoringService implements the AuthoringService interface.
type authoringService struct {
	store       draft.Store
	catalog     CatalogService
	userRepo    repository.UserRepository
	routineRepo repository.RoutineRepository
	sessionRepo repository.RoutineSessionRepository
	entryRepo   repository.SessionExerciseRepository
	setRepo     repository.ExerciseSetRepository
}

// NewAuthoringService creates a new instance of authoringService.
func NewAuthoringService(
	store draft.Store,
	catalog CatalogService,
	userRepo repository.UserRepository,
	routineRepo repository.RoutineRepository,
	sessionRepo repository.RoutineSessionRepository,
	entryRepo repository.SessionExerciseRepository,
	setRepo repository.ExerciseSetRepository,
) AuthoringService {
	return &authoringService{
		store:       store,
		catalog:     catalog,
		userRepo:    userRepo,
		routineRepo: routineRepo,
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		setRepo:     setRepo,
	}
}

// StartOrResume returns the in-progress draft for the scope. When the draft
// store has nothing, it falls back to rehydrating a durable draft-status
// entity ("continue draft"); failing that, a fresh empty draft is returned.
// Load failures are never fatal to the workflow.
func (s *authoringService) StartOrResume(ctx context.Context, actor Actor, scope draft.Scope) (*domain.RoutineDraft, error) {
	d, err := s.store.Load(ctx, scope.Key())
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, draft.ErrNotFound) {
		// Treat a broken store read as "no draft found" rather than
		// blocking the coach.
		return domain.NewRoutineDraft(scope.StudentID), nil
	}

	d, err = s.rehydrate(ctx, actor, scope)
	if err == nil {
		if saveErr := s.store.Save(ctx, scope.Key(), d); saveErr == nil {
			return d, nil
		}
		return d, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return domain.NewRoutineDraft(scope.StudentID), nil
}

// rehydrate rebuilds a RoutineDraft from the durable tree of a draft-status
// routine or template. Durable ids are replaced by fresh draft-local ids;
// the mapping is only needed during reconstruction.
func (s *authoringService) rehydrate(ctx context.Context, actor Actor, scope draft.Scope) (*domain.RoutineDraft, error) {
	owner, err := resolveOwner(ctx, s.userRepo, actor, scope)
	if err != nil {
		return nil, err
	}
	routine, err := s.routineRepo.FindDraft(ctx, owner, scope.StudentID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.GetByRoutineID(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entryRepo.GetByRoutineID(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	sets, err := s.setRepo.GetByRoutineID(ctx, routine.ID)
	if err != nil {
		return nil, err
	}

	d := domain.NewRoutineDraft(scope.StudentID)
	d.DraftID = &routine.ID
	d.Configuration = domain.RoutineConfiguration{
		Name:            routine.Name,
		Objective:       routine.Objective,
		Difficulty:      routine.Difficulty,
		GenderTarget:    routine.GenderTarget,
		DurationWeeks:   routine.DurationWeeks,
		SessionsPerWeek: routine.SessionsPerWeek,
		StartDate:       routine.StartDate,
		Notes:           routine.Notes,
	}

	sessionLocal := make(map[primitive.ObjectID]string, len(sessions))
	for _, row := range sessions {
		local := uuid.NewString()
		sessionLocal[row.ID] = local
		groups := row.MuscleGroups
		if groups == nil {
			groups = []string{}
		}
		d.Sessions = append(d.Sessions, domain.SessionTemplate{
			ID:           local,
			Name:         row.Name,
			MuscleGroups: groups,
			Order:        row.Order,
			Notes:        row.Notes,
		})
	}

	setsByEntry := make(map[primitive.ObjectID][]domain.SetEntry)
	for _, row := range sets {
		setsByEntry[row.SessionExerciseID] = append(setsByEntry[row.SessionExerciseID], domain.SetEntry{
			SetNumber:    row.SetNumber,
			Reps:         row.Reps,
			Load:         row.Load,
			SecondReps:   row.SecondReps,
			SecondLoad:   row.SecondLoad,
			HasDropset:   row.HasDropset,
			DropsetLoad:  row.DropsetLoad,
			RestAfterSet: row.RestAfterSet,
		})
	}

	for _, row := range entries {
		localSession, ok := sessionLocal[row.SessionID]
		if !ok {
			continue
		}
		d.ExercisesBySession[localSession] = append(d.ExercisesBySession[localSession], domain.ExerciseEntry{
			ID:               uuid.NewString(),
			Kind:             row.Kind,
			ExerciseID:       row.ExerciseID,
			SecondExerciseID: row.SecondExerciseID,
			RestAfterEntry:   row.RestAfterEntry,
			Sets:             setsByEntry[row.ID],
		})
	}

	d.AppliedMuscleGroups = workflow.AppliedSnapshot(d.Sessions)
	switch {
	case len(d.Sessions) == 0:
		d.Stage = domain.StageConfiguration
	case workflow.AllSessionsComplete(d.Sessions):
		d.Stage = domain.StageExercises
	default:
		d.Stage = domain.StageSessions
	}
	return d, nil
}

// SyncConfiguration writes the (possibly incomplete) configuration into the
// draft and saves eagerly, so a transient navigation never loses edits.
// Validation happens on advance, not here.
func (s *authoringService) SyncConfiguration(ctx context.Context, scope draft.Scope, cfg domain.RoutineConfiguration) (*domain.RoutineDraft, error) {
	d, err := s.store.Load(ctx, scope.Key())
	if err != nil {
		if !errors.Is(err, draft.ErrNotFound) {
			return nil, err
		}
		d = domain.NewRoutineDraft(scope.StudentID)
	}
	d.Configuration = cfg
	if err := s.store.Save(ctx, scope.Key(), d); err != nil {
		return nil, err
	}
	return d, nil
}

// AdvanceToSessions validates the configuration and enters the Session
// Stage, reconciling the session list against the configured frequency.
func (s *authoringService) AdvanceToSessions(ctx context.Context, scope draft.Scope) (*AdvanceResult, error) {
	d, err := s.loadDraft(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateConfiguration(d.Configuration, scope.IsTemplate()); err != nil {
		return nil, err
	}

	sessions, exercises, notices := workflow.ReconcileSessionCount(d.Configuration, d.Sessions, d.ExercisesBySession)
	d.Sessions = sessions
	d.ExercisesBySession = exercises
	d.Stage = domain.StageSessions

	if err := s.store.Save(ctx, scope.Key(), d); err != nil {
		return nil, err
	}
	return &AdvanceResult{Draft: d, Notices: notices}, nil
}

// UpdateSession edits one session template's name, notes or muscle groups.
func (s *authoringService) UpdateSession(ctx context.Context, scope draft.Scope, sessionID string, upd SessionUpdate) (*domain.RoutineDraft, error) {
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		session := d.SessionByID(sessionID)
		if session == nil {
			return ErrSessionNotFound
		}
		if upd.Name != nil {
			session.Name = *upd.Name
		}
		if upd.Notes != nil {
			session.Notes = *upd.Notes
		}
		if upd.MuscleGroups != nil {
			groups := *upd.MuscleGroups
			if groups == nil {
				groups = []string{}
			}
			session.MuscleGroups = groups
		}
		return nil
	})
}

// ReorderSessions rearranges the session list; order numbers and generated
// letter names follow the new positions.
func (s *authoringService) ReorderSessions(ctx context.Context, scope draft.Scope, orderedIDs []string) (*domain.RoutineDraft, error) {
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		sessions, err := workflow.ReorderSessions(d.Sessions, orderedIDs)
		if err != nil {
			return ErrSessionNotFound
		}
		d.Sessions = sessions
		return nil
	})
}

// AdvanceToExercises enters the Exercise Stage. All sessions must have at
// least one muscle group; the muscle-group cascade then filters entries of
// sessions whose groups changed since the last advance.
func (s *authoringService) AdvanceToExercises(ctx context.Context, scope draft.Scope) (*AdvanceResult, error) {
	d, err := s.loadDraft(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !workflow.AllSessionsComplete(d.Sessions) {
		return nil, ErrSessionsIncomplete
	}

	lookup, err := s.muscleGroupLookup(ctx, d)
	if err != nil {
		return nil, err
	}
	exercises, notices := workflow.ReconcileMuscleGroups(d.AppliedMuscleGroups, d.Sessions, d.ExercisesBySession, lookup)
	d.ExercisesBySession = exercises
	d.AppliedMuscleGroups = workflow.AppliedSnapshot(d.Sessions)
	d.Stage = domain.StageExercises

	if err := s.store.Save(ctx, scope.Key(), d); err != nil {
		return nil, err
	}
	return &AdvanceResult{Draft: d, Notices: notices}, nil
}

// muscleGroupLookup snapshots the catalog muscle groups for every exercise
// the draft references. The cascade treats this as a stable lookup.
func (s *authoringService) muscleGroupLookup(ctx context.Context, d *domain.RoutineDraft) (workflow.MuscleGroupLookup, error) {
	resolved, err := s.catalog.Resolve(ctx, d.ReferencedExerciseIDs())
	if err != nil {
		return nil, err
	}
	return func(id primitive.ObjectID) (string, bool) {
		info, ok := resolved[id]
		if !ok {
			return "", false
		}
		return info.MuscleGroup, true
	}, nil
}

// SessionSelection reconstructs the picker state for a session: the entries
// it already has, with catalog references resolved to full records so the
// coach edits rather than re-creates. Unresolved references come back with
// placeholder attributes.
func (s *authoringService) SessionSelection(ctx context.Context, scope draft.Scope, sessionID string) ([]SelectionItem, error) {
	d, err := s.loadDraft(ctx, scope)
	if err != nil {
		return nil, err
	}
	if d.SessionByID(sessionID) == nil {
		return nil, ErrSessionNotFound
	}

	entries := d.ExercisesBySession[sessionID]
	var ids []primitive.ObjectID
	for i := range entries {
		ids = append(ids, entries[i].ExerciseIDs()...)
	}
	resolved, err := s.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]SelectionItem, 0, len(entries))
	for i := range entries {
		item := SelectionItem{EntryID: entries[i].ID, Kind: entries[i].Kind}
		for _, id := range entries[i].ExerciseIDs() {
			se := SelectionExercise{ID: id, Name: "Unknown exercise"}
			if info, ok := resolved[id]; ok {
				se.Name = info.Name
				se.MuscleGroup = info.MuscleGroup
				se.Resolved = true
			}
			item.Exercises = append(item.Exercises, se)
		}
		items = append(items, item)
	}
	return items, nil
}

// ApplySelection replaces a session's entry list with the picker selection,
// preserving set/rest configuration of entries whose identity (same
// exercise, or same unordered pair) is already present.
func (s *authoringService) ApplySelection(ctx context.Context, scope draft.Scope, sessionID string, choices []SelectionChoice) (*domain.RoutineDraft, error) {
	selection := make([]domain.ExerciseEntry, 0, len(choices))
	for _, c := range choices {
		entry, err := buildEntry(c)
		if err != nil {
			return nil, err
		}
		selection = append(selection, entry)
	}
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		if d.SessionByID(sessionID) == nil {
			return ErrSessionNotFound
		}
		merged := workflow.MergeSelection(d.ExercisesBySession[sessionID], selection)
		if len(merged) == 0 {
			delete(d.ExercisesBySession, sessionID)
		} else {
			d.ExercisesBySession[sessionID] = merged
		}
		return nil
	})
}

// AddEntry appends one entry (simple or paired) to a session.
func (s *authoringService) AddEntry(ctx context.Context, scope draft.Scope, sessionID string, choice SelectionChoice) (*domain.RoutineDraft, error) {
	entry, err := buildEntry(choice)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		if d.SessionByID(sessionID) == nil {
			return ErrSessionNotFound
		}
		d.ExercisesBySession[sessionID] = append(d.ExercisesBySession[sessionID], entry)
		return nil
	})
}

func buildEntry(c SelectionChoice) (domain.ExerciseEntry, error) {
	if c.Kind == domain.EntryPaired {
		if c.SecondExerciseID == nil {
			return domain.ExerciseEntry{}, workflow.ErrPairedSameExercise
		}
		return workflow.NewPairedEntry(c.ExerciseID, *c.SecondExerciseID)
	}
	return workflow.NewSimpleEntry(c.ExerciseID), nil
}

// RemoveEntry deletes one entry from a session.
func (s *authoringService) RemoveEntry(ctx context.Context, scope draft.Scope, sessionID, entryID string) (*domain.RoutineDraft, error) {
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		entries, err := workflow.RemoveEntry(d.ExercisesBySession[sessionID], entryID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			delete(d.ExercisesBySession, sessionID)
		} else {
			d.ExercisesBySession[sessionID] = entries
		}
		return nil
	})
}

// MoveEntry swaps an entry with its neighbor within the session.
func (s *authoringService) MoveEntry(ctx context.Context, scope draft.Scope, sessionID, entryID string, up bool) (*domain.RoutineDraft, error) {
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		entries, err := workflow.MoveEntry(d.ExercisesBySession[sessionID], entryID, up)
		if err != nil {
			return err
		}
		d.ExercisesBySession[sessionID] = entries
		return nil
	})
}

// AddSet appends a blank set to an entry.
func (s *authoringService) AddSet(ctx context.Context, scope draft.Scope, sessionID, entryID string) (*domain.RoutineDraft, error) {
	return s.mutateEntry(ctx, scope, sessionID, entryID, func(entry *domain.ExerciseEntry) error {
		workflow.AddSet(entry)
		return nil
	})
}

// RemoveSet deletes a set from an entry (the last one cannot be removed).
func (s *authoringService) RemoveSet(ctx context.Context, scope draft.Scope, sessionID, entryID string, setNumber int) (*domain.RoutineDraft, error) {
	return s.mutateEntry(ctx, scope, sessionID, entryID, func(entry *domain.ExerciseEntry) error {
		return workflow.RemoveSet(entry, setNumber)
	})
}

// UpdateSet replaces a set's reps/load/rest fields.
func (s *authoringService) UpdateSet(ctx context.Context, scope draft.Scope, sessionID, entryID string, setNumber int, set domain.SetEntry) (*domain.RoutineDraft, error) {
	return s.mutateEntry(ctx, scope, sessionID, entryID, func(entry *domain.ExerciseEntry) error {
		return workflow.UpdateSet(entry, setNumber, set)
	})
}

// ToggleDropset flips the dropset flag on a set.
func (s *authoringService) ToggleDropset(ctx context.Context, scope draft.Scope, sessionID, entryID string, setNumber int) (*domain.RoutineDraft, error) {
	return s.mutateEntry(ctx, scope, sessionID, entryID, func(entry *domain.ExerciseEntry) error {
		return workflow.ToggleDropset(entry, setNumber)
	})
}

// Discard clears the authoring session. Durable rows, if any, are left
// untouched.
func (s *authoringService) Discard(ctx context.Context, scope draft.Scope) error {
	return s.store.Clear(ctx, scope.Key())
}

// --- helpers ---

func (s *authoringService) loadDraft(ctx context.Context, scope draft.Scope) (*domain.RoutineDraft, error) {
	d, err := s.store.Load(ctx, scope.Key())
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return nil, ErrNoActiveDraft
		}
		return nil, err
	}
	return d, nil
}

// mutate loads the draft, applies fn and saves the result.
func (s *authoringService) mutate(ctx context.Context, scope draft.Scope, fn func(d *domain.RoutineDraft) error) (*domain.RoutineDraft, error) {
	d, err := s.loadDraft(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, scope.Key(), d); err != nil {
		return nil, err
	}
	return d, nil
}

// mutateEntry is mutate scoped down to one exercise entry.
func (s *authoringService) mutateEntry(ctx context.Context, scope draft.Scope, sessionID, entryID string, fn func(entry *domain.ExerciseEntry) error) (*domain.RoutineDraft, error) {
	return s.mutate(ctx, scope, func(d *domain.RoutineDraft) error {
		entries := d.ExercisesBySession[sessionID]
		for i := range entries {
			if entries[i].ID == entryID {
				return fn(&entries[i])
			}
		}
		return workflow.ErrUnknownEntry
	})
}
