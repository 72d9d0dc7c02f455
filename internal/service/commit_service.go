package service

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/draft"
	"coachdesk/training-app/internal/repository"
	"coachdesk/training-app/internal/workflow"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrStudentNotManaged = errors.New("student is not managed by this coach")
	ErrStudentHasNoCoach = errors.New("student has no assigned coach")
	ErrActorNotAllowed   = errors.New("actor role cannot author routines")
	ErrRoutineIncomplete = errors.New("every session needs at least one exercise before finalizing")
)

// CommitService turns an in-progress draft into durable rows. Both
// operations replace the entire entity tree atomically: the root is
// upserted, all child rows are deleted and re-inserted from the draft inside
// one transaction. Draft-local ids exist only during authoring; durable ids
// are generated here.
type CommitService interface {
	// SaveAsDraft persists the draft tree with draft status so authoring can
	// resume later, even from another device.
	SaveAsDraft(ctx context.Context, actor Actor, scope draft.Scope) (*domain.Routine, error)
	// Finalize persists the tree with active (or published template) status.
	// For routines it also regenerates the execution-session schedule.
	Finalize(ctx context.Context, actor Actor, scope draft.Scope) (*domain.Routine, error)
}

// commitService implements the CommitService interface.
type commitService struct {
	store       draft.Store
	tx          repository.TransactionRunner
	userRepo    repository.UserRepository
	routineRepo repository.RoutineRepository
	sessionRepo repository.RoutineSessionRepository
	entryRepo   repository.SessionExerciseRepository
	setRepo     repository.ExerciseSetRepository
	execRepo    repository.ExecutionSessionRepository
}

// NewCommitService creates a new instance of commitService.
func NewCommitService(
	store draft.Store,
	tx repository.TransactionRunner,
	userRepo repository.UserRepository,
	routineRepo repository.RoutineRepository,
	sessionRepo repository.RoutineSessionRepository,
	entryRepo repository.SessionExerciseRepository,
	setRepo repository.ExerciseSetRepository,
	execRepo repository.ExecutionSessionRepository,
) CommitService {
	return &commitService{
		store:       store,
		tx:          tx,
		userRepo:    userRepo,
		routineRepo: routineRepo,
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		setRepo:     setRepo,
		execRepo:    execRepo,
	}
}

// resolveOwner determines the coach that will own the committed entity.
// Coaches own their own work and must actually manage the target student.
// Admins author on behalf of the student's assigned coach, never as
// themselves, so the resulting rows are indistinguishable from coach-authored
// ones.
func resolveOwner(ctx context.Context, userRepo repository.UserRepository, actor Actor, scope draft.Scope) (primitive.ObjectID, error) {
	if scope.IsTemplate() {
		if actor.Role == domain.RoleStudent {
			return primitive.NilObjectID, ErrActorNotAllowed
		}
		return actor.ID, nil
	}

	student, err := userRepo.GetByID(ctx, *scope.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrStudentNotFound
		}
		return primitive.NilObjectID, err
	}
	if !student.IsStudent() {
		return primitive.NilObjectID, ErrStudentNotFound
	}

	switch actor.Role {
	case domain.RoleCoach:
		if student.CoachID == nil || *student.CoachID != actor.ID {
			return primitive.NilObjectID, ErrStudentNotManaged
		}
		return actor.ID, nil
	case domain.RoleAdmin:
		if student.CoachID == nil {
			return primitive.NilObjectID, ErrStudentHasNoCoach
		}
		return *student.CoachID, nil
	default:
		return primitive.NilObjectID, ErrActorNotAllowed
	}
}

// SaveAsDraft commits the tree with draft status. The authoring session is
// cleared only after the transaction succeeds; on failure the draft remains
// loaded so no work is lost.
func (s *commitService) SaveAsDraft(ctx context.Context, actor Actor, scope draft.Scope) (*domain.Routine, error) {
	return s.commit(ctx, actor, scope, false)
}

// Finalize commits the tree with its live status. Requires a structurally
// complete draft: valid configuration, complete sessions, every session with
// at least one exercise.
func (s *commitService) Finalize(ctx context.Context, actor Actor, scope draft.Scope) (*domain.Routine, error) {
	return s.commit(ctx, actor, scope, true)
}

func (s *commitService) commit(ctx context.Context, actor Actor, scope draft.Scope, finalize bool) (*domain.Routine, error) {
	d, err := s.store.Load(ctx, scope.Key())
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return nil, ErrNoActiveDraft
		}
		return nil, err
	}

	if err := workflow.ValidateConfiguration(d.Configuration, scope.IsTemplate()); err != nil {
		return nil, err
	}
	if finalize {
		if !workflow.AllSessionsComplete(d.Sessions) {
			return nil, ErrSessionsIncomplete
		}
		if !workflow.AllSessionsHaveExercises(d.Sessions, d.ExercisesBySession) {
			return nil, ErrRoutineIncomplete
		}
	}

	owner, err := resolveOwner(ctx, s.userRepo, actor, scope)
	if err != nil {
		return nil, err
	}

	routine, err := s.rootEntity(ctx, d, owner, scope, finalize)
	if err != nil {
		return nil, err
	}

	sessions, entries, sets := buildTree(routine.ID, d)

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if d.DraftID != nil {
			if err := s.routineRepo.Update(txCtx, routine); err != nil {
				return err
			}
		} else {
			// The id was generated in rootEntity so the child rows could be
			// built up front; Create keeps a pre-set id.
			if _, err := s.routineRepo.Create(txCtx, routine); err != nil {
				return err
			}
		}

		if err := s.setRepo.DeleteByRoutineID(txCtx, routine.ID); err != nil {
			return err
		}
		if err := s.entryRepo.DeleteByRoutineID(txCtx, routine.ID); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByRoutineID(txCtx, routine.ID); err != nil {
			return err
		}

		if len(sessions) > 0 {
			if err := s.sessionRepo.InsertMany(txCtx, sessions); err != nil {
				return err
			}
		}
		if len(entries) > 0 {
			if err := s.entryRepo.InsertMany(txCtx, entries); err != nil {
				return err
			}
		}
		if len(sets) > 0 {
			if err := s.setRepo.InsertMany(txCtx, sets); err != nil {
				return err
			}
		}

		if finalize && !scope.IsTemplate() {
			if err := s.execRepo.DeleteByRoutineID(txCtx, routine.ID); err != nil {
				return err
			}
			schedule := buildSchedule(routine, d, sessions)
			if len(schedule) > 0 {
				if err := s.execRepo.InsertMany(txCtx, schedule); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx, scope.Key()); err != nil {
		// The durable rows are committed; a stale authoring session will be
		// superseded on the next start-or-resume.
		log.Printf("WARN: failed to clear authoring session for key %s: %v", scope.Key(), err)
	}
	return routine, nil
}

// rootEntity builds the durable root from the draft. Re-committing an
// existing draft entity keeps its id so links held elsewhere stay valid.
func (s *commitService) rootEntity(ctx context.Context, d *domain.RoutineDraft, owner primitive.ObjectID, scope draft.Scope, finalize bool) (*domain.Routine, error) {
	now := time.Now().UTC()
	routine := &domain.Routine{
		CoachID:         owner,
		StudentID:       scope.StudentID,
		Kind:            domain.KindRoutine,
		Name:            d.Configuration.Name,
		Objective:       d.Configuration.Objective,
		Difficulty:      d.Configuration.Difficulty,
		GenderTarget:    d.Configuration.GenderTarget,
		DurationWeeks:   d.Configuration.DurationWeeks,
		SessionsPerWeek: d.Configuration.SessionsPerWeek,
		StartDate:       d.Configuration.StartDate,
		Notes:           d.Configuration.Notes,
		UpdatedAt:       now,
	}
	if scope.IsTemplate() {
		routine.Kind = domain.KindTemplate
		routine.Status = domain.TemplateStatusDraft
		if finalize {
			routine.Status = domain.TemplateStatusPublished
		}
	} else {
		routine.Status = domain.RoutineStatusDraft
		if finalize {
			routine.Status = domain.RoutineStatusActive
		}
	}

	if d.DraftID != nil {
		existing, err := s.routineRepo.GetByID(ctx, *d.DraftID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// The durable draft vanished; fall through to a fresh insert.
				d.DraftID = nil
			} else {
				return nil, err
			}
		} else {
			routine.ID = existing.ID
			routine.CreatedAt = existing.CreatedAt
		}
	}
	if routine.ID.IsZero() {
		routine.ID = primitive.NewObjectID()
		routine.CreatedAt = now
	}
	return routine, nil
}

// buildTree maps the draft's sessions, entries and sets to durable rows with
// freshly generated ids, resolving draft-local session and entry ids to the
// durable ids of their parents.
func buildTree(routineID primitive.ObjectID, d *domain.RoutineDraft) ([]domain.RoutineSession, []domain.SessionExercise, []domain.ExerciseSet) {
	var (
		sessions []domain.RoutineSession
		entries  []domain.SessionExercise
		sets     []domain.ExerciseSet
	)

	for i, st := range d.Sessions {
		sessionID := primitive.NewObjectID()
		groups := st.MuscleGroups
		if groups == nil {
			groups = []string{}
		}
		sessions = append(sessions, domain.RoutineSession{
			ID:           sessionID,
			RoutineID:    routineID,
			Name:         st.Name,
			MuscleGroups: groups,
			Order:        i + 1,
			Notes:        st.Notes,
		})

		for j, e := range d.ExercisesBySession[st.ID] {
			entryID := primitive.NewObjectID()
			entries = append(entries, domain.SessionExercise{
				ID:               entryID,
				RoutineID:        routineID,
				SessionID:        sessionID,
				Kind:             e.Kind,
				ExerciseID:       e.ExerciseID,
				SecondExerciseID: e.SecondExerciseID,
				RestAfterEntry:   e.RestAfterEntry,
				Order:            j + 1,
			})

			for _, set := range e.Sets {
				sets = append(sets, domain.ExerciseSet{
					ID:                primitive.NewObjectID(),
					RoutineID:         routineID,
					SessionExerciseID: entryID,
					SetNumber:         set.SetNumber,
					Reps:              set.Reps,
					Load:              set.Load,
					SecondReps:        set.SecondReps,
					SecondLoad:        set.SecondLoad,
					HasDropset:        set.HasDropset,
					DropsetLoad:       set.DropsetLoad,
					RestAfterSet:      set.RestAfterSet,
				})
			}
		}
	}
	return sessions, entries, sets
}

// buildSchedule expands the routine's weeks-by-frequency plan into execution
// rows, cycling the committed sessions round-robin.
func buildSchedule(routine *domain.Routine, d *domain.RoutineDraft, sessions []domain.RoutineSession) []domain.ExecutionSession {
	if routine.StudentID == nil || len(sessions) == 0 {
		return nil
	}

	durableByLocal := make(map[string]primitive.ObjectID, len(sessions))
	for i, st := range d.Sessions {
		if i < len(sessions) {
			durableByLocal[st.ID] = sessions[i].ID
		}
	}

	plan := workflow.PlanSchedule(d.Configuration, d.Sessions)
	now := time.Now().UTC()
	out := make([]domain.ExecutionSession, 0, len(plan))
	for i, localID := range plan {
		out = append(out, domain.ExecutionSession{
			ID:        primitive.NewObjectID(),
			RoutineID: routine.ID,
			StudentID: *routine.StudentID,
			SessionID: durableByLocal[localID],
			Order:     i + 1,
			Status:    domain.ExecutionStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}
