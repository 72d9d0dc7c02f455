package service

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotCoach          = errors.New("user performing action is not a coach")
	ErrTargetNotStudent      = errors.New("target user is not a student")
	ErrStudentAlreadyManaged = errors.New("student is already assigned to a coach")
	ErrRoutineNotFound       = errors.New("routine not found")
	ErrRoutineAccessDenied   = errors.New("access denied to this routine")
	ErrInvalidStatusChange   = errors.New("status change not allowed from the current status")
)

// EntryDetail is one exercise entry with its ordered sets.
type EntryDetail struct {
	Entry domain.SessionExercise `json:"entry"`
	Sets  []domain.ExerciseSet   `json:"sets"`
}

// SessionDetail is one session with its ordered entries.
type SessionDetail struct {
	Session domain.RoutineSession `json:"session"`
	Entries []EntryDetail         `json:"entries"`
}

// RoutineDetail is the fully loaded entity tree for read views.
type RoutineDetail struct {
	Routine  domain.Routine  `json:"routine"`
	Sessions []SessionDetail `json:"sessions"`
}

// CoachService covers the coach-facing roster and routine management
// operations outside the authoring workflow itself.
type CoachService interface {
	AddStudentByEmail(ctx context.Context, coachID primitive.ObjectID, studentEmail string) (*domain.User, error)
	GetManagedStudents(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	GetRoutinesForStudent(ctx context.Context, actor Actor, studentID primitive.ObjectID) ([]domain.Routine, error)
	GetTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.Routine, error)
	GetRoutineDetail(ctx context.Context, actor Actor, routineID primitive.ObjectID) (*RoutineDetail, error)
	UpdateRoutineStatus(ctx context.Context, actor Actor, routineID primitive.ObjectID, status domain.RoutineStatus) (*domain.Routine, error)
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo    repository.UserRepository
	routineRepo repository.RoutineRepository
	sessionRepo repository.RoutineSessionRepository
	entryRepo   repository.SessionExerciseRepository
	setRepo     repository.ExerciseSetRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(
	userRepo repository.UserRepository,
	routineRepo repository.RoutineRepository,
	sessionRepo repository.RoutineSessionRepository,
	entryRepo repository.SessionExerciseRepository,
	setRepo repository.ExerciseSetRepository,
) CoachService {
	return &coachService{
		userRepo:    userRepo,
		routineRepo: routineRepo,
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		setRepo:     setRepo,
	}
}

// AddStudentByEmail links an existing student account to the coach's roster.
func (s *coachService) AddStudentByEmail(ctx context.Context, coachID primitive.ObjectID, studentEmail string) (*domain.User, error) {
	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, ErrUserNotCoach
	}

	student, err := s.userRepo.GetByEmail(ctx, studentEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrTargetNotStudent
	}
	if student.CoachID != nil {
		return nil, ErrStudentAlreadyManaged
	}

	if err := s.userRepo.SetCoachForStudent(ctx, student.ID, coachID); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddStudentIDToCoach(ctx, coachID, student.ID); err != nil {
		return nil, err
	}

	student.CoachID = &coachID
	student.PasswordHash = ""
	return student, nil
}

// GetManagedStudents returns the coach's roster.
func (s *coachService) GetManagedStudents(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	students, err := s.userRepo.GetStudentsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	return students, nil
}

// GetRoutinesForStudent lists a student's routines, newest first. Coaches
// see their own; admins see the assigned coach's.
func (s *coachService) GetRoutinesForStudent(ctx context.Context, actor Actor, studentID primitive.ObjectID) ([]domain.Routine, error) {
	owner, err := s.ownerForStudent(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	return s.routineRepo.GetByStudentAndCoachID(ctx, studentID, owner)
}

// GetTemplates lists the coach's templates (draft and published).
func (s *coachService) GetTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.Routine, error) {
	return s.routineRepo.GetTemplatesByCoachID(ctx, coachID)
}

// GetRoutineDetail loads the full entity tree for one routine or template.
// Coaches must own it, students must be its target, admins may read any.
func (s *coachService) GetRoutineDetail(ctx context.Context, actor Actor, routineID primitive.ObjectID) (*RoutineDetail, error) {
	routine, err := s.loadAuthorized(ctx, actor, routineID)
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

	setsByEntry := make(map[primitive.ObjectID][]domain.ExerciseSet)
	for _, row := range sets {
		setsByEntry[row.SessionExerciseID] = append(setsByEntry[row.SessionExerciseID], row)
	}
	entriesBySession := make(map[primitive.ObjectID][]EntryDetail)
	for _, row := range entries {
		entriesBySession[row.SessionID] = append(entriesBySession[row.SessionID], EntryDetail{
			Entry: row,
			Sets:  setsByEntry[row.ID],
		})
	}

	detail := &RoutineDetail{Routine: *routine}
	for _, session := range sessions {
		detail.Sessions = append(detail.Sessions, SessionDetail{
			Session: session,
			Entries: entriesBySession[session.ID],
		})
	}
	return detail, nil
}

// routineTransitions is the allowed status graph for committed routines.
// Drafts only change through the authoring workflow.
var routineTransitions = map[domain.RoutineStatus][]domain.RoutineStatus{
	domain.RoutineStatusActive:  {domain.RoutineStatusBlocked, domain.RoutineStatusCancelled, domain.RoutineStatusCompleted},
	domain.RoutineStatusBlocked: {domain.RoutineStatusActive, domain.RoutineStatusCancelled},
}

// UpdateRoutineStatus applies a lifecycle transition to a committed routine.
func (s *coachService) UpdateRoutineStatus(ctx context.Context, actor Actor, routineID primitive.ObjectID, status domain.RoutineStatus) (*domain.Routine, error) {
	routine, err := s.loadAuthorized(ctx, actor, routineID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleStudent {
		return nil, ErrRoutineAccessDenied
	}

	allowed := false
	for _, next := range routineTransitions[routine.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusChange
	}

	if err := s.routineRepo.UpdateStatus(ctx, routineID, status); err != nil {
		return nil, err
	}
	routine.Status = status
	return routine, nil
}

// --- helpers ---

func (s *coachService) loadAuthorized(ctx context.Context, actor Actor, routineID primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return routine, nil
	case domain.RoleCoach:
		if routine.CoachID != actor.ID {
			return nil, ErrRoutineAccessDenied
		}
		return routine, nil
	case domain.RoleStudent:
		if routine.StudentID == nil || *routine.StudentID != actor.ID {
			return nil, ErrRoutineAccessDenied
		}
		return routine, nil
	default:
		return nil, ErrRoutineAccessDenied
	}
}

func (s *coachService) ownerForStudent(ctx context.Context, actor Actor, studentID primitive.ObjectID) (primitive.ObjectID, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
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
