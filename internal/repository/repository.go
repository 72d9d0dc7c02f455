package repository

import (
	"coachdesk/training-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TransactionRunner executes fn inside a single multi-document transaction.
// Every repository call made with the callback's context joins the
// transaction; if fn returns an error nothing is applied. The commit engine
// depends on this so a failed tree replacement can never leave a root entity
// with partially missing children.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddStudentIDToCoach(ctx context.Context, coachID, studentID primitive.ObjectID) error
	SetCoachForStudent(ctx context.Context, studentID, coachID primitive.ObjectID) error
	GetStudentsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
}

// ExerciseRepository defines the interface for interacting with the exercise
// catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error // Ensure coach owns the exercise
}

// RoutineRepository manages the root entity (routines and templates).
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RoutineStatus) error
	GetByStudentAndCoachID(ctx context.Context, studentID, coachID primitive.ObjectID) ([]domain.Routine, error)
	GetTemplatesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Routine, error)
	// FindDraft locates the draft-status entity for a scope, if any: a
	// routine draft for (coach, student) or a template draft for the coach.
	FindDraft(ctx context.Context, coachID primitive.ObjectID, studentID *primitive.ObjectID) (*domain.Routine, error)
}

// RoutineSessionRepository manages the durable session rows under a routine.
type RoutineSessionRepository interface {
	InsertMany(ctx context.Context, sessions []domain.RoutineSession) error
	GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineSession, error)
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
}

// SessionExerciseRepository manages the exercise-entry rows under sessions.
type SessionExerciseRepository interface {
	InsertMany(ctx context.Context, entries []domain.SessionExercise) error
	GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.SessionExercise, error)
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
}

// ExerciseSetRepository manages the set rows under exercise entries.
type ExerciseSetRepository interface {
	InsertMany(ctx context.Context, sets []domain.ExerciseSet) error
	GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.ExerciseSet, error)
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
}

// ExecutionSessionRepository manages the generated schedule rows consumed by
// the training-execution subsystem.
type ExecutionSessionRepository interface {
	InsertMany(ctx context.Context, sessions []domain.ExecutionSession) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExecutionSession, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.ExecutionSession, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExecutionStatus) error
	DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error
}
