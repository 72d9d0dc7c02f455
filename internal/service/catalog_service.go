package service

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/repository"
	"coachdesk/training-app/internal/storage"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to this exercise")
	ErrValidationFailed     = errors.New("validation failed")
)

// CatalogService manages the exercise catalog and exposes the read-only
// lookup the authoring workflow depends on. Resolve tolerates unresolved
// ids: missing exercises are simply absent from the result map.
type CatalogService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, description, muscleGroup, executionTechnic, applicability, difficulty, demoVideoKey string) (*domain.Exercise, error)
	GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, coachID primitive.ObjectID, exercise *domain.Exercise) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error

	Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.CatalogInfo, error)
	DemoVideoURL(ctx context.Context, exercise *domain.Exercise) string
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	exerciseRepo repository.ExerciseRepository
	media        storage.MediaStorage // Optional; nil when no object storage is configured
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(exerciseRepo repository.ExerciseRepository, media storage.MediaStorage) CatalogService {
	return &catalogService{
		exerciseRepo: exerciseRepo,
		media:        media,
	}
}

// CreateExercise validates and creates a catalog exercise for the coach.
func (s *catalogService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, description, muscleGroup, executionTechnic, applicability, difficulty, demoVideoKey string) (*domain.Exercise, error) {
	if coachID == primitive.NilObjectID || name == "" {
		return nil, ErrValidationFailed
	}

	exercise := &domain.Exercise{
		CoachID:          coachID,
		Name:             name,
		Description:      description,
		MuscleGroup:      muscleGroup,
		ExecutionTechnic: executionTechnic,
		Applicability:    applicability,
		Difficulty:       difficulty,
		DemoVideoKey:     demoVideoKey,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetExercisesByCoach retrieves the coach's catalog.
func (s *catalogService) GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.exerciseRepo.GetByCoachID(ctx, coachID)
}

// UpdateExercise updates an exercise after verifying ownership.
func (s *catalogService) UpdateExercise(ctx context.Context, coachID primitive.ObjectID, exercise *domain.Exercise) (*domain.Exercise, error) {
	existing, err := s.exerciseRepo.GetByID(ctx, exercise.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	exercise.CoachID = coachID
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exercise.ID)
}

// DeleteExercise removes an exercise and its demo video object, if any.
func (s *catalogService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	if existing.CoachID != coachID {
		return ErrExerciseAccessDenied
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID, coachID); err != nil {
		return err
	}

	if s.media != nil && existing.DemoVideoKey != "" {
		// Best effort; an orphaned object is not worth failing the delete.
		_ = s.media.DeleteObject(ctx, existing.DemoVideoKey)
	}
	return nil
}

// Resolve maps exercise ids to their display attributes. Ids that no longer
// exist in the catalog are left out of the map; callers render placeholders
// for those rather than failing.
func (s *catalogService) Resolve(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.CatalogInfo, error) {
	resolved := make(map[primitive.ObjectID]domain.CatalogInfo, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		resolved[exercises[i].ID] = domain.CatalogInfo{
			Name:        exercises[i].Name,
			MuscleGroup: exercises[i].MuscleGroup,
		}
	}
	return resolved, nil
}

// DemoVideoURL resolves the exercise's demo video key to a presigned URL.
// Returns "" when there is no video or no storage configured.
func (s *catalogService) DemoVideoURL(ctx context.Context, exercise *domain.Exercise) string {
	if s.media == nil || exercise == nil || exercise.DemoVideoKey == "" {
		return ""
	}
	url, err := s.media.GeneratePresignedDownloadURL(ctx, exercise.DemoVideoKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return ""
	}
	return url
}
