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
	ErrExecutionNotFound      = errors.New("execution session not found")
	ErrExecutionAccessDenied  = errors.New("access denied to this execution session")
	ErrInvalidExecutionStatus = errors.New("execution status must be completed or skipped")
)

// StudentService covers the student-facing side of the schedule produced by
// routine finalization.
type StudentService interface {
	GetSchedule(ctx context.Context, studentID primitive.ObjectID) ([]domain.ExecutionSession, error)
	UpdateExecutionStatus(ctx context.Context, studentID, executionID primitive.ObjectID, status domain.ExecutionStatus) (*domain.ExecutionSession, error)
}

// studentService implements the StudentService interface.
type studentService struct {
	execRepo repository.ExecutionSessionRepository
}

// NewStudentService creates a new instance of studentService.
func NewStudentService(execRepo repository.ExecutionSessionRepository) StudentService {
	return &studentService{execRepo: execRepo}
}

// GetSchedule returns the student's execution sessions in schedule order.
func (s *studentService) GetSchedule(ctx context.Context, studentID primitive.ObjectID) ([]domain.ExecutionSession, error) {
	return s.execRepo.GetByStudentID(ctx, studentID)
}

// UpdateExecutionStatus marks one scheduled session completed or skipped.
// Only the owning student may change it.
func (s *studentService) UpdateExecutionStatus(ctx context.Context, studentID, executionID primitive.ObjectID, status domain.ExecutionStatus) (*domain.ExecutionSession, error) {
	if status != domain.ExecutionStatusCompleted && status != domain.ExecutionStatusSkipped {
		return nil, ErrInvalidExecutionStatus
	}

	execution, err := s.execRepo.GetByID(ctx, executionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExecutionNotFound
		}
		return nil, err
	}
	if execution.StudentID != studentID {
		return nil, ErrExecutionAccessDenied
	}

	if err := s.execRepo.UpdateStatus(ctx, executionID, status); err != nil {
		return nil, err
	}
	execution.Status = status
	return execution, nil
}
