// internal/repository/mongo/execution_session_repo.go
package mongo

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const executionSessionCollectionName = "execution_sessions"

// mongoExecutionSessionRepository implements repository.ExecutionSessionRepository
type mongoExecutionSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoExecutionSessionRepository creates a new execution session repository.
func NewMongoExecutionSessionRepository(db *mongo.Database) repository.ExecutionSessionRepository {
	return &mongoExecutionSessionRepository{
		collection: db.Collection(executionSessionCollectionName),
	}
}

// InsertMany inserts the generated schedule rows for a finalized routine.
func (r *mongoExecutionSessionRepository) InsertMany(ctx context.Context, sessions []domain.ExecutionSession) error {
	if len(sessions) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(sessions))
	for i := range sessions {
		sessions[i].CreatedAt = now
		sessions[i].UpdatedAt = now
		docs[i] = sessions[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByID retrieves a single execution session.
func (r *mongoExecutionSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExecutionSession, error) {
	var session domain.ExecutionSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByStudentID retrieves the student's schedule across routines, in
// schedule order.
func (r *mongoExecutionSessionRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.ExecutionSession, error) {
	var sessions []domain.ExecutionSession
	findOptions := options.Find().SetSort(bson.D{{Key: "routineId", Value: 1}, {Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateStatus records completion/skipping by the execution subsystem.
func (r *mongoExecutionSessionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExecutionStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByRoutineID removes the previously generated schedule for a routine.
// Used when an existing draft is re-finalized.
func (r *mongoExecutionSessionRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	return err
}

// EnsureExecutionSessionIndexes creates necessary indexes. Call during startup.
func EnsureExecutionSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
