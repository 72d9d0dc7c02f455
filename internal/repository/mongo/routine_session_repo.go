// internal/repository/mongo/routine_session_repo.go
package mongo

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const routineSessionCollectionName = "routine_sessions"

// mongoRoutineSessionRepository implements repository.RoutineSessionRepository
type mongoRoutineSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineSessionRepository creates a new routine session repository.
func NewMongoRoutineSessionRepository(db *mongo.Database) repository.RoutineSessionRepository {
	return &mongoRoutineSessionRepository{
		collection: db.Collection(routineSessionCollectionName),
	}
}

// InsertMany inserts the session rows for a routine. The commit engine
// assigns ObjectIDs up front so entry rows can reference them.
func (r *mongoRoutineSessionRepository) InsertMany(ctx context.Context, sessions []domain.RoutineSession) error {
	if len(sessions) == 0 {
		return nil
	}
	docs := make([]interface{}, len(sessions))
	for i := range sessions {
		docs[i] = sessions[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByRoutineID retrieves all session rows for a routine, in plan order.
func (r *mongoRoutineSessionRepository) GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineSession, error) {
	var sessions []domain.RoutineSession
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"routineId": routineID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteByRoutineID removes every session row owned by the routine.
func (r *mongoRoutineSessionRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	return err
}

// EnsureRoutineSessionIndexes creates necessary indexes. Call during startup.
func EnsureRoutineSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
