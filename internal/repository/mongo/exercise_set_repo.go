// internal/repository/mongo/exercise_set_repo.go
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

const exerciseSetCollectionName = "exercise_sets"

// mongoExerciseSetRepository implements repository.ExerciseSetRepository
type mongoExerciseSetRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseSetRepository creates a new exercise set repository.
func NewMongoExerciseSetRepository(db *mongo.Database) repository.ExerciseSetRepository {
	return &mongoExerciseSetRepository{
		collection: db.Collection(exerciseSetCollectionName),
	}
}

// InsertMany inserts the set rows for a routine.
func (r *mongoExerciseSetRepository) InsertMany(ctx context.Context, sets []domain.ExerciseSet) error {
	if len(sets) == 0 {
		return nil
	}
	docs := make([]interface{}, len(sets))
	for i := range sets {
		docs[i] = sets[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByRoutineID retrieves all set rows for a routine, numbered within their
// entry.
func (r *mongoExerciseSetRepository) GetByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	var sets []domain.ExerciseSet
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionExerciseId", Value: 1}, {Key: "setNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"routineId": routineID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// DeleteByRoutineID removes every set row owned by the routine.
func (r *mongoExerciseSetRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	return err
}

// EnsureExerciseSetIndexes creates necessary indexes. Call during startup.
func EnsureExerciseSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "sessionExerciseId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
