// internal/repository/mongo/routine_repo.go
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

const routineCollectionName = "routines"

// mongoRoutineRepository implements repository.RoutineRepository
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new routine repository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(routineCollectionName),
	}
}

// Create inserts a new root entity (routine or template).
func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.CoachID == primitive.NilObjectID || routine.Name == "" {
		return primitive.NilObjectID, errors.New("routine requires coachId and name")
	}
	if routine.Kind == domain.KindRoutine && routine.StudentID == nil {
		return primitive.NilObjectID, errors.New("routine requires studentId")
	}
	if routine.ID == primitive.NilObjectID {
		routine.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single routine by its ID.
func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// Update replaces the mutable root fields. CoachID, StudentID, Kind and
// CreatedAt are never changed by an update.
func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}
	filter := bson.M{"_id": routine.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":            routine.Name,
			"objective":       routine.Objective,
			"difficulty":      routine.Difficulty,
			"genderTarget":    routine.GenderTarget,
			"durationWeeks":   routine.DurationWeeks,
			"sessionsPerWeek": routine.SessionsPerWeek,
			"startDate":       routine.StartDate,
			"notes":           routine.Notes,
			"status":          routine.Status,
			"updatedAt":       time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStatus sets only the lifecycle status.
func (r *mongoRoutineRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RoutineStatus) error {
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

// GetByStudentAndCoachID retrieves all routines for a student created by the
// coach, newest first.
func (r *mongoRoutineRepository) GetByStudentAndCoachID(ctx context.Context, studentID, coachID primitive.ObjectID) ([]domain.Routine, error) {
	var routines []domain.Routine
	filter := bson.M{
		"studentId": studentID,
		"coachId":   coachID,
		"kind":      domain.KindRoutine,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

// GetTemplatesByCoachID retrieves all templates owned by the coach.
func (r *mongoRoutineRepository) GetTemplatesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Routine, error) {
	var templates []domain.Routine
	filter := bson.M{"coachId": coachID, "kind": domain.KindTemplate}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// FindDraft locates the draft-status entity for a scope: the newest routine
// draft for (coach, student), or the coach's template draft when studentID
// is nil.
func (r *mongoRoutineRepository) FindDraft(ctx context.Context, coachID primitive.ObjectID, studentID *primitive.ObjectID) (*domain.Routine, error) {
	filter := bson.M{"coachId": coachID}
	if studentID != nil {
		filter["studentId"] = *studentID
		filter["kind"] = domain.KindRoutine
		filter["status"] = domain.RoutineStatusDraft
	} else {
		filter["kind"] = domain.KindTemplate
		filter["status"] = domain.TemplateStatusDraft
	}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	var routine domain.Routine
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// EnsureRoutineIndexes creates necessary indexes. Call during startup.
func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "kind", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
