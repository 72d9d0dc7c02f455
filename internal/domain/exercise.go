// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the catalog.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"` // Coach who created/owns this exercise
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	MuscleGroup      string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`           // e.g. "Chest", "Legs", "Back"
	ExecutionTechnic string `bson:"executionTechnic,omitempty" json:"executionTechnic,omitempty"` // Detailed instructions
	Applicability    string `bson:"applicability,omitempty" json:"applicability,omitempty"`       // e.g. "Home", "Gym", "Home/Gym"
	Difficulty       string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`             // e.g. "Novice", "Medium", "Advanced"
	DemoVideoKey     string `bson:"demoVideoKey,omitempty" json:"-"`                              // Object key of the demo video, resolved to a presigned URL on reads

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CatalogInfo is the narrow read contract the authoring workflow consumes
// from the exercise catalog: display attributes only.
type CatalogInfo struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
}
