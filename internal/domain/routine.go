// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineKind distinguishes a concrete plan assigned to a student from a
// reusable blueprint ("template").
type RoutineKind string

const (
	KindRoutine  RoutineKind = "routine"
	KindTemplate RoutineKind = "template"
)

// RoutineStatus type for the root entity lifecycle.
type RoutineStatus string

const (
	// Routine statuses
	RoutineStatusDraft     RoutineStatus = "draft"
	RoutineStatusActive    RoutineStatus = "active"
	RoutineStatusBlocked   RoutineStatus = "blocked"
	RoutineStatusCancelled RoutineStatus = "cancelled"
	RoutineStatusCompleted RoutineStatus = "completed"

	// Template statuses
	TemplateStatusDraft     RoutineStatus = "draft_template"
	TemplateStatusPublished RoutineStatus = "template"
)

// Routine is the durable root entity produced by the authoring workflow.
// It covers both concrete routines (Kind == routine, StudentID set) and
// reusable templates (Kind == template, StudentID nil).
type Routine struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID  `bson:"coachId" json:"coachId"` // Owning coach (never an admin identity)
	StudentID *primitive.ObjectID `bson:"studentId,omitempty" json:"studentId,omitempty"`
	Kind      RoutineKind         `bson:"kind" json:"kind"`
	Status    RoutineStatus       `bson:"status" json:"status"`

	Name            string     `bson:"name" json:"name"`
	Objective       string     `bson:"objective" json:"objective"`
	Difficulty      string     `bson:"difficulty" json:"difficulty"`
	GenderTarget    string     `bson:"genderTarget,omitempty" json:"genderTarget,omitempty"` // Templates only
	DurationWeeks   int        `bson:"durationWeeks" json:"durationWeeks"`
	SessionsPerWeek int        `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	StartDate       *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"` // Routines only
	Notes           string     `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (r *Routine) IsTemplate() bool {
	return r.Kind == KindTemplate
}

// RoutineSession is one weekly training-day definition belonging to a Routine.
type RoutineSession struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID    primitive.ObjectID `bson:"routineId" json:"routineId"`
	Name         string             `bson:"name" json:"name"` // e.g. "Session A"
	MuscleGroups []string           `bson:"muscleGroups" json:"muscleGroups"`
	Order        int                `bson:"order" json:"order"` // 1-based, contiguous
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// SessionExercise is one exercise entry (simple or paired) within a session.
// RoutineID is denormalized so the whole tree can be removed by root id.
type SessionExercise struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RoutineID        primitive.ObjectID  `bson:"routineId" json:"routineId"`
	SessionID        primitive.ObjectID  `bson:"sessionId" json:"sessionId"`
	Kind             EntryKind           `bson:"kind" json:"kind"`
	ExerciseID       primitive.ObjectID  `bson:"exerciseId" json:"exerciseId"`
	SecondExerciseID *primitive.ObjectID `bson:"secondExerciseId,omitempty" json:"secondExerciseId,omitempty"` // Paired entries only
	RestAfterEntry   int                 `bson:"restAfterEntry" json:"restAfterEntry"`                         // Seconds, after all sets of the entry
	Order            int                 `bson:"order" json:"order"`
}

// ExerciseSet is one set row belonging to a SessionExercise.
type ExerciseSet struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID         primitive.ObjectID `bson:"routineId" json:"routineId"`
	SessionExerciseID primitive.ObjectID `bson:"sessionExerciseId" json:"sessionExerciseId"`
	SetNumber         int                `bson:"setNumber" json:"setNumber"` // 1-based, contiguous per entry
	Reps              int                `bson:"reps,omitempty" json:"reps,omitempty"`
	Load              float64            `bson:"load,omitempty" json:"load,omitempty"`
	SecondReps        int                `bson:"secondReps,omitempty" json:"secondReps,omitempty"` // Paired entries: side 2
	SecondLoad        float64            `bson:"secondLoad,omitempty" json:"secondLoad,omitempty"`
	HasDropset        bool               `bson:"hasDropset,omitempty" json:"hasDropset,omitempty"`
	DropsetLoad       float64            `bson:"dropsetLoad,omitempty" json:"dropsetLoad,omitempty"`
	RestAfterSet      int                `bson:"restAfterSet" json:"restAfterSet"` // Seconds, after this set
}

// ExecutionStatus tracks one scheduled occurrence of a session.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusSkipped   ExecutionStatus = "skipped"
)

// ExecutionSession is one scheduled occurrence of a RoutineSession, generated
// when a routine is finalized. The training-execution subsystem consumes these.
type ExecutionSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoutineID primitive.ObjectID `bson:"routineId" json:"routineId"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	SessionID primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Order     int                `bson:"order" json:"order"` // 1-based position in the schedule
	Status    ExecutionStatus    `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
