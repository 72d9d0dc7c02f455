// internal/domain/draft.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthoringStage is the coach's position in the routine authoring workflow.
type AuthoringStage string

const (
	StageConfiguration AuthoringStage = "configuration"
	StageSessions      AuthoringStage = "sessions"
	StageExercises     AuthoringStage = "exercises"
)

// EntryKind distinguishes a single exercise from a fixed back-to-back pair
// ("superset").
type EntryKind string

const (
	EntrySimple EntryKind = "simple"
	EntryPaired EntryKind = "paired"
)

// RoutineConfiguration is the top-level metadata captured on the first stage.
type RoutineConfiguration struct {
	Name            string     `json:"name"`
	Objective       string     `json:"objective"`
	Difficulty      string     `json:"difficulty"`
	GenderTarget    string     `json:"genderTarget,omitempty"` // Templates only
	DurationWeeks   int        `json:"durationWeeks"`
	SessionsPerWeek int        `json:"sessionsPerWeek"`
	StartDate       *time.Time `json:"startDate,omitempty"` // Routines only
	Notes           string     `json:"notes,omitempty"`
}

// SessionTemplate is one weekly training-day definition within a draft.
// IDs are draft-local and replaced by durable ids only at commit time.
type SessionTemplate struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MuscleGroups []string `json:"muscleGroups"`
	Order        int      `json:"order"` // 1-based, contiguous
	Notes        string   `json:"notes,omitempty"`
}

// IsComplete reports whether the session can be advanced past: it needs at
// least one muscle group assigned.
func (s *SessionTemplate) IsComplete() bool {
	return len(s.MuscleGroups) > 0
}

// SetEntry is one repetition-and-load specification within an entry.
// Paired entries carry a second reps/load pair for the other side of the
// combination. Zero values mean "unspecified".
type SetEntry struct {
	SetNumber    int     `json:"setNumber"` // 1-based, contiguous within its entry
	Reps         int     `json:"reps,omitempty"`
	Load         float64 `json:"load,omitempty"`
	SecondReps   int     `json:"secondReps,omitempty"`
	SecondLoad   float64 `json:"secondLoad,omitempty"`
	HasDropset   bool    `json:"hasDropset,omitempty"`
	DropsetLoad  float64 `json:"dropsetLoad,omitempty"`
	RestAfterSet int     `json:"restAfterSet"` // Seconds
}

// ExerciseEntry is one ordered exercise entry (simple or paired) under a
// session template. For paired entries the two references must differ.
type ExerciseEntry struct {
	ID               string              `json:"id"` // Draft-local
	Kind             EntryKind           `json:"kind"`
	ExerciseID       primitive.ObjectID  `json:"exerciseId"`
	SecondExerciseID *primitive.ObjectID `json:"secondExerciseId,omitempty"`
	RestAfterEntry   int                 `json:"restAfterEntry"` // Seconds
	Sets             []SetEntry          `json:"sets"`
}

// ExerciseIDs returns the catalog references the entry carries (one or two).
func (e *ExerciseEntry) ExerciseIDs() []primitive.ObjectID {
	ids := []primitive.ObjectID{e.ExerciseID}
	if e.Kind == EntryPaired && e.SecondExerciseID != nil {
		ids = append(ids, *e.SecondExerciseID)
	}
	return ids
}

// RoutineDraft is the root aggregate being authored: the mutable, resumable,
// not-yet-committed representation of a routine or template.
type RoutineDraft struct {
	// DraftID references an already-persisted draft-status routine; absent
	// when authoring a brand-new entity.
	DraftID *primitive.ObjectID `json:"draftId,omitempty"`
	// StudentID identifies the owning student; absent for templates.
	StudentID *primitive.ObjectID `json:"targetId,omitempty"`
	Stage     AuthoringStage      `json:"stage"`

	Configuration      RoutineConfiguration       `json:"configuration"`
	Sessions           []SessionTemplate          `json:"sessions"`
	ExercisesBySession map[string][]ExerciseEntry `json:"exercisesBySession"`

	// AppliedMuscleGroups is the per-session muscle-group snapshot as of the
	// last Sessions->Exercises advance. The muscle-group cascade compares
	// against it to decide which sessions need their entries filtered.
	AppliedMuscleGroups map[string][]string `json:"appliedMuscleGroups,omitempty"`
}

// NewRoutineDraft creates an empty draft for a student's routine (studentID
// set) or for a template (studentID nil).
func NewRoutineDraft(studentID *primitive.ObjectID) *RoutineDraft {
	return &RoutineDraft{
		StudentID:          studentID,
		Stage:              StageConfiguration,
		ExercisesBySession: map[string][]ExerciseEntry{},
	}
}

func (d *RoutineDraft) IsTemplate() bool {
	return d.StudentID == nil
}

// SessionByID returns the session template with the given draft-local id.
func (d *RoutineDraft) SessionByID(id string) *SessionTemplate {
	for i := range d.Sessions {
		if d.Sessions[i].ID == id {
			return &d.Sessions[i]
		}
	}
	return nil
}

// ReferencedExerciseIDs collects every catalog reference across the draft,
// deduplicated. Used to batch-resolve against the catalog.
func (d *RoutineDraft) ReferencedExerciseIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, entries := range d.ExercisesBySession {
		for i := range entries {
			for _, id := range entries[i].ExerciseIDs() {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}
