// Package draft provides session-scoped persistence for in-progress routine
// authoring state. One JSON document per scope key; save, load, clear.
package draft

import (
	"context"
	"encoding/json"
	"fmt"

	"coachdesk/training-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchemaVersion tags every persisted draft document. A loaded document with
// a different version is discarded as if absent, so stage/field changes can
// never surface structurally incompatible saved state.
const SchemaVersion = 1

// Error constants for the draft store layer.
var (
	ErrNotFound = StoreError("draft not found")
)

// StoreError helps distinguish draft store errors.
type StoreError string

func (e StoreError) Error() string {
	return string(e)
}

// Store is the durable-enough persistence contract for one in-progress
// authoring session. Implementations must treat a missing key as ErrNotFound,
// never as a failure.
type Store interface {
	Save(ctx context.Context, key string, d *domain.RoutineDraft) error
	Load(ctx context.Context, key string) (*domain.RoutineDraft, error)
	Clear(ctx context.Context, key string) error
}

// Scope identifies the entity being authored: a specific student's routine,
// or the acting coach's template.
type Scope struct {
	ActorID   primitive.ObjectID
	StudentID *primitive.ObjectID // nil for template authoring
}

func (s Scope) IsTemplate() bool {
	return s.StudentID == nil
}

// Key returns the draft store key for this scope. Routine drafts are keyed
// by acting user AND student so an admin working on a coach's behalf never
// collides with the coach's own session.
func (s Scope) Key() string {
	if s.StudentID == nil {
		return fmt.Sprintf("template:%s", s.ActorID.Hex())
	}
	return fmt.Sprintf("routine:%s:%s", s.ActorID.Hex(), s.StudentID.Hex())
}

// document is the wire shape of a persisted draft.
type document struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Draft         domain.RoutineDraft `json:"draft"`
}

func encodeDraft(d *domain.RoutineDraft) ([]byte, error) {
	return json.Marshal(document{SchemaVersion: SchemaVersion, Draft: *d})
}

// decodeDraft unmarshals a stored document. A version mismatch is reported
// as ErrNotFound: stale drafts are discarded, not migrated.
func decodeDraft(raw []byte) (*domain.RoutineDraft, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, ErrNotFound
	}
	d := doc.Draft
	if d.ExercisesBySession == nil {
		d.ExercisesBySession = map[string][]domain.ExerciseEntry{}
	}
	return &d, nil
}
