package workflow

import (
	"errors"

	"coachdesk/training-app/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPairedSameExercise = errors.New("paired entry requires two distinct exercises")
	ErrUnknownEntry       = errors.New("exercise entry not found in session")
	ErrUnknownSet         = errors.New("set not found in entry")
	ErrLastSet            = errors.New("an entry must keep at least one set")
)

// Default rest intervals in seconds, seeded on new entries.
const (
	simpleSetRest   = 60
	simpleEntryRest = 90
	pairedSetRest   = 90
	pairedEntryRest = 120
)

// MuscleGroupLookup resolves a catalog exercise id to its muscle group.
// The second return is false for unresolved ids; the cascade tolerates those
// without failing (spec of the catalog contract).
type MuscleGroupLookup func(id primitive.ObjectID) (string, bool)

// NewSimpleEntry creates a single-exercise entry seeded with one blank set
// and the default rest intervals.
func NewSimpleEntry(exerciseID primitive.ObjectID) domain.ExerciseEntry {
	return domain.ExerciseEntry{
		ID:             uuid.NewString(),
		Kind:           domain.EntrySimple,
		ExerciseID:     exerciseID,
		RestAfterEntry: simpleEntryRest,
		Sets:           []domain.SetEntry{{SetNumber: 1, RestAfterSet: simpleSetRest}},
	}
}

// NewPairedEntry creates a two-exercise ("superset") entry. The two catalog
// references must differ.
func NewPairedEntry(first, second primitive.ObjectID) (domain.ExerciseEntry, error) {
	if first == second {
		return domain.ExerciseEntry{}, ErrPairedSameExercise
	}
	return domain.ExerciseEntry{
		ID:               uuid.NewString(),
		Kind:             domain.EntryPaired,
		ExerciseID:       first,
		SecondExerciseID: &second,
		RestAfterEntry:   pairedEntryRest,
		Sets:             []domain.SetEntry{{SetNumber: 1, RestAfterSet: pairedSetRest}},
	}, nil
}

// SameIdentity reports whether two entries reference the same exercise (for
// simple entries) or the same unordered pair (for paired entries). Identity
// match is how an edited picker selection is merged with existing entries so
// set/rest configuration already entered is preserved.
func SameIdentity(a, b domain.ExerciseEntry) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == domain.EntrySimple {
		return a.ExerciseID == b.ExerciseID
	}
	if a.SecondExerciseID == nil || b.SecondExerciseID == nil {
		return false
	}
	if a.ExerciseID == b.ExerciseID && *a.SecondExerciseID == *b.SecondExerciseID {
		return true
	}
	return a.ExerciseID == *b.SecondExerciseID && *a.SecondExerciseID == b.ExerciseID
}

// MergeSelection reconciles a freshly chosen picker selection with the
// entries a session already has. Entries matching an existing identity keep
// the existing entry (sets, rest, dropsets intact); new identities come in
// with defaults. The result follows selection order; existing entries absent
// from the selection are dropped.
func MergeSelection(existing, selection []domain.ExerciseEntry) []domain.ExerciseEntry {
	out := make([]domain.ExerciseEntry, 0, len(selection))
	for _, chosen := range selection {
		merged := chosen
		for i := range existing {
			if SameIdentity(existing[i], chosen) {
				merged = existing[i]
				break
			}
		}
		out = append(out, merged)
	}
	return out
}

// ReconcileMuscleGroups is the Sessions -> Exercises cascade. For each
// session whose muscle-group set changed against the applied snapshot
// (order-independent comparison), existing entries are filtered: an entry
// survives only if at least one of its resolvable catalog references still
// belongs to the session's new muscle-group set. Entries with no resolvable
// reference at all are retained, so a catalog outage never destroys work.
// Sessions with an unchanged set are left alone, which makes the cascade
// idempotent. Pure: inputs are not mutated.
func ReconcileMuscleGroups(
	applied map[string][]string,
	sessions []domain.SessionTemplate,
	exercises map[string][]domain.ExerciseEntry,
	lookup MuscleGroupLookup,
) (map[string][]domain.ExerciseEntry, []CascadeNotice) {
	out := make(map[string][]domain.ExerciseEntry, len(exercises))
	var notices []CascadeNotice

	for _, s := range sessions {
		entries := exercises[s.ID]
		prev, hadSnapshot := applied[s.ID]
		if hadSnapshot && sameGroupSet(prev, s.MuscleGroups) {
			if entries != nil {
				out[s.ID] = entries
			}
			continue
		}

		groups := make(map[string]bool, len(s.MuscleGroups))
		for _, g := range s.MuscleGroups {
			groups[g] = true
		}

		var kept []domain.ExerciseEntry
		for _, e := range entries {
			if entrySurvives(e, groups, lookup) {
				kept = append(kept, e)
			}
		}
		if removed := len(entries) - len(kept); removed > 0 {
			notices = append(notices, CascadeNotice{SessionID: s.ID, SessionName: s.Name, Removed: removed})
		}
		if kept != nil {
			out[s.ID] = kept
		}
	}
	return out, notices
}

func entrySurvives(e domain.ExerciseEntry, groups map[string]bool, lookup MuscleGroupLookup) bool {
	resolvable := false
	for _, id := range e.ExerciseIDs() {
		group, ok := lookup(id)
		if !ok {
			continue
		}
		resolvable = true
		if groups[group] {
			return true
		}
	}
	// Nothing resolvable: keep the entry rather than purge on missing
	// catalog data.
	return !resolvable
}

// sameGroupSet compares two muscle-group lists as sets.
func sameGroupSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, g := range a {
		set[g] = true
	}
	for _, g := range b {
		if !set[g] {
			return false
		}
	}
	return true
}

// AppliedSnapshot captures the current per-session muscle-group sets. Stored
// on the draft after each exercises-advance as the baseline for the next
// cascade run.
func AppliedSnapshot(sessions []domain.SessionTemplate) map[string][]string {
	snap := make(map[string][]string, len(sessions))
	for _, s := range sessions {
		groups := make([]string, len(s.MuscleGroups))
		copy(groups, s.MuscleGroups)
		snap[s.ID] = groups
	}
	return snap
}

// AllSessionsHaveExercises reports whether the draft may be finalized: every
// session template needs at least one exercise entry.
func AllSessionsHaveExercises(sessions []domain.SessionTemplate, exercises map[string][]domain.ExerciseEntry) bool {
	if len(sessions) == 0 {
		return false
	}
	for _, s := range sessions {
		if len(exercises[s.ID]) == 0 {
			return false
		}
	}
	return true
}

// MoveEntry swaps the entry with its neighbor (up = towards index 0).
// Moving past either end is a no-op.
func MoveEntry(entries []domain.ExerciseEntry, entryID string, up bool) ([]domain.ExerciseEntry, error) {
	idx := -1
	for i := range entries {
		if entries[i].ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownEntry
	}
	out := make([]domain.ExerciseEntry, len(entries))
	copy(out, entries)
	if up && idx > 0 {
		out[idx-1], out[idx] = out[idx], out[idx-1]
	} else if !up && idx < len(out)-1 {
		out[idx], out[idx+1] = out[idx+1], out[idx]
	}
	return out, nil
}

// RemoveEntry deletes the entry from the list.
func RemoveEntry(entries []domain.ExerciseEntry, entryID string) ([]domain.ExerciseEntry, error) {
	for i := range entries {
		if entries[i].ID == entryID {
			out := make([]domain.ExerciseEntry, 0, len(entries)-1)
			out = append(out, entries[:i]...)
			out = append(out, entries[i+1:]...)
			return out, nil
		}
	}
	return nil, ErrUnknownEntry
}

// AddSet appends a blank set to the entry, numbered after the last one and
// carrying the default set rest for the entry kind.
func AddSet(entry *domain.ExerciseEntry) {
	rest := simpleSetRest
	if entry.Kind == domain.EntryPaired {
		rest = pairedSetRest
	}
	entry.Sets = append(entry.Sets, domain.SetEntry{
		SetNumber:    len(entry.Sets) + 1,
		RestAfterSet: rest,
	})
}

// RemoveSet deletes the numbered set and renumbers the remainder so set
// numbers stay 1-based and contiguous. The last set cannot be removed.
func RemoveSet(entry *domain.ExerciseEntry, setNumber int) error {
	if len(entry.Sets) <= 1 {
		return ErrLastSet
	}
	idx := -1
	for i := range entry.Sets {
		if entry.Sets[i].SetNumber == setNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownSet
	}
	entry.Sets = append(entry.Sets[:idx], entry.Sets[idx+1:]...)
	for i := range entry.Sets {
		entry.Sets[i].SetNumber = i + 1
	}
	return nil
}

// UpdateSet replaces the numbered set's fields, keeping its number.
func UpdateSet(entry *domain.ExerciseEntry, setNumber int, updated domain.SetEntry) error {
	for i := range entry.Sets {
		if entry.Sets[i].SetNumber == setNumber {
			updated.SetNumber = setNumber
			entry.Sets[i] = updated
			return nil
		}
	}
	return ErrUnknownSet
}

// ToggleDropset flips the dropset flag on the numbered set; turning it off
// clears the dropset load.
func ToggleDropset(entry *domain.ExerciseEntry, setNumber int) error {
	for i := range entry.Sets {
		if entry.Sets[i].SetNumber == setNumber {
			entry.Sets[i].HasDropset = !entry.Sets[i].HasDropset
			if !entry.Sets[i].HasDropset {
				entry.Sets[i].DropsetLoad = 0
			}
			return nil
		}
	}
	return ErrUnknownSet
}
