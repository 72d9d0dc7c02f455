package service

import (
	"coachdesk/training-app/internal/domain"
	"coachdesk/training-app/internal/repository"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes for service tests. They implement just enough
// of the repository contracts and allow error injection to exercise the
// transactional failure paths.

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	// Store a snapshot; the service may scrub fields on its copy afterwards.
	copied := *user
	f.users[user.ID] = &copied
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) AddStudentIDToCoach(_ context.Context, coachID, studentID primitive.ObjectID) error {
	coach, ok := f.users[coachID]
	if !ok {
		return repository.ErrNotFound
	}
	coach.StudentIDs = append(coach.StudentIDs, studentID)
	return nil
}

func (f *fakeUserRepo) SetCoachForStudent(_ context.Context, studentID, coachID primitive.ObjectID) error {
	student, ok := f.users[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	student.CoachID = &coachID
	return nil
}

func (f *fakeUserRepo) GetStudentsByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeRoutineRepo struct {
	routines map[primitive.ObjectID]*domain.Routine
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: map[primitive.ObjectID]*domain.Routine{}}
}

func (f *fakeRoutineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.ID.IsZero() {
		routine.ID = primitive.NewObjectID()
	}
	copied := *routine
	f.routines[routine.ID] = &copied
	return routine.ID, nil
}

func (f *fakeRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	r, ok := f.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRoutineRepo) Update(_ context.Context, routine *domain.Routine) error {
	if _, ok := f.routines[routine.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *routine
	f.routines[routine.ID] = &copied
	return nil
}

func (f *fakeRoutineRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.RoutineStatus) error {
	r, ok := f.routines[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeRoutineRepo) GetByStudentAndCoachID(_ context.Context, studentID, coachID primitive.ObjectID) ([]domain.Routine, error) {
	var out []domain.Routine
	for _, r := range f.routines {
		if r.Kind == domain.KindRoutine && r.CoachID == coachID && r.StudentID != nil && *r.StudentID == studentID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRoutineRepo) GetTemplatesByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Routine, error) {
	var out []domain.Routine
	for _, r := range f.routines {
		if r.Kind == domain.KindTemplate && r.CoachID == coachID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRoutineRepo) FindDraft(_ context.Context, coachID primitive.ObjectID, studentID *primitive.ObjectID) (*domain.Routine, error) {
	var best *domain.Routine
	for _, r := range f.routines {
		if r.CoachID != coachID {
			continue
		}
		if studentID != nil {
			if r.Kind != domain.KindRoutine || r.Status != domain.RoutineStatusDraft ||
				r.StudentID == nil || *r.StudentID != *studentID {
				continue
			}
		} else if r.Kind != domain.KindTemplate || r.Status != domain.TemplateStatusDraft {
			continue
		}
		if best == nil || r.UpdatedAt.After(best.UpdatedAt) {
			best = r
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	copied := *best
	return &copied, nil
}

type fakeSessionRepo struct {
	rows      []domain.RoutineSession
	insertErr error
}

func (f *fakeSessionRepo) InsertMany(_ context.Context, sessions []domain.RoutineSession) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, sessions...)
	return nil
}

func (f *fakeSessionRepo) GetByRoutineID(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineSession, error) {
	var out []domain.RoutineSession
	for _, r := range f.rows {
		if r.RoutineID == routineID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeSessionRepo) DeleteByRoutineID(_ context.Context, routineID primitive.ObjectID) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.RoutineID != routineID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeEntryRepo struct {
	rows      []domain.SessionExercise
	insertErr error
}

func (f *fakeEntryRepo) InsertMany(_ context.Context, entries []domain.SessionExercise) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, entries...)
	return nil
}

func (f *fakeEntryRepo) GetByRoutineID(_ context.Context, routineID primitive.ObjectID) ([]domain.SessionExercise, error) {
	var out []domain.SessionExercise
	for _, r := range f.rows {
		if r.RoutineID == routineID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeEntryRepo) DeleteByRoutineID(_ context.Context, routineID primitive.ObjectID) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.RoutineID != routineID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeSetRepo struct {
	rows      []domain.ExerciseSet
	insertErr error
}

func (f *fakeSetRepo) InsertMany(_ context.Context, sets []domain.ExerciseSet) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, sets...)
	return nil
}

func (f *fakeSetRepo) GetByRoutineID(_ context.Context, routineID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	var out []domain.ExerciseSet
	for _, r := range f.rows {
		if r.RoutineID == routineID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSetRepo) DeleteByRoutineID(_ context.Context, routineID primitive.ObjectID) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.RoutineID != routineID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeExecRepo struct {
	rows      []domain.ExecutionSession
	insertErr error
}

func (f *fakeExecRepo) InsertMany(_ context.Context, sessions []domain.ExecutionSession) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, sessions...)
	return nil
}

func (f *fakeExecRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExecutionSession, error) {
	for _, r := range f.rows {
		if r.ID == id {
			copied := r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExecRepo) GetByStudentID(_ context.Context, studentID primitive.ObjectID) ([]domain.ExecutionSession, error) {
	var out []domain.ExecutionSession
	for _, r := range f.rows {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeExecRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.ExecutionStatus) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeExecRepo) DeleteByRoutineID(_ context.Context, routineID primitive.ObjectID) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.RoutineID != routineID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

// fakeCatalog resolves against a fixed map; the write operations are not
// used by the workflow tests.
type fakeCatalog struct {
	infos map[primitive.ObjectID]domain.CatalogInfo
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{infos: map[primitive.ObjectID]domain.CatalogInfo{}}
}

func (f *fakeCatalog) addExercise(name, muscleGroup string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.infos[id] = domain.CatalogInfo{Name: name, MuscleGroup: muscleGroup}
	return id
}

func (f *fakeCatalog) Resolve(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.CatalogInfo, error) {
	out := make(map[primitive.ObjectID]domain.CatalogInfo, len(ids))
	for _, id := range ids {
		if info, ok := f.infos[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

func (f *fakeCatalog) CreateExercise(context.Context, primitive.ObjectID, string, string, string, string, string, string, string) (*domain.Exercise, error) {
	return nil, nil
}

func (f *fakeCatalog) GetExercisesByCoach(context.Context, primitive.ObjectID) ([]domain.Exercise, error) {
	return nil, nil
}

func (f *fakeCatalog) UpdateExercise(context.Context, primitive.ObjectID, *domain.Exercise) (*domain.Exercise, error) {
	return nil, nil
}

func (f *fakeCatalog) DeleteExercise(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func (f *fakeCatalog) DemoVideoURL(context.Context, *domain.Exercise) string {
	return ""
}
