package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/internal/repository"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

// memState is the mutable part of memDB. Scopes work on a clone and swap
// it in on commit.
type memState struct {
	roster       map[string]map[string]bool
	userCourses  map[string][]string
	userProgress map[string][]string
	progress     map[string]*domain.CourseProgress
}

func newMemState() *memState {
	return &memState{
		roster:       map[string]map[string]bool{},
		userCourses:  map[string][]string{},
		userProgress: map[string][]string{},
		progress:     map[string]*domain.CourseProgress{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for course, members := range s.roster {
		c.roster[course] = map[string]bool{}
		for u := range members {
			c.roster[course][u] = true
		}
	}
	for u, ids := range s.userCourses {
		c.userCourses[u] = append([]string(nil), ids...)
	}
	for u, ids := range s.userProgress {
		c.userProgress[u] = append([]string(nil), ids...)
	}
	for id, p := range s.progress {
		cp := *p
		c.progress[id] = &cp
	}
	return c
}

// memDB is an in-memory TxManager with failure injection.
type memDB struct {
	mu      sync.Mutex
	courses map[string]*domain.Course
	users   map[string]*domain.User
	state   *memState

	lockErr       map[string]error
	progressErr   error
	progressPanic bool
	viewErr       error
	commitErr     error

	begins, commits, rollbacks int
}

func newMemDB() *memDB {
	return &memDB{
		courses: map[string]*domain.Course{},
		users:   map[string]*domain.User{},
		state:   newMemState(),
		lockErr: map[string]error{},
	}
}

func (db *memDB) addCourse(name string, price int64) *domain.Course {
	c := &domain.Course{ID: uuid.NewString(), Name: name, Price: price}
	db.courses[c.ID] = c
	return c
}

func (db *memDB) addUser(first, last, email string) *domain.User {
	u := &domain.User{ID: uuid.NewString(), FirstName: first, LastName: last, Email: email, AccountType: "Student"}
	db.users[u.ID] = u
	return u
}

func (db *memDB) enrolled(courseID, userID string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.roster[courseID][userID]
}

func (db *memDB) progressCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.state.progress)
}

func (db *memDB) Begin(ctx context.Context) (repository.Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.begins++
	return &memScope{db: db, state: db.state.clone()}, nil
}

// autocommit returns stores that write straight to the committed state.
func (db *memDB) autocommit() *memScope {
	return &memScope{db: db, live: true, committed: true}
}

type memScope struct {
	db        *memDB
	state     *memState
	live      bool
	hooks     []func(context.Context)
	committed bool
	released  bool
}

func (s *memScope) st() *memState {
	if s.live {
		return s.db.state
	}
	return s.state
}

func (s *memScope) Courses() repository.CourseStore    { return memCourses{s} }
func (s *memScope) Users() repository.UserStore        { return memUsers{s} }
func (s *memScope) Progress() repository.ProgressStore { return memProgress{s} }

func (s *memScope) OnCommit(fn func(context.Context)) { s.hooks = append(s.hooks, fn) }

func (s *memScope) Commit(ctx context.Context) error {
	s.db.mu.Lock()
	if s.db.commitErr != nil {
		s.db.mu.Unlock()
		return apperrors.Persistence("commit", s.db.commitErr)
	}
	s.db.state = s.state
	s.db.commits++
	s.committed = true
	s.db.mu.Unlock()

	for _, fn := range s.hooks {
		fn(ctx)
	}
	return nil
}

func (s *memScope) Release(context.Context) error {
	if s.committed || s.released {
		return nil
	}
	s.released = true
	s.db.mu.Lock()
	s.db.rollbacks++
	s.db.mu.Unlock()
	return nil
}

type memCourses struct{ s *memScope }

func (m memCourses) GetByID(_ context.Context, id string) (*domain.Course, error) {
	c, ok := m.s.db.courses[id]
	if !ok {
		return nil, apperrors.NotFound("course", id)
	}
	cp := *c
	return &cp, nil
}

func (m memCourses) Lock(ctx context.Context, id string) (*domain.Course, error) {
	if err := m.s.db.lockErr[id]; err != nil {
		return nil, apperrors.Persistence("lock course", err)
	}
	return m.GetByID(ctx, id)
}

func (m memCourses) IsEnrolled(_ context.Context, courseID, userID string) (bool, error) {
	return m.s.st().roster[courseID][userID], nil
}

func (m memCourses) AddStudent(_ context.Context, courseID, userID string) error {
	if m.s.st().roster[courseID] == nil {
		m.s.st().roster[courseID] = map[string]bool{}
	}
	m.s.st().roster[courseID][userID] = true
	return nil
}

type memUsers struct{ s *memScope }

func (m memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.s.db.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func union(set []string, id string) []string {
	for _, v := range set {
		if v == id {
			return set
		}
	}
	return append(set, id)
}

func (m memUsers) AddCourse(_ context.Context, userID, courseID string) error {
	m.s.st().userCourses[userID] = union(m.s.st().userCourses[userID], courseID)
	return nil
}

func (m memUsers) AddProgress(_ context.Context, userID, progressID string) error {
	m.s.st().userProgress[userID] = union(m.s.st().userProgress[userID], progressID)
	return nil
}

func (m memUsers) GetView(ctx context.Context, userID string) (*domain.UserView, error) {
	if m.s.db.viewErr != nil {
		return nil, apperrors.Persistence("get user view", m.s.db.viewErr)
	}
	user, err := m.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &domain.UserView{User: user, Courses: []domain.Course{}, CourseProgress: []domain.CourseProgress{}}
	for _, id := range m.s.st().userCourses[userID] {
		view.Courses = append(view.Courses, *m.s.db.courses[id])
	}
	for _, id := range m.s.st().userProgress[userID] {
		view.CourseProgress = append(view.CourseProgress, *m.s.st().progress[id])
	}
	return view, nil
}

type memProgress struct{ s *memScope }

func (m memProgress) Create(_ context.Context, courseID, userID string) (*domain.CourseProgress, error) {
	if m.s.db.progressPanic {
		panic("progress store exploded")
	}
	if m.s.db.progressErr != nil {
		return nil, apperrors.Persistence("create progress", m.s.db.progressErr)
	}
	for _, p := range m.s.st().progress {
		if p.CourseID == courseID && p.UserID == userID {
			return nil, apperrors.Persistence("create progress", errors.New("duplicate key value violates unique constraint"))
		}
	}
	p := &domain.CourseProgress{
		ID:              uuid.NewString(),
		CourseID:        courseID,
		UserID:          userID,
		CompletedVideos: []string{},
		CreatedAt:       time.Now().UTC(),
	}
	m.s.st().progress[p.ID] = p
	return p, nil
}

// memRatings is an in-memory RatingRepository.
type memRatings struct {
	mu           sync.Mutex
	ratings      []domain.Rating
	counts       map[string]int
	incrementErr error
	deleteErr    error
	averages     int
}

func newMemRatings() *memRatings {
	return &memRatings{counts: map[string]int{}}
}

func (r *memRatings) Exists(_ context.Context, userID, courseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.ratings {
		if v.UserID == userID && v.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRatings) Create(_ context.Context, rating *domain.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.ratings {
		if v.UserID == rating.UserID && v.CourseID == rating.CourseID {
			return apperrors.Conflict("you have already reviewed this course")
		}
	}
	rating.ID = uuid.NewString()
	rating.CreatedAt = time.Now().UTC().Add(time.Duration(len(r.ratings)) * time.Second)
	r.ratings = append(r.ratings, *rating)
	return nil
}

func (r *memRatings) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, v := range r.ratings {
		if v.ID == id {
			r.ratings = append(r.ratings[:i], r.ratings[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("rating", id)
}

func (r *memRatings) IncrementCourseCount(_ context.Context, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.counts[courseID]++
	return nil
}

func (r *memRatings) Average(_ context.Context, courseID string) (*domain.RatingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.averages++
	summary := &domain.RatingSummary{CourseID: courseID}
	sum := 0
	for _, v := range r.ratings {
		if v.CourseID == courseID {
			sum += v.Rating
			summary.Count++
		}
	}
	if summary.Count > 0 {
		summary.Average = float64(sum) / float64(summary.Count)
	}
	return summary, nil
}

func (r *memRatings) List(_ context.Context, offset, limit int) ([]domain.RatingDetail, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]domain.Rating(nil), r.ratings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	out := []domain.RatingDetail{}
	for i := offset; i < len(sorted) && i < offset+limit; i++ {
		out = append(out, domain.RatingDetail{Rating: sorted[i], CourseName: fmt.Sprintf("course %s", sorted[i].CourseID)})
	}
	return out, len(sorted), nil
}
