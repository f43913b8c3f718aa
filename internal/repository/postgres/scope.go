package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/dakshrana205/StudyNotionnew/internal/repository"
	"github.com/dakshrana205/StudyNotionnew/pkg/database"
	apperrors "github.com/dakshrana205/StudyNotionnew/pkg/errors"
)

// ErrScopeClosed is returned by Commit on a scope that was already
// committed or released.
var ErrScopeClosed = errors.New("scope already closed")

// TxManager opens READ COMMITTED transactions as repository scopes.
type TxManager struct {
	db     database.TxBeginner
	logger *slog.Logger
}

// NewTxManager creates a TxManager.
func NewTxManager(db database.TxBeginner, logger *slog.Logger) *TxManager {
	return &TxManager{db: db, logger: logger}
}

// Begin starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (repository.Scope, error) {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.Persistence("begin transaction", err)
	}
	return &scope{
		tx:       tx,
		courses:  NewCourseRepository(tx),
		users:    NewUserRepository(tx),
		progress: NewProgressRepository(tx),
		logger:   m.logger,
	}, nil
}

type scope struct {
	tx       pgx.Tx
	courses  *CourseRepository
	users    *UserRepository
	progress *ProgressRepository
	logger   *slog.Logger

	mu        sync.Mutex
	hooks     []func(context.Context)
	committed bool
	released  bool
}

func (s *scope) Courses() repository.CourseStore { return s.courses }
func (s *scope) Users() repository.UserStore { return s.users }
func (s *scope) Progress() repository.ProgressStore { return s.progress }

func (s *scope) OnCommit(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *scope) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.committed || s.released {
		s.mu.Unlock()
		return ErrScopeClosed
	}
	if err := s.tx.Commit(ctx); err != nil {
		s.mu.Unlock()
		return apperrors.Persistence("commit transaction", err)
	}
	s.committed = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, fn := range hooks {
		s.runHook(ctx, fn)
	}
	return nil
}

func (s *scope) runHook(ctx context.Context, fn func(context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "post-commit hook panicked", slog.String("panic", fmt.Sprint(rec)))
		}
	}()
	fn(ctx)
}

func (s *scope) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed || s.released {
		return nil
	}
	s.released = true
	s.hooks = nil

	// A failed Commit has already closed the transaction.
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
