// Package postgres stores stories in a PostgreSQL table. Mutations run in a
// transaction that is opened on the first staged change and committed by
// Persist.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const storyFields = `id, text, genre, created_at, updated_at, discarded_at`

type row struct {
	ID          uuid.UUID  `db:"id"`
	Text        string     `db:"text"`
	Genre       string     `db:"genre"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DiscardedAt *time.Time `db:"discarded_at"`
}

func (r row) story() story.Story {
	s := story.Story{
		ID:        r.ID,
		Text:      r.Text,
		Genre:     r.Genre,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.DiscardedAt != nil {
		at := r.DiscardedAt.UTC()
		s.DiscardedAt = &at
	}
	return s
}

type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	mu     sync.Mutex
	tx     pgx.Tx
	closed bool
}

var _ store.Store = (*Store)(nil)

// Open connects to the database at url and applies pending migrations.
func Open(ctx context.Context, url string, logger zerolog.Logger) (*Store, error) {
	if url == "" {
		return nil, errors.New("database url cannot be empty")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		pool: pool,
		log:  logger.With().Str("component", "postgres").Logger(),
	}
	if err := s.migrate(); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: "jottr_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	m.LockTimeout = 30 * time.Second

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	s.log.Debug().Msg("database migrations applied")
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]story.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	var rows []row
	query := fmt.Sprintf(`SELECT %s FROM stories ORDER BY created_at DESC, id::text ASC`, storyFields)
	if err := pgxscan.Select(ctx, s.querier(), &rows, query); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	out := make([]story.Story, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.story())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (story.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return story.Story{}, store.ErrClosed
	}

	var r row
	query := fmt.Sprintf(`SELECT %s FROM stories WHERE id = $1`, storyFields)
	if err := pgxscan.Get(ctx, s.querier(), &r, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return story.Story{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return story.Story{}, fmt.Errorf("get story %s: %w", id, err)
	}
	return r.story(), nil
}

func (s *Store) Put(ctx context.Context, r story.Story) error {
	const query = `
		INSERT INTO stories (id, text, genre, created_at, updated_at, discarded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			genre = EXCLUDED.genre,
			updated_at = EXCLUDED.updated_at,
			discarded_at = EXCLUDED.discarded_at`

	updated := r.UpdatedAt
	if updated.IsZero() {
		updated = r.CreatedAt
	}
	return s.exec(ctx, "put", r.ID, query, r.ID, r.Text, r.Genre, r.CreatedAt, updated, r.DiscardedAt)
}

func (s *Store) MarkDiscarded(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE stories SET discarded_at = $2, updated_at = GREATEST(updated_at, $2) WHERE id = $1`
	return s.exec(ctx, "discard", id, query, id, at.UTC())
}

func (s *Store) Restore(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE stories SET discarded_at = NULL, updated_at = GREATEST(updated_at, $2) WHERE id = $1`
	return s.exec(ctx, "restore", id, query, id, at.UTC())
}

func (s *Store) HardDelete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM stories WHERE id = $1`
	return s.exec(ctx, "delete", id, query, id)
}

// Persist commits the open transaction, if any.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit stories: %w", err)
	}
	return nil
}

// Close rolls back unpersisted changes and releases the pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.tx != nil {
		s.log.Warn().Msg("closing store with unpersisted changes")
		err = s.tx.Rollback(context.Background())
		s.tx = nil
	}
	s.pool.Close()
	return err
}

func (s *Store) exec(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	if s.tx == nil {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		s.tx = tx
	}

	// Each statement runs under a savepoint so a failure leaves the changes
	// staged before it usable.
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		s.abort(ctx)
		return fmt.Errorf("begin savepoint: %w", err)
	}

	tag, err := sp.Exec(ctx, query, args...)
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Str("id", id.String()).Msg("stage story change")
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			s.abort(ctx)
		}
		return fmt.Errorf("%s story %s: %w", op, id, err)
	}
	if err := sp.Commit(ctx); err != nil {
		s.abort(ctx)
		return fmt.Errorf("release savepoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}

// abort rolls back the whole staged transaction. Callers hold s.mu.
func (s *Store) abort(ctx context.Context) {
	if s.tx == nil {
		return
	}
	s.log.Warn().Msg("discarding staged story changes")
	if err := s.tx.Rollback(ctx); err != nil {
		s.log.Error().Err(err).Msg("rollback staged changes")
	}
	s.tx = nil
}

func (s *Store) querier() pgxscan.Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}
