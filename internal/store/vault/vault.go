// Package vault stores stories as Markdown files in a directory. Active
// stories live at the vault root and discarded ones under trash/.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
)

// TrashDir is the vault subdirectory holding discarded stories.
const TrashDir = "trash"

type change struct {
	story   story.Story
	deleted bool
}

type Store struct {
	dir string
	log zerolog.Logger

	mu     sync.Mutex
	staged map[uuid.UUID]change
	order  []uuid.UUID
	paths  map[uuid.UUID]string
	closed bool
}

var _ store.Store = (*Store)(nil)

// New opens the vault rooted at dir, creating it when missing.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("vault directory cannot be empty")
	}
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(filepath.Join(dir, TrashDir), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}

	return &Store{
		dir:    dir,
		log:    logger.With().Str("component", "vault").Logger(),
		staged: make(map[uuid.UUID]change),
		paths:  make(map[uuid.UUID]string),
	}, nil
}

// Dir returns the vault root.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) ListAll(ctx context.Context) ([]story.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	found, err := s.walk(ctx)
	if err != nil {
		return nil, err
	}

	for id, c := range s.staged {
		if c.deleted {
			delete(found, id)
			continue
		}
		found[id] = c.story
	}

	out := make([]story.Story, 0, len(found))
	for _, r := range found {
		out = append(out, r)
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (story.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return story.Story{}, store.ErrClosed
	}
	return s.get(ctx, id)
}

func (s *Store) Put(ctx context.Context, r story.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.stage(r.ID, change{story: r})
	return nil
}

func (s *Store) MarkDiscarded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(ctx, id, func(r *story.Story) {
		stamp := at.UTC()
		r.DiscardedAt = &stamp
		r.Touch(stamp)
	})
}

func (s *Store) Restore(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(ctx, id, func(r *story.Story) {
		r.DiscardedAt = nil
		r.Touch(at)
	})
}

func (s *Store) HardDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	s.stage(id, change{story: r, deleted: true})
	return nil
}

// Persist writes every staged change to disk. Changes that fail stay staged
// so a later Persist can retry them.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	var (
		errs    []error
		pending []uuid.UUID
	)
	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			pending = append(pending, id)
			continue
		}

		c := s.staged[id]
		var err error
		if c.deleted {
			err = s.remove(id)
		} else {
			err = s.write(c.story)
		}
		if err != nil {
			s.log.Error().Err(err).Str("id", id.String()).Msg("persist story")
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			pending = append(pending, id)
			continue
		}
		delete(s.staged, id)
	}
	s.order = pending

	return errors.Join(errs...)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if len(s.staged) > 0 {
		s.log.Warn().Int("staged", len(s.staged)).Msg("closing vault with unpersisted changes")
	}
	s.closed = true
	return nil
}

func (s *Store) update(ctx context.Context, id uuid.UUID, fn func(*story.Story)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	fn(&r)
	s.stage(id, change{story: r})
	return nil
}

func (s *Store) stage(id uuid.UUID, c change) {
	if _, ok := s.staged[id]; !ok {
		s.order = append(s.order, id)
	}
	s.staged[id] = c
}

func (s *Store) get(ctx context.Context, id uuid.UUID) (story.Story, error) {
	if c, ok := s.staged[id]; ok {
		if c.deleted {
			return story.Story{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return c.story, nil
	}

	for _, path := range []string{s.activePath(id), s.trashPath(id)} {
		r, err := s.load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return story.Story{}, err
		}
		if r.ID == id {
			s.paths[id] = path
			return r, nil
		}
	}

	// Files imported by hand are not named after their id.
	found, err := s.walk(ctx)
	if err != nil {
		return story.Story{}, err
	}
	if r, ok := found[id]; ok {
		return r, nil
	}
	return story.Story{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

func (s *Store) walk(ctx context.Context) (map[uuid.UUID]story.Story, error) {
	found := make(map[uuid.UUID]story.Story)

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && path != s.dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(name) != ".md" {
			return nil
		}

		r, err := s.load(path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable story")
			return nil
		}
		if prev, dup := s.paths[r.ID]; dup && prev != path {
			if _, seen := found[r.ID]; seen {
				s.log.Warn().Str("path", path).Str("other", prev).Msg("duplicate story id")
				return nil
			}
		}
		found[r.ID] = r
		s.paths[r.ID] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	return found, nil
}

func (s *Store) load(path string) (story.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return story.Story{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return story.Story{}, err
	}

	if !story.HasFrontMatter(data) {
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			rel = path
		}
		r := story.New(string(data), info.ModTime())
		r.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("jottr:"+filepath.ToSlash(rel)))
		if strings.HasPrefix(filepath.ToSlash(rel), TrashDir+"/") {
			at := info.ModTime().UTC()
			r.DiscardedAt = &at
		}
		return r, nil
	}

	return story.Unmarshal(data, info.ModTime())
}

func (s *Store) activePath(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".md")
}

func (s *Store) trashPath(id uuid.UUID) string {
	return filepath.Join(s.dir, TrashDir, id.String()+".md")
}

func (s *Store) pathFor(r story.Story) string {
	if r.IsDiscarded() {
		return s.trashPath(r.ID)
	}
	return s.activePath(r.ID)
}

func (s *Store) write(r story.Story) error {
	data, err := story.Marshal(r)
	if err != nil {
		return err
	}

	target := s.pathFor(r)
	if err := writeAtomic(target, data); err != nil {
		return err
	}

	for _, stale := range s.locations(r.ID) {
		if stale == target {
			continue
		}
		if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	s.paths[r.ID] = target
	return nil
}

func (s *Store) remove(id uuid.UUID) error {
	for _, path := range s.locations(id) {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	delete(s.paths, id)
	return nil
}

func (s *Store) locations(id uuid.UUID) []string {
	paths := []string{s.activePath(id), s.trashPath(id)}
	if known, ok := s.paths[id]; ok && known != paths[0] && known != paths[1] {
		paths = append(paths, known)
	}
	return paths
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".jottr-*.tmp")
	if err != nil {
		return err
	}
	cleanup := func() {
		_ = os.Remove(tmp.Name())
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return err
	}
	return nil
}
