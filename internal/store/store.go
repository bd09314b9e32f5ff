// Package store defines the record store adapter used by jottr and the
// lifecycle helpers built on top of it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Paintersrp/jottr/internal/story"
)

var (
	// ErrNotFound is returned when no story has the requested identifier.
	ErrNotFound = errors.New("story not found")
	// ErrAmbiguous is returned when a short reference matches several stories.
	ErrAmbiguous = errors.New("story reference is ambiguous")
	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("store is closed")
)

// Store persists stories. Mutating calls are staged and only become durable
// once Persist succeeds; reads always observe staged changes.
type Store interface {
	// ListAll returns every story, newest first.
	ListAll(ctx context.Context) ([]story.Story, error)
	Get(ctx context.Context, id uuid.UUID) (story.Story, error)
	// Put creates or replaces a story.
	Put(ctx context.Context, s story.Story) error
	// MarkDiscarded and Restore advance UpdatedAt to at so the lifecycle
	// change wins over older copies during sync.
	MarkDiscarded(ctx context.Context, id uuid.UUID, at time.Time) error
	Restore(ctx context.Context, id uuid.UUID, at time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Persist(ctx context.Context) error
	Close() error
}

// SortNewestFirst orders stories by creation time, newest first. Ties are
// broken by identifier so listings are stable across runs.
func SortNewestFirst(records []story.Story) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// Resolve finds a story by full identifier or by a unique prefix of it.
func Resolve(ctx context.Context, st Store, ref string) (story.Story, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return story.Story{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	if id, err := uuid.Parse(ref); err == nil {
		return st.Get(ctx, id)
	}

	records, err := st.ListAll(ctx)
	if err != nil {
		return story.Story{}, err
	}

	var found []story.Story
	for _, s := range records {
		if strings.HasPrefix(s.ID.String(), ref) {
			found = append(found, s)
		}
	}

	switch len(found) {
	case 0:
		return story.Story{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return story.Story{}, fmt.Errorf("%w: %s matches %d stories", ErrAmbiguous, ref, len(found))
	}
}

// EmptyTrash hard-deletes every discarded story and persists the result. It
// returns the number of stories removed.
func EmptyTrash(ctx context.Context, st Store) (int, error) {
	return deleteWhere(ctx, st, func(s story.Story) bool {
		return s.IsDiscarded()
	})
}

// PurgeExpired hard-deletes stories that have been discarded for longer than
// retention. A non-positive retention disables purging.
func PurgeExpired(ctx context.Context, st Store, now time.Time, retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-retention)
	return deleteWhere(ctx, st, func(s story.Story) bool {
		return s.IsDiscarded() && s.DiscardedAt.Before(cutoff)
	})
}

func deleteWhere(ctx context.Context, st Store, match func(story.Story) bool) (int, error) {
	records, err := st.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, s := range records {
		if !match(s) {
			continue
		}
		if err := st.HardDelete(ctx, s.ID); err != nil {
			return removed, fmt.Errorf("delete %s: %w", s.ShortID(), err)
		}
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	if err := st.Persist(ctx); err != nil {
		return 0, err
	}
	return removed, nil
}
