package diary

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
)

// loadCollection reads a whole collection; a missing blob is an empty one.
func loadCollection[T any](ctx context.Context, store storage.Store, sess *auth.Session, name string) ([]T, error) {
	var records []T
	if _, err := storage.LoadJSON(ctx, store, sess.Key(name), &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// prependRecord builds the next record, puts it in front and rewrites the
// whole collection.
func prependRecord[T models.Identified](ctx context.Context, s *Service, sess *auth.Session, name string, build func(id int64, ts time.Time) T) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadCollection[T](ctx, s.store, sess, name)
	if err != nil {
		return zero, err
	}

	now := s.clock.Now()
	record := build(nextID(records, now), now.UTC())

	updated := make([]T, 0, len(records)+1)
	updated = append(updated, record)
	updated = append(updated, records...)

	if err := storage.SaveJSON(ctx, s.store, sess.Key(name), updated); err != nil {
		return zero, err
	}

	s.metrics.RecordsCreated.WithLabelValues(name).Inc()
	return record, nil
}

// removeRecord filters id out of the collection and rewrites it.
func removeRecord[T models.Identified](ctx context.Context, s *Service, sess *auth.Session, name string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadCollection[T](ctx, s.store, sess, name)
	if err != nil {
		return err
	}

	kept := make([]T, 0, len(records))
	for _, r := range records {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return fmt.Errorf("%s %d: %w", name, id, ErrRecordNotFound)
	}

	if err := storage.SaveJSON(ctx, s.store, sess.Key(name), kept); err != nil {
		return err
	}

	s.metrics.RecordsDeleted.WithLabelValues(name).Inc()
	return nil
}

func listRecords[T any](ctx context.Context, s *Service, sess *auth.Session, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[T](ctx, s.store, sess, name)
}

// nextID uses the creation time in milliseconds, bumped past the highest
// existing id so ids stay unique within the collection.
func nextID[T models.Identified](records []T, now time.Time) int64 {
	id := now.UnixMilli()
	for _, r := range records {
		if r.RecordID() >= id {
			id = r.RecordID() + 1
		}
	}
	return id
}
