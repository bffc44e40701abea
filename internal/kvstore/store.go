// Package kvstore persists the user profile and app settings as JSON
// snapshots in a bbolt file. Each logical collection gets its own bucket and
// every value is read and written whole, mirroring the snapshot semantics of
// the mobile client's local storage.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/dmathew/travel-diary/internal/domain"
)

var tracer = otel.GetTracerProvider().Tracer("github.com/dmathew/travel-diary/internal/kvstore")

const (
	bucketUser     = "user"
	bucketSettings = "settings"

	keyCurrentUser = "current"
	keyAppSettings = "app"
)

// Store wraps a bbolt database holding the user and settings collections.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt file at path and ensures both
// buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("kvstore.Open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketUser, bucketSettings} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore.Open: create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying bbolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureDefaults writes a fresh profile and default settings when the store
// holds none, so the rest of the app can assume both exist.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	if _, err := s.CurrentUser(ctx); err != nil {
		profile := domain.UserProfile{
			ID:          uuid.New(),
			DisplayName: "Traveler",
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.SaveUser(ctx, profile); err != nil {
			return err
		}
	}
	if _, err := s.Settings(ctx); err != nil {
		if err := s.SaveSettings(ctx, domain.DefaultSettings()); err != nil {
			return err
		}
	}
	return nil
}

// CurrentUser returns the stored user profile.
// Returns domain.ErrNotFound when no profile has been written yet.
func (s *Store) CurrentUser(ctx context.Context) (domain.UserProfile, error) {
	_, span := tracer.Start(ctx, "CurrentUser")
	defer span.End()

	var profile domain.UserProfile
	err := s.get(bucketUser, keyCurrentUser, &profile)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.UserProfile{}, fmt.Errorf("kvstore.Store.CurrentUser: %w", err)
	}
	return profile, nil
}

// SaveUser replaces the stored user profile.
func (s *Store) SaveUser(ctx context.Context, profile domain.UserProfile) error {
	_, span := tracer.Start(ctx, "SaveUser")
	defer span.End()

	if err := s.put(bucketUser, keyCurrentUser, profile); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("kvstore.Store.SaveUser: %w", err)
	}
	return nil
}

// Settings returns the stored app settings.
// Returns domain.ErrNotFound when no settings have been written yet.
func (s *Store) Settings(ctx context.Context) (domain.Settings, error) {
	_, span := tracer.Start(ctx, "Settings")
	defer span.End()

	var settings domain.Settings
	err := s.get(bucketSettings, keyAppSettings, &settings)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Settings{}, fmt.Errorf("kvstore.Store.Settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the stored app settings.
func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	_, span := tracer.Start(ctx, "SaveSettings")
	defer span.End()

	if err := s.put(bucketSettings, keyAppSettings, settings); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("kvstore.Store.SaveSettings: %w", err)
	}
	return nil
}

// get reads one whole JSON snapshot out of a bucket.
func (s *Store) get(bucket, key string, target any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if raw == nil {
			return domain.ErrNotFound
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("%w: decode %s/%s: %s", domain.ErrStorage, bucket, key, err)
		}
		return nil
	})
}

// put writes one whole JSON snapshot into a bucket.
func (s *Store) put(bucket, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %s", domain.ErrStorage, bucket, key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("%w: write %s/%s: %s", domain.ErrStorage, bucket, key, err)
	}
	return nil
}
