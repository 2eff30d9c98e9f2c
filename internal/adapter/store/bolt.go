// Package store provides the durable, key-addressed persistence layer.
// It implements the song, audio cache and settings repositories on a
// single BoltDB file so playback can resume offline across sessions.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// Bucket names
var (
	bucketSongs    = []byte("songs")
	bucketLiked    = []byte("liked")
	bucketAudio    = []byte("audio")
	bucketSettings = []byte("settings")
)

const likedKey = "list"

// BoltStore implements ports.SongStore, ports.AudioCache and
// ports.SettingsStore using BoltDB. Bolt transactions guarantee readers
// never observe a half-written blob.
type BoltStore struct {
	logger *slog.Logger
	db     *bolt.DB

	// quotaBytes bounds individual audio blob writes; zero disables the check
	quotaBytes int64
}

// Options configure a BoltStore.
type Options struct {
	// QuotaBytes rejects audio blobs larger than this many bytes with
	// domain.ErrStorageQuotaExceeded. Zero disables the ceiling.
	QuotaBytes int64
}

// NewBoltStore opens (or creates) the database at dataDir/resona.db and
// ensures all buckets exist.
func NewBoltStore(logger *slog.Logger, dataDir string, opts Options) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "resona.db")
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSongs, bucketLiked, bucketAudio, bucketSettings} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{
		logger:     logger,
		db:         db,
		quotaBytes: opts.QuotaBytes,
	}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// === Songs ===

// GetAllSongs returns every persisted song record. Records that fail to
// decode are skipped and logged; the call itself never fails.
func (s *BoltStore) GetAllSongs() []domain.Song {
	songs := make([]domain.Song, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSongs)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var song domain.Song
			if err := json.Unmarshal(v, &song); err != nil {
				s.logger.Warn("skipping corrupt song record",
					slog.String("id", string(k)),
					slog.Any("error", err))
				return nil
			}
			songs = append(songs, song)
			return nil
		})
	})
	if err != nil {
		s.logger.Warn("song scan failed, returning partial result", slog.Any("error", err))
	}

	return songs
}

// SaveSongs upserts song records by ID, last-writer-wins.
func (s *BoltStore) SaveSongs(songs []domain.Song) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSongs)
		for _, song := range songs {
			data, err := json.Marshal(song)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(song.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewStoreError("saveSongs", "", "failed to persist song records", err)
	}
	return nil
}

// DeleteSong removes a song record. Absent records are not an error.
func (s *BoltStore) DeleteSong(id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSongs).Delete([]byte(id))
	})
	if err != nil {
		return domain.NewStoreError("deleteSong", id, "failed to delete song record", err)
	}
	return nil
}

// GetLikedSongs returns the persisted liked subset (empty on corruption).
func (s *BoltStore) GetLikedSongs() []domain.Song {
	songs := make([]domain.Song, 0)

	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketLiked).Get([]byte(likedKey))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &songs); err != nil {
			s.logger.Warn("corrupt liked-song set, returning empty", slog.Any("error", err))
			songs = songs[:0]
		}
		return nil
	})

	return songs
}

// SaveLikedSongs persists the liked subset as a single record.
func (s *BoltStore) SaveLikedSongs(songs []domain.Song) error {
	data, err := json.Marshal(songs)
	if err != nil {
		return domain.NewStoreError("saveLikedSongs", "", "failed to marshal liked set", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLiked).Put([]byte(likedKey), data)
	})
	if err != nil {
		return domain.NewStoreError("saveLikedSongs", "", "failed to persist liked set", err)
	}
	return nil
}

// === Audio cache ===

// GetAudio returns the cached blob for the song, or absent. Read
// failures are logged and reported as absent, never as an error.
func (s *BoltStore) GetAudio(id string) ([]byte, bool) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketAudio).Get([]byte(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("audio cache read failed", slog.String("id", id), slog.Any("error", err))
		return nil, false
	}

	return data, data != nil
}

// SaveAudio stores a blob for the song, replacing any prior blob.
// Writes beyond the quota, and writes the database rejects, surface as
// domain.ErrStorageQuotaExceeded so callers keep playing uncached.
func (s *BoltStore) SaveAudio(id string, data []byte) error {
	if s.quotaBytes > 0 && int64(len(data)) > s.quotaBytes {
		return fmt.Errorf("%w: blob is %d bytes, ceiling is %d", domain.ErrStorageQuotaExceeded, len(data), s.quotaBytes)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAudio).Put([]byte(id), data)
	})
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseNotOpen) {
			return domain.NewStoreError("saveAudio", id, "database closed", err)
		}
		// Bolt write rejection (mmap growth failure, disk full) maps to
		// the quota error so playback continues uncached.
		return fmt.Errorf("%w: %v", domain.ErrStorageQuotaExceeded, err)
	}
	return nil
}

// DeleteAudio removes the cached blob. Idempotent.
func (s *BoltStore) DeleteAudio(id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAudio).Delete([]byte(id))
	})
	if err != nil {
		return domain.NewStoreError("deleteAudio", id, "failed to delete cached audio", err)
	}
	return nil
}

// HasAudio reports whether a cached blob exists for the song.
func (s *BoltStore) HasAudio(id string) bool {
	found := false
	s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketAudio).Get([]byte(id)) != nil
		return nil
	})
	return found
}

// === Settings ===

// SaveSetting persists a JSON-encoded scalar preference.
func (s *BoltStore) SaveSetting(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return domain.NewStoreError("saveSetting", key, "failed to marshal setting", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), data)
	})
	if err != nil {
		return domain.NewStoreError("saveSetting", key, "failed to persist setting", err)
	}
	return nil
}

// LoadSetting reads a preference into dest. Missing or corrupt values
// report false so callers fall back to defaults silently.
func (s *BoltStore) LoadSetting(key string, dest any) bool {
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSettings).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Debug("corrupt setting, using default",
			slog.String("key", key),
			slog.Any("error", err))
		return false
	}
	return true
}

// Verify interface implementations
var (
	_ ports.SongStore     = (*BoltStore)(nil)
	_ ports.AudioCache    = (*BoltStore)(nil)
	_ ports.SettingsStore = (*BoltStore)(nil)
)
