// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/thall/resona/internal/domain"
)

// SongStore handles the persistence of song records and the liked-song set.
//
// Thread-safety: Implementations must be thread-safe; writes are
// last-writer-wins per song ID.
type SongStore interface {
	// GetAllSongs returns all persisted song records. Never fails: on
	// corruption it returns the readable subset (or an empty slice) and
	// logs the condition.
	GetAllSongs() []domain.Song

	// SaveSongs upserts full song records by ID, overwriting prior
	// metadata for matching IDs.
	//
	// Returns an error if persisting fails.
	SaveSongs(songs []domain.Song) error

	// DeleteSong removes a song record by ID. Idempotent.
	DeleteSong(id string) error

	// GetLikedSongs returns the persisted liked subset. The liked set is
	// a mirror over library songs, not a separate identity space.
	GetLikedSongs() []domain.Song

	// SaveLikedSongs persists the liked subset.
	//
	// Returns an error if persisting fails.
	SaveLikedSongs(songs []domain.Song) error
}

// AudioCache handles durable storage of raw audio bytes keyed by song ID.
// Presence of a blob for an ID implies playback can succeed offline.
//
// Thread-safety: Implementations must be thread-safe and must never
// expose a partially written blob to readers.
type AudioCache interface {
	// GetAudio returns cached bytes for the song and true, or nil and
	// false when absent. Absence is not an error; read failures are
	// logged and reported as absent.
	GetAudio(id string) ([]byte, bool)

	// SaveAudio stores bytes for the song, replacing any prior blob.
	//
	// Returns domain.ErrStorageQuotaExceeded (possibly wrapped) when the
	// underlying persistence rejects the write; callers must treat this
	// as non-fatal to playback.
	SaveAudio(id string, data []byte) error

	// DeleteAudio removes cached bytes for the song. Idempotent: absent
	// blobs are not an error.
	DeleteAudio(id string) error

	// HasAudio reports whether a cached blob exists for the song.
	HasAudio(id string) bool
}

// SettingsStore handles the persistence of scalar user preferences.
//
// Thread-safety: Implementations must be thread-safe.
type SettingsStore interface {
	// SaveSetting persists a preference value under key.
	//
	// Returns an error if persisting fails.
	SaveSetting(key string, value any) error

	// LoadSetting reads the preference stored under key into dest.
	// Returns false when the key is missing or the stored value is
	// corrupt; callers then fall back to defaults silently.
	LoadSetting(key string, dest any) bool
}
