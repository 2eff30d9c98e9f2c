// Package domain defines domain-specific errors.
// These errors represent playback and storage failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrSongNotFound is returned when a requested song cannot be found.
	ErrSongNotFound = errors.New("song not found")

	// ErrNoSongLoaded is returned when a transport operation requires a loaded song.
	ErrNoSongLoaded = errors.New("no song loaded")

	// ErrLibraryEmpty is returned when sequencing is attempted over an empty library.
	ErrLibraryEmpty = errors.New("library is empty")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidRate is returned when the playback rate is not positive.
	ErrInvalidRate = errors.New("invalid playback rate: must be greater than 0")

	// ErrStorageQuotaExceeded is returned when the durable store rejects an
	// audio blob write. Callers must treat this as non-fatal to playback.
	ErrStorageQuotaExceeded = errors.New("storage quota exceeded")

	// ErrPayloadTooLarge is returned when a background fetch exceeds the
	// configured cache size ceiling.
	ErrPayloadTooLarge = errors.New("payload exceeds cache size ceiling")

	// ErrOffline is returned when a network fetch is attempted while the
	// host is offline.
	ErrOffline = errors.New("host is offline")
)

// PlaybackUnresolvedError indicates no usable locator was found for a song.
// It is recoverable by user re-import and surfaced as a warning
// notification; it never alters the queue position.
type PlaybackUnresolvedError struct {
	Title string // Display title of the song that could not be resolved
}

// Error implements the error interface.
func (e *PlaybackUnresolvedError) Error() string {
	return fmt.Sprintf("no playable source for %q", e.Title)
}

// NewPlaybackUnresolvedError creates a new PlaybackUnresolvedError.
func NewPlaybackUnresolvedError(title string) *PlaybackUnresolvedError {
	return &PlaybackUnresolvedError{Title: title}
}

// PlaybackStartFailedError indicates a locator was obtained but the media
// element rejected the load or playback start. The transport moves to the
// error state and requires an explicit new play request.
type PlaybackStartFailedError struct {
	Title string // Display title of the failing song
	Err   error  // Underlying media element error
}

// Error implements the error interface.
func (e *PlaybackStartFailedError) Error() string {
	return fmt.Sprintf("playback failed for %q: %v", e.Title, e.Err)
}

// Unwrap returns the underlying error.
func (e *PlaybackStartFailedError) Unwrap() error {
	return e.Err
}

// NewPlaybackStartFailedError creates a new PlaybackStartFailedError.
func NewPlaybackStartFailedError(title string, err error) *PlaybackStartFailedError {
	return &PlaybackStartFailedError{Title: title, Err: err}
}

// StoreError represents an error from the durable store.
// This wraps persistence layer errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "saveAudio", "getAllSongs")
	Key     string // Record key (if applicable)
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s failed for %q: %s", e.Op, e.Key, e.Message)
	}
	return fmt.Sprintf("store %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, key, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Key:     key,
		Message: message,
		Err:     err,
	}
}

// MediaError represents an error raised by the media element.
type MediaError struct {
	Op      string // Operation that failed (e.g., "load", "play", "seek")
	Source  string // Locator URL (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("media %s failed for '%s': %s", e.Op, e.Source, e.Message)
	}
	return fmt.Sprintf("media %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(op, source, message string, err error) *MediaError {
	return &MediaError{
		Op:      op,
		Source:  source,
		Message: message,
		Err:     err,
	}
}
