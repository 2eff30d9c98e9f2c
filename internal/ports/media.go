// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"time"
)

// MediaCallbacks is the subscription contract the player registers on the
// media element once, at resource-acquisition time, and tears down on
// release. Implementations guarantee that OnEnded fires after the final
// OnTimeUpdate for a given loaded source.
type MediaCallbacks struct {
	// OnTimeUpdate reports position/duration progress during playback.
	OnTimeUpdate func(position, duration time.Duration)

	// OnBuffering reports entry into (true) and exit from (false) the
	// buffering sub-state.
	OnBuffering func(buffering bool)

	// OnEnded reports natural end of the loaded source.
	OnEnded func()

	// OnError reports an asynchronous resource failure.
	OnError func(err error)
}

// MediaElement is the interface for the single playable media resource.
// It abstracts the host playback element (decoding and output are the
// host's concern) and allows testing with an in-memory implementation.
//
// Implementations must be thread-safe.
type MediaElement interface {
	// Load assigns a new source to the element. Any previously loaded
	// source is discarded. Metadata (duration) is available once Load
	// returns successfully.
	//
	// Returns an error if the source cannot be loaded.
	Load(source string) error

	// Source returns the currently assigned source, or "" if none.
	Source() string

	// Play starts or resumes playback of the loaded source.
	//
	// Returns an error if no source is loaded or playback cannot start.
	Play() error

	// Pause pauses playback, preserving the current position.
	//
	// Returns an error if no source is loaded.
	Pause() error

	// Stop halts playback and discards the loaded source.
	Stop() error

	// Seek sets the playback position. The caller is responsible for
	// clamping; implementations reject out-of-range positions.
	Seek(position time.Duration) error

	// Position returns the current playback position.
	Position() time.Duration

	// Duration returns the total duration of the loaded source
	// (zero if none loaded).
	Duration() time.Duration

	// SetVolume sets the output volume from 0.0 (silent) to 1.0 (full).
	SetVolume(volume float64) error

	// SetRate sets the playback rate (1.0 = normal speed).
	SetRate(rate float64) error

	// SetCallbacks registers the event subscription for this element.
	// Must be called before Load; replaces any prior registration.
	SetCallbacks(cb MediaCallbacks)

	// Close releases the element and all its resources.
	Close() error
}

// FilePicker is an optional host capability for interactive file
// re-selection. Hosts without an interactive surface provide nil; the
// resolver then fails resolution cleanly instead of prompting.
type FilePicker interface {
	// PickFile prompts the user to select the backing file for a song.
	// Returns the chosen path, or an error if the user cancelled or the
	// prompt failed.
	PickFile(title string) (string, error)
}

// Fetcher retrieves remote audio payloads for opportunistic caching.
type Fetcher interface {
	// Online reports whether the host currently has network access.
	Online() bool

	// Fetch downloads the payload at url, failing with
	// domain.ErrPayloadTooLarge if it exceeds limit bytes.
	Fetch(url string, limit int64) ([]byte, error)
}
