// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the Resona playback engine.
package domain

import (
	"time"
)

// Song represents a single entry of the music library.
// The ID is the only key used for cache lookups, queue membership and
// like-set membership; it is stable for the lifetime of the record.
type Song struct {
	// ID is a unique, opaque identifier for the song (UUID)
	ID string `json:"id"`

	// Title is the song title (from metadata or filename)
	Title string `json:"title"`

	// Artist is the performing artist name
	Artist string `json:"artist"`

	// Album is the album name
	Album string `json:"album"`

	// Duration is the total track length. May be zero until the media
	// element reports metadata for the first time.
	Duration time.Duration `json:"duration"`

	// Locator describes where the audio bytes come from
	Locator Locator `json:"locator"`

	// PlayCount is incremented once per successful play request
	PlayCount int `json:"playCount"`

	// CoverArt is the embedded album artwork as raw bytes, enriched
	// asynchronously after import
	CoverArt []byte `json:"coverArt,omitempty"`
}

// LocatorKind classifies how a song's audio bytes can be reached.
type LocatorKind string

const (
	// LocatorData is an embedded/local data reference (a file path)
	LocatorData LocatorKind = "data"

	// LocatorRemote is a network URL
	LocatorRemote LocatorKind = "remote"

	// LocatorImport marks a song whose backing file must be re-selected
	// interactively before it can play again
	LocatorImport LocatorKind = "import"
)

// Locator is an opaque reference to a song's audio source.
type Locator struct {
	Kind LocatorKind `json:"kind"`
	URL  string      `json:"url"`
}

// IsCacheable reports whether the locator points at a trusted remote
// scheme whose payload may be fetched and cached opportunistically.
// All other schemes are treated as opaque and non-cacheable.
func (l Locator) IsCacheable() bool {
	if l.Kind != LocatorRemote {
		return false
	}
	return hasScheme(l.URL, "https") || hasScheme(l.URL, "http")
}

func hasScheme(url, scheme string) bool {
	prefix := scheme + "://"
	return len(url) > len(prefix) && url[:len(prefix)] == prefix
}

// ResolvedLocator is the playable output of resolution: a reference the
// media element can load directly. Transient locators are backed by a
// materialized resource that is only valid until the next resolution
// replaces it.
type ResolvedLocator struct {
	// URL is what gets assigned to the media element
	URL string

	// Transient indicates the underlying resource must be explicitly
	// released by its owner when superseded
	Transient bool
}

// TransportStatus represents the state of the transport state machine.
type TransportStatus int

const (
	// StatusIdle indicates no song is loaded
	StatusIdle TransportStatus = iota

	// StatusLoading indicates a locator is assigned and metadata is pending
	StatusLoading

	// StatusPaused indicates a song is loaded and paused (or ready)
	StatusPaused

	// StatusPlaying indicates active playback
	StatusPlaying

	// StatusBuffering indicates playback stalled waiting for data
	StatusBuffering

	// StatusEnded indicates the current song finished naturally
	StatusEnded

	// StatusError indicates a load or playback failure; only a new play
	// request leaves this state
	StatusError
)

// String returns a human-readable representation of the transport status.
func (s TransportStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	case StatusBuffering:
		return "buffering"
	case StatusEnded:
		return "ended"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens when the current song finishes.
type RepeatMode string

const (
	// RepeatOff stops at the end of the library traversal
	RepeatOff RepeatMode = "off"

	// RepeatAll wraps the library traversal back to the beginning
	RepeatAll RepeatMode = "all"

	// RepeatOne replays the current song on natural end of track only
	RepeatOne RepeatMode = "one"
)

// NextRepeatMode cycles off -> all -> one -> off.
func NextRepeatMode(m RepeatMode) RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// PlaybackState is the single process-wide transport record. Exactly one
// exists at a time; it is mutated only by the player and sequencer and
// read by all UI collaborators.
type PlaybackState struct {
	// CurrentSong is the currently loaded song (nil if none)
	CurrentSong *Song

	// Position is the current transport position
	Position time.Duration

	// Duration is the total duration of the loaded song
	Duration time.Duration

	// Status is the transport state machine state
	Status TransportStatus

	// IsShuffled is true when shuffle sequencing is enabled
	IsShuffled bool

	// Repeat is the active repeat mode
	Repeat RepeatMode

	// Rate is the playback rate (1.0 = normal)
	Rate float64

	// Volume is the volume level (0.0 to 1.0)
	Volume float64

	// IsMuted indicates if audio is muted
	IsMuted bool
}

// IsPlaying reports whether the transport is actively playing
// (buffering counts as playing for UI purposes).
func (s PlaybackState) IsPlaying() bool {
	return s.Status == StatusPlaying || s.Status == StatusBuffering
}

// Severity classifies notifications emitted towards the host UI.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a one-way, best-effort signal for the host UI to render.
type Notification struct {
	Message  string
	Severity Severity
}

// Preference keys read at startup and written on change.
// Missing or corrupt values fall back to the defaults silently.
const (
	PrefVolume  = "volume"
	PrefRepeat  = "repeatMode"
	PrefShuffle = "isShuffled"
	PrefRate    = "playbackRate"
)

// Preference defaults.
const (
	DefaultVolume  = 1.0
	DefaultRate    = 1.0
	DefaultRepeat  = RepeatOff
	DefaultShuffle = false
)
