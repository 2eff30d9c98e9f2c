// Package domain defines events for the event-driven architecture.
// Events replace return values for state observation: callers issue
// fire-and-forget commands and watch the playback state via the bus.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Transport events
	EventSongLoaded    EventType = "song.loaded"
	EventSongStarted   EventType = "song.started"
	EventSongPaused    EventType = "song.paused"
	EventSongEnded     EventType = "song.ended"
	EventSongProgress  EventType = "song.progress"
	EventSongBuffering EventType = "song.buffering"
	EventSongError     EventType = "song.error"
	EventPlayCounted   EventType = "song.play_counted"

	// Volume and rate events
	EventVolumeChanged EventType = "volume.changed"
	EventMuteToggled   EventType = "mute.toggled"
	EventRateChanged   EventType = "rate.changed"

	// Sequencing mode events
	EventShuffleToggled EventType = "shuffle.toggled"
	EventRepeatChanged  EventType = "repeat.changed"

	// Queue and library events
	EventQueueChanged   EventType = "queue.changed"
	EventLibraryUpdated EventType = "library.updated"

	// Host notification channel
	EventNotification EventType = "notification"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SongLoadedEvent is published when a song's locator is assigned to the
// media element and metadata became available.
type SongLoadedEvent struct {
	baseEvent
	Song      Song
	Duration  time.Duration
	FromCache bool // True when the locator was materialized from cached bytes
}

// Type returns the event type.
func (e SongLoadedEvent) Type() EventType {
	return EventSongLoaded
}

// NewSongLoadedEvent creates a new SongLoadedEvent.
func NewSongLoadedEvent(song Song, duration time.Duration, fromCache bool) SongLoadedEvent {
	return SongLoadedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Duration:  duration,
		FromCache: fromCache,
	}
}

// SongStartedEvent is published when playback starts or resumes.
type SongStartedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e SongStartedEvent) Type() EventType {
	return EventSongStarted
}

// NewSongStartedEvent creates a new SongStartedEvent.
func NewSongStartedEvent(song Song) SongStartedEvent {
	return SongStartedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// SongPausedEvent is published when playback is paused.
type SongPausedEvent struct {
	baseEvent
	Song     Song
	Position time.Duration
}

// Type returns the event type.
func (e SongPausedEvent) Type() EventType {
	return EventSongPaused
}

// NewSongPausedEvent creates a new SongPausedEvent.
func NewSongPausedEvent(song Song, position time.Duration) SongPausedEvent {
	return SongPausedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Position:  position,
	}
}

// SongEndedEvent is published when the current song finishes naturally.
// The sequencer consumes this to decide the next track.
type SongEndedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e SongEndedEvent) Type() EventType {
	return EventSongEnded
}

// NewSongEndedEvent creates a new SongEndedEvent.
func NewSongEndedEvent(song Song) SongEndedEvent {
	return SongEndedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// SongProgressEvent is published on each media element time update.
type SongProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e SongProgressEvent) Type() EventType {
	return EventSongProgress
}

// NewSongProgressEvent creates a new SongProgressEvent.
func NewSongProgressEvent(position, duration time.Duration) SongProgressEvent {
	return SongProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// SongBufferingEvent is published when the transport enters or leaves the
// buffering sub-state.
type SongBufferingEvent struct {
	baseEvent
	Buffering bool
}

// Type returns the event type.
func (e SongBufferingEvent) Type() EventType {
	return EventSongBuffering
}

// NewSongBufferingEvent creates a new SongBufferingEvent.
func NewSongBufferingEvent(buffering bool) SongBufferingEvent {
	return SongBufferingEvent{
		baseEvent: newBaseEvent(),
		Buffering: buffering,
	}
}

// SongErrorEvent is published when a song fails to resolve, load or play.
type SongErrorEvent struct {
	baseEvent
	Song  Song
	Error error
}

// Type returns the event type.
func (e SongErrorEvent) Type() EventType {
	return EventSongError
}

// NewSongErrorEvent creates a new SongErrorEvent.
func NewSongErrorEvent(song Song, err error) SongErrorEvent {
	return SongErrorEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Error:     err,
	}
}

// PlayCountedEvent is the side channel that signals one successful play
// invocation for a song; the library service persists the increment.
// It fires once per play request, not per repeat-one loop iteration.
type PlayCountedEvent struct {
	baseEvent
	SongID string
}

// Type returns the event type.
func (e PlayCountedEvent) Type() EventType {
	return EventPlayCounted
}

// NewPlayCountedEvent creates a new PlayCountedEvent.
func NewPlayCountedEvent(songID string) PlayCountedEvent {
	return PlayCountedEvent{
		baseEvent: newBaseEvent(),
		SongID:    songID,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// MuteToggledEvent is published when mute is toggled.
type MuteToggledEvent struct {
	baseEvent
	Muted bool
}

// Type returns the event type.
func (e MuteToggledEvent) Type() EventType {
	return EventMuteToggled
}

// NewMuteToggledEvent creates a new MuteToggledEvent.
func NewMuteToggledEvent(muted bool) MuteToggledEvent {
	return MuteToggledEvent{
		baseEvent: newBaseEvent(),
		Muted:     muted,
	}
}

// RateChangedEvent is published when the playback rate changes.
type RateChangedEvent struct {
	baseEvent
	Rate float64
}

// Type returns the event type.
func (e RateChangedEvent) Type() EventType {
	return EventRateChanged
}

// NewRateChangedEvent creates a new RateChangedEvent.
func NewRateChangedEvent(rate float64) RateChangedEvent {
	return RateChangedEvent{
		baseEvent: newBaseEvent(),
		Rate:      rate,
	}
}

// ShuffleToggledEvent is published when shuffle mode is toggled.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e ShuffleToggledEvent) Type() EventType {
	return EventShuffleToggled
}

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{
		baseEvent: newBaseEvent(),
		Enabled:   enabled,
	}
}

// RepeatChangedEvent is published when the repeat mode changes.
type RepeatChangedEvent struct {
	baseEvent
	Mode RepeatMode
}

// Type returns the event type.
func (e RepeatChangedEvent) Type() EventType {
	return EventRepeatChanged
}

// NewRepeatChangedEvent creates a new RepeatChangedEvent.
func NewRepeatChangedEvent(mode RepeatMode) RepeatChangedEvent {
	return RepeatChangedEvent{
		baseEvent: newBaseEvent(),
		Mode:      mode,
	}
}

// QueueChangedEvent is published when the play queue changes.
type QueueChangedEvent struct {
	baseEvent
	Queue []Song
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType {
	return EventQueueChanged
}

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []Song) QueueChangedEvent {
	return QueueChangedEvent{
		baseEvent: newBaseEvent(),
		Queue:     queue,
	}
}

// LibraryUpdatedEvent is published when song records change (import,
// removal, metadata enrichment, play count, liked set).
type LibraryUpdatedEvent struct {
	baseEvent
	Songs []Song
}

// Type returns the event type.
func (e LibraryUpdatedEvent) Type() EventType {
	return EventLibraryUpdated
}

// NewLibraryUpdatedEvent creates a new LibraryUpdatedEvent.
func NewLibraryUpdatedEvent(songs []Song) LibraryUpdatedEvent {
	return LibraryUpdatedEvent{
		baseEvent: newBaseEvent(),
		Songs:     songs,
	}
}

// NotificationEvent carries a best-effort toast towards the host UI.
type NotificationEvent struct {
	baseEvent
	Notification Notification
}

// Type returns the event type.
func (e NotificationEvent) Type() EventType {
	return EventNotification
}

// NewNotificationEvent creates a new NotificationEvent.
func NewNotificationEvent(message string, severity Severity) NotificationEvent {
	return NotificationEvent{
		baseEvent:    newBaseEvent(),
		Notification: Notification{Message: message, Severity: severity},
	}
}
