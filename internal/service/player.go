package service

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// PlayerService owns the single active media element and the playback
// state record. All mutation of the record is routed through this
// service; collaborators observe it via State and the event bus.
//
// Concurrency: PlaySong calls are serialized, and a generation counter
// guarantees the most recent call wins; an older in-flight call that
// loses the race leaves no trace on the loaded track. All operations
// are thread-safe.
type PlayerService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	element  ports.MediaElement
	resolver *ResolverService
	bus      ports.EventBus

	// Supersede control
	gen    atomic.Int64
	playMu sync.Mutex

	// State
	mu          sync.RWMutex
	state       domain.PlaybackState
	savedVolume float64 // volume before mute
}

// NewPlayerService creates the transport controller and registers the
// media callbacks exactly once for the element's lifetime.
func NewPlayerService(
	logger *slog.Logger,
	element ports.MediaElement,
	resolver *ResolverService,
	bus ports.EventBus,
) *PlayerService {
	s := &PlayerService{
		logger:   logger,
		element:  element,
		resolver: resolver,
		bus:      bus,
		state: domain.PlaybackState{
			Status: domain.StatusIdle,
			Volume: domain.DefaultVolume,
			Rate:   domain.DefaultRate,
			Repeat: domain.DefaultRepeat,
		},
	}

	element.SetCallbacks(ports.MediaCallbacks{
		OnTimeUpdate: s.onTimeUpdate,
		OnBuffering:  s.onBuffering,
		OnEnded:      s.onEnded,
		OnError:      s.onError,
	})

	logger.Debug("player service initialized")

	return s
}

// PlaySong resolves the song and starts playback. When calls overlap,
// the most recent one determines the loaded track; earlier calls
// return without touching the element. A transient locator resolved
// for a superseded call is released by the resolver on the next
// resolution.
func (s *PlayerService) PlaySong(song domain.Song) error {
	myGen := s.gen.Add(1)

	s.playMu.Lock()
	defer s.playMu.Unlock()

	if s.gen.Load() != myGen {
		s.logger.Debug("playSong superseded before start", slog.String("id", song.ID))
		return nil
	}

	s.mu.Lock()
	prevStatus := s.state.Status
	s.state.Status = domain.StatusLoading
	rate := s.state.Rate
	volume := s.state.Volume
	muted := s.state.IsMuted
	s.mu.Unlock()

	resolved, err := s.resolver.Resolve(song)
	if err != nil {
		s.mu.Lock()
		s.state.Status = prevStatus
		s.mu.Unlock()

		s.logger.Warn("song could not be resolved",
			slog.String("id", song.ID),
			slog.String("title", song.Title))
		s.notify(domain.SeverityWarning, "Cannot play "+song.Title+": no playable source")
		return err
	}

	if s.gen.Load() != myGen {
		s.logger.Debug("playSong superseded after resolve", slog.String("id", song.ID))
		return nil
	}

	// Reloading the same source would reset the element needlessly. A
	// replay after natural end still rewinds to the start.
	if s.element.Source() != resolved.URL {
		if err := s.element.Load(resolved.URL); err != nil {
			return s.failStart(song, err)
		}
	} else if prevStatus == domain.StatusEnded {
		if err := s.element.Seek(0); err != nil {
			s.logger.Warn("failed to rewind for replay", slog.Any("error", err))
		}
	}

	if err := s.element.SetRate(rate); err != nil {
		s.logger.Warn("failed to apply playback rate", slog.Any("error", err))
	}
	applied := volume
	if muted {
		applied = 0
	}
	if err := s.element.SetVolume(applied); err != nil {
		s.logger.Warn("failed to apply volume", slog.Any("error", err))
	}

	if err := s.element.Play(); err != nil {
		return s.failStart(song, err)
	}

	duration := s.element.Duration()

	s.mu.Lock()
	songCopy := song
	s.state.CurrentSong = &songCopy
	s.state.Status = domain.StatusPlaying
	s.state.Position = s.element.Position()
	s.state.Duration = duration
	s.mu.Unlock()

	s.bus.Publish(domain.NewSongLoadedEvent(song, duration, resolved.Transient))
	s.bus.Publish(domain.NewSongStartedEvent(song))
	// Play accounting is the library's concern, fired once per
	// successful invocation, not per repeat loop.
	s.bus.Publish(domain.NewPlayCountedEvent(song.ID))

	return nil
}

// failStart transitions to Error and surfaces the failure as a
// per-track notification.
func (s *PlayerService) failStart(song domain.Song, cause error) error {
	s.mu.Lock()
	s.state.Status = domain.StatusError
	s.mu.Unlock()

	err := domain.NewPlaybackStartFailedError(song.Title, cause)
	s.logger.Error("playback start failed",
		slog.String("id", song.ID),
		slog.Any("error", cause))

	s.bus.Publish(domain.NewSongErrorEvent(song, err))
	s.notify(domain.SeverityError, "Playback failed for "+song.Title)

	return err
}

// TogglePlayPause toggles between Playing and Paused. No-op when no
// song is loaded.
func (s *PlayerService) TogglePlayPause() error {
	s.mu.Lock()

	switch s.state.Status {
	case domain.StatusPlaying, domain.StatusBuffering:
		song := s.state.CurrentSong
		pos := s.state.Position
		s.state.Status = domain.StatusPaused
		s.mu.Unlock()

		if err := s.element.Pause(); err != nil {
			return err
		}
		if song != nil {
			s.bus.Publish(domain.NewSongPausedEvent(*song, pos))
		}
		return nil

	case domain.StatusPaused, domain.StatusEnded:
		song := s.state.CurrentSong
		if song == nil {
			s.mu.Unlock()
			return domain.ErrNoSongLoaded
		}
		s.state.Status = domain.StatusPlaying
		s.mu.Unlock()

		if err := s.element.Play(); err != nil {
			return err
		}
		s.bus.Publish(domain.NewSongStartedEvent(*song))
		return nil

	default:
		s.mu.Unlock()
		return nil
	}
}

// SeekTo moves the playhead, clamped to the track bounds. Position is
// updated optimistically before the element confirms.
func (s *PlayerService) SeekTo(position time.Duration) error {
	s.mu.Lock()

	if s.state.CurrentSong == nil {
		s.mu.Unlock()
		return domain.ErrNoSongLoaded
	}

	if position < 0 {
		position = 0
	}
	if d := s.state.Duration; position > d {
		position = d
	}
	s.state.Position = position
	s.mu.Unlock()

	return s.element.Seek(position)
}

// SkipForward advances the playhead by delta, clamped to the track end.
func (s *PlayerService) SkipForward(delta time.Duration) error {
	s.mu.RLock()
	pos := s.state.Position
	s.mu.RUnlock()
	return s.SeekTo(pos + delta)
}

// SkipBackward rewinds the playhead by delta, clamped to zero.
func (s *PlayerService) SkipBackward(delta time.Duration) error {
	s.mu.RLock()
	pos := s.state.Position
	s.mu.RUnlock()
	return s.SeekTo(pos - delta)
}

// SetVolume sets the absolute level and clears mute.
func (s *PlayerService) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.state.Volume = volume
	wasMuted := s.state.IsMuted
	s.state.IsMuted = false
	s.mu.Unlock()

	if err := s.element.SetVolume(volume); err != nil {
		return err
	}

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	if wasMuted {
		s.bus.Publish(domain.NewMuteToggledEvent(false))
	}
	return nil
}

// ToggleMute silences the element, remembering the level so a second
// toggle restores it exactly.
func (s *PlayerService) ToggleMute() error {
	s.mu.Lock()

	var target float64
	if s.state.IsMuted {
		s.state.IsMuted = false
		s.state.Volume = s.savedVolume
		target = s.savedVolume
	} else {
		s.savedVolume = s.state.Volume
		s.state.IsMuted = true
		target = 0
	}
	muted := s.state.IsMuted
	s.mu.Unlock()

	if err := s.element.SetVolume(target); err != nil {
		return err
	}

	s.bus.Publish(domain.NewMuteToggledEvent(muted))
	return nil
}

// SetRate applies the playback rate to the live transport.
func (s *PlayerService) SetRate(rate float64) error {
	if rate <= 0 {
		return domain.ErrInvalidRate
	}

	s.mu.Lock()
	s.state.Rate = rate
	s.mu.Unlock()

	if err := s.element.SetRate(rate); err != nil {
		return err
	}

	s.bus.Publish(domain.NewRateChangedEvent(rate))
	return nil
}

// SetShuffled records the shuffle flag. Sequencing behavior lives in
// the queue service; this keeps the flag on the single state record.
func (s *PlayerService) SetShuffled(shuffled bool) {
	s.mu.Lock()
	changed := s.state.IsShuffled != shuffled
	s.state.IsShuffled = shuffled
	s.mu.Unlock()

	if changed {
		s.bus.Publish(domain.NewShuffleToggledEvent(shuffled))
	}
}

// SetRepeat records the repeat mode on the state record.
func (s *PlayerService) SetRepeat(mode domain.RepeatMode) {
	s.mu.Lock()
	changed := s.state.Repeat != mode
	s.state.Repeat = mode
	s.mu.Unlock()

	if changed {
		s.bus.Publish(domain.NewRepeatChangedEvent(mode))
	}
}

// Stop halts playback and clears the current song.
func (s *PlayerService) Stop() error {
	s.mu.Lock()
	s.state.CurrentSong = nil
	s.state.Status = domain.StatusIdle
	s.state.Position = 0
	s.state.Duration = 0
	s.mu.Unlock()

	return s.element.Stop()
}

// State returns a copy of the playback state record.
func (s *PlayerService) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if s.state.CurrentSong != nil {
		song := *s.state.CurrentSong
		state.CurrentSong = &song
	}
	return state
}

// Shutdown stops playback and drops the current song.
func (s *PlayerService) Shutdown() error {
	return s.Stop()
}

func (s *PlayerService) notify(severity domain.Severity, message string) {
	s.bus.Publish(domain.NewNotificationEvent(message, severity))
}

// === Media callbacks ===

func (s *PlayerService) onTimeUpdate(position, duration time.Duration) {
	s.mu.Lock()
	if s.state.CurrentSong == nil {
		s.mu.Unlock()
		return
	}
	s.state.Position = position
	if duration > 0 {
		s.state.Duration = duration
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewSongProgressEvent(position, duration))
}

func (s *PlayerService) onBuffering(stalled bool) {
	s.mu.Lock()
	switch {
	case stalled && s.state.Status == domain.StatusPlaying:
		s.state.Status = domain.StatusBuffering
	case !stalled && s.state.Status == domain.StatusBuffering:
		s.state.Status = domain.StatusPlaying
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewSongBufferingEvent(stalled))
}

// onEnded marks the natural end of the track. The sequencer decides
// what plays next by subscribing to the ended event.
func (s *PlayerService) onEnded() {
	s.mu.Lock()
	song := s.state.CurrentSong
	if song == nil {
		s.mu.Unlock()
		return
	}
	ended := *song
	s.state.Status = domain.StatusEnded
	s.state.Position = s.state.Duration
	s.mu.Unlock()

	s.bus.Publish(domain.NewSongEndedEvent(ended))
}

func (s *PlayerService) onError(err error) {
	s.mu.Lock()
	song := s.state.CurrentSong
	s.state.Status = domain.StatusError
	s.mu.Unlock()

	s.logger.Error("media element reported failure", slog.Any("error", err))

	if song != nil {
		s.bus.Publish(domain.NewSongErrorEvent(*song, err))
		s.notify(domain.SeverityError, "Playback failed for "+song.Title)
	}
}
