package service

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// restartThreshold is how far into a track "previous" restarts it
// instead of moving back.
const restartThreshold = 3 * time.Second

// QueueService owns the explicit play queue and decides what plays
// next. Queue contents take strict priority over library sequencing;
// the queue itself is transient and never persisted.
//
// Thread-safety: all operations are thread-safe.
type QueueService struct {
	// Dependencies (injected)
	logger *slog.Logger
	player *PlayerService
	bus    ports.EventBus

	mu      sync.Mutex
	queue   []domain.Song
	library []domain.Song // active list used for next/previous sequencing

	endedSub   domain.SubscriptionID
	librarySub domain.SubscriptionID
}

// NewQueueService creates the sequencer and hooks it to the natural
// end-of-track signal.
func NewQueueService(logger *slog.Logger, player *PlayerService, bus ports.EventBus) *QueueService {
	s := &QueueService{
		logger: logger,
		player: player,
		bus:    bus,
	}

	s.endedSub = bus.Subscribe(domain.EventSongEnded, s.handleSongEnded)
	s.librarySub = bus.Subscribe(domain.EventLibraryUpdated, s.handleLibraryUpdated)

	logger.Debug("queue service initialized")

	return s
}

// SetLibrary replaces the active library list used for sequencing.
func (s *QueueService) SetLibrary(songs []domain.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.library = make([]domain.Song, len(songs))
	copy(s.library, songs)
}

// AddToQueue appends a song. Duplicates are allowed.
func (s *QueueService) AddToQueue(song domain.Song) {
	s.mu.Lock()
	s.queue = append(s.queue, song)
	queue := s.snapshotLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewQueueChangedEvent(queue))
}

// AddMultipleToQueue appends songs preserving their order.
func (s *QueueService) AddMultipleToQueue(songs []domain.Song) {
	if len(songs) == 0 {
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, songs...)
	queue := s.snapshotLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewQueueChangedEvent(queue))
}

// RemoveFromQueue removes every entry matching the id. Queue entries
// are addressed by song id, not position, so duplicates go together.
func (s *QueueService) RemoveFromQueue(id string) {
	s.mu.Lock()

	kept := s.queue[:0]
	removed := false
	for _, song := range s.queue {
		if song.ID == id {
			removed = true
			continue
		}
		kept = append(kept, song)
	}
	s.queue = kept
	queue := s.snapshotLocked()
	s.mu.Unlock()

	if removed {
		s.bus.Publish(domain.NewQueueChangedEvent(queue))
	}
}

// MoveInQueue relocates a single entry. Out-of-range indices are a
// silent no-op.
func (s *QueueService) MoveInQueue(from, to int) {
	s.mu.Lock()

	n := len(s.queue)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		s.mu.Unlock()
		return
	}

	song := s.queue[from]
	s.queue = append(s.queue[:from], s.queue[from+1:]...)
	s.queue = append(s.queue[:to], append([]domain.Song{song}, s.queue[to:]...)...)
	queue := s.snapshotLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewQueueChangedEvent(queue))
}

// ClearQueue empties the queue synchronously.
func (s *QueueService) ClearQueue() {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()

	s.bus.Publish(domain.NewQueueChangedEvent(nil))
}

// Queue returns a copy of the queue contents.
func (s *QueueService) Queue() []domain.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the queue. Caller holds s.mu.
func (s *QueueService) snapshotLocked() []domain.Song {
	out := make([]domain.Song, len(s.queue))
	copy(out, s.queue)
	return out
}

// PlayNext advances explicitly. Repeat-one never hijacks an explicit
// skip.
func (s *QueueService) PlayNext() error {
	return s.advance()
}

// PlayPrev restarts the current track when more than a few seconds in,
// otherwise moves to the previous library entry, wrapping to the end.
func (s *QueueService) PlayPrev() error {
	state := s.player.State()

	if state.CurrentSong != nil && state.Position > restartThreshold {
		return s.player.SeekTo(0)
	}

	s.mu.Lock()
	if len(s.library) == 0 {
		s.mu.Unlock()
		return domain.ErrLibraryEmpty
	}

	idx := 0
	if state.CurrentSong != nil {
		idx = s.indexOfLocked(state.CurrentSong.ID)
	}
	prev := idx - 1
	if prev < 0 {
		prev = len(s.library) - 1
	}
	song := s.library[prev]
	s.mu.Unlock()

	return s.player.PlaySong(song)
}

// ToggleShuffle flips shuffle mode. Enabling it immediately starts a
// random track rather than waiting for the current one to end.
func (s *QueueService) ToggleShuffle() error {
	enabled := !s.player.State().IsShuffled
	s.player.SetShuffled(enabled)

	if !enabled {
		return nil
	}

	s.mu.Lock()
	song, ok := s.randomSongLocked(s.player.State().CurrentSong)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.player.PlaySong(song)
}

// ToggleRepeat cycles the repeat mode off, all, one.
func (s *QueueService) ToggleRepeat() {
	s.player.SetRepeat(domain.NextRepeatMode(s.player.State().Repeat))
}

// Shutdown detaches from the event bus.
func (s *QueueService) Shutdown() {
	s.bus.Unsubscribe(s.endedSub)
	s.bus.Unsubscribe(s.librarySub)
}

// handleLibraryUpdated keeps the active list in step with the library.
func (s *QueueService) handleLibraryUpdated(e domain.Event) {
	updated, ok := e.(domain.LibraryUpdatedEvent)
	if !ok {
		return
	}
	s.SetLibrary(updated.Songs)
}

// handleSongEnded reacts to natural end-of-track. This is the only
// path where repeat-one replays the same song.
func (s *QueueService) handleSongEnded(e domain.Event) {
	ended, ok := e.(domain.SongEndedEvent)
	if !ok {
		return
	}

	if s.player.State().Repeat == domain.RepeatOne {
		if err := s.player.PlaySong(ended.Song); err != nil {
			s.logger.Warn("failed to replay song", slog.Any("error", err))
		}
		return
	}

	if err := s.advance(); err != nil {
		s.logger.Debug("no next track after natural end", slog.Any("error", err))
	}
}

// advance implements the next-track decision: queue head first, then
// shuffle pick, then the next library index.
func (s *QueueService) advance() error {
	state := s.player.State()

	s.mu.Lock()

	// 1. Queue contents override library sequencing.
	if len(s.queue) > 0 {
		song := s.queue[0]
		s.queue = s.queue[1:]
		queue := s.snapshotLocked()
		s.mu.Unlock()

		s.bus.Publish(domain.NewQueueChangedEvent(queue))
		return s.player.PlaySong(song)
	}

	if len(s.library) == 0 {
		s.mu.Unlock()
		return domain.ErrLibraryEmpty
	}

	// 2. Shuffle picks uniformly, avoiding an immediate repeat.
	if state.IsShuffled {
		song, ok := s.randomSongLocked(state.CurrentSong)
		s.mu.Unlock()
		if !ok {
			return domain.ErrLibraryEmpty
		}
		return s.player.PlaySong(song)
	}

	// 3. Sequential advance, wrapping to the start.
	idx := -1
	if state.CurrentSong != nil {
		idx = s.indexOfLocked(state.CurrentSong.ID)
	}
	next := idx + 1
	wrapped := next >= len(s.library)
	if wrapped {
		next = 0
	}

	// 4. Repeat-off means the list plays once.
	if wrapped && state.Repeat == domain.RepeatOff {
		s.mu.Unlock()
		return s.player.Stop()
	}

	song := s.library[next]
	s.mu.Unlock()

	return s.player.PlaySong(song)
}

// randomSongLocked picks a uniformly random library song, excluding
// current when the library holds more than one track. Caller holds
// s.mu.
func (s *QueueService) randomSongLocked(current *domain.Song) (domain.Song, bool) {
	if len(s.library) == 0 {
		return domain.Song{}, false
	}
	if len(s.library) == 1 {
		return s.library[0], true
	}

	for {
		song := s.library[rand.Intn(len(s.library))]
		if current == nil || song.ID != current.ID {
			return song, true
		}
	}
}

// indexOfLocked finds the song's position in the active library list,
// -1 when absent. Caller holds s.mu.
func (s *QueueService) indexOfLocked(id string) int {
	for i, song := range s.library {
		if song.ID == id {
			return i
		}
	}
	return -1
}
