package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// LibraryService owns the song catalog and the liked subset, keeping
// both durable. Play counts arrive over the bus rather than direct
// calls so the transport stays decoupled from accounting.
//
// Thread-safety: all operations are thread-safe.
type LibraryService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	store   ports.SongStore
	cache   ports.AudioCache
	fetcher ports.Fetcher
	bus     ports.EventBus

	mu    sync.RWMutex
	songs map[string]domain.Song
	liked map[string]bool

	countSub  domain.SubscriptionID
	loadedSub domain.SubscriptionID
}

// NewLibraryService creates the library and loads persisted records.
func NewLibraryService(
	logger *slog.Logger,
	store ports.SongStore,
	cache ports.AudioCache,
	fetcher ports.Fetcher,
	bus ports.EventBus,
) *LibraryService {
	s := &LibraryService{
		logger:  logger,
		store:   store,
		cache:   cache,
		fetcher: fetcher,
		bus:     bus,
		songs:   make(map[string]domain.Song),
		liked:   make(map[string]bool),
	}

	for _, song := range store.GetAllSongs() {
		s.songs[song.ID] = song
	}
	for _, song := range store.GetLikedSongs() {
		s.liked[song.ID] = true
	}

	s.countSub = bus.Subscribe(domain.EventPlayCounted, s.handlePlayCounted)
	s.loadedSub = bus.Subscribe(domain.EventSongLoaded, s.handleSongLoaded)

	logger.Debug("library service initialized", slog.Int("songs", len(s.songs)))

	return s
}

// AllSongs returns the catalog sorted by title for stable sequencing.
func (s *LibraryService) AllSongs() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// sortedLocked builds the sorted catalog view. Caller holds s.mu.
func (s *LibraryService) sortedLocked() []domain.Song {
	songs := make([]domain.Song, 0, len(s.songs))
	for _, song := range s.songs {
		songs = append(songs, song)
	}
	sort.Slice(songs, func(i, j int) bool {
		if songs[i].Title != songs[j].Title {
			return songs[i].Title < songs[j].Title
		}
		return songs[i].ID < songs[j].ID
	})
	return songs
}

// Song looks up a single record by id.
func (s *LibraryService) Song(id string) (domain.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	song, ok := s.songs[id]
	if !ok {
		return domain.Song{}, domain.ErrSongNotFound
	}
	return song, nil
}

// AddSongs upserts records and persists them.
func (s *LibraryService) AddSongs(songs []domain.Song) error {
	if len(songs) == 0 {
		return nil
	}

	if err := s.store.SaveSongs(songs); err != nil {
		return err
	}

	s.mu.Lock()
	for _, song := range songs {
		s.songs[song.ID] = song
	}
	updated := s.sortedLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.NewLibraryUpdatedEvent(updated))
	return nil
}

// ImportFile creates a song record from a local audio file, reading
// embedded tags when present and falling back to the filename.
func (s *LibraryService) ImportFile(path string) (domain.Song, error) {
	song := domain.Song{
		ID:      uuid.NewString(),
		Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Locator: domain.Locator{Kind: domain.LocatorData, URL: path},
	}

	if f, err := os.Open(path); err == nil {
		if meta, err := tag.ReadFrom(f); err == nil && meta != nil {
			if title := strings.TrimSpace(meta.Title()); title != "" {
				song.Title = title
			}
			song.Artist = strings.TrimSpace(meta.Artist())
			song.Album = strings.TrimSpace(meta.Album())
			if pic := meta.Picture(); pic != nil {
				song.CoverArt = pic.Data
			}
		}
		f.Close()
	} else {
		return domain.Song{}, domain.NewMediaError("import", path, "file not readable", err)
	}

	if err := s.AddSongs([]domain.Song{song}); err != nil {
		return domain.Song{}, err
	}

	s.logger.Info("imported song",
		slog.String("id", song.ID),
		slog.String("title", song.Title))

	return song, nil
}

// Remove deletes a song record and evicts its cached audio.
func (s *LibraryService) Remove(id string) error {
	s.mu.Lock()
	if _, ok := s.songs[id]; !ok {
		s.mu.Unlock()
		return domain.ErrSongNotFound
	}
	delete(s.songs, id)
	wasLiked := s.liked[id]
	delete(s.liked, id)
	updated := s.sortedLocked()
	liked := s.likedLocked()
	s.mu.Unlock()

	if err := s.store.DeleteSong(id); err != nil {
		return err
	}
	if err := s.cache.DeleteAudio(id); err != nil {
		s.logger.Warn("failed to evict cached audio", slog.String("id", id), slog.Any("error", err))
	}
	if wasLiked {
		if err := s.store.SaveLikedSongs(liked); err != nil {
			s.logger.Warn("failed to persist liked set", slog.Any("error", err))
		}
	}

	s.bus.Publish(domain.NewLibraryUpdatedEvent(updated))
	return nil
}

// ToggleLiked flips the liked flag for a song and persists the subset.
func (s *LibraryService) ToggleLiked(id string) (bool, error) {
	s.mu.Lock()
	if _, ok := s.songs[id]; !ok {
		s.mu.Unlock()
		return false, domain.ErrSongNotFound
	}

	nowLiked := !s.liked[id]
	if nowLiked {
		s.liked[id] = true
	} else {
		delete(s.liked, id)
	}
	liked := s.likedLocked()
	s.mu.Unlock()

	if err := s.store.SaveLikedSongs(liked); err != nil {
		return nowLiked, err
	}
	return nowLiked, nil
}

// LikedSongs returns the liked subset sorted by title.
func (s *LibraryService) LikedSongs() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedLocked()
}

// likedLocked builds the liked subset view. Caller holds s.mu.
func (s *LibraryService) likedLocked() []domain.Song {
	songs := make([]domain.Song, 0, len(s.liked))
	for id := range s.liked {
		if song, ok := s.songs[id]; ok {
			songs = append(songs, song)
		}
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].Title < songs[j].Title })
	return songs
}

// IsLiked reports whether a song is in the liked subset.
func (s *LibraryService) IsLiked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked[id]
}

// Download fetches a song's remote payload and caches it for offline
// playback. Unlike the resolver's opportunistic path this one is
// explicit and reports failures to the caller.
func (s *LibraryService) Download(id string, ceiling int64) error {
	song, err := s.Song(id)
	if err != nil {
		return err
	}
	if !song.Locator.IsCacheable() {
		return domain.NewMediaError("download", song.Locator.URL, "locator is not fetchable", nil)
	}
	if !s.fetcher.Online() {
		return domain.ErrOffline
	}

	data, err := s.fetcher.Fetch(song.Locator.URL, ceiling)
	if err != nil {
		return err
	}
	if err := s.cache.SaveAudio(id, data); err != nil {
		return err
	}

	s.logger.Info("downloaded song for offline playback",
		slog.String("id", id),
		slog.Int("bytes", len(data)))
	return nil
}

// RemoveDownload evicts a song's cached audio, keeping the record.
func (s *LibraryService) RemoveDownload(id string) error {
	return s.cache.DeleteAudio(id)
}

// IsDownloaded reports whether the song can play offline.
func (s *LibraryService) IsDownloaded(id string) bool {
	return s.cache.HasAudio(id)
}

// Shutdown detaches from the event bus.
func (s *LibraryService) Shutdown() {
	s.bus.Unsubscribe(s.countSub)
	s.bus.Unsubscribe(s.loadedSub)
}

// handleSongLoaded records the duration the media element reported.
func (s *LibraryService) handleSongLoaded(e domain.Event) {
	loaded, ok := e.(domain.SongLoadedEvent)
	if !ok {
		return
	}
	s.EnrichDuration(loaded.Song.ID, loaded.Duration)
}

// handlePlayCounted increments and persists a song's play count.
func (s *LibraryService) handlePlayCounted(e domain.Event) {
	counted, ok := e.(domain.PlayCountedEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	song, ok := s.songs[counted.SongID]
	if !ok {
		s.mu.Unlock()
		return
	}
	song.PlayCount++
	s.songs[song.ID] = song
	s.mu.Unlock()

	if err := s.store.SaveSongs([]domain.Song{song}); err != nil {
		s.logger.Warn("failed to persist play count",
			slog.String("id", song.ID),
			slog.Any("error", err))
	}
}

// EnrichDuration records the duration the media element reported after
// load, which may differ from the imported metadata.
func (s *LibraryService) EnrichDuration(id string, duration time.Duration) {
	if duration <= 0 {
		return
	}

	s.mu.Lock()
	song, ok := s.songs[id]
	if !ok || song.Duration == duration {
		s.mu.Unlock()
		return
	}
	song.Duration = duration
	s.songs[song.ID] = song
	s.mu.Unlock()

	if err := s.store.SaveSongs([]domain.Song{song}); err != nil {
		s.logger.Warn("failed to persist duration",
			slog.String("id", id),
			slog.Any("error", err))
	}
}
