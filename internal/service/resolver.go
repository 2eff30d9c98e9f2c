// Package service provides business logic for the Resona playback engine.
package service

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// ResolverService turns a Song into a locator the transport can load,
// preferring cached bytes over the network, with interactive re-import
// as the last resort.
//
// Thread-safety: all operations are thread-safe.
type ResolverService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	cache   ports.AudioCache
	songs   ports.SongStore
	fetcher ports.Fetcher
	picker  ports.FilePicker // nil when the host has no interactive selection

	// cacheCeiling bounds background-cached payloads in bytes
	cacheCeiling int64

	arena blobArena

	// Background cache fills in flight
	wg sync.WaitGroup
}

// NewResolverService creates a new resolver. picker may be nil when the
// host environment cannot prompt for files.
func NewResolverService(
	logger *slog.Logger,
	cache ports.AudioCache,
	songs ports.SongStore,
	fetcher ports.Fetcher,
	picker ports.FilePicker,
	cacheCeiling int64,
) *ResolverService {
	return &ResolverService{
		logger:       logger,
		cache:        cache,
		songs:        songs,
		fetcher:      fetcher,
		picker:       picker,
		cacheCeiling: cacheCeiling,
	}
}

// Resolve produces a playable locator for the song. Ordered, first
// success wins: cached blob, then the song's own locator, then
// interactive re-import. Resolution of any song invalidates the
// previous transient locator.
func (s *ResolverService) Resolve(song domain.Song) (domain.ResolvedLocator, error) {
	// Cached bytes always win; playback then needs no network.
	if blob, ok := s.cache.GetAudio(song.ID); ok {
		path, err := s.arena.Materialize(song.ID, blob)
		if err != nil {
			s.logger.Warn("failed to materialize cached blob, falling through",
				slog.String("id", song.ID),
				slog.Any("error", err))
		} else {
			s.logger.Debug("resolved from cache", slog.String("id", song.ID))
			return domain.ResolvedLocator{URL: path, Transient: true}, nil
		}
	}

	switch song.Locator.Kind {
	case domain.LocatorData:
		if song.Locator.URL != "" {
			return domain.ResolvedLocator{URL: song.Locator.URL}, nil
		}

	case domain.LocatorRemote:
		if song.Locator.URL != "" {
			s.startBackgroundCache(song)
			return domain.ResolvedLocator{URL: song.Locator.URL}, nil
		}

	case domain.LocatorImport:
		return s.resolveByImport(song)
	}

	return domain.ResolvedLocator{}, domain.NewPlaybackUnresolvedError(song.Title)
}

// resolveByImport prompts the user to re-select the song's file and
// persists the chosen path for future automatic resolution.
func (s *ResolverService) resolveByImport(song domain.Song) (domain.ResolvedLocator, error) {
	if s.picker == nil {
		s.logger.Debug("import required but no file picker available",
			slog.String("id", song.ID))
		return domain.ResolvedLocator{}, domain.NewPlaybackUnresolvedError(song.Title)
	}

	path, err := s.picker.PickFile(fmt.Sprintf("Locate %q", song.Title))
	if err != nil || path == "" {
		return domain.ResolvedLocator{}, domain.NewPlaybackUnresolvedError(song.Title)
	}

	// Remember the selection so the next resolution skips the prompt.
	song.Locator = domain.Locator{Kind: domain.LocatorData, URL: path}
	if err := s.songs.SaveSongs([]domain.Song{song}); err != nil {
		s.logger.Warn("failed to persist re-imported locator",
			slog.String("id", song.ID),
			slog.Any("error", err))
	}

	return domain.ResolvedLocator{URL: path}, nil
}

// startBackgroundCache opportunistically fetches and caches the song's
// remote payload. Runs off the resolution path; every failure is
// swallowed so it can never affect the foreground result.
func (s *ResolverService) startBackgroundCache(song domain.Song) {
	if !song.Locator.IsCacheable() {
		return
	}
	if s.cache.HasAudio(song.ID) {
		return
	}
	if !s.fetcher.Online() {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		data, err := s.fetcher.Fetch(song.Locator.URL, s.cacheCeiling)
		if err != nil {
			s.logger.Debug("background cache fetch failed",
				slog.String("id", song.ID),
				slog.Any("error", err))
			return
		}

		if err := s.cache.SaveAudio(song.ID, data); err != nil {
			s.logger.Debug("background cache write failed",
				slog.String("id", song.ID),
				slog.Any("error", err))
			return
		}

		s.logger.Debug("cached audio for offline playback",
			slog.String("id", song.ID),
			slog.Int("bytes", len(data)))
	}()
}

// Shutdown waits for in-flight background caching and releases the
// live transient locator.
func (s *ResolverService) Shutdown() {
	s.wg.Wait()
	s.arena.Release()
}

// blobArena materializes cached blobs as temp files, keeping at most
// one alive. Swapping in a new file removes the previous one so stale
// locators can never be reused.
type blobArena struct {
	mu   sync.Mutex
	path string
}

// Materialize writes the blob to a fresh temp file and frees the
// previously issued one.
func (a *blobArena) Materialize(id string, blob []byte) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("resona-%s-*", id))
	if err != nil {
		return "", domain.NewMediaError("materialize", id, "temp file creation failed", err)
	}

	if _, err := f.Write(blob); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", domain.NewMediaError("materialize", id, "temp file write failed", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", domain.NewMediaError("materialize", id, "temp file close failed", err)
	}

	a.mu.Lock()
	prev := a.path
	a.path = f.Name()
	a.mu.Unlock()

	if prev != "" {
		os.Remove(prev)
	}

	return f.Name(), nil
}

// Release frees the live locator, if any.
func (a *blobArena) Release() {
	a.mu.Lock()
	path := a.path
	a.path = ""
	a.mu.Unlock()

	if path != "" {
		os.Remove(path)
	}
}
