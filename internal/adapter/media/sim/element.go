// Package sim provides a headless, clock-driven implementation of the
// MediaElement interface. Playback advances a virtual playhead on a
// wall-clock ticker scaled by the playback rate, firing the same
// callback sequence a real media surface would. It backs the CLI when
// no audio device is wanted.
package sim

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// DefaultTrackDuration is assumed for sources whose real length is
// unknowable without decoding.
const DefaultTrackDuration = 3 * time.Minute

// Element simulates media playback against a wall clock.
//
// Thread-safety: this implementation is thread-safe. Callbacks are
// invoked from the ticker goroutine without holding the element lock.
type Element struct {
	logger   *slog.Logger
	interval time.Duration

	mu        sync.Mutex
	source    string
	position  time.Duration
	duration  time.Duration
	rate      float64
	volume    float64
	playing   bool
	callbacks ports.MediaCallbacks

	ticker chan struct{} // closed to stop the active ticker goroutine
	wg     sync.WaitGroup
	closed bool
}

// NewElement creates a simulated media element. The interval controls
// the cadence of OnTimeUpdate callbacks.
func NewElement(logger *slog.Logger, interval time.Duration) *Element {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Element{
		logger:   logger,
		interval: interval,
		rate:     1.0,
		volume:   1.0,
		duration: DefaultTrackDuration,
	}
}

// Load binds a new source. File sources must exist on disk; remote
// sources are accepted as-is since the simulator never dereferences
// them.
func (e *Element) Load(source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.NewMediaError("load", source, "element closed", nil)
	}
	if source == "" {
		return domain.NewMediaError("load", source, "empty source", nil)
	}

	if path, ok := localPath(source); ok {
		if _, err := os.Stat(path); err != nil {
			return domain.NewMediaError("load", source, "source not readable", err)
		}
	}

	e.stopTickerLocked()
	e.source = source
	e.position = 0
	e.playing = false
	return nil
}

// localPath extracts a filesystem path from a source, reporting false
// for remote and data sources.
func localPath(source string) (string, bool) {
	switch {
	case strings.HasPrefix(source, "file://"):
		return strings.TrimPrefix(source, "file://"), true
	case strings.Contains(source, "://"):
		return "", false
	case strings.HasPrefix(source, "data:"):
		return "", false
	default:
		return source, true
	}
}

// Source returns the currently bound source.
func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Play starts or resumes the playhead clock.
func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == "" {
		return domain.ErrNoSongLoaded
	}
	if e.playing {
		return nil
	}

	e.playing = true
	e.startTickerLocked()
	return nil
}

// Pause freezes the playhead keeping position.
func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playing = false
	e.stopTickerLocked()
	return nil
}

// Stop halts playback and unbinds the source.
func (e *Element) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playing = false
	e.stopTickerLocked()
	e.source = ""
	e.position = 0
	return nil
}

// Seek moves the playhead, clamped to the track bounds.
func (e *Element) Seek(position time.Duration) error {
	e.mu.Lock()

	if e.source == "" {
		e.mu.Unlock()
		return domain.ErrNoSongLoaded
	}

	if position < 0 {
		position = 0
	}
	if position > e.duration {
		position = e.duration
	}
	e.position = position
	cb := e.callbacks
	dur := e.duration
	e.mu.Unlock()

	if cb.OnTimeUpdate != nil {
		cb.OnTimeUpdate(position, dur)
	}
	return nil
}

// Position returns the current playhead position.
func (e *Element) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Duration returns the simulated track length.
func (e *Element) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// SetTrackDuration overrides the simulated length for the next loads.
func (e *Element) SetTrackDuration(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.duration = d
	}
}

// SetVolume records the volume; the simulator produces no sound.
func (e *Element) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	e.volume = volume
	return nil
}

// SetRate scales how fast the playhead advances per wall-clock tick.
func (e *Element) SetRate(rate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rate <= 0 {
		return domain.ErrInvalidRate
	}
	e.rate = rate
	return nil
}

// SetCallbacks registers the callback set fired by the ticker.
func (e *Element) SetCallbacks(callbacks ports.MediaCallbacks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = callbacks
}

// Close stops the clock and releases the element.
func (e *Element) Close() error {
	e.mu.Lock()
	e.closed = true
	e.playing = false
	e.stopTickerLocked()
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}

// startTickerLocked launches the playhead goroutine. Caller holds e.mu.
func (e *Element) startTickerLocked() {
	stop := make(chan struct{})
	e.ticker = stop

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		t := time.NewTicker(e.interval)
		defer t.Stop()

		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if ended := e.advance(); ended {
					return
				}
			}
		}
	}()
}

// stopTickerLocked signals the active goroutine to exit. Caller holds
// e.mu.
func (e *Element) stopTickerLocked() {
	if e.ticker != nil {
		close(e.ticker)
		e.ticker = nil
	}
}

// advance moves the playhead one tick and fires callbacks. Reports true
// when the track reached its natural end.
func (e *Element) advance() bool {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return false
	}

	e.position += time.Duration(float64(e.interval) * e.rate)
	ended := e.position >= e.duration
	if ended {
		e.position = e.duration
		e.playing = false
		e.ticker = nil
	}
	pos, dur := e.position, e.duration
	cb := e.callbacks
	e.mu.Unlock()

	if cb.OnTimeUpdate != nil {
		cb.OnTimeUpdate(pos, dur)
	}
	if ended && cb.OnEnded != nil {
		cb.OnEnded()
	}
	return ended
}

// Verify interface implementation
var _ ports.MediaElement = (*Element)(nil)
