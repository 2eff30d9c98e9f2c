// Package mock provides a mock implementation of the MediaElement
// interface. It simulates a media surface in memory so services can be
// tested without a real playback backend, with hooks for driving
// progress, buffering and end-of-track from tests.
//
// Thread-safety: this implementation is thread-safe.
package mock

import (
	"sync"
	"time"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// Element is a mock implementation of the MediaElement interface.
type Element struct {
	mu sync.Mutex

	source    string
	position  time.Duration
	duration  time.Duration
	playing   bool
	volume    float64
	rate      float64
	callbacks ports.MediaCallbacks
	closed    bool

	// Behavior configuration (for testing error scenarios)
	failLoad bool
	failPlay bool
	failSeek bool

	// Call recording
	loadCalls []string
}

// NewElement creates a new mock media element with a three minute
// default track length.
func NewElement() *Element {
	return &Element{
		duration: 3 * time.Minute,
		volume:   1.0,
		rate:     1.0,
	}
}

// SetFailLoad configures the mock to fail Load calls.
func (m *Element) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail Play calls.
func (m *Element) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetFailSeek configures the mock to fail Seek calls.
func (m *Element) SetFailSeek(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSeek = fail
}

// SetTrackDuration sets the duration reported for subsequently loaded
// sources.
func (m *Element) SetTrackDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// LoadCalls returns the sources passed to Load, in order.
func (m *Element) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.loadCalls))
	copy(calls, m.loadCalls)
	return calls
}

// Load binds the element to a new source and resets position.
func (m *Element) Load(source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadCalls = append(m.loadCalls, source)

	if m.failLoad {
		return domain.NewMediaError("load", source, "mock load failed", nil)
	}
	if source == "" {
		return domain.NewMediaError("load", source, "empty source", nil)
	}

	m.source = source
	m.position = 0
	m.playing = false
	return nil
}

// Source returns the currently bound source.
func (m *Element) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// Play starts or resumes playback of the bound source.
func (m *Element) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPlay {
		return domain.NewMediaError("play", m.source, "mock play failed", nil)
	}
	if m.source == "" {
		return domain.ErrNoSongLoaded
	}

	m.playing = true
	return nil
}

// Pause freezes playback keeping position.
func (m *Element) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	return nil
}

// Stop halts playback and unbinds the source.
func (m *Element) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.source = ""
	m.position = 0
	return nil
}

// Seek moves the playhead.
func (m *Element) Seek(position time.Duration) error {
	m.mu.Lock()

	if m.failSeek {
		m.mu.Unlock()
		return domain.NewMediaError("seek", m.source, "mock seek failed", nil)
	}
	if m.source == "" {
		m.mu.Unlock()
		return domain.ErrNoSongLoaded
	}

	m.position = position
	cb := m.callbacks
	dur := m.duration
	m.mu.Unlock()

	if cb.OnTimeUpdate != nil {
		cb.OnTimeUpdate(position, dur)
	}
	return nil
}

// Position returns the current playhead position.
func (m *Element) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Duration returns the bound track's length.
func (m *Element) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// SetVolume sets playback volume.
func (m *Element) SetVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	m.volume = volume
	return nil
}

// Volume returns the last set volume.
func (m *Element) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SetRate sets the playback rate.
func (m *Element) SetRate(rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rate <= 0 {
		return domain.ErrInvalidRate
	}
	m.rate = rate
	return nil
}

// Rate returns the last set rate.
func (m *Element) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// IsPlaying reports whether the element is currently playing.
func (m *Element) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// SetCallbacks registers the callback set invoked by the Simulate
// helpers.
func (m *Element) SetCallbacks(callbacks ports.MediaCallbacks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = callbacks
}

// Close releases the element.
func (m *Element) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.playing = false
	return nil
}

// === Simulation helpers ===

// SimulateProgress advances the playhead and fires OnTimeUpdate.
func (m *Element) SimulateProgress(position time.Duration) {
	m.mu.Lock()
	m.position = position
	cb := m.callbacks
	dur := m.duration
	m.mu.Unlock()

	if cb.OnTimeUpdate != nil {
		cb.OnTimeUpdate(position, dur)
	}
}

// SimulateBuffering fires OnBuffering.
func (m *Element) SimulateBuffering(stalled bool) {
	m.mu.Lock()
	cb := m.callbacks
	m.mu.Unlock()

	if cb.OnBuffering != nil {
		cb.OnBuffering(stalled)
	}
}

// SimulateEnd drives the track to its natural end: a final
// OnTimeUpdate at full duration, then OnEnded.
func (m *Element) SimulateEnd() {
	m.mu.Lock()
	m.position = m.duration
	m.playing = false
	cb := m.callbacks
	dur := m.duration
	m.mu.Unlock()

	if cb.OnTimeUpdate != nil {
		cb.OnTimeUpdate(dur, dur)
	}
	if cb.OnEnded != nil {
		cb.OnEnded()
	}
}

// SimulateError fires OnError.
func (m *Element) SimulateError(err error) {
	m.mu.Lock()
	m.playing = false
	cb := m.callbacks
	m.mu.Unlock()

	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// Verify interface implementation
var _ ports.MediaElement = (*Element)(nil)
