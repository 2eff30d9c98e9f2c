package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thall/resona/internal/adapter/store"
	"github.com/thall/resona/internal/logger"
)

// newTestStore opens a bolt store on a temp dir, closed with the test.
func newTestStore(t *testing.T) *store.BoltStore {
	t.Helper()
	s, err := store.NewBoltStore(logger.NewTestLogger(), t.TempDir(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeFetcher serves canned payloads per URL and records fetches.
type fakeFetcher struct {
	mu       sync.Mutex
	online   bool
	payloads map[string][]byte
	fetched  []string
	fetchErr error
}

func newFakeFetcher(online bool) *fakeFetcher {
	return &fakeFetcher{
		online:   online,
		payloads: make(map[string][]byte),
	}
}

func (f *fakeFetcher) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeFetcher) Fetch(url string, limit int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, url)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	data, ok := f.payloads[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

// fakePicker returns a fixed path, or an error when path is empty.
type fakePicker struct {
	mu    sync.Mutex
	path  string
	calls int
}

func (p *fakePicker) PickFile(title string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.path == "" {
		return "", errors.New("selection cancelled")
	}
	return p.path, nil
}

func (p *fakePicker) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
