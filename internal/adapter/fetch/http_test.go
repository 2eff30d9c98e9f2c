package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/logger"
)

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	return NewHTTPFetcher(logger.NewTestLogger(), Options{Timeout: 5 * time.Second})
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	data, err := newTestFetcher(t).Fetch(srv.URL, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(srv.URL, 0)
	require.Error(t, err)

	var mediaErr *domain.MediaError
	assert.ErrorAs(t, err, &mediaErr)
}

func TestFetchRespectsLimit(t *testing.T) {
	payload := make([]byte, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f := newTestFetcher(t)

	// exactly at the limit passes
	data, err := f.Fetch(srv.URL, 64)
	require.NoError(t, err)
	assert.Len(t, data, 64)

	// one under the limit fails
	_, err = f.Fetch(srv.URL, 63)
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestFetcher(t).Fetch(url, 0)
	require.Error(t, err)
}

func TestOnlineProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	addr := srv.Listener.Addr().String()

	online := NewHTTPFetcher(logger.NewTestLogger(), Options{ProbeAddr: addr})
	assert.True(t, online.Online())

	srv.Close()
	offline := NewHTTPFetcher(logger.NewTestLogger(), Options{
		ProbeAddr:    addr,
		ProbeTimeout: 200 * time.Millisecond,
	})
	assert.False(t, offline.Online())
}
