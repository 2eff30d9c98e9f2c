package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thall/resona/internal/adapter/config"
	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Network.ProbeTimeout = 100 * time.Millisecond
	cfg.Logging.Level = "ERROR"
	return cfg
}

func TestNewApplication(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(Options{Config: testConfig(t), UseMockMedia: true})
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.Player())
	assert.NotNil(t, app.Queue())
	assert.NotNil(t, app.Library())
	assert.NotNil(t, app.EventBus())

	app.Shutdown()
}

func TestApplicationRestoresPreferences(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	cfg := testConfig(t)

	app, err := NewApplication(Options{Config: cfg, UseMockMedia: true})
	require.NoError(t, err)

	require.NoError(t, app.Player().SetVolume(0.42))
	app.Player().SetRepeat(domain.RepeatAll)
	app.Shutdown()

	// same data dir, fresh process
	reopened, err := NewApplication(Options{Config: cfg, UseMockMedia: true})
	require.NoError(t, err)
	defer reopened.Shutdown()

	state := reopened.Player().State()
	assert.Equal(t, 0.42, state.Volume)
	assert.Equal(t, domain.RepeatAll, state.Repeat)
}

func TestApplicationSeedsSequencerFromCatalog(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	cfg := testConfig(t)

	app, err := NewApplication(Options{Config: cfg, UseMockMedia: true})
	require.NoError(t, err)

	songs := []domain.Song{
		{ID: "a", Title: "A", Locator: domain.Locator{Kind: domain.LocatorRemote, URL: "https://example/a.mp3"}},
		{ID: "b", Title: "B", Locator: domain.Locator{Kind: domain.LocatorRemote, URL: "https://example/b.mp3"}},
	}
	require.NoError(t, app.Library().AddSongs(songs))
	app.Shutdown()

	reopened, err := NewApplication(Options{Config: cfg, UseMockMedia: true})
	require.NoError(t, err)
	defer reopened.Shutdown()

	// the persisted catalog drives next/previous sequencing
	require.NoError(t, reopened.Player().PlaySong(songs[0]))
	require.NoError(t, reopened.Queue().PlayNext())

	state := reopened.Player().State()
	require.NotNil(t, state.CurrentSong)
	assert.Equal(t, "b", state.CurrentSong.ID)
}

func TestEndToEndQueuePlayback(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(Options{Config: testConfig(t), UseMockMedia: true})
	require.NoError(t, err)
	defer app.Shutdown()

	songs := []domain.Song{
		{ID: "a", Title: "A", Locator: domain.Locator{Kind: domain.LocatorRemote, URL: "https://example/a.mp3"}},
		{ID: "b", Title: "B", Locator: domain.Locator{Kind: domain.LocatorRemote, URL: "https://example/b.mp3"}},
	}
	require.NoError(t, app.Library().AddSongs(songs))

	app.Queue().AddToQueue(songs[1])
	require.NoError(t, app.Player().PlaySong(songs[0]))
	require.NoError(t, app.Queue().PlayNext())

	state := app.Player().State()
	require.NotNil(t, state.CurrentSong)
	assert.Equal(t, "b", state.CurrentSong.ID)
	assert.Empty(t, app.Queue().Queue())
}
