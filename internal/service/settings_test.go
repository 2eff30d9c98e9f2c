package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thall/resona/internal/adapter/eventbus"
	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/logger"
	"github.com/thall/resona/internal/testutil"
)

func TestRestoreDefaultsOnEmptyStore(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	player, _, bus, st := newTestPlayer(t)
	settings := NewSettingsService(logger.NewTestLogger(), st, bus)
	defer settings.Shutdown()

	settings.Restore(player)

	state := player.State()
	assert.Equal(t, domain.DefaultVolume, state.Volume)
	assert.Equal(t, domain.DefaultRate, state.Rate)
	assert.Equal(t, domain.DefaultRepeat, state.Repeat)
	assert.Equal(t, domain.DefaultShuffle, state.IsShuffled)
}

func TestRestoreAppliesPersistedValues(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	player, _, bus, st := newTestPlayer(t)

	require.NoError(t, st.SaveSetting(domain.PrefVolume, 0.3))
	require.NoError(t, st.SaveSetting(domain.PrefRate, 1.25))
	require.NoError(t, st.SaveSetting(domain.PrefRepeat, domain.RepeatAll))
	require.NoError(t, st.SaveSetting(domain.PrefShuffle, true))

	settings := NewSettingsService(logger.NewTestLogger(), st, bus)
	defer settings.Shutdown()
	settings.Restore(player)

	state := player.State()
	assert.Equal(t, 0.3, state.Volume)
	assert.Equal(t, 1.25, state.Rate)
	assert.Equal(t, domain.RepeatAll, state.Repeat)
	assert.True(t, state.IsShuffled)
}

func TestRestoreRejectsCorruptValues(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	player, _, bus, st := newTestPlayer(t)

	require.NoError(t, st.SaveSetting(domain.PrefVolume, 4.2))
	require.NoError(t, st.SaveSetting(domain.PrefRate, -1.0))
	require.NoError(t, st.SaveSetting(domain.PrefRepeat, "bogus"))

	settings := NewSettingsService(logger.NewTestLogger(), st, bus)
	defer settings.Shutdown()
	settings.Restore(player)

	state := player.State()
	assert.Equal(t, domain.DefaultVolume, state.Volume)
	assert.Equal(t, domain.DefaultRate, state.Rate)
	assert.Equal(t, domain.DefaultRepeat, state.Repeat)
}

func TestChangesAreWrittenBack(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	player, _, bus, st := newTestPlayer(t)
	settings := NewSettingsService(logger.NewTestLogger(), st, bus)
	defer settings.Shutdown()

	require.NoError(t, player.SetVolume(0.55))
	require.NoError(t, player.SetRate(2.0))
	player.SetRepeat(domain.RepeatOne)
	player.SetShuffled(true)

	var volume float64
	require.True(t, st.LoadSetting(domain.PrefVolume, &volume))
	assert.Equal(t, 0.55, volume)

	var rate float64
	require.True(t, st.LoadSetting(domain.PrefRate, &rate))
	assert.Equal(t, 2.0, rate)

	var repeat domain.RepeatMode
	require.True(t, st.LoadSetting(domain.PrefRepeat, &repeat))
	assert.Equal(t, domain.RepeatOne, repeat)

	var shuffled bool
	require.True(t, st.LoadSetting(domain.PrefShuffle, &shuffled))
	assert.True(t, shuffled)
}

func TestWriteBackSurvivesReopen(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	player, _, bus, st := newTestPlayer(t)
	settings := NewSettingsService(logger.NewTestLogger(), st, bus)

	require.NoError(t, player.SetVolume(0.11))
	settings.Shutdown()

	bus2 := eventbus.NewSyncEventBus()
	defer bus2.Close()
	settings2 := NewSettingsService(logger.NewTestLogger(), st, bus2)
	defer settings2.Shutdown()

	var volume float64
	require.True(t, st.LoadSetting(domain.PrefVolume, &volume))
	assert.Equal(t, 0.11, volume)
}
