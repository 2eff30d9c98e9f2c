package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/logger"
)

func newTestStore(t *testing.T, opts Options) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(logger.NewTestLogger(), t.TempDir(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSongRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})

	songs := []domain.Song{
		{ID: "a", Title: "First", Artist: "Artist", Duration: 3 * time.Minute},
		{ID: "b", Title: "Second", Album: "Album"},
	}
	require.NoError(t, s.SaveSongs(songs))

	got := s.GetAllSongs()
	require.Len(t, got, 2)

	byID := map[string]domain.Song{got[0].ID: got[0], got[1].ID: got[1]}
	assert.Equal(t, "First", byID["a"].Title)
	assert.Equal(t, 3*time.Minute, byID["a"].Duration)
	assert.Equal(t, "Album", byID["b"].Album)
}

func TestSaveSongsUpserts(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.SaveSongs([]domain.Song{{ID: "a", Title: "Old", PlayCount: 1}}))
	require.NoError(t, s.SaveSongs([]domain.Song{{ID: "a", Title: "New", PlayCount: 2}}))

	got := s.GetAllSongs()
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Title)
	assert.Equal(t, 2, got[0].PlayCount)
}

func TestDeleteSong(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.SaveSongs([]domain.Song{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, s.DeleteSong("a"))
	// deleting again is not an error
	require.NoError(t, s.DeleteSong("a"))

	got := s.GetAllSongs()
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestGetAllSongsEmptyStore(t *testing.T) {
	s := newTestStore(t, Options{})
	assert.Empty(t, s.GetAllSongs())
}

func TestLikedSongsRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})

	assert.Empty(t, s.GetLikedSongs())

	liked := []domain.Song{{ID: "a", Title: "Liked"}}
	require.NoError(t, s.SaveLikedSongs(liked))

	got := s.GetLikedSongs()
	require.Len(t, got, 1)
	assert.Equal(t, "Liked", got[0].Title)

	// overwriting with empty clears the set
	require.NoError(t, s.SaveLikedSongs(nil))
	assert.Empty(t, s.GetLikedSongs())
}

func TestAudioCacheRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})

	_, ok := s.GetAudio("a")
	assert.False(t, ok)
	assert.False(t, s.HasAudio("a"))

	blob := []byte{0x49, 0x44, 0x33, 0x04}
	require.NoError(t, s.SaveAudio("a", blob))

	got, ok := s.GetAudio("a")
	require.True(t, ok)
	assert.Equal(t, blob, got)
	assert.True(t, s.HasAudio("a"))
}

func TestSaveAudioReplacesPriorBlob(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.SaveAudio("a", []byte("old")))
	require.NoError(t, s.SaveAudio("a", []byte("new")))

	got, ok := s.GetAudio("a")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestSaveAudioQuota(t *testing.T) {
	s := newTestStore(t, Options{QuotaBytes: 8})

	require.NoError(t, s.SaveAudio("small", []byte("1234")))

	err := s.SaveAudio("big", make([]byte, 16))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageQuotaExceeded)
	assert.False(t, s.HasAudio("big"))
}

func TestDeleteAudioIdempotent(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.SaveAudio("a", []byte("data")))
	require.NoError(t, s.DeleteAudio("a"))
	require.NoError(t, s.DeleteAudio("a"))
	assert.False(t, s.HasAudio("a"))
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})

	var vol float64
	assert.False(t, s.LoadSetting(domain.PrefVolume, &vol))

	require.NoError(t, s.SaveSetting(domain.PrefVolume, 0.5))
	require.True(t, s.LoadSetting(domain.PrefVolume, &vol))
	assert.Equal(t, 0.5, vol)

	require.NoError(t, s.SaveSetting(domain.PrefRepeat, domain.RepeatAll))
	var mode domain.RepeatMode
	require.True(t, s.LoadSetting(domain.PrefRepeat, &mode))
	assert.Equal(t, domain.RepeatAll, mode)

	require.NoError(t, s.SaveSetting(domain.PrefShuffle, true))
	var shuffled bool
	require.True(t, s.LoadSetting(domain.PrefShuffle, &shuffled))
	assert.True(t, shuffled)
}

func TestSettingsTypeMismatchReportsAbsent(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.SaveSetting("key", "not a number"))

	var n float64
	assert.False(t, s.LoadSetting("key", &n))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewTestLogger()

	s, err := NewBoltStore(log, dir, Options{})
	require.NoError(t, err)
	require.NoError(t, s.SaveSongs([]domain.Song{{ID: "a", Title: "Kept"}}))
	require.NoError(t, s.SaveAudio("a", []byte("blob")))
	require.NoError(t, s.Close())

	s2, err := NewBoltStore(log, dir, Options{})
	require.NoError(t, err)
	defer s2.Close()

	got := s2.GetAllSongs()
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Title)

	blob, ok := s2.GetAudio("a")
	require.True(t, ok)
	assert.Equal(t, []byte("blob"), blob)
}
