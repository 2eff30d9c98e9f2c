package service

import (
	"log/slog"

	"github.com/thall/resona/internal/domain"
	"github.com/thall/resona/internal/ports"
)

// SettingsService keeps the scalar playback preferences durable. It
// restores them into the player at startup and writes each one back
// when the matching change event crosses the bus, so no caller ever
// persists a preference directly.
type SettingsService struct {
	// Dependencies (injected)
	logger *slog.Logger
	store  ports.SettingsStore
	bus    ports.EventBus

	subs []domain.SubscriptionID
}

// NewSettingsService creates the preference store and hooks the change
// events.
func NewSettingsService(logger *slog.Logger, store ports.SettingsStore, bus ports.EventBus) *SettingsService {
	s := &SettingsService{
		logger: logger,
		store:  store,
		bus:    bus,
	}

	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventVolumeChanged, s.handleVolumeChanged),
		bus.Subscribe(domain.EventRateChanged, s.handleRateChanged),
		bus.Subscribe(domain.EventShuffleToggled, s.handleShuffleToggled),
		bus.Subscribe(domain.EventRepeatChanged, s.handleRepeatChanged),
	}

	logger.Debug("settings service initialized")

	return s
}

// Restore applies the persisted preferences to the player. Missing or
// corrupt values silently fall back to the defaults.
func (s *SettingsService) Restore(player *PlayerService) {
	volume := domain.DefaultVolume
	s.store.LoadSetting(domain.PrefVolume, &volume)
	if volume < 0 || volume > 1 {
		volume = domain.DefaultVolume
	}
	if err := player.SetVolume(volume); err != nil {
		s.logger.Warn("failed to restore volume", slog.Any("error", err))
	}

	rate := domain.DefaultRate
	s.store.LoadSetting(domain.PrefRate, &rate)
	if rate <= 0 {
		rate = domain.DefaultRate
	}
	if err := player.SetRate(rate); err != nil {
		s.logger.Warn("failed to restore playback rate", slog.Any("error", err))
	}

	repeat := domain.DefaultRepeat
	s.store.LoadSetting(domain.PrefRepeat, &repeat)
	switch repeat {
	case domain.RepeatOff, domain.RepeatAll, domain.RepeatOne:
	default:
		repeat = domain.DefaultRepeat
	}
	player.SetRepeat(repeat)

	shuffled := domain.DefaultShuffle
	s.store.LoadSetting(domain.PrefShuffle, &shuffled)
	player.SetShuffled(shuffled)

	s.logger.Debug("preferences restored",
		slog.Float64("volume", volume),
		slog.Float64("rate", rate),
		slog.String("repeat", string(repeat)),
		slog.Bool("shuffled", shuffled))
}

// Shutdown detaches from the event bus.
func (s *SettingsService) Shutdown() {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
}

func (s *SettingsService) save(key string, value any) {
	if err := s.store.SaveSetting(key, value); err != nil {
		s.logger.Warn("failed to persist preference",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

func (s *SettingsService) handleVolumeChanged(e domain.Event) {
	if ev, ok := e.(domain.VolumeChangedEvent); ok {
		s.save(domain.PrefVolume, ev.Volume)
	}
}

func (s *SettingsService) handleRateChanged(e domain.Event) {
	if ev, ok := e.(domain.RateChangedEvent); ok {
		s.save(domain.PrefRate, ev.Rate)
	}
}

func (s *SettingsService) handleShuffleToggled(e domain.Event) {
	if ev, ok := e.(domain.ShuffleToggledEvent); ok {
		s.save(domain.PrefShuffle, ev.Enabled)
	}
}

func (s *SettingsService) handleRepeatChanged(e domain.Event) {
	if ev, ok := e.(domain.RepeatChangedEvent); ok {
		s.save(domain.PrefRepeat, ev.Mode)
	}
}
