// Package settings persists user preferences as a small JSON document.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Veraticus/ndalama/internal/model"
)

// Settings errors.
var (
	ErrCurrency     = errors.New("currency code cannot be empty")
	ErrNumberFormat = errors.New("unknown number format")
)

// Store reads and writes the settings file. Updates are serialized, and
// every successful write is delivered to watchers.
type Store struct {
	watchers map[int]chan model.Settings
	path     string
	nextID   int
	mu       sync.Mutex
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{
		path:     path,
		watchers: make(map[int]chan model.Settings),
	}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings. A missing, unreadable or corrupt file,
// or one holding invalid values, yields the defaults.
func (s *Store) Load() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() model.Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read settings, using defaults", "path", s.path, "error", err)
		}
		return model.DefaultSettings()
	}

	settings := model.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("settings file is corrupt, using defaults", "path", s.path, "error", err)
		return model.DefaultSettings()
	}
	if err := validate(settings); err != nil {
		slog.Warn("settings file holds invalid values, using defaults", "path", s.path, "error", err)
		return model.DefaultSettings()
	}
	return settings
}

// Save replaces the stored settings.
func (s *Store) Save(settings model.Settings) error {
	if err := validate(settings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings)
}

// SetCurrency stores a new currency code and returns the updated settings.
func (s *Store) SetCurrency(code string) (model.Settings, error) {
	return s.update(func(settings *model.Settings) {
		settings.Currency = strings.ToUpper(strings.TrimSpace(code))
	})
}

// SetNumberFormat stores a new number format.
func (s *Store) SetNumberFormat(format int) (model.Settings, error) {
	return s.update(func(settings *model.Settings) {
		settings.NumberFormat = format
	})
}

// SetBiometrics toggles the biometric unlock preference.
func (s *Store) SetBiometrics(enabled bool) (model.Settings, error) {
	return s.update(func(settings *model.Settings) {
		settings.BiometricsEnabled = enabled
	})
}

func (s *Store) update(fn func(*model.Settings)) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.load()
	fn(&settings)
	if err := validate(settings); err != nil {
		return model.Settings{}, err
	}
	if err := s.save(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// save must be called with mu held.
func (s *Store) save(settings model.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close settings file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	for _, ch := range s.watchers {
		offer(ch, settings)
	}
	return nil
}

// Watch returns a channel carrying the current settings followed by every
// saved change. Slow readers only see the latest value. The channel closes
// when ctx is done.
func (s *Store) Watch(ctx context.Context) <-chan model.Settings {
	ch := make(chan model.Settings, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.load()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func offer(ch chan model.Settings, settings model.Settings) {
	select {
	case ch <- settings:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- settings:
	default:
	}
}

func validate(settings model.Settings) error {
	if strings.TrimSpace(settings.Currency) == "" {
		return ErrCurrency
	}
	switch settings.NumberFormat {
	case model.NumberFormatComma, model.NumberFormatDot:
	default:
		return fmt.Errorf("%w: %d", ErrNumberFormat, settings.NumberFormat)
	}
	return nil
}
