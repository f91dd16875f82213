package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryPreferenceStore keeps theme preferences per viewer.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]ThemeMode
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]ThemeMode),
	}
}

// ThemeMode returns the stored theme, or the default for anonymous and
// unknown viewers.
func (s *InMemoryPreferenceStore) ThemeMode(_ context.Context, viewer ViewerContext) (ThemeMode, error) {
	if viewer.UserID == "" {
		return DefaultThemeMode, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mode, ok := s.data[viewer.UserID]; ok && mode.Valid() {
		return mode, nil
	}
	return DefaultThemeMode, nil
}

// SaveThemeMode persists the theme for a viewer.
func (s *InMemoryPreferenceStore) SaveThemeMode(_ context.Context, viewer ViewerContext, mode ThemeMode) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = mode
	return nil
}
