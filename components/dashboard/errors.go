package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingStore       = errors.New("dashboard: store not configured")
	ErrUnknownWidgetType  = errors.New("dashboard: unknown widget type")
	ErrInstanceNotFound   = errors.New("dashboard: widget instance not found")
	ErrTypeMismatch       = errors.New("dashboard: widget type is immutable")
	ErrDashboardNotFound  = errors.New("dashboard: dashboard not found")
	ErrFolderNotFound     = errors.New("dashboard: folder not found")
	ErrSessionNotFound    = errors.New("dashboard: session not found")
	ErrMalformedSnapshot  = errors.New("dashboard: malformed stored snapshot")
	ErrInvalidName        = errors.New("dashboard: name is required")
	ErrInvalidTheme       = errors.New("dashboard: unsupported theme mode")
	ErrNoActiveDashboard  = errors.New("dashboard: no active dashboard")
	ErrInvalidInput       = errors.New("dashboard: invalid command input")
	errInvalidEmbedSource = errors.New("dashboard: embed payload requires a source")
)

// PersistenceError wraps a failed store call. In-memory state is left
// untouched whenever one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("dashboard: persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// ConfigError reports missing external-service configuration. Rendering cannot
// proceed while one is present.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "dashboard: missing required configuration: " + strings.Join(e.Missing, ", ")
}
