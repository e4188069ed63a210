package finder

import (
	"context"
	"log/slog"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/platform"
)

// Source yields candidate launcher paths in priority order.
type Source interface {
	Name() string
	Candidates(ctx context.Context) []string
}

// Store is the persistence the finder needs. *cache.PathCache satisfies it.
type Store interface {
	Load() (string, error)
	Save(path string) error
}

// CacheSource yields the previously saved path, if any.
type CacheSource struct {
	Store  Store
	Logger *slog.Logger
}

func (s CacheSource) Name() string { return "cache" }

func (s CacheSource) Candidates(ctx context.Context) []string {
	if s.Store == nil {
		return nil
	}
	path, err := s.Store.Load()
	if err != nil {
		if s.Logger != nil {
			s.Logger.Debug("no cached path", "error", err)
		}
		return nil
	}
	if path == "" {
		return nil
	}
	return []string{path}
}

// CommandSource yields the bare command name for PATH lookup.
type CommandSource struct {
	Command string
}

func (s CommandSource) Name() string { return "command" }

func (s CommandSource) Candidates(ctx context.Context) []string {
	if s.Command == "" {
		return nil
	}
	return []string{s.Command}
}

// DefaultsSource yields the table's locations for Family followed by Extra.
type DefaultsSource struct {
	Table  DefaultLocationTable
	Family platform.Family
	Extra  []string
}

func (s DefaultsSource) Name() string { return "defaults" }

func (s DefaultsSource) Candidates(ctx context.Context) []string {
	return append(s.Table.For(s.Family), s.Extra...)
}
