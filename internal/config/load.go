package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Origin reports where a loaded configuration came from.
type Origin struct {
	// Path is the file that was read; empty when no file was found.
	Path string
	// Found is false when the built-in defaults are in effect.
	Found bool
}

// DefaultPath returns phpfind/phpfind.lua under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(dir, "phpfind", FileName), nil
}

// Load resolves the configuration file and parses it. explicit is the path
// given on the command line and must exist when set. Otherwise
// $PHPFIND_CONFIG and DefaultPath are tried; if neither exists the returned
// Config is empty.
func (p *Parser) Load(ctx context.Context, explicit string) (*Config, Origin, error) {
	if explicit != "" {
		cfg, err := p.ParseFile(ctx, explicit)
		if err != nil {
			return nil, Origin{Path: explicit}, err
		}
		return cfg, Origin{Path: explicit, Found: true}, nil
	}

	var candidates []string
	if env := os.Getenv(EnvConfig); env != "" {
		candidates = append(candidates, env)
	}
	if def, err := DefaultPath(); err == nil {
		candidates = append(candidates, def)
	}

	for _, path := range candidates {
		cfg, err := p.ParseFile(ctx, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, Origin{Path: path}, err
		}
		return cfg, Origin{Path: path, Found: true}, nil
	}

	return &Config{}, Origin{}, nil
}
