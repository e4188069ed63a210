package main

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/cache"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/finder"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/integrity"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/launcher"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/platform"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/probe"
)

// components is everything a resolution needs, built from the loaded config.
type components struct {
	target    launcher.Target
	store     *cache.PathCache
	validator *launcher.Validator
	platform  *platform.Info
	table     finder.DefaultLocationTable
	extra     []string
}

func (c *cli) cacheStore() (*cache.PathCache, error) {
	file := c.cfg.CacheFile
	if file == "" {
		var err error
		if file, err = cache.DefaultFile(); err != nil {
			return nil, err
		}
	}
	return cache.New(file), nil
}

func (c *cli) components(ctx context.Context) (*components, error) {
	store, err := c.cacheStore()
	if err != nil {
		return nil, err
	}

	info, err := c.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	vcfg := launcher.Config{
		Target: c.cfg.Target(),
		Runner: probe.NewExecRunner(c.cfg.Timeout(), c.log.Logger),
		Logger: c.log.Logger,
	}
	if policy := c.cfg.Policy(); policy.Enabled() {
		verifier, err := integrity.NewVerifier(policy)
		if err != nil {
			return nil, err
		}
		pinned := verifier.Policy()
		c.log.Debug("integrity pinning enabled",
			"sha256_pins", len(pinned.SHA256),
			"keyring", pinned.KeyringPath,
			"signature_suffixes", pinned.SignatureSuffixes,
		)
		vcfg.Integrity = verifier
	}
	validator, err := launcher.NewValidator(vcfg)
	if err != nil {
		return nil, err
	}

	return &components{
		target:    validator.Target(),
		store:     store,
		validator: validator,
		platform:  info,
		table:     finder.DefaultLocations(),
		extra:     c.cfg.Defaults,
	}, nil
}

func (p *components) sources(c *cli) []finder.Source {
	return finder.DefaultSources(p.store, p.target, p.platform.Family(), p.table, p.extra, c.log.Logger)
}
