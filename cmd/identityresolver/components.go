package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"identityresolver/internal/auth"
	"identityresolver/internal/config"
	"identityresolver/internal/registry"
	"identityresolver/internal/stats"
	"identityresolver/internal/store"
)

var errConfigRequired = errors.New("--config is required")

// components holds every long-lived piece a subcommand might need. Not every
// subcommand uses every field.
type components struct {
	cfg    config.Config
	store  *store.Store
	reg    *registry.Registry
	cache  *stats.Cache
	tokens *auth.TokenService
}

// openComponents loads cfg, opens the store, builds a registry seeded from
// the store's persisted name references (and an optional seed file), and
// primes the stats cache with one synchronous refresh. Every subcommand that
// touches the corpus goes through this so CLI one-offs and the server see
// identical wiring.
func openComponents(ctx context.Context, cfgPath string, logger *slog.Logger) (*components, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	reg := registry.New()
	rows, err := st.LoadNameReferences(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load persisted name references: %w", err)
	}
	entries := make([]registry.SeedEntry, len(rows))
	for i, row := range rows {
		entries[i] = registry.SeedEntry{Token: row.Token, Category: row.Category}
	}
	reg.LoadFromDatabase(entries)

	if cfg.Seed.FilePath != "" {
		if err := reg.LoadSeedFile(cfg.Seed.FilePath, os.ReadFile); err != nil {
			st.Close()
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		if cfg.Seed.Watch {
			if err := reg.WatchSeedFile(cfg.Seed.FilePath, os.ReadFile); err != nil {
				logger.Warn("seed file watch failed", "path", cfg.Seed.FilePath, "error", err)
			}
		}
	}

	cache := stats.NewCache()
	corpus, err := st.AllEntriesWithPhone(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load corpus for stats: %w", err)
	}
	cache.Refresh(corpus)

	var tokens *auth.TokenService
	if cfg.Auth.SigningSecret != "" {
		tokens = auth.NewTokenService([]byte(cfg.Auth.SigningSecret), cfg.Auth.TokenLifetime)
	}

	return &components{cfg: cfg, store: st, reg: reg, cache: cache, tokens: tokens}, nil
}

func (c *components) Close() {
	c.reg.Close()
	c.store.Close()
}
