package main

import (
	"fmt"
	"path/filepath"

	"github.com/tola-rs/tola/internal/actor"
	"github.com/tola-rs/tola/internal/config"
)

// loadSite reads tola.toml under root and wires a ready-to-run
// Coordinator, logging any unrecognized config keys as warnings rather
// than failing the build.
func loadSite(root string) (config.Config, *actor.Coordinator, error) {
	cfgPath := filepath.Join(root, "tola.toml")
	cfg, warnings, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load %s: %w", cfgPath, err)
	}
	for _, w := range warnings {
		if logger != nil {
			logger.Warn(w)
		}
	}

	coord, err := actor.New(actor.Config{
		Root:   root,
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("wire site: %w", err)
	}
	return cfg, coord, nil
}
