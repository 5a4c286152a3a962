// Package config loads tola.toml, the TOML configuration surface spec.md
// §6 names: [site], [build], [serve], [deploy], [validate]. Unknown
// top-level sections are reported as warnings rather than rejected, since
// a config written against a newer tola version shouldn't hard-fail an
// older build; unknown keys inside a known section are ignored without a
// warning.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/tola-rs/tola/internal/config/section"
)

// Config is the fully parsed tola.toml document.
type Config struct {
	Site     section.Site     `toml:"site"`
	Build    section.Build    `toml:"build"`
	Serve    section.Serve    `toml:"serve"`
	Deploy   section.Deploy   `toml:"deploy"`
	Validate section.Validate `toml:"validate"`

	// Unknown is skipped by the TOML decoder and Load never fills it;
	// Load reports undeclared top-level keys through its warnings result.
	Unknown map[string]any `toml:"-"`
}

// Default returns a Config pre-populated with every section's defaults;
// Load decodes onto this rather than a zero-value struct so go-toml/v2's
// merge-onto-existing-fields behavior fills only what the file specifies.
func Default() Config {
	return Config{
		Site:     section.DefaultSite(),
		Build:    section.DefaultBuild(),
		Serve:    section.DefaultServe(),
		Deploy:   section.DefaultDeploy(),
		Validate: section.DefaultValidate(),
	}
}

// Load reads and decodes path, returning the parsed config plus a list of
// human-readable warnings for any unrecognized top-level key.
func Load(path string) (Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, nil, nil
	}
	warnings := unknownKeyWarnings(raw)
	return cfg, warnings, nil
}

var knownSections = map[string]bool{
	"site": true, "build": true, "serve": true, "deploy": true, "validate": true,
}

func unknownKeyWarnings(raw map[string]any) []string {
	var warnings []string
	for key := range raw {
		if !knownSections[key] {
			warnings = append(warnings, fmt.Sprintf("unknown config section %q ignored", key))
		}
	}
	return warnings
}
