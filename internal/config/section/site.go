// Package section splits tola.toml into its five top-level sections,
// mirroring the original Rust implementation's src/config/section/ split.
package section

// Site is the [site] section: identity and global template context.
type Site struct {
	Title       string         `toml:"title"`
	BaseURL     string         `toml:"base_url"`
	Description string         `toml:"description"`
	Language    string         `toml:"language"`
	Extra       map[string]any `toml:"extra"`
}

// DefaultSite returns [site]'s defaults.
func DefaultSite() Site {
	return Site{Language: "en"}
}
