package section

// Deploy is the [deploy] section: where `tola build` publishes output.
// A concrete deploy target is outside this repository's scope (spec.md's
// Non-goals exclude deployment mechanics); the shape is carried so
// SPEC_FULL.md's full config surface round-trips, and so a future
// implementation has a typed home to land in.
type Deploy struct {
	Target  string         `toml:"target"` // e.g. "s3", "rsync", "" (disabled)
	Options map[string]any `toml:"options"`
}

// DefaultDeploy returns [deploy]'s defaults.
func DefaultDeploy() Deploy { return Deploy{} }
