package section

// Validate is the [validate] section: which static output-tree checks
// `tola validate` runs (internal/validate), each independently toggled
// since large sites may accept broken external links but never broken
// internal ones.
type Validate struct {
	CheckInternalLinks bool `toml:"check_internal_links"`
	CheckExternalLinks bool `toml:"check_external_links"`
	CheckConflicts     bool `toml:"check_conflicts"`
	CheckOrphanAliases bool `toml:"check_orphan_aliases"`
}

// DefaultValidate returns [validate]'s defaults: the checks that only
// need the locally compiled output tree are on; the network-dependent
// external-link check is off by default.
func DefaultValidate() Validate {
	return Validate{
		CheckInternalLinks: true,
		CheckConflicts:     true,
		CheckOrphanAliases: true,
	}
}
