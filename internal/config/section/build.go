package section

// Build is the [build] section: source/output roots and compile knobs.
type Build struct {
	ContentDir    string   `toml:"content_dir"`
	OutputDir     string   `toml:"output_dir"`
	AssetDirs     []string `toml:"asset_dirs"`
	DependencyDirs []string `toml:"dependency_dirs"`
	CleanBeforeBuild bool  `toml:"clean_before_build"`
}

// DefaultBuild returns [build]'s defaults.
func DefaultBuild() Build {
	return Build{
		ContentDir: "content",
		OutputDir:  "public",
	}
}
