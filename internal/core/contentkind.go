package core

import "strings"

// ContentKind identifies which page-compiler collaborator owns a source
// file: Typst or Markdown. A real Typst backend lives outside this
// repository (see internal/compiler); Markdown ships a concrete
// implementation so the pipeline can be exercised end to end.
type ContentKind int

const (
	ContentUnknown ContentKind = iota
	ContentTypst
	ContentMarkdown
)

// Extensions returns the file extensions (without leading dot) recognized
// for this content kind.
func (k ContentKind) Extensions() []string {
	switch k {
	case ContentTypst:
		return []string{"typ"}
	case ContentMarkdown:
		return []string{"md", "markdown"}
	default:
		return nil
	}
}

// Name returns a lowercase human-readable name for the content kind.
func (k ContentKind) Name() string {
	switch k {
	case ContentTypst:
		return "typst"
	case ContentMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// ContentKindFromExtension maps a bare extension (no dot, any case) to a
// ContentKind, or ContentUnknown if none matches.
func ContentKindFromExtension(ext string) ContentKind {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "typ":
		return ContentTypst
	case "md", "markdown":
		return ContentMarkdown
	default:
		return ContentUnknown
	}
}

// ContentKindFromPath maps a source path's extension to a ContentKind.
func ContentKindFromPath(path string) ContentKind {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ContentUnknown
	}
	return ContentKindFromExtension(path[i+1:])
}

// IsContentFile reports whether path's extension identifies a compilable
// content file (Typst or Markdown), as opposed to an asset or config file.
func IsContentFile(path string) bool {
	return ContentKindFromPath(path) != ContentUnknown
}
