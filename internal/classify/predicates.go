package classify

import (
	"path/filepath"
	"strings"
)

// sourceExtensions are included without asking a probe. Matching is exact
// and case sensitive, so "S" (preprocessed assembly) and "s" are distinct.
var sourceExtensions = map[string]struct{}{
	"asm":  {},
	"c":    {},
	"cc":   {},
	"cpp":  {},
	"cs":   {},
	"cxx":  {},
	"erl":  {},
	"go":   {},
	"h":    {},
	"hpp":  {},
	"hxx":  {},
	"java": {},
	"js":   {},
	"lua":  {},
	"php":  {},
	"pl":   {},
	"pm":   {},
	"py":   {},
	"rb":   {},
	"rs":   {},
	"s":    {},
	"sh":   {},
	"S":    {},
	"tcl":  {},
}

// sourceTypeSuffixes match the tail of a reported MIME type, which tolerates
// the "text/" vs "application/" prefix differences between probe tools.
var sourceTypeSuffixes = []string{
	// shared-mime-info
	"rust",
	"x-c++",
	"x-c++src",
	"x-c++hdr",
	"x-chdr",
	"x-csharp",
	"x-csrc",
	"x-erlang",
	"x-java",
	"x-javascript",
	"x-lua",
	"x-perl",
	"x-php",
	"x-python",
	"x-ruby",
	"x-shellscript",
	"x-tcl",
	// file(1), where different
	"x-c",
}

// Extension returns the final extension of path without the dot.
// Dotfiles such as ".bashrc" have no extension.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// IncludeByExtension reports whether path has a known source-code extension.
func IncludeByExtension(path string) bool {
	ext := Extension(path)
	if ext == "" {
		return false
	}
	_, ok := sourceExtensions[ext]
	return ok
}

// IncludeByType reports whether a probe-reported MIME type denotes source code.
func IncludeByType(mimeType string) bool {
	for _, suffix := range sourceTypeSuffixes {
		if strings.HasSuffix(mimeType, suffix) {
			return true
		}
	}
	return false
}
