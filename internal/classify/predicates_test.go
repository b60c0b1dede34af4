package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.c", "c"},
		{"src/lib/util.cpp", "cpp"},
		{"archive.tar.gz", "gz"},
		{"Makefile", ""},
		{".bashrc", ""},
		{"dir.d/README", ""},
		{"trailing.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.path))
		})
	}
}

func TestIncludeByExtension(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "c source", path: "a.c", want: true},
		{name: "go in directory", path: "pkg/x/y.go", want: true},
		{name: "upper S assembly", path: "boot.S", want: true},
		{name: "lower s assembly", path: "boot.s", want: true},
		{name: "shell", path: "run.sh", want: true},
		{name: "perl module", path: "lib/Foo.pm", want: true},
		{name: "case sensitive", path: "MAIN.C", want: false},
		{name: "case sensitive go", path: "x.GO", want: false},
		{name: "text", path: "notes.txt", want: false},
		{name: "no extension", path: "configure", want: false},
		{name: "dotfile", path: ".c", want: false},
		{name: "extension on directory part only", path: "src.c/README", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IncludeByExtension(tt.path))
		})
	}
}

func TestIncludeByType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/x-c", true},
		{"text/x-csrc", true},
		{"text/x-c++src", true},
		{"text/x-chdr", true},
		{"application/x-shellscript", true},
		{"text/x-shellscript", true},
		{"text/x-python", true},
		{"text/x-script.python", true},
		{"text/rust", true},
		{"application/x-php", true},
		{"text/vnd.vendor.x-csrc", true},
		{"text/plain", false},
		{"inode/directory", false},
		{"application/octet-stream", false},
		{"text/x-makefile", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, IncludeByType(tt.mimeType))
		})
	}
}
