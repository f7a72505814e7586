package shell

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Marker tags the lines condax adds to rc files.
const Marker = "# Added by condax"

// RCFile is a shell startup file and the syntax it uses.
type RCFile struct {
	Path string
	Fish bool
}

// RCFiles lists the startup files condax knows how to edit, relative to home.
func RCFiles(home string) []RCFile {
	return []RCFile{
		{Path: filepath.Join(home, ".bashrc")},
		{Path: filepath.Join(home, ".zshrc")},
		{Path: filepath.Join(home, ".profile")},
		{Path: filepath.Join(home, ".config", "fish", "config.fish"), Fish: true},
	}
}

// PathSnippet returns the lines prepending dir to PATH for the given syntax.
func PathSnippet(dir string, fish bool) string {
	if fish {
		return fmt.Sprintf("\n%s\nset -gx PATH \"%s\" $PATH\n", Marker, dir)
	}
	return fmt.Sprintf("\n%s\nexport PATH=\"%s:$PATH\"\n", Marker, dir)
}

// HasSnippet reports whether content already adds dir to PATH.
func HasSnippet(content, dir string) bool {
	return strings.Contains(content, PathSnippet(dir, false)) ||
		strings.Contains(content, PathSnippet(dir, true))
}

// OnPath reports whether dir is one of the entries of pathEnv.
func OnPath(dir, pathEnv string) bool {
	want := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(pathEnv) {
		if entry != "" && filepath.Clean(entry) == want {
			return true
		}
	}
	return false
}
