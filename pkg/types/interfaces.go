package types

import (
	"io/fs"
)

// FS is the filesystem interface required for condax operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Lstat(name string) (fs.FileInfo, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
}

// Pather provides the directories condax manages
type Pather interface {
	// PrefixDir is where application environments are created
	PrefixDir() string

	// BinDir is where wrappers and links are published
	BinDir() string

	// DataDir returns the XDG data directory for condax
	DataDir() string

	// ConfigDir returns the XDG config directory for condax
	ConfigDir() string
}
