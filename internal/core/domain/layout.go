package domain

import "path/filepath"

const (
	// StateDirName is the name of the directory holding optimize's own state.
	StateDirName = ".optimize"

	// ManifestDirName is the name of the build manifest directory.
	ManifestDirName = "manifests"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultManifestPath returns the default path of the build manifest directory.
func DefaultManifestPath() string {
	return filepath.Join(StateDirName, ManifestDirName)
}
