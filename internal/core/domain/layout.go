package domain

import "path/filepath"

const (
	// StateDirName is the name of the per-project state directory.
	StateDirName = ".stratum"

	// CASDirName is the name of the content addressable store directory.
	CASDirName = "cas"

	// ObjectsDirName holds the blobs of the CAS, sharded by hash prefix.
	ObjectsDirName = "objects"

	// TreesDirName indexes the blobs that are directory nodes.
	TreesDirName = "trees"

	// RefsDirName holds artifact refs, keyed by project, element and cache key.
	RefsDirName = "refs"

	// TmpDirName is the scratch area for atomic writes and sandboxes.
	TmpDirName = "tmp"

	// LockFileName is the store lock shared by every process using a cache.
	LockFileName = "lock"

	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "stratum.yaml"

	// DefaultListenAddress is where `stratum serve` listens when no address is given.
	DefaultListenAddress = "localhost:11001"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecPerm is the permission of executable files checked out of the CAS.
	ExecPerm = 0o755

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCachePath returns the default cache directory below a project root.
func DefaultCachePath(root string) string {
	return filepath.Join(root, StateDirName)
}

// CASPath returns the CAS directory inside a cache directory.
func CASPath(cacheDir string) string {
	return filepath.Join(cacheDir, CASDirName)
}

// RefsPath returns the artifact refs directory inside a cache directory.
func RefsPath(cacheDir string) string {
	return filepath.Join(cacheDir, CASDirName, RefsDirName)
}

// TmpPath returns the scratch directory inside a cache directory. It lives on
// the same filesystem as the CAS so renames stay atomic.
func TmpPath(cacheDir string) string {
	return filepath.Join(cacheDir, TmpDirName)
}
