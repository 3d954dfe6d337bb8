package watcher

import (
	"os"
	"path/filepath"
)

// FilesystemType is a best-effort classification of the filesystem a
// watched tree lives on.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeSSHFS
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeSSHFS:
		return "sshfs"
	case FSTypeFUSE:
		return "fuse"
	default:
		return "unknown"
	}
}

// isRemoteFilesystem reports whether inotify-style events are unreliable on
// the filesystem, in which case the watcher polls from the start.
func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeSSHFS, FSTypeFUSE:
		return true
	default:
		return false
	}
}

// detectFilesystemTypeFunc is replaced in tests.
var detectFilesystemTypeFunc = DetectFilesystemType

// DetectFilesystemType classifies the filesystem the path lives on. For a
// path that does not exist yet the parent directory is consulted.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	if _, err := os.Stat(path); err != nil {
		parent := filepath.Dir(path)
		if parent == path {
			return FSTypeUnknown
		}
		return DetectFilesystemType(parent)
	}
	return statfsType(path)
}
