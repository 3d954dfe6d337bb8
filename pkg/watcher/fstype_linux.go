//go:build linux

package watcher

import "golang.org/x/sys/unix"

// Magic numbers from linux/magic.h for filesystems where inotify does not
// see remote writes. SSHFS mounts report the FUSE magic, so they come back
// as FSTypeFUSE here; both classify as remote.
const (
	nfsSuperMagic  = 0x6969
	smbSuperMagic  = 0x517b
	smb2SuperMagic = 0xfe534d42
	cifsSuperMagic = 0xff534d42
	fuseSuperMagic = 0x65735546
)

func statfsType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case nfsSuperMagic:
		return FSTypeNFS
	case smbSuperMagic, smb2SuperMagic, cifsSuperMagic:
		return FSTypeSMB
	case fuseSuperMagic:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
