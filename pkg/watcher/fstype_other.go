//go:build !linux

package watcher

// statfsType has no portable implementation off Linux; fsnotify is assumed
// to work there unless polling is forced.
func statfsType(string) FilesystemType {
	return FSTypeUnknown
}
