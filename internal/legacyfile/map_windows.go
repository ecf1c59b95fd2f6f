//go:build windows

package legacyfile

import "os"

// mapFile reads the entire legacy .DAT file at path. Windows file
// mapping needs its own syscalls distinct from POSIX mmap, so this
// platform uses the same plain-read fallback as map_fallback.go rather
// than a native mapping.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
