//go:build linux

package discovery

import "golang.org/x/sys/unix"

// createdAt returns the birth time of path in nanoseconds since the epoch, or its modification
// time when the filesystem does not record one.
func createdAt(path string) int64 {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT,
		unix.STATX_BTIME|unix.STATX_MTIME, &stx)
	if err != nil {
		return modifiedAt(path)
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		return stx.Btime.Sec*1e9 + int64(stx.Btime.Nsec)
	}
	return stx.Mtime.Sec*1e9 + int64(stx.Mtime.Nsec)
}
