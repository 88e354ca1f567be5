//go:build !linux

package discovery

func createdAt(path string) int64 {
	return modifiedAt(path)
}
