//go:build !linux && !darwin

package merge

import (
	"os"
	"time"
)

// fileTimes extracts access and modification times from a FileInfo. Where
// the platform exposes no access time the modification time stands in for
// both.
func fileTimes(info os.FileInfo) (atime, mtime time.Time) {
	mtime = info.ModTime()
	return mtime, mtime
}
