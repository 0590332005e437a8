//go:build darwin

package merge

import (
	"os"
	"syscall"
	"time"
)

// fileTimes extracts access and modification times from a FileInfo.
func fileTimes(info os.FileInfo) (atime, mtime time.Time) {
	mtime = info.ModTime()
	atime = mtime
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		atime = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	}
	return atime, mtime
}
