package probe

import (
	"io/fs"
	"syscall"
	"time"
)

func fileTimes(_ string, st fs.FileInfo) (created, accessed time.Time) {
	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		return time.Unix(sys.Birthtimespec.Unix()), time.Unix(sys.Atimespec.Unix())
	}
	return st.ModTime(), st.ModTime()
}
