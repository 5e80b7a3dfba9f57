package probe

import (
	"io/fs"
	"syscall"
	"time"
)

func fileTimes(_ string, st fs.FileInfo) (created, accessed time.Time) {
	if sys, ok := st.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, sys.CreationTime.Nanoseconds()), time.Unix(0, sys.LastAccessTime.Nanoseconds())
	}
	return st.ModTime(), st.ModTime()
}
