//go:build !linux && !darwin && !windows

package probe

import (
	"io/fs"
	"time"
)

func fileTimes(_ string, st fs.FileInfo) (created, accessed time.Time) {
	return st.ModTime(), st.ModTime()
}
