package commit

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// setCreationTime writes the creation time through setattrlist(2).
func setCreationTime(path string, t time.Time) error {
	ts := unix.NsecToTimespec(t.UnixNano())
	buf := make([]byte, 16)
	binary.NativeEndian.PutUint64(buf[0:], uint64(ts.Sec))
	binary.NativeEndian.PutUint64(buf[8:], uint64(ts.Nsec))

	attrs := unix.Attrlist{
		Bitmapcount: unix.ATTR_BIT_MAP_COUNT,
		Commonattr:  unix.ATTR_CMN_CRTIME,
	}
	return unix.Setattrlist(path, &attrs, buf, 0)
}
