package commit

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-compressor/internal/model"
)

func TestCommitRestoresAccessTime(t *testing.T) {
	src := source(t, "h.png", 100)
	src.Modified = time.Date(2020, 5, 17, 8, 30, 0, 0, time.UTC)
	src.Accessed = time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)
	out := filepath.Join(filepath.Dir(src.Path), "h.min.png")
	p := model.DefaultProfile()
	p.KeepTimestamps = true

	_, err := NewManager(&fakeTrash{}).Commit(context.Background(), []byte("tiny"), src, out, p, false)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	st, ok := info.Sys().(*syscall.Stat_t)
	require.True(t, ok)
	assert.True(t, time.Unix(st.Atim.Unix()).Equal(src.Accessed), "atime %s", time.Unix(st.Atim.Unix()))
	assert.True(t, info.ModTime().Equal(src.Modified))
}
