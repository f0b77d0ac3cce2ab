package pagecache

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagecache/pkg/kmp"
)

// Streaming scan in the benchmark driver's shape: repeated full
// passes, chunked reads through the cache, per-chunk matching.
func TestCache_StreamingScan(t *testing.T) {
	const (
		chunkSize = 32 * 1024
		chunks    = 10
		passes    = 3
	)
	pattern := []byte("NEEDLE")
	needleAt := int64(7*chunkSize + 17)

	path := filepath.Join(t.TempDir(), "haystack.bin")
	content := make([]byte, chunks*chunkSize)
	for i := range content {
		content[i] = byte('a' + i%13)
	}
	copy(content[needleAt:], pattern)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	c := New(Options{CachePages: 8})
	fd, err := c.Open(path)
	require.NoError(t, err)
	defer func() { _ = c.Close(fd) }()

	size, err := c.Seek(fd, 0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), size)

	matcher := kmp.New(pattern)
	chunk := make([]byte, chunkSize)

	for pass := 0; pass < passes; pass++ {
		_, err := c.Seek(fd, 0, io.SeekStart)
		require.NoError(t, err)

		var matches []int64
		for off := int64(0); off < size; {
			span := int64(len(chunk))
			if rest := size - off; span > rest {
				span = rest
			}
			n, err := c.Read(fd, chunk[:span])
			require.NoError(t, err)
			matches = append(matches, matcher.Search(chunk[:n], off)...)
			off += int64(n)
		}

		// Exactly one match per pass, at the same offset every time.
		require.Equal(t, []int64{needleAt}, matches, "pass %d", pass)
	}
}
