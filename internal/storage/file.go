package storage

import (
	"fmt"
	"os"

	"github.com/ncw/directio"
)

// BlockFile is the capability set the cache needs from an underlying
// file: positioned reads and writes, a size query, and teardown.
type BlockFile interface {
	ReadAt(p []byte, off int64) (n int, err error)
	WriteAt(p []byte, off int64) (n int, err error)
	Size() (int64, error)
	Close() error
}

var _ BlockFile = (*DiskFile)(nil)

// DiskFile is a BlockFile over a regular OS file.
type DiskFile struct {
	file *os.File
}

// OpenDisk opens or creates path with read+write access. When direct
// is set the file is opened with O_DIRECT so I/O bypasses the host
// page cache; callers must then issue page-aligned transfers from
// aligned buffers (AlignedPage guarantees the latter).
func OpenDisk(path string, direct bool) (*DiskFile, error) {
	var (
		f   *os.File
		err error
	)
	if direct {
		f, err = directio.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
	} else {
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &DiskFile{file: f}, nil
}

func (d *DiskFile) ReadAt(p []byte, off int64) (int, error) {
	return d.file.ReadAt(p, off)
}

func (d *DiskFile) WriteAt(p []byte, off int64) (int, error) {
	return d.file.WriteAt(p, off)
}

// Size returns the current file length in bytes.
func (d *DiskFile) Size() (int64, error) {
	info, err := d.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("get file info: %w", err)
	}
	return info.Size(), nil
}

func (d *DiskFile) Close() error {
	return d.file.Close()
}

// AlignedPage allocates one page buffer aligned for direct I/O.
func AlignedPage(size int) []byte {
	return directio.AlignedBlock(size)
}
