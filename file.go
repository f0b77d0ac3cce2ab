package pagecache

import (
	"fmt"
	"io"
	"sync"

	"github.com/tuannm99/pagecache/internal/cache"
	"github.com/tuannm99/pagecache/internal/storage"
)

// File binds one underlying file to a private page store and a
// logical read/write position. Only Close destroys it; there is no
// shared ownership.
type File struct {
	// mu is held for the entirety of read, write, fsync, and close,
	// so operations on one descriptor serialize.
	mu sync.Mutex

	disk     storage.BlockFile
	store    *cache.Store
	position int64
}

func newFile(disk storage.BlockFile, pageSize, cachePages int) *File {
	return &File{
		disk:  disk,
		store: cache.NewStore(pageSize, cachePages),
	}
}

// read fills buf from the current position, splitting the copy at
// page boundaries and materializing each page through the store.
func (f *File) read(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pageSize := int64(f.store.PageSize())
	total := 0
	for total < len(buf) {
		inPage := f.position % pageSize
		pageOffset := f.position - inPage
		span := pageSize - inPage
		if rest := int64(len(buf) - total); span > rest {
			span = rest
		}

		p, err := f.store.GetOrLoad(f.disk, pageOffset)
		if err != nil {
			return 0, err
		}

		copy(buf[total:total+int(span)], p.Data()[inPage:inPage+span])
		f.position += span
		total += int(span)
	}
	return total, nil
}

// write mirrors read: each intersected page is materialized first so
// bytes the write does not cover survive, then overwritten in place
// and marked dirty.
func (f *File) write(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pageSize := int64(f.store.PageSize())
	total := 0
	for total < len(buf) {
		inPage := f.position % pageSize
		pageOffset := f.position - inPage
		span := pageSize - inPage
		if rest := int64(len(buf) - total); span > rest {
			span = rest
		}

		p, err := f.store.GetOrLoad(f.disk, pageOffset)
		if err != nil {
			return 0, err
		}

		copy(p.Data()[inPage:inPage+span], buf[total:total+int(span)])
		p.MarkDirty()
		f.position += span
		total += int(span)
	}
	return total, nil
}

// seek updates the logical position. The position is authoritative
// for read and write; the underlying file is only consulted for its
// size.
func (f *File) seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.position
	case io.SeekEnd:
		size, err := f.disk.Size()
		if err != nil {
			return 0, fmt.Errorf("query file size: %w", err)
		}
		base = size
	default:
		return 0, ErrInvalidWhence
	}

	pos := base + offset
	if pos < 0 {
		return 0, ErrNegativeOffset
	}
	f.position = pos
	return pos, nil
}

// fsync flushes every dirty page. On the first flush failure the
// remaining dirty pages are left unflushed for a later retry.
func (f *File) fsync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.FlushAll(f.disk)
}

// close performs an implicit fsync, releases the page buffers, and
// closes the underlying file. Teardown happens even when the flush
// fails; the first error wins.
func (f *File) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.store.FlushAll(f.disk)
	f.store.Drop()
	if cerr := f.disk.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
