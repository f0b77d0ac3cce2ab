// Package pagecache provides a user-space block cache layered above
// raw file I/O, behind a small POSIX-style descriptor API. Each open
// file keeps a private fixed-size cache of aligned pages, replaced
// with a second-chance (CLOCK) policy, so the caller controls caching
// policy instead of the host page cache.
package pagecache

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tuannm99/pagecache/internal/storage"
)

var logDebugPrefix = "pagecache: "

var (
	// ErrBadDescriptor is returned when a descriptor is out of range,
	// unopened, or already closed.
	ErrBadDescriptor = errors.New("pagecache: bad file descriptor")

	// ErrTooManyOpen is returned by Open when every descriptor slot
	// is in use.
	ErrTooManyOpen = errors.New("pagecache: too many open files")

	// ErrInvalidWhence is returned by Seek for an unknown whence.
	ErrInvalidWhence = errors.New("pagecache: invalid whence")

	// ErrNegativeOffset is returned by Seek when the resulting
	// position would be negative.
	ErrNegativeOffset = errors.New("pagecache: negative position")
)

// Options configures a Cache. Zero values select the defaults.
type Options struct {
	PageSize   int  // bytes per cache page (default 4096)
	CachePages int  // page slots per open file (default 64)
	MaxOpen    int  // descriptor table capacity (default 256)
	DirectIO   bool // open files with O_DIRECT
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = storage.PageSize
	}
	if o.CachePages <= 0 {
		o.CachePages = storage.CachePages
	}
	if o.MaxOpen <= 0 {
		o.MaxOpen = storage.MaxOpen
	}
	return o
}

// Cache is the library context: a descriptor table mapping small
// integers to open file handles. The zero value is not usable; create
// one with New. Methods on distinct descriptors may run concurrently;
// operations on the same descriptor serialize on the handle.
type Cache struct {
	opts Options

	// mu guards the descriptor slots only. It is held for slot
	// inspection, never across I/O.
	mu    sync.Mutex
	files []*File
}

// New creates a Cache with the given options.
func New(opts Options) *Cache {
	opts = opts.withDefaults()
	return &Cache{
		opts:  opts,
		files: make([]*File, opts.MaxOpen),
	}
}

// install places f in the lowest free descriptor slot.
func (c *Cache) install(f *File) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for fd := range c.files {
		if c.files[fd] == nil {
			c.files[fd] = f
			return fd, nil
		}
	}
	return -1, ErrTooManyOpen
}

func (c *Cache) lookup(fd int) (*File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fd < 0 || fd >= len(c.files) || c.files[fd] == nil {
		return nil, ErrBadDescriptor
	}
	return c.files[fd], nil
}

func (c *Cache) release(fd int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fd >= 0 && fd < len(c.files) {
		c.files[fd] = nil
	}
}

// Open opens or creates path with read+write access and returns its
// descriptor. Descriptors are small non-negative integers, issued
// lowest-free-first.
func (c *Cache) Open(path string) (int, error) {
	disk, err := storage.OpenDisk(path, c.opts.DirectIO)
	if err != nil {
		return -1, fmt.Errorf("pagecache: %w", err)
	}

	f := newFile(disk, c.opts.PageSize, c.opts.CachePages)
	fd, err := c.install(f)
	if err != nil {
		_ = disk.Close()
		return -1, err
	}

	slog.Debug(logDebugPrefix+"opened", "path", path, "fd", fd)
	return fd, nil
}

// Close flushes every dirty page, releases the cache buffers, closes
// the underlying file, and frees the descriptor. The handle is
// destroyed even when the flush fails; the flush error is returned.
func (c *Cache) Close(fd int) error {
	f, err := c.lookup(fd)
	if err != nil {
		return err
	}
	// Free the slot first so the descriptor cannot be looked up again
	// while the handle tears down.
	c.release(fd)

	err = f.close()
	slog.Debug(logDebugPrefix+"closed", "fd", fd, "err", err)
	return err
}

// Read copies len(buf) bytes from the current position into buf and
// advances the position. Reads never short-return: positions past
// end-of-file yield zero bytes.
func (c *Cache) Read(fd int, buf []byte) (int, error) {
	f, err := c.lookup(fd)
	if err != nil {
		return 0, err
	}
	return f.read(buf)
}

// Write copies len(buf) bytes from buf into the cache at the current
// position and advances the position. No data reaches the underlying
// file until the dirty pages are evicted or flushed.
func (c *Cache) Write(fd int, buf []byte) (int, error) {
	f, err := c.lookup(fd)
	if err != nil {
		return 0, err
	}
	return f.write(buf)
}

// Seek updates the logical position. whence is io.SeekStart,
// io.SeekCurrent, or io.SeekEnd. Seeking past end-of-file is allowed;
// the position must not become negative.
func (c *Cache) Seek(fd int, offset int64, whence int) (int64, error) {
	f, err := c.lookup(fd)
	if err != nil {
		return 0, err
	}
	return f.seek(offset, whence)
}

// Fsync flushes every dirty page of the descriptor to the underlying
// file.
func (c *Cache) Fsync(fd int) error {
	f, err := c.lookup(fd)
	if err != nil {
		return err
	}
	return f.fsync()
}
