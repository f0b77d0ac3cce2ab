package cache

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tuannm99/pagecache/internal/storage"
	"github.com/tuannm99/pagecache/pkg/clockx"
)

var logDebugPrefix = "cache: "

// Store is the fixed-capacity page cache of one open file. We use a
// CLOCK replacement policy to choose victim slots when the store is
// full. Store is not safe for concurrent use; the owning file handle
// serializes access.
type Store struct {
	pageSize int
	pages    []Page
	clock    *clockx.Clock
}

// NewStore creates an empty store. Non-positive arguments select the
// defaults.
func NewStore(pageSize, capacity int) *Store {
	if pageSize <= 0 {
		pageSize = storage.PageSize
	}
	if capacity <= 0 {
		capacity = storage.CachePages
	}
	return &Store{
		pageSize: pageSize,
		pages:    make([]Page, capacity),
		clock:    clockx.New(capacity),
	}
}

// PageSize returns the store's page size in bytes.
func (s *Store) PageSize() int { return s.pageSize }

// Capacity returns the number of page slots.
func (s *Store) Capacity() int { return len(s.pages) }

// find returns the index of the slot holding offset, or -1. Offsets
// are compared for equality; offset must be page-aligned.
func (s *Store) find(offset int64) int {
	for i := range s.pages {
		if s.pages[i].loaded && s.pages[i].offset == offset {
			return i
		}
	}
	return -1
}

// Find returns the slot holding offset, or nil.
func (s *Store) Find(offset int64) *Page {
	if idx := s.find(offset); idx != -1 {
		return &s.pages[idx]
	}
	return nil
}

// GetOrLoad returns the page covering pageOffset, loading it from f
// on a miss. A dirty victim is flushed before reuse; a failed flush
// aborts the miss and leaves the victim in place, still dirty. A
// failed load empties the slot (the buffer allocation is kept for
// reuse).
func (s *Store) GetOrLoad(f storage.BlockFile, pageOffset int64) (*Page, error) {
	if idx := s.find(pageOffset); idx != -1 {
		s.clock.Touch(idx)
		slog.Debug(logDebugPrefix+"hit", "offset", pageOffset, "slot", idx)
		return &s.pages[idx], nil
	}

	idx := s.clock.Victim()
	victim := &s.pages[idx]
	slog.Debug(logDebugPrefix+"miss, selected victim",
		"offset", pageOffset,
		"slot", idx,
		"victimLoaded", victim.loaded,
		"victimDirty", victim.dirty)

	if victim.dirty {
		if err := s.FlushPage(f, victim); err != nil {
			return nil, err
		}
	}

	if victim.buf == nil {
		victim.buf = storage.AlignedPage(s.pageSize)
	}

	n, err := f.ReadAt(victim.buf, pageOffset)
	if err != nil && err != io.EOF {
		victim.loaded = false
		victim.dirty = false
		s.clock.Forget(idx)
		return nil, fmt.Errorf("read page at %d: %w", pageOffset, err)
	}
	// Zero-fill the tail when the file ends inside the page.
	for i := n; i < s.pageSize; i++ {
		victim.buf[i] = 0
	}

	victim.offset = pageOffset
	victim.dirty = false
	victim.loaded = true
	s.clock.Touch(idx)
	return victim, nil
}

// FlushPage writes one page back to f. A full page is always written,
// so the on-disk file length is rounded up to a page multiple. The
// page stays dirty if the write fails or is short, so a later flush
// can retry.
func (s *Store) FlushPage(f storage.BlockFile, p *Page) error {
	if !p.dirty {
		return nil
	}
	n, err := f.WriteAt(p.buf, p.offset)
	if err != nil {
		return fmt.Errorf("flush page at %d: %w", p.offset, err)
	}
	if n != s.pageSize {
		return fmt.Errorf("flush page at %d: %w", p.offset, io.ErrShortWrite)
	}
	p.dirty = false
	slog.Debug(logDebugPrefix+"flushed page", "offset", p.offset)
	return nil
}

// FlushAll flushes every dirty page, stopping at the first failure.
// Pages flushed before the failure stay clean.
func (s *Store) FlushAll(f storage.BlockFile) error {
	for i := range s.pages {
		p := &s.pages[i]
		if !p.loaded || !p.dirty {
			continue
		}
		if err := s.FlushPage(f, p); err != nil {
			return err
		}
	}
	return nil
}

// Drop releases every slot, buffers included. The store is reusable
// afterwards but starts cold.
func (s *Store) Drop() {
	for i := range s.pages {
		s.pages[i] = Page{}
		s.clock.Forget(i)
	}
}
