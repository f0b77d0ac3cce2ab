package cache

// Page is one cache slot: a page-aligned buffer holding one page of
// file data starting at a page-aligned offset.
type Page struct {
	offset int64
	dirty  bool

	// buf keeps its allocation across evictions; loaded tells whether
	// the slot currently holds file data.
	buf    []byte
	loaded bool
}

// Offset is the page's byte offset in the file.
func (p *Page) Offset() int64 { return p.offset }

// Dirty reports whether the buffer holds unflushed writes.
func (p *Page) Dirty() bool { return p.dirty }

// Loaded reports whether the slot holds file data.
func (p *Page) Loaded() bool { return p.loaded }

// Data returns the page buffer. The buffer is exclusively owned by
// the slot and only valid until the next store operation.
func (p *Page) Data() []byte { return p.buf }

// MarkDirty records that the buffer has been modified through the
// cache and not yet flushed.
func (p *Page) MarkDirty() { p.dirty = true }
