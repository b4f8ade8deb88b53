// Package pager implements a buffered block view: borrow a block's
// plaintext, mutate it in place, and have the pager re-encrypt and write
// it back on flush (or drop). It exists to serve the archive engine,
// which repeatedly touches the same node-tree internal nodes and archive
// header while building up a tree.
package pager

import (
	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/container"
	"github.com/nutsvault/nuts/internal/pool"
)

// Pager is a single-entry buffered view over one container block at a
// time. It never reorders writes relative to the program: a Flush (or an
// implicit flush triggered by Get switching to a different block) always
// happens before the next read or write touches the backend.
type Pager struct {
	c *container.Container

	id    backend.BlockID
	valid bool
	dirty bool
	buf   *pool.ByteBuffer
}

// New creates a Pager backed by c. Every Pager uses its own scratch
// buffer; callers needing concurrent views should create one Pager per
// goroutine, since a container is single-owner.
func New(c *container.Container) *Pager {
	return &Pager{c: c, buf: pool.GetArchiveBuffer()}
}

// Get returns a mutable view of id's plaintext. If the pager currently
// holds a different block and it is dirty, that block is flushed first.
// The returned slice is owned by the Pager and is invalidated by the next
// Get or by Flush/Close.
func (p *Pager) Get(id backend.BlockID) ([]byte, error) {
	if p.valid && p.id == id {
		return p.buf.Bytes(), nil
	}

	if err := p.Flush(); err != nil {
		return nil, err
	}

	p.buf.Reset()
	p.buf.ExtendOrGrow(int(p.c.BlockSizeNet()))

	n, err := p.c.Read(id, p.buf.Bytes())
	if err != nil {
		p.valid = false
		return nil, err
	}

	p.buf.SetLength(n)
	p.id = id
	p.valid = true
	p.dirty = false

	return p.buf.Bytes(), nil
}

// MarkDirty flags the currently held block as needing a write-back on the
// next Flush. Callers mutate the slice Get returned in place, then call
// MarkDirty to record that the mutation needs to be persisted.
func (p *Pager) MarkDirty() {
	p.dirty = true
}

// Flush writes the currently held block back to the container if it is
// dirty. On a write error the dirty bit is left set so a caller can
// observe the failure and retry.
func (p *Pager) Flush() error {
	if !p.valid || !p.dirty {
		return nil
	}

	if _, err := p.c.Write(p.id, p.buf.Bytes()); err != nil {
		return err
	}

	p.dirty = false

	return nil
}

// Close flushes any dirty block and releases the pager's scratch buffer
// back to its pool.
func (p *Pager) Close() error {
	err := p.Flush()
	pool.PutArchiveBuffer(p.buf)
	p.buf = nil
	p.valid = false

	return err
}
