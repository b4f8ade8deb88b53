// Package archive implements an append-only, log-structured file store
// layered on top of a container: a header block anchored at the
// container's top-id, a fixed-fanout node-tree mapping sequence indices
// to content block ids, and a forward-linked chain of named entries.
package archive

import (
	"errors"
	"time"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/container"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/internal/options"
	"github.com/nutsvault/nuts/internal/pool"
	"github.com/nutsvault/nuts/pager"
)

// Archive is the append-only entry store. It exclusively owns the
// container it was created or opened on; closing the archive closes the
// container.
type Archive struct {
	c *container.Container

	h        archiveHeader
	headerID backend.BlockID

	tree       *nodeTree
	treePager  *pager.Pager
	entryPager *pager.Pager
}

// Stats reports the archive's entry counts and total content block
// count, taken from the in-memory header; blocks reserved by an
// unfinished Append are already counted.
type Stats struct {
	Files, Dirs, Symlinks, Blocks uint64
}

// Create allocates a fresh archive header block, installs it as c's
// top-id, and returns the archive ready for Append. Fails with
// errs.ErrTopIDAlreadySet unless c has no top-id or WithForce is passed.
func Create(c *container.Container, opts ...options.Option[*Options]) (*Archive, error) {
	o := defaultOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	if _, has := c.TopID(); has && !o.force {
		return nil, errs.ErrTopIDAlreadySet
	}

	tree, err := newNodeTree(c.BlockSizeNet(), c.BlockIDSize())
	if err != nil {
		return nil, err
	}

	headerID, err := c.Acquire()
	if err != nil {
		return nil, err
	}

	a := &Archive{
		c:          c,
		headerID:   headerID,
		tree:       tree,
		treePager:  pager.New(c),
		entryPager: pager.New(c),
	}

	if err := a.persistHeader(); err != nil {
		return nil, err
	}
	if err := c.SetTopID(headerID); err != nil {
		return nil, err
	}

	return a, nil
}

// Open reads c's top-id as an archive header, validates it, and returns
// the archive ready for traversal and Append.
func Open(c *container.Container, _ ...options.Option[*Options]) (*Archive, error) {
	topID, has := c.TopID()
	if !has {
		return nil, errs.ErrNoTopID
	}

	tree, err := newNodeTree(c.BlockSizeNet(), c.BlockIDSize())
	if err != nil {
		return nil, err
	}

	raw := make([]byte, c.BlockSizeNet())
	n, err := c.Read(topID, raw)
	if err != nil {
		return nil, err
	}

	h, err := parseArchiveHeader(raw[:n])
	if err != nil {
		return nil, err
	}

	if h.hasFirst != h.hasLast {
		return nil, errs.ErrInvalidHeader
	}

	if h.height == 0 {
		if h.nextIndex != 0 {
			return nil, errs.ErrIndexOutOfRange
		}
	} else if h.nextIndex > powU64(uint64(tree.fanout), uint64(h.height)) {
		return nil, errs.ErrIndexOutOfRange
	}

	return &Archive{
		c:          c,
		h:          h,
		headerID:   topID,
		tree:       tree,
		treePager:  pager.New(c),
		entryPager: pager.New(c),
	}, nil
}

func (a *Archive) persistHeader() error {
	buf, err := a.h.bytes()
	if err != nil {
		return err
	}

	_, err = a.c.Write(a.headerID, buf)
	return err
}

// Fanout returns the node-tree's fixed child count per internal node.
func (a *Archive) Fanout() int { return a.tree.fanout }

// Stats returns the archive's entry counts and content block count.
func (a *Archive) Stats() Stats {
	return Stats{Files: a.h.nfiles, Dirs: a.h.ndirs, Symlinks: a.h.nsyms, Blocks: a.h.blocks}
}

// Append reserves a new entry's first content block, links it into the
// node-tree, and returns a builder to write its content and finish it.
func (a *Archive) Append(name string, opts ...options.Option[*EntryOptions]) (*EntryBuilder, error) {
	if !bytesio.ValidUTF8([]byte(name)) {
		return nil, errs.ErrInvalidUtf8
	}

	eo := defaultEntryOptions()
	if err := options.Apply(eo, opts...); err != nil {
		return nil, err
	}

	firstID, err := a.c.Acquire()
	if err != nil {
		return nil, err
	}

	startIndex := a.h.nextIndex
	newRoot, newHeight, err := a.tree.put(a.treePager, a.c.Acquire, a.h.root, a.h.height, startIndex, firstID)
	if err != nil {
		return nil, err
	}
	a.h.root = newRoot
	a.h.height = newHeight
	a.h.hasRoot = true
	a.h.nextIndex++
	a.h.blocks++

	now := time.Now().Unix()
	eh := entryHeader{
		typ:        eo.entryType,
		mode:       packMode(eo.mode, eo.compression),
		mtime:      now,
		ctime:      now,
		atime:      now,
		startIndex: startIndex,
		name:       name,
	}

	b := &EntryBuilder{
		a:           a,
		eh:          eh,
		compression: eo.compression,
		firstID:     firstID,
		curID:       firstID,
	}

	headerBytes, err := eh.bytes(a.c.BlockIDSize())
	if err != nil {
		return nil, err
	}
	b.curOffset = len(headerBytes)

	if eo.compression != format.CompressionNone {
		b.buf = pool.GetArchiveBuffer()
	}

	return b, nil
}

// First returns the archive's first entry in chain order, or
// errs.ErrEntryEof if the archive is empty.
func (a *Archive) First() (*Entry, error) {
	if !a.h.hasFirst {
		return nil, errs.ErrEntryEof
	}

	return a.readEntryAt(a.h.first)
}

// Lookup performs a linear forward scan for the first entry named name.
// It is O(n) in the entry count; callers on a hot path should cache the
// result or walk the chain themselves.
func (a *Archive) Lookup(name string) (*Entry, error) {
	e, err := a.First()
	for {
		if err != nil {
			if errors.Is(err, errs.ErrEntryEof) {
				return nil, errs.ErrEntryNotFound
			}
			return nil, err
		}
		if e.Name() == name {
			return e, nil
		}
		e, err = e.Next()
	}
}

func (a *Archive) readEntryAt(id backend.BlockID) (*Entry, error) {
	buf := make([]byte, a.c.BlockSizeNet())
	n, err := a.c.Read(id, buf)
	if err != nil {
		return nil, err
	}

	eh, consumed, err := parseEntryHeader(buf[:n], a.c.BlockIDSize())
	if err != nil {
		return nil, err
	}

	return &Entry{a: a, id: id, h: eh, headerLen: consumed}, nil
}

// Close flushes both of the archive's pagers and closes the underlying
// container.
func (a *Archive) Close() error {
	if err := a.treePager.Close(); err != nil {
		return err
	}
	if err := a.entryPager.Close(); err != nil {
		return err
	}

	return a.c.Close()
}
