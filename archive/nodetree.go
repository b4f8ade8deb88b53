package archive

import (
	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/pager"
)

// nodeTree maps a dense sequence index to a content block id through a
// shallow, fixed-fanout tree of internal blocks. Height grows on demand:
// height 0 is the empty tree, height 1 means the root block holds content
// ids directly (addressable range [0, fanout)), height H means the root
// is H-1 levels of internal nodes above a leaf holding content ids
// (addressable range [0, fanout^H)).
type nodeTree struct {
	fanout int
	idSize int
}

// newNodeTree computes the tree's fanout from the container's net block
// size and id width: one u32 "used" counter plus as many fixed-width
// ids as fit in the remainder of a block.
func newNodeTree(blockSizeNet uint32, idSize int) (*nodeTree, error) {
	usable := int(blockSizeNet) - 4
	if usable < idSize {
		return nil, errs.ErrInvalidBlockSize
	}

	fanout := usable / idSize
	if fanout < 1 {
		return nil, errs.ErrInvalidBlockSize
	}

	return &nodeTree{fanout: fanout, idSize: idSize}, nil
}

// digits decomposes index into height base-fanout digits, least
// significant first: d[0] is the digit consumed at the leaf, d[height-1]
// the digit consumed at the root.
func (t *nodeTree) digits(index uint64, height uint32) []int {
	d := make([]int, height)
	for i := 0; i < int(height); i++ {
		d[i] = int(index % uint64(t.fanout))
		index /= uint64(t.fanout)
	}

	return d
}

func powU64(base, exp uint64) uint64 {
	result := uint64(1)
	for i := uint64(0); i < exp; i++ {
		result *= base
	}

	return result
}

func isZeroID(id backend.BlockID) bool {
	for _, b := range id.Bytes() {
		if b != 0 {
			return false
		}
	}

	return true
}

// readNode decodes a node block into its used counter and its fixed-width
// child slots (zero-filled where empty).
func (t *nodeTree) readNode(p *pager.Pager, id backend.BlockID) ([]backend.BlockID, uint32, error) {
	buf, err := p.Get(id)
	if err != nil {
		return nil, 0, err
	}

	r := bytesio.NewReader(buf)
	used, err := r.ReadUint32()
	if err != nil {
		return nil, 0, err
	}

	children := make([]backend.BlockID, t.fanout)
	for i := 0; i < t.fanout; i++ {
		raw, err := r.ReadFixed(t.idSize)
		if err != nil {
			return nil, 0, err
		}
		children[i] = backend.BlockID(append([]byte(nil), raw...))
	}

	return children, used, nil
}

// writeNode re-encodes a node's full child array and marks its block
// dirty. used is an advisory high-water mark, not consulted by get/put.
func (t *nodeTree) writeNode(p *pager.Pager, id backend.BlockID, children []backend.BlockID, used uint32) error {
	w := bytesio.NewWriter()
	defer w.Release()

	if err := w.WriteUint32(used); err != nil {
		return err
	}
	for _, c := range children {
		b := c.Bytes()
		if len(b) != t.idSize {
			b = make([]byte, t.idSize)
		}
		if err := w.WriteFixed(b); err != nil {
			return err
		}
	}

	buf, err := p.Get(id)
	if err != nil {
		return err
	}
	copy(buf, w.Bytes())
	p.MarkDirty()

	return nil
}

// get descends root by index's base-fanout digits, one node block per
// level, and returns the content id stored at the leaf.
func (t *nodeTree) get(p *pager.Pager, root backend.BlockID, height uint32, index uint64) (backend.BlockID, error) {
	if height == 0 || index >= powU64(uint64(t.fanout), uint64(height)) {
		return "", errs.ErrIndexOutOfRange
	}

	d := t.digits(index, height)
	cur := root
	for lvl := int(height) - 1; lvl >= 0; lvl-- {
		children, _, err := t.readNode(p, cur)
		if err != nil {
			return "", err
		}

		next := children[d[lvl]]
		if isZeroID(next) {
			return "", errs.ErrIndexOutOfRange
		}
		cur = next
	}

	return cur, nil
}

// put installs id at index, allocating internal nodes on the fly and
// growing the tree's height whenever index exceeds the current root's
// addressable range. acquire mints a fresh, zero-filled block id.
// Returns the (possibly new) root and height.
func (t *nodeTree) put(
	p *pager.Pager,
	acquire func() (backend.BlockID, error),
	root backend.BlockID,
	height uint32,
	index uint64,
	id backend.BlockID,
) (backend.BlockID, uint32, error) {
	if height == 0 {
		newRoot, err := acquire()
		if err != nil {
			return "", 0, err
		}
		root = newRoot
		height = 1
	}

	for index >= powU64(uint64(t.fanout), uint64(height)) {
		newRoot, err := acquire()
		if err != nil {
			return "", 0, err
		}

		children := make([]backend.BlockID, t.fanout)
		children[0] = root
		if err := t.writeNode(p, newRoot, children, 1); err != nil {
			return "", 0, err
		}

		root = newRoot
		height++
	}

	d := t.digits(index, height)
	cur := root
	for lvl := int(height) - 1; lvl > 0; lvl-- {
		children, used, err := t.readNode(p, cur)
		if err != nil {
			return "", 0, err
		}

		ci := d[lvl]
		child := children[ci]
		if isZeroID(child) {
			newChild, err := acquire()
			if err != nil {
				return "", 0, err
			}
			children[ci] = newChild
			if used < uint32(ci)+1 {
				used = uint32(ci) + 1
			}
			if err := t.writeNode(p, cur, children, used); err != nil {
				return "", 0, err
			}
			child = newChild
		}
		cur = child
	}

	children, used, err := t.readNode(p, cur)
	if err != nil {
		return "", 0, err
	}

	li := d[0]
	children[li] = id
	if used < uint32(li)+1 {
		used = uint32(li) + 1
	}
	if err := t.writeNode(p, cur, children, used); err != nil {
		return "", 0, err
	}

	return root, height, nil
}
