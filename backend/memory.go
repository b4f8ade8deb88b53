package backend

import (
	"encoding/binary"
	"sync"

	"github.com/nutsvault/nuts/errs"
)

// headerBlockU64 is the fixed 8-byte all-zero id MemoryBackend reserves
// for the container header, typically all-zero.
var headerBlockU64 = BlockID(make([]byte, 8))

// MemoryBackend stores blocks in a process-local map, keyed by an 8-byte
// big-endian sequential counter. Intended for tests and for embedding
// nuts in a process that wants a disposable volume.
type MemoryBackend struct {
	mu        sync.Mutex
	blockSize uint32
	next      uint64
	blocks    map[BlockID][]byte
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend with the given
// gross block size.
func NewMemoryBackend(blockSize uint32) *MemoryBackend {
	blocks := make(map[BlockID][]byte)
	blocks[headerBlockU64] = make([]byte, blockSize)

	return &MemoryBackend{
		blockSize: blockSize,
		next:      1, // 0 is reserved for the header block.
		blocks:    blocks,
	}
}

func (m *MemoryBackend) BlockSize() uint32 { return m.blockSize }

func (m *MemoryBackend) HeaderID() BlockID { return headerBlockU64 }

func (m *MemoryBackend) Acquire(buf []byte) (BlockID, error) {
	if uint32(len(buf)) != m.blockSize {
		return "", errs.ErrInvalidBlockSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], m.next)
	m.next++
	id := BlockID(idBytes[:])

	stored := make([]byte, len(buf))
	copy(stored, buf)
	m.blocks[id] = stored

	return id, nil
}

func (m *MemoryBackend) Release(id BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blocks[id]; !ok {
		return errs.ErrNoSuchBlock
	}
	delete(m.blocks, id)

	return nil
}

func (m *MemoryBackend) Read(id BlockID, buf []byte) error {
	if uint32(len(buf)) != m.blockSize {
		return errs.ErrInvalidBlockSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.blocks[id]
	if !ok {
		return errs.ErrNoSuchBlock
	}
	copy(buf, stored)

	return nil
}

func (m *MemoryBackend) Write(id BlockID, buf []byte) error {
	if uint32(len(buf)) != m.blockSize {
		return errs.ErrInvalidBlockSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.blocks[id]
	if !ok {
		return errs.ErrNoSuchBlock
	}
	copy(stored, buf)

	return nil
}
