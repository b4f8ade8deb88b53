package backend

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nutsvault/nuts/errs"
)

// directoryIDSize is the width, in bytes, of a DirectoryBackend block id:
// 16 random bytes.
const directoryIDSize = 16

// headerBlockDir is the fixed 16-byte all-zero id DirectoryBackend
// reserves for the container header.
var headerBlockDir = BlockID(make([]byte, directoryIDSize))

// DirectoryBackend stores each block as a file under root, addressed by
// a 16 random byte id hex-split into a 3-level path
// (aa/bb/cccccccccccccccccccccccccccc) to keep any one directory's entry
// count small. Writes go to a temp file in the same leaf directory and
// are renamed into place, giving writes the atomicity a conforming
// backend must provide.
type DirectoryBackend struct {
	root      string
	blockSize uint32
}

var _ Backend = (*DirectoryBackend)(nil)

// OpenDirectoryBackend prepares root (which must already exist, or be
// creatable) as a block store with the given gross block size. When no
// header block exists yet it writes a zero-filled one at the well-known
// HeaderID; an existing header block is left as it is.
func OpenDirectoryBackend(root string, blockSize uint32) (*DirectoryBackend, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("nuts: creating backend root: %w", err)
	}

	d := &DirectoryBackend{root: root, blockSize: blockSize}
	if err := d.ensureHeaderBlock(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *DirectoryBackend) ensureHeaderBlock() error {
	path := d.pathFor(headerBlockDir)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return d.Write(headerBlockDir, make([]byte, d.blockSize))
}

func (d *DirectoryBackend) BlockSize() uint32 { return d.blockSize }

func (d *DirectoryBackend) HeaderID() BlockID { return headerBlockDir }

// pathFor renders id as hex and splits it into a 3-level path: the first
// byte, the second byte, then the remaining bytes as one path component.
func (d *DirectoryBackend) pathFor(id BlockID) string {
	hex := id.String()
	if len(hex) < 4 {
		return filepath.Join(d.root, hex)
	}

	return filepath.Join(d.root, hex[0:2], hex[2:4], hex[4:])
}

func (d *DirectoryBackend) Acquire(buf []byte) (BlockID, error) {
	if uint32(len(buf)) != d.blockSize {
		return "", errs.ErrInvalidBlockSize
	}

	for {
		raw := make([]byte, directoryIDSize)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("nuts: generating block id: %w", err)
		}
		id := BlockID(raw)
		if id == headerBlockDir {
			continue // astronomically unlikely, but never collide with the header id.
		}

		path := d.pathFor(id)
		if _, err := os.Stat(path); err == nil {
			continue // id already in use, draw another
		}

		if err := d.writeAtomic(path, buf); err != nil {
			return "", err
		}

		return id, nil
	}
}

func (d *DirectoryBackend) Release(id BlockID) error {
	path := d.pathFor(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errs.ErrNoSuchBlock
		}

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}

func (d *DirectoryBackend) Read(id BlockID, buf []byte) error {
	if uint32(len(buf)) != d.blockSize {
		return errs.ErrInvalidBlockSize
	}

	path := d.pathFor(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.ErrNoSuchBlock
		}

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if len(data) != len(buf) {
		return fmt.Errorf("%w: stored block has wrong size", errs.ErrIO)
	}
	copy(buf, data)

	return nil
}

func (d *DirectoryBackend) Write(id BlockID, buf []byte) error {
	if uint32(len(buf)) != d.blockSize {
		return errs.ErrInvalidBlockSize
	}

	path := d.pathFor(id)
	if id != headerBlockDir {
		if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
			return errs.ErrNoSuchBlock
		}
	}

	return d.writeAtomic(path, buf)
}

// writeAtomic writes data to a temp file beside path and renames it into
// place, so a crash mid-write never leaves a torn block on disk.
func (d *DirectoryBackend) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, ".nuts-block-*")
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}
