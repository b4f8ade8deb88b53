// Package container implements the header/secret lifecycle and per-block
// encrypted I/O: a password-wrapped master key carried inside the volume,
// and a block-level read/write surface built on top of a backend.Backend.
package container

import (
	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/cipherctx"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/internal/options"
	"github.com/nutsvault/nuts/xcrypto"
)

type state int

const (
	stateFresh state = iota
	stateOpen
	stateClosed
)

// Info reports a container's static parameters without exposing key
// material.
type Info struct {
	Cipher         format.CipherTag
	Kdf            xcrypto.Pbkdf2Spec
	BlockSizeGross uint32
	BlockSizeNet   uint32
}

// Container is the block-oriented engine: create/open,
// acquire/release/read/write, info, top-id, password change. A
// Container exclusively owns its backend for its lifetime.
type Container struct {
	back backend.Backend

	blockSize uint32
	cipherTag format.CipherTag
	cipher    xcrypto.Cipher
	ctx       *cipherctx.Context

	kdf          xcrypto.Pbkdf2Spec
	wrappingKey  []byte
	masterKey    []byte
	masterIV     []byte
	topID        backend.BlockID
	hasTopID     bool
	userSettings []byte

	state state
}

// Create generates a master key and IV, derives a wrapping key from the
// resolved password, seals the secret, and writes the header block.
func Create(back backend.Backend, opts ...options.Option[*Options]) (*Container, error) {
	o := defaultOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	password, err := o.resolvePassword()
	if err != nil {
		return nil, err
	}

	cipher, err := xcrypto.New(o.cipher)
	if err != nil {
		return nil, err
	}

	blockSize := back.BlockSize()
	if o.blockSize != 0 && o.blockSize != blockSize {
		return nil, errs.ErrInvalidBlockSize
	}
	if netSize := int(blockSize) - cipher.Overhead(); netSize < 1 {
		return nil, errs.ErrInvalidBlockSize
	}

	salt := o.kdfSalt
	if len(salt) == 0 {
		salt, err = xcrypto.RandomBytes(16)
		if err != nil {
			return nil, err
		}
	}
	kdf := xcrypto.Pbkdf2Spec{Digest: o.kdfDigest, Iterations: o.kdfIterations, Salt: salt}

	wrappingKey, err := kdf.Derive(password, cipher.KeySize())
	if err != nil {
		return nil, err
	}

	masterKey, err := randomOrEmpty(cipher.KeySize())
	if err != nil {
		return nil, err
	}
	masterIV, err := randomOrEmpty(cipher.IVSize())
	if err != nil {
		return nil, err
	}

	c := &Container{
		back:         back,
		blockSize:    blockSize,
		cipherTag:    o.cipher,
		cipher:       cipher,
		kdf:          kdf,
		wrappingKey:  wrappingKey,
		masterKey:    masterKey,
		masterIV:     masterIV,
		userSettings: o.userSettings,
		state:        stateFresh,
	}

	ctx, err := cipherctx.New(cipher, masterKey, masterIV)
	if err != nil {
		return nil, err
	}
	c.ctx = ctx

	if err := c.writeHeader(); err != nil {
		return nil, err
	}

	c.state = stateOpen

	return c, nil
}

// Open parses the header, derives the wrapping key from the resolved
// password, and decrypts the secret.
// errs.ErrWrongPassword is returned when the secret's magic fails to
// validate after decryption.
func Open(back backend.Backend, opts ...options.Option[*Options]) (*Container, error) {
	o := defaultOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	password, err := o.resolvePassword()
	if err != nil {
		return nil, err
	}

	blockSize := back.BlockSize()
	raw := make([]byte, blockSize)
	if err := back.Read(back.HeaderID(), raw); err != nil {
		return nil, err
	}

	h, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	cipher, err := xcrypto.New(h.cipher)
	if err != nil {
		return nil, err
	}

	wrappingKey, err := h.kdf.Derive(password, cipher.KeySize())
	if err != nil {
		return nil, err
	}

	plain := make([]byte, len(h.encSecret))
	n, err := cipher.Decrypt(wrappingKey, h.headerIV, h.encSecret, plain)
	if err != nil {
		return nil, errs.ErrWrongPassword
	}

	sec, err := parseSecret(plain[:n])
	if err != nil {
		return nil, err
	}

	c := &Container{
		back:         back,
		blockSize:    blockSize,
		cipherTag:    h.cipher,
		cipher:       cipher,
		kdf:          h.kdf,
		wrappingKey:  wrappingKey,
		masterKey:    sec.masterKey,
		masterIV:     sec.masterIV,
		topID:        sec.topID,
		hasTopID:     sec.hasTopID,
		userSettings: sec.userSettings,
		state:        stateOpen,
	}

	ctx, err := cipherctx.New(cipher, sec.masterKey, sec.masterIV)
	if err != nil {
		return nil, err
	}
	c.ctx = ctx

	return c, nil
}

func randomOrEmpty(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	return xcrypto.RandomBytes(n)
}

// writeHeader rebuilds the secret from the container's current in-memory
// state, seals it under the current wrapping key, and overwrites the
// header block. Called by Create, SetTopID, and ChangePassword.
func (c *Container) writeHeader() error {
	sec := secret{
		masterKey:    c.masterKey,
		masterIV:     c.masterIV,
		topID:        c.topID,
		hasTopID:     c.hasTopID,
		userSettings: c.userSettings,
	}

	secBytes, err := sec.bytes()
	if err != nil {
		return err
	}

	headerIV, err := randomOrEmpty(c.cipher.IVSize())
	if err != nil {
		return err
	}

	encSecret := make([]byte, len(secBytes)+c.cipher.Overhead())
	n, err := c.cipher.Encrypt(c.wrappingKey, headerIV, secBytes, encSecret)
	if err != nil {
		return err
	}

	h := header{cipher: c.cipherTag, kdf: c.kdf, headerIV: headerIV, encSecret: encSecret[:n]}
	buf, err := h.bytes(c.blockSize)
	if err != nil {
		return err
	}

	return c.back.Write(c.back.HeaderID(), buf)
}

// BlockSizeNet returns the usable payload length of a block, after cipher
// overhead.
func (c *Container) BlockSizeNet() uint32 {
	return c.blockSize - uint32(c.cipher.Overhead())
}

// BlockIDSize returns the byte width of ids this container's backend
// mints. Every id a given backend instance produces (including HeaderID)
// shares this width, so higher layers that pack ids into fixed-width
// slots — the archive's node-tree nodes — can size them up front.
func (c *Container) BlockIDSize() int {
	return len(c.back.HeaderID().Bytes())
}

// Info reports the container's cipher, KDF, and block sizes.
func (c *Container) Info() Info {
	return Info{
		Cipher:         c.cipherTag,
		Kdf:            c.kdf,
		BlockSizeGross: c.blockSize,
		BlockSizeNet:   c.BlockSizeNet(),
	}
}

// TopID returns the container's top-id slot, if any.
func (c *Container) TopID() (backend.BlockID, bool) {
	return c.topID, c.hasTopID
}

// SetTopID installs id as the container's top-id slot and persists it by
// rewriting the header block.
func (c *Container) SetTopID(id backend.BlockID) error {
	if err := c.requireOpen(); err != nil {
		return err
	}

	c.topID = id
	c.hasTopID = true

	return c.writeHeader()
}

// Acquire allocates a new block initialized to net-zero plaintext,
// correctly encrypted under the real id the backend assigns.
func (c *Container) Acquire() (backend.BlockID, error) {
	if err := c.requireOpen(); err != nil {
		return "", err
	}

	placeholder := make([]byte, c.blockSize)
	id, err := c.back.Acquire(placeholder)
	if err != nil {
		return "", err
	}

	zero := make([]byte, c.BlockSizeNet())
	encrypted := make([]byte, c.blockSize)
	n, err := c.ctx.Encrypt(id.Bytes(), zero, encrypted)
	if err != nil {
		return "", err
	}

	if err := c.back.Write(id, encrypted[:n]); err != nil {
		return "", err
	}

	return id, nil
}

// Release frees block id. The caller asserts nothing still references it.
func (c *Container) Release(id backend.BlockID) error {
	if err := c.requireOpen(); err != nil {
		return err
	}

	return c.back.Release(id)
}

// Read decrypts block id's plaintext into buf, which must have room for
// at least BlockSizeNet bytes, and returns the number of bytes written.
func (c *Container) Read(id backend.BlockID, buf []byte) (int, error) {
	if err := c.requireOpen(); err != nil {
		return 0, err
	}
	if uint32(len(buf)) < c.BlockSizeNet() {
		return 0, errs.ErrInvalidCipherArg
	}

	gross := make([]byte, c.blockSize)
	if err := c.back.Read(id, gross); err != nil {
		return 0, err
	}

	return c.ctx.Decrypt(id.Bytes(), gross, buf)
}

// Write pads or truncates p to BlockSizeNet, encrypts it, and writes the
// gross block to the backend. Returns the number of plaintext bytes
// written (always BlockSizeNet).
func (c *Container) Write(id backend.BlockID, p []byte) (int, error) {
	if err := c.requireOpen(); err != nil {
		return 0, err
	}

	netSize := int(c.BlockSizeNet())
	padded := make([]byte, netSize)
	copy(padded, p)

	encrypted := make([]byte, c.blockSize)
	n, err := c.ctx.Encrypt(id.Bytes(), padded, encrypted)
	if err != nil {
		return 0, err
	}

	if err := c.back.Write(id, encrypted[:n]); err != nil {
		return 0, err
	}

	return netSize, nil
}

// ChangePassword re-derives the wrapping key and re-seals the secret
// under a new password, preserving the master key and top-id. Passing
// WithKdf changes the digest, iteration count, and salt together;
// otherwise the existing digest and iteration count are reused but a
// fresh random salt is always generated, since reusing a salt across two
// passwords would let an attacker correlate the two wrapping keys.
func (c *Container) ChangePassword(newPassword []byte, opts ...options.Option[*Options]) error {
	if err := c.requireOpen(); err != nil {
		return err
	}

	o := &Options{kdfDigest: c.kdf.Digest, kdfIterations: c.kdf.Iterations}
	if err := options.Apply(o, opts...); err != nil {
		return err
	}

	salt := o.kdfSalt
	if len(salt) == 0 {
		var err error
		salt, err = xcrypto.RandomBytes(16)
		if err != nil {
			return err
		}
	}

	kdf := xcrypto.Pbkdf2Spec{Digest: o.kdfDigest, Iterations: o.kdfIterations, Salt: salt}
	wrappingKey, err := kdf.Derive(newPassword, c.cipher.KeySize())
	if err != nil {
		return err
	}

	c.kdf = kdf
	c.wrappingKey = wrappingKey

	return c.writeHeader()
}

// Close marks the container closed and best-effort zeroes key material in
// memory. Block operations after Close fail with errs.ErrClosed.
func (c *Container) Close() error {
	if c.state == stateClosed {
		return nil
	}

	zero(c.wrappingKey)
	zero(c.masterKey)
	zero(c.masterIV)
	c.state = stateClosed

	return nil
}

// IntoBackend closes the container and returns its backend for reuse.
func (c *Container) IntoBackend() (backend.Backend, error) {
	if err := c.Close(); err != nil {
		return nil, err
	}

	return c.back, nil
}

func (c *Container) requireOpen() error {
	switch c.state {
	case stateOpen:
		return nil
	case stateClosed:
		return errs.ErrClosed
	default:
		return errs.ErrNotOpen
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
