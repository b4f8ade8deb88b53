package container

import (
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/internal/options"
)

// defaultKdfIterations matches PBKDF2-HMAC-SHA256 guidance current at
// nuts's design time; callers handling legacy volumes should pass
// WithKdf explicitly.
const defaultKdfIterations = 65536

// Options configures Create and Open. Build a set of them with the With*
// functions below and pass them as the variadic argument.
type Options struct {
	cipher        format.CipherTag
	kdfDigest     format.KdfDigest
	kdfIterations uint32
	kdfSalt       []byte

	blockSize uint32

	password         []byte
	passwordCallback func() ([]byte, error)

	userSettings []byte
}

func defaultOptions() *Options {
	return &Options{
		cipher:        format.CipherAes128Gcm,
		kdfDigest:     format.DigestSha256,
		kdfIterations: defaultKdfIterations,
	}
}

// resolvePassword returns the configured password, invoking the callback
// if one was supplied instead of a literal password.
func (o *Options) resolvePassword() ([]byte, error) {
	if o.passwordCallback != nil {
		return o.passwordCallback()
	}
	if o.password != nil {
		return o.password, nil
	}

	return nil, errs.ErrWrongPassword
}

// WithCipher selects the symmetric cipher Create seals the header and
// every subsequent block with. Ignored by Open, which reads the cipher
// tag from the header it decodes.
func WithCipher(tag format.CipherTag) options.Option[*Options] {
	return options.New(func(o *Options) error {
		o.cipher = tag
		return nil
	})
}

// WithKdf selects the PBKDF2 digest, iteration count, and salt Create
// uses to wrap the master key. Ignored by Open.
func WithKdf(digest format.KdfDigest, iterations uint32, salt []byte) options.Option[*Options] {
	return options.New(func(o *Options) error {
		o.kdfDigest = digest
		o.kdfIterations = iterations
		o.kdfSalt = salt
		return nil
	})
}

// WithBlockSize states the gross block size the caller expects. The
// block size itself comes from the backend: Create fails with
// errs.ErrInvalidBlockSize when the backend's block size differs. Ignored
// by Open, which reads it from the backend.
func WithBlockSize(n uint32) options.Option[*Options] {
	return options.New(func(o *Options) error {
		o.blockSize = n
		return nil
	})
}

// WithPassword supplies the password directly.
func WithPassword(password []byte) options.Option[*Options] {
	return options.New(func(o *Options) error {
		o.password = password
		return nil
	})
}

// WithPasswordCallback supplies a callback invoked once to obtain the
// password, for environments where it isn't known up front (interactive
// prompting, secret managers).
func WithPasswordCallback(fn func() ([]byte, error)) options.Option[*Options] {
	return options.New(func(o *Options) error {
		o.passwordCallback = fn
		return nil
	})
}

// WithUserSettings attaches an opaque settings blob to the secret, carried
// across Create/Open/ChangePassword untouched. The archive engine does
// not use this slot; it is exposed for callers layered on top of nuts.
func WithUserSettings(b []byte) options.Option[*Options] {
	return options.New(func(o *Options) error {
		o.userSettings = b
		return nil
	})
}
