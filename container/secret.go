package container

import (
	"bytes"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/errs"
)

// secretMagic validates that decryption with the right password succeeded.
// A wrong password
// produces garbage instead of this value, which is how Open detects a
// wrong password under CTR/None; under GCM the tag check fails first.
// Open reports errs.ErrWrongPassword in both cases.
var secretMagic = [8]byte{'s', 'e', 'c', 'r', 'e', 't', '!', '!'}

// secret is the decrypted header payload: the master key material plus
// whatever the container and its owner (the archive) have asked to carry
// along.
type secret struct {
	masterKey    []byte
	masterIV     []byte
	topID        backend.BlockID
	hasTopID     bool
	userSettings []byte
}

func (s secret) bytes() ([]byte, error) {
	w := bytesio.NewWriter()
	defer w.Release()

	if err := w.WriteFixed(secretMagic[:]); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(s.masterKey); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(s.masterIV); err != nil {
		return nil, err
	}
	if err := w.WriteOptionTag(s.hasTopID); err != nil {
		return nil, err
	}
	if s.hasTopID {
		if err := w.WriteBytes(s.topID.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := w.WriteBytes(s.userSettings); err != nil {
		return nil, err
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())

	return out, nil
}

func parseSecret(buf []byte) (secret, error) {
	r := bytesio.NewReader(buf)

	magic, err := r.ReadFixed(len(secretMagic))
	if err != nil {
		return secret{}, errs.ErrWrongPassword
	}
	if !bytes.Equal(magic, secretMagic[:]) {
		return secret{}, errs.ErrWrongPassword
	}

	masterKey, err := r.ReadBytes()
	if err != nil {
		return secret{}, errs.ErrWrongPassword
	}
	masterIV, err := r.ReadBytes()
	if err != nil {
		return secret{}, errs.ErrWrongPassword
	}
	hasTopID, err := r.ReadOptionTag()
	if err != nil {
		return secret{}, errs.ErrWrongPassword
	}

	var topID backend.BlockID
	if hasTopID {
		idBytes, err := r.ReadBytes()
		if err != nil {
			return secret{}, errs.ErrWrongPassword
		}
		topID = backend.BlockID(idBytes)
	}

	userSettings, err := r.ReadBytes()
	if err != nil {
		return secret{}, errs.ErrWrongPassword
	}

	return secret{
		masterKey:    append([]byte(nil), masterKey...),
		masterIV:     append([]byte(nil), masterIV...),
		topID:        topID,
		hasTopID:     hasTopID,
		userSettings: append([]byte(nil), userSettings...),
	}, nil
}
