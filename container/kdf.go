package container

import (
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/xcrypto"
)

// kdfTagPbkdf2 is the only KDF variant nuts's tagged sum currently carries.
const kdfTagPbkdf2 = 0

// writeKdfSpec appends a KDF record: a u64 variant tag followed by the
// variant's payload.
func writeKdfSpec(w *bytesio.Writer, spec xcrypto.Pbkdf2Spec) error {
	if err := w.WriteVariantTag(kdfTagPbkdf2); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(spec.Digest)); err != nil {
		return err
	}
	if err := w.WriteUint32(spec.Iterations); err != nil {
		return err
	}

	return w.WriteBytes(spec.Salt)
}

// readKdfSpec decodes a KDF record written by writeKdfSpec.
func readKdfSpec(r *bytesio.Reader) (xcrypto.Pbkdf2Spec, error) {
	tag, err := r.ReadVariantTag()
	if err != nil {
		return xcrypto.Pbkdf2Spec{}, err
	}
	if tag != kdfTagPbkdf2 {
		return xcrypto.Pbkdf2Spec{}, errs.ErrUnsupportedKdf
	}

	digest, err := r.ReadUint32()
	if err != nil {
		return xcrypto.Pbkdf2Spec{}, err
	}
	iterations, err := r.ReadUint32()
	if err != nil {
		return xcrypto.Pbkdf2Spec{}, err
	}
	salt, err := r.ReadBytes()
	if err != nil {
		return xcrypto.Pbkdf2Spec{}, err
	}

	spec := xcrypto.Pbkdf2Spec{
		Digest:     format.KdfDigest(digest),
		Iterations: iterations,
		Salt:       append([]byte(nil), salt...),
	}
	if spec.Digest > format.DigestSha512 {
		return xcrypto.Pbkdf2Spec{}, errs.ErrUnsupportedKdf
	}

	return spec, nil
}
