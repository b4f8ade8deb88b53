// Package nuts provides a self-contained, password-protected block store:
// every block is encrypted independently, a container header carries the
// wrapped master key, and an archive layered on top of a container gives
// an append-only, forward-linked store of named entries.
//
// # Basic usage
//
// Creating a new vault on disk and appending a couple of entries:
//
//	back, err := backend.OpenDirectoryBackend("/var/lib/vault", 4096)
//	a, err := nuts.Create(back, []byte("correct horse battery staple"))
//	b, err := a.Append("greeting.txt")
//	b.Write([]byte("hello\n"))
//	b.Finish()
//	a.Close()
//
// Reopening and reading it back:
//
//	back, err := backend.OpenDirectoryBackend("/var/lib/vault", 4096)
//	a, err := nuts.Open(back, []byte("correct horse battery staple"))
//	e, err := a.Lookup("greeting.txt")
//	content, err := e.ReadContent()
//
// # Package structure
//
// This package is a thin convenience layer over container and archive.
// Use those packages directly for finer control over cipher selection,
// KDF parameters, or top-id management outside of the archive format.
package nuts

import (
	"github.com/nutsvault/nuts/archive"
	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/container"
	"github.com/nutsvault/nuts/internal/options"
)

// Create seals a new vault: a fresh container with password derived via
// the container package's default KDF and cipher, and a fresh archive
// installed as its top-id. opts configure the container (cipher, KDF,
// block size); archive-level options are not exposed here since a new
// archive has nothing to override.
func Create(back backend.Backend, password []byte, opts ...options.Option[*container.Options]) (*archive.Archive, error) {
	copts := append([]options.Option[*container.Options]{container.WithPassword(password)}, opts...)

	c, err := container.Create(back, copts...)
	if err != nil {
		return nil, err
	}

	a, err := archive.Create(c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return a, nil
}

// Open unseals an existing vault: opens the container under the given
// password and loads the archive anchored at its top-id.
func Open(back backend.Backend, password []byte, opts ...options.Option[*container.Options]) (*archive.Archive, error) {
	copts := append([]options.Option[*container.Options]{container.WithPassword(password)}, opts...)

	c, err := container.Open(back, copts...)
	if err != nil {
		return nil, err
	}

	a, err := archive.Open(c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return a, nil
}
