package archive

import (
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/internal/options"
)

// Options configures Create and Open.
type Options struct {
	force bool
}

func defaultOptions() *Options {
	return &Options{}
}

// WithForce allows Create to reuse a container whose top-id is already
// set, overwriting whatever it previously pointed at.
func WithForce() options.Option[*Options] {
	return options.NoError(func(o *Options) {
		o.force = true
	})
}

// defaultEntryMode is applied to an entry when WithMode is not passed.
const defaultEntryMode = 0o644

// EntryOptions configures Append.
type EntryOptions struct {
	entryType   format.EntryType
	mode        uint32
	compression format.CompressionType
}

func defaultEntryOptions() *EntryOptions {
	return &EntryOptions{
		entryType:   format.EntryFile,
		mode:        defaultEntryMode,
		compression: format.CompressionNone,
	}
}

// WithEntryType selects whether the new entry is a file, directory, or
// symlink. Files are the default.
func WithEntryType(t format.EntryType) options.Option[*EntryOptions] {
	return options.NoError(func(o *EntryOptions) {
		o.entryType = t
	})
}

// WithMode sets the entry's permission bits.
func WithMode(mode uint32) options.Option[*EntryOptions] {
	return options.NoError(func(o *EntryOptions) {
		o.mode = mode
	})
}

// WithCompression selects the codec the entry's content is stored
// under. None (the default) streams content directly into blocks as
// Write is called; any other codec buffers the full content and
// compresses it at Finish.
func WithCompression(c format.CompressionType) options.Option[*EntryOptions] {
	return options.NoError(func(o *EntryOptions) {
		o.compression = c
	})
}
