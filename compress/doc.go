// Package compress provides optional compression for archive entry
// content, applied to an entry's raw bytes before the archive engine
// splits them across content blocks.
//
// The package defines three interfaces — Compressor, Decompressor, and
// the combined Codec — and four implementations selected by a
// format.CompressionType: None (no-op), Zstd (best ratio), S2 (balanced),
// and LZ4 (fastest decompression). The archive engine records which
// codec an entry used in the entry's compression tag, so readers never
// have to guess.
//
// Compression happens once, over an entry's full content, before
// chunking — not per content block — so the archive's node-tree and
// block layout are unaffected by whichever codec a given entry chose.
package compress
