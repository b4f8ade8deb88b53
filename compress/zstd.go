package compress

// ZstdCompressor provides Zstandard compression, favoring ratio over
// speed.
//
// This compressor suits scenarios where compression ratio matters more
// than compression speed, making it a good choice for:
//   - Cold storage and archival entries
//   - Long-term retention of infrequently-read content
//   - Network transmission where bandwidth is limited
//   - Content that is written once and decompressed rarely
//
// Performance characteristics:
//   - Compression: ~5-20 ns/byte (depending on compression level)
//   - Decompression: ~2-5 ns/byte
//   - Memory usage: Moderate (pooled encoders/decoders are reused across operations)
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
