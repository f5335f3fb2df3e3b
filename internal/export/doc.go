// Package export writes messages as Parquet files.
//
// The package provides:
//   - Writer streaming message rows to any io.Writer
//   - ReadAll for reading an export back into messages
//   - Compression selection by name (none, snappy, gzip, zstd, lz4)
package export
