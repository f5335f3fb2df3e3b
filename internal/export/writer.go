package export

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/KhaledSharif/rocket/internal/types"
)

// ContentType is the media type of an export.
const ContentType = "application/vnd.apache.parquet"

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// PageBufferSize is the target page size in bytes
	PageBufferSize int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

var compressionNames = map[string]CompressionType{
	"none":   CompressionNone,
	"snappy": CompressionSnappy,
	"zstd":   CompressionZstd,
	"lz4":    CompressionLZ4,
	"gzip":   CompressionGzip,
}

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:    CompressionZstd,
		PageBufferSize: 256 * 1024,
	}
}

// ParseCompression parses a compression name. The empty string means none.
func ParseCompression(s string) (CompressionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CompressionNone, nil
	}
	ct, ok := compressionNames[s]
	if !ok {
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
	return ct, nil
}

// String returns the configuration name of ct.
func (ct CompressionType) String() string {
	for name, v := range compressionNames {
		if v == ct {
			return name
		}
	}
	return fmt.Sprintf("compression(%d)", int(ct))
}

// codec returns the parquet-go compression codec.
func (ct CompressionType) codec() compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// MessageRow represents a message in Parquet format.
type MessageRow struct {
	Key   string `parquet:"key,dict"`
	Value string `parquet:"value"`
	Time  uint64 `parquet:"time"`
}

// MessageToRow converts a Message to a MessageRow.
func MessageToRow(m types.Message) MessageRow {
	return MessageRow{Key: m.Key, Value: m.Value, Time: m.Time}
}

// RowToMessage converts a MessageRow to a Message.
func RowToMessage(r MessageRow) types.Message {
	return types.Message{Key: r.Key, Value: r.Value, Time: r.Time}
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet writer is closed")

// Writer writes messages as a single Parquet file to an io.Writer.
// The file footer is written by Close.
type Writer struct {
	mu       sync.Mutex
	writer   *parquet.GenericWriter[MessageRow]
	rowCount int64
	closed   bool
}

// NewWriter creates a Parquet writer on top of w.
func NewWriter(w io.Writer, opts Options) *Writer {
	writerOpts := []parquet.WriterOption{
		parquet.Compression(opts.Compression.codec()),
	}
	if opts.PageBufferSize > 0 {
		writerOpts = append(writerOpts, parquet.PageBufferSize(opts.PageBufferSize))
	}

	return &Writer{
		writer: parquet.NewGenericWriter[MessageRow](w, writerOpts...),
	}
}

// Write appends messages to the file.
func (w *Writer) Write(msgs []types.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	rows := make([]MessageRow, len(msgs))
	for i := range msgs {
		rows[i] = MessageToRow(msgs[i])
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close flushes buffered rows and writes the footer. It does not close the
// underlying io.Writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

// RowCount returns the number of rows written.
func (w *Writer) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// WriteAll writes msgs to w as one complete Parquet file.
func WriteAll(w io.Writer, msgs []types.Message, opts Options) error {
	pw := NewWriter(w, opts)
	if err := pw.Write(msgs); err != nil {
		return err
	}
	return pw.Close()
}
