package export

import (
	"bytes"
	"testing"

	"github.com/KhaledSharif/rocket/internal/types"
)

func TestWriteAndReadAll(t *testing.T) {
	msgs := []types.Message{
		{Key: "sensor1", Value: "42", Time: 1700000000},
		{Key: "sensor1", Value: "43", Time: 1700000001},
		{Key: "sensor2", Value: "", Time: 0},
	}

	for _, name := range []string{"none", "snappy", "gzip", "zstd", "lz4"} {
		t.Run(name, func(t *testing.T) {
			ct, err := ParseCompression(name)
			if err != nil {
				t.Fatalf("ParseCompression: %v", err)
			}
			opts := DefaultOptions()
			opts.Compression = ct

			var buf bytes.Buffer
			if err := WriteAll(&buf, msgs, opts); err != nil {
				t.Fatalf("WriteAll: %v", err)
			}

			got, err := ReadAll(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(got) != len(msgs) {
				t.Fatalf("read %d messages, want %d", len(got), len(msgs))
			}
			for i := range msgs {
				if got[i] != msgs[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], msgs[i])
				}
			}
		})
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAll(&buf, nil, DefaultOptions()); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty export should still be a parquet file")
	}

	got, err := ReadAll(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
}

func TestWriter_RowCountAndClose(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultOptions())

	if err := w.Write([]types.Message{{Key: "a", Value: "1", Time: 1}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write([]types.Message{{Key: "a", Value: "2", Time: 2}, {Key: "a", Value: "3", Time: 3}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n := w.RowCount(); n != 3 {
		t.Errorf("RowCount = %d, want 3", n)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Write([]types.Message{{Key: "a"}}); err != ErrWriterClosed {
		t.Errorf("Write after Close = %v, want ErrWriterClosed", err)
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    CompressionType
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"ZSTD", CompressionZstd, false},
		{" snappy ", CompressionSnappy, false},
		{"gzip", CompressionGzip, false},
		{"lz4", CompressionLZ4, false},
		{"brotli", CompressionNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompressionType_String(t *testing.T) {
	if s := CompressionZstd.String(); s != "zstd" {
		t.Errorf("String = %q, want zstd", s)
	}
}
