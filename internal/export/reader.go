package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/KhaledSharif/rocket/internal/types"
)

// ReadAll reads every message from a Parquet file of the given size.
func ReadAll(r io.ReaderAt, size int64) ([]types.Message, error) {
	rows, err := parquet.Read[MessageRow](r, size)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	msgs := make([]types.Message, len(rows))
	for i := range rows {
		msgs[i] = RowToMessage(rows[i])
	}
	return msgs, nil
}
