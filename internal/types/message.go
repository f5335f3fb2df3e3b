// Package types defines the record model shared by the storage and HTTP layers.
package types

import (
	"fmt"
	"math"

	"github.com/KhaledSharif/rocket/internal/errors"
)

// Message is a single timestamped key/value record. It is the unit of
// storage and is never modified once written.
type Message struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Time  uint64 `json:"time"` // Unix seconds, assigned by the server on ingest
}

// Document is the persisted shape of a Message: {time, key, value}.
// Time is signed because that is what the storage column holds.
type Document struct {
	Time  int64
	Key   string
	Value string
}

// ToDocument converts m to its storage form.
func (m Message) ToDocument() (Document, error) {
	if m.Time > math.MaxInt64 {
		return Document{}, fmt.Errorf("time %d out of range", m.Time)
	}
	return Document{
		Time:  int64(m.Time),
		Key:   m.Key,
		Value: m.Value,
	}, nil
}

// ToMessage decodes a stored document. A document that could not have been
// written by the ingestion path is reported as a storage failure.
func (d Document) ToMessage() (Message, error) {
	if d.Key == "" {
		return Message{}, errors.Storage("decode document", fmt.Errorf("empty key"))
	}
	if d.Time < 0 {
		return Message{}, errors.Storage("decode document", fmt.Errorf("negative time %d for key %q", d.Time, d.Key))
	}
	return Message{
		Key:   d.Key,
		Value: d.Value,
		Time:  uint64(d.Time),
	}, nil
}
