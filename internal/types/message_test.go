package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/KhaledSharif/rocket/internal/errors"
)

func TestMessageDocumentRoundTrip(t *testing.T) {
	tests := []Message{
		{Key: "sensor1", Value: "42", Time: 1700000000},
		{Key: "a", Value: "", Time: 0},
		{Key: "k", Value: "with/slash and spaces", Time: math.MaxInt64},
	}

	for _, m := range tests {
		doc, err := m.ToDocument()
		if err != nil {
			t.Fatalf("ToDocument(%+v): %v", m, err)
		}
		got, err := doc.ToMessage()
		if err != nil {
			t.Fatalf("ToMessage(%+v): %v", doc, err)
		}
		if got != m {
			t.Errorf("round trip = %+v, want %+v", got, m)
		}
	}
}

func TestMessageToDocumentOverflow(t *testing.T) {
	_, err := Message{Key: "k", Value: "v", Time: math.MaxUint64}.ToDocument()
	if err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestDocumentToMessageCorrupt(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"negative time", Document{Time: -1, Key: "k", Value: "v"}},
		{"empty key", Document{Time: 10, Key: "", Value: "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.ToMessage()
			if !errors.Is(err, errors.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})
	}
}

func TestMessageJSON(t *testing.T) {
	data, err := json.Marshal(Message{Key: "sensor1", Value: "42", Time: 10})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"key":"sensor1","value":"42","time":10}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
