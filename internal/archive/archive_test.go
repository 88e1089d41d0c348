package archive

import (
	"encoding/json"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	type record struct {
		Tick int    `json:"tick"`
		Note string `json:"note"`
	}
	want := []record{
		{Tick: 1, Note: "first"},
		{Tick: 2, Note: "second"},
		{Tick: 3, Note: "third"},
	}
	for _, rec := range want {
		if err := w.Append(rec); err != nil {
			t.Fatalf("Append tick %d: %v", rec.Tick, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []record
	err = Read(w.Path(), func(raw json.RawMessage) error {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		got = append(got, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("read %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAppendAfterClose(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Append(map[string]int{"tick": 1}); err == nil {
		t.Fatal("Append after Close should fail")
	}
	// Closing twice is harmless.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
