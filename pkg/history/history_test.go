package history

import (
	"context"
	"path/filepath"
	"testing"
)

func TestAddAndRecent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "captures.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := s.Add(ctx, Record{
			RunID: "run-1", CaptureID: i, Class: "Horse", Confidence: 90 + i, TimeUS: 1500,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	if recent[0].CaptureID != 2 {
		t.Fatalf("newest first: got capture %d, want 2", recent[0].CaptureID)
	}
	if recent[0].Confidence != 92 || recent[0].Class != "Horse" {
		t.Fatalf("record round-trip mismatch: %+v", recent[0])
	}
}

func TestOverflowRecord(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "captures.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Add(ctx, Record{RunID: "run-1", CaptureID: 0, Overflow: true}); err != nil {
		t.Fatal(err)
	}
	recent, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || !recent[0].Overflow {
		t.Fatalf("overflow flag lost: %+v", recent)
	}
}
