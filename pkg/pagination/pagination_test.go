package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimitBounds(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit normalized to %d", got)
	}
	if got := NormalizeLimit(-3); got != DefaultLimit {
		t.Fatalf("negative limit normalized to %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 50); got != MaxLimit {
		t.Fatalf("oversized limit normalized to %d", got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("buffered limit = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor round trip mismatch: %+v vs %+v", out, in)
	}
	if out.Boosted != nil {
		t.Fatalf("unexpected boosted flag on plain cursor")
	}
}

func TestCursorRoundTripWithBoostedFlag(t *testing.T) {
	boosted := true
	in := Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New(), Boosted: &boosted}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if out.Boosted == nil || !*out.Boosted {
		t.Fatalf("boosted flag lost in round trip")
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatalf("expected decode error")
	}
	if cur, err := ParseCursor("  "); err != nil || cur != nil {
		t.Fatalf("blank cursor should parse to nil, got %v %v", cur, err)
	}
}
