package history

import (
	"testing"
	"time"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func refList(t *testing.T, urls ...string) []ArchiveRef {
	t.Helper()
	refs := make([]ArchiveRef, 0, len(urls))
	for _, u := range urls {
		ref, err := ParseArchiveRef(u)
		if err != nil {
			t.Fatalf("ParseArchiveRef(%q): %v", u, err)
		}
		refs = append(refs, ref)
	}
	return refs
}

func TestParseArchiveRef(t *testing.T) {
	ref, err := ParseArchiveRef("https://api.chess.com/pub/player/hikaru/games/2024/06")
	if err != nil {
		t.Fatalf("ParseArchiveRef: %v", err)
	}
	if ref.Year != 2024 || ref.Month != 6 {
		t.Fatalf("got %d/%d", ref.Year, ref.Month)
	}

	if _, err := ParseArchiveRef("https://api.chess.com/pub/player/hikaru/games/2024/june"); err == nil {
		t.Fatal("non-numeric month segment should fail")
	}
	if _, err := ParseArchiveRef("https://api.chess.com/pub/player/hikaru/games/back/06"); err == nil {
		t.Fatal("non-numeric year segment should fail")
	}
}

func TestFilterMonths(t *testing.T) {
	refs := refList(t,
		"https://api.chess.com/pub/player/u/games/2023/11",
		"https://api.chess.com/pub/player/u/games/2023/12",
		"https://api.chess.com/pub/player/u/games/2024/01",
		"https://api.chess.com/pub/player/u/games/2024/02",
	)

	t.Run("no bound passes through", func(t *testing.T) {
		got := filterMonths(refs, TimeBound{})
		if len(got) != len(refs) {
			t.Fatalf("expected all %d refs, got %d", len(refs), len(got))
		}
	})

	t.Run("both ends", func(t *testing.T) {
		b := NewTimeBound(ts("2023-12-15T00:00:00Z"), ts("2024-01-15T00:00:00Z"))
		got := filterMonths(refs, b)
		if len(got) != 2 || got[0].Month != 12 || got[1].Month != 1 {
			t.Fatalf("unexpected filter result: %+v", got)
		}
	})

	t.Run("boundary month kept", func(t *testing.T) {
		// A bound ending mid-January must still keep the whole January
		// archive; the per-game filter tightens it later.
		b := NewTimeBound(nil, ts("2024-01-02T00:00:00Z"))
		got := filterMonths(refs, b)
		if len(got) != 3 || got[2].Month != 1 {
			t.Fatalf("boundary month dropped: %+v", got)
		}
	})

	t.Run("year dominates month", func(t *testing.T) {
		// December 2023 sorts before February 2024 despite 12 > 2.
		b := NewTimeBound(ts("2023-12-01T00:00:00Z"), nil)
		got := filterMonths(refs, b)
		if len(got) != 3 {
			t.Fatalf("unexpected: %+v", got)
		}
	})

	t.Run("widening never drops a month", func(t *testing.T) {
		narrow := filterMonths(refs, NewTimeBound(ts("2023-12-15T00:00:00Z"), ts("2024-01-15T00:00:00Z")))
		wide := filterMonths(refs, NewTimeBound(ts("2023-11-01T00:00:00Z"), ts("2024-02-28T00:00:00Z")))
		inWide := make(map[string]bool, len(wide))
		for _, r := range wide {
			inWide[r.URL] = true
		}
		for _, r := range narrow {
			if !inWide[r.URL] {
				t.Fatalf("month %s lost when widening the bound", r.URL)
			}
		}
	})
}

func TestTimeBoundValidate(t *testing.T) {
	b := NewTimeBound(ts("2024-02-01T00:00:00Z"), ts("2024-01-01T00:00:00Z"))
	err := b.Validate()
	if err == nil {
		t.Fatal("inverted bound must fail validation")
	}
	if !chessdto.HasCode(err, chessdto.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := NewTimeBound(ts("2024-01-01T00:00:00Z"), ts("2024-01-01T00:00:00Z")).Validate(); err != nil {
		t.Fatalf("equal ends are valid: %v", err)
	}
	if err := (TimeBound{}).Validate(); err != nil {
		t.Fatalf("empty bound is valid: %v", err)
	}
}

func TestGameInRange(t *testing.T) {
	end := func(s string) *int64 {
		v := ts(s).Unix()
		return &v
	}
	bound := NewTimeBound(ts("2024-01-10T00:00:00Z"), ts("2024-01-20T00:00:00Z"))

	cases := []struct {
		name string
		game chessdto.GameRecord
		want bool
	}{
		{"inside", chessdto.GameRecord{EndTime: end("2024-01-15T12:00:00Z")}, true},
		{"exactly from", chessdto.GameRecord{EndTime: end("2024-01-10T00:00:00Z")}, true},
		{"exactly to", chessdto.GameRecord{EndTime: end("2024-01-20T00:00:00Z")}, true},
		{"one second early", chessdto.GameRecord{EndTime: end("2024-01-09T23:59:59Z")}, false},
		{"one second late", chessdto.GameRecord{EndTime: end("2024-01-20T00:00:01Z")}, false},
		{"missing end_time", chessdto.GameRecord{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gameInRange(&tc.game, bound); got != tc.want {
				t.Fatalf("gameInRange = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("no bound passes everything", func(t *testing.T) {
		if !gameInRange(&chessdto.GameRecord{}, TimeBound{}) {
			t.Fatal("unbounded filter must pass a game without end_time")
		}
	})
}
