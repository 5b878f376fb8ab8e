package chesscom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestArchives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player/hikaru/games/archives" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("missing User-Agent")
		}
		w.Write([]byte(`{"archives":["https://api.chess.com/pub/player/hikaru/games/2024/01","https://api.chess.com/pub/player/hikaru/games/2024/02"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	urls, err := c.Archives(context.Background(), "hikaru")
	if err != nil {
		t.Fatalf("Archives: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 archives, got %d", len(urls))
	}
}

func TestTerminalStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(5))
	_, err := c.Archives(context.Background(), "nobody")
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound || !se.Terminal() {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("terminal status must not retry, saw %d calls", n)
	}
}

func TestTransientStatusRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"archives":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3), WithTimeout(5*time.Second))
	urls, err := c.Archives(context.Background(), "hikaru")
	if err != nil {
		t.Fatalf("Archives after retry: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("unexpected archives: %v", urls)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 calls (1 retry), saw %d", n)
	}
}

func TestMonthlyGamesRejectsForeignURL(t *testing.T) {
	c := NewClient("https://api.chess.com/pub")
	_, err := c.MonthlyGames(context.Background(), "https://example.com/player/x/games/2024/01")
	if err == nil {
		t.Fatal("expected rejection of URL outside the base URL")
	}
}

func TestMonthlyGamesDecodesExtras(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"games":[{"url":"u1","end_time":1700000000,"pgn":"x","eco":"B20"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	payload, err := c.MonthlyGames(context.Background(), srv.URL+"/player/x/games/2023/11")
	if err != nil {
		t.Fatalf("MonthlyGames: %v", err)
	}
	if len(payload.Games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(payload.Games))
	}
	g := payload.Games[0]
	if g.EndTime == nil || *g.EndTime != 1700000000 {
		t.Fatalf("end_time: %+v", g.EndTime)
	}
	if _, ok := g.Extra["eco"]; !ok {
		t.Fatalf("unknown field should survive in Extra: %+v", g.Extra)
	}
}
