package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kapu/chess-guru-go/internal/chesscom"
	appcfg "github.com/kapu/chess-guru-go/internal/config"
	"github.com/kapu/chess-guru-go/internal/history"
	"github.com/kapu/chess-guru-go/internal/obslog"
)

func main() {
	_ = godotenv.Load()

	user := flag.String("user", "", "chess.com username (required)")
	fromFlag := flag.String("from", "", "lower bound, RFC3339 or YYYY-MM-DD (UTC)")
	toFlag := flag.String("to", "", "upper bound, RFC3339 or YYYY-MM-DD (UTC)")
	concurrency := flag.Int("concurrency", 0, "max concurrent month fetches (default from env)")
	archivesOnly := flag.Bool("archives", false, "list monthly archives and exit")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	flag.Parse()

	if *user == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer logger.Sync()

	from, err := parseTimeFlag(*fromFlag)
	if err != nil {
		log.Fatalf("invalid -from: %v", err)
	}
	to, err := parseTimeFlag(*toFlag)
	if err != nil {
		log.Fatalf("invalid -to: %v", err)
	}

	client := chesscom.NewClient(cfg.BaseURL,
		chesscom.WithUserAgent(cfg.UserAgent),
		chesscom.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second),
		chesscom.WithRetry(cfg.RetryMax),
		chesscom.WithMaxConnsPerHost(cfg.MaxConnsPerHost),
		chesscom.WithHeaders(cfg.ExtraHeaders),
		chesscom.WithLogger(logger),
	)

	opts := []history.ServiceOption{history.WithLogger(logger)}
	if cfg.RedisURL != "" {
		cache, err := history.NewRedisCacheFromURL(cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("redis cache init error: %v", err)
		}
		opts = append(opts, history.WithCache(cache))
	}
	svc := history.NewService(client, opts...)

	ctx := context.Background()

	if *archivesOnly {
		refs, err := svc.ListArchives(ctx, *user)
		if err != nil {
			log.Fatalf("list archives: %v", err)
		}
		for _, ref := range refs {
			fmt.Printf("%04d/%02d  %s\n", ref.Year, ref.Month, ref.URL)
		}
		return
	}

	maxConc := *concurrency
	if maxConc < 1 {
		maxConc = cfg.MaxConcurrency
	}

	res, err := svc.FetchGames(ctx, *user, history.FetchOptions{
		MaxConcurrency: maxConc,
		From:           from,
		To:             to,
	})
	if err != nil {
		log.Fatalf("fetch games: %v", err)
	}

	if res.PartiallyFailed() {
		logger.Warn("some months failed",
			zap.Int("ok", len(res.Months)),
			zap.Int("failed", len(res.Errors)))
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}

func parseTimeFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return &u, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("want RFC3339 or YYYY-MM-DD, got %q", s)
	}
	u := t.UTC()
	return &u, nil
}
