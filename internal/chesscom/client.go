// Package chesscom is a client for the chess.com Public API. It owns the
// transport concerns (headers, timeouts, retry with backoff) so that callers
// only see success or a final error per request.
package chesscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
)

const (
	DefaultBaseURL   = "https://api.chess.com/pub"
	defaultUserAgent = "chess-guru/0.1.0"
)

type Client struct {
	baseURL   string
	http      *fasthttp.Client
	userAgent string
	headers   map[string]string
	logger    *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHeaders merges extra headers into every request. Keys given here win
// over the defaults, including User-Agent and Accept.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 20 * time.Second, WriteTimeout: 20 * time.Second, MaxConnsPerHost: 64},
		userAgent:      defaultUserAgent,
		headers:        map[string]string{},
		logger:         zap.NewNop(),
		defaultTimeout: 20 * time.Second,
		retryMax:       5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized API root, without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Player fetches a user's public profile.
func (c *Client) Player(ctx context.Context, username string) (map[string]any, error) {
	return c.getAny(ctx, "player/"+url.PathEscape(username))
}

// PlayerStats fetches a user's rating and record stats as of the query.
func (c *Client) PlayerStats(ctx context.Context, username string) (map[string]any, error) {
	return c.getAny(ctx, "player/"+url.PathEscape(username)+"/stats")
}

// GamesToMove fetches daily games where it is the user's turn.
func (c *Client) GamesToMove(ctx context.Context, username string) (map[string]any, error) {
	return c.getAny(ctx, "player/"+url.PathEscape(username)+"/games/to-move")
}

// Tournaments fetches tournaments the user has participated in.
func (c *Client) Tournaments(ctx context.Context, username string) (map[string]any, error) {
	return c.getAny(ctx, "player/"+url.PathEscape(username)+"/tournaments")
}

// Archives fetches the user's monthly archive URL list.
func (c *Client) Archives(ctx context.Context, username string) ([]string, error) {
	var resp archivesResponse
	if err := c.getJSON(ctx, c.baseURL+"/player/"+url.PathEscape(username)+"/games/archives", &resp); err != nil {
		return nil, err
	}
	return resp.Archives, nil
}

// MonthlyGames fetches one monthly archive by its full URL. The URL must sit
// under the client's base URL.
func (c *Client) MonthlyGames(ctx context.Context, archiveURL string) (*chessdto.MonthPayload, error) {
	if !strings.HasPrefix(archiveURL, c.baseURL+"/") {
		return nil, fmt.Errorf("%q is not under base URL %q", archiveURL, c.baseURL)
	}
	var payload chessdto.MonthPayload
	if err := c.getJSON(ctx, archiveURL, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getAny(ctx context.Context, endpoint string) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, c.baseURL+"/"+endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(fullURL)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
			req.Header.Set(k, v)
		}
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}
	reqID := uuid.NewString()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			c.logger.Warn("chesscom request retrying",
				zap.String("req_id", reqID),
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			statusErr := &StatusError{Status: status, URL: fullURL, Body: truncate(string(resp.Body()), 512)}
			if attempt == attempts || statusErr.Terminal() {
				c.logger.Debug("chesscom request failed",
					zap.String("req_id", reqID),
					zap.String("url", fullURL),
					zap.Int("status", status),
					zap.Bool("terminal", statusErr.Terminal()))
				return statusErr
			}
			lastErr = statusErr
			c.logger.Warn("chesscom request retrying",
				zap.String("req_id", reqID),
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Int("status", status))
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 250 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 250ms, 500ms ...
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
