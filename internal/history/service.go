// Package history retrieves a player's games from the chess.com monthly
// archives, restricts them to an optional UTC time window and attaches a
// structured decomposition of each game's PGN text.
package history

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
	"github.com/kapu/chess-guru-go/pkg/pgn"
)

// Fetcher is the injected transport capability. Retry and timeout policy
// live behind it; the service treats any returned error as final for that
// call. Implementations must tolerate concurrent calls up to the fan-out
// limit.
type Fetcher interface {
	Archives(ctx context.Context, username string) ([]string, error)
	MonthlyGames(ctx context.Context, archiveURL string) (*chessdto.MonthPayload, error)
}

const defaultMaxConcurrency = 10

type Service struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
}

type ServiceOption func(*Service)

func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(fetcher Fetcher, opts ...ServiceOption) *Service {
	s := &Service{fetcher: fetcher, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchOptions tunes one FetchGames call. From/To may sit in any location;
// they are normalized to UTC before use.
type FetchOptions struct {
	MaxConcurrency int
	From           *time.Time
	To             *time.Time
}

// ListArchives returns the player's monthly archive references in the order
// the API reports them.
func (s *Service) ListArchives(ctx context.Context, username string) ([]ArchiveRef, error) {
	urls, err := s.fetcher.Archives(ctx, username)
	if err != nil {
		return nil, chessdto.NewIndexFetchError(err)
	}
	refs := make([]ArchiveRef, 0, len(urls))
	for _, u := range urls {
		ref, err := ParseArchiveRef(u)
		if err != nil {
			return nil, &chessdto.DomainError{Code: chessdto.CodeValidation, Message: "malformed archive locator", Err: err}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// FetchGames pulls every qualifying game of a user. Month fetches run with
// bounded concurrency and fail independently: a broken month lands in the
// result's Errors map without disturbing its siblings. Only an invalid time
// bound or a failed archive-index fetch abort the whole operation.
func (s *Service) FetchGames(ctx context.Context, username string, opts FetchOptions) (*chessdto.AggregateResult, error) {
	bound := NewTimeBound(opts.From, opts.To)
	if err := bound.Validate(); err != nil {
		return nil, err
	}

	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = defaultMaxConcurrency
	}

	urls, err := s.fetcher.Archives(ctx, username)
	if err != nil {
		return nil, chessdto.NewIndexFetchError(err)
	}

	refs, err := s.resolveRefs(urls, bound)
	if err != nil {
		return nil, err
	}

	outcomes := s.fetchAll(ctx, refs, limit)
	s.processAll(outcomes, bound)

	res := &chessdto.AggregateResult{
		Username: username,
		Archives: make([]string, 0, len(refs)),
		Months:   make(map[string]*chessdto.MonthPayload, len(refs)),
		Errors:   make(map[string]string),
	}
	for i, ref := range refs {
		res.Archives = append(res.Archives, ref.URL)
		if outcomes[i].err != nil {
			s.logger.Warn("month fetch failed",
				zap.String("username", username),
				zap.String("url", ref.URL),
				zap.Error(outcomes[i].err))
			res.Errors[ref.URL] = outcomes[i].err.Error()
			continue
		}
		res.Months[ref.URL] = outcomes[i].payload
	}
	if bound.From != nil {
		res.From = bound.From.Format(time.RFC3339)
	}
	if bound.To != nil {
		res.To = bound.To.Format(time.RFC3339)
	}
	return res, nil
}

// resolveRefs turns archive URLs into refs and applies the coarse month
// filter. Without a bound the URLs pass through untouched, so a locator the
// client cannot parse is tolerated there (it just bypasses the cache).
func (s *Service) resolveRefs(urls []string, bound TimeBound) ([]ArchiveRef, error) {
	refs := make([]ArchiveRef, 0, len(urls))
	if bound.IsZero() {
		for _, u := range urls {
			ref, err := ParseArchiveRef(u)
			if err != nil {
				s.logger.Debug("unparseable archive locator", zap.String("url", u), zap.Error(err))
				ref = ArchiveRef{URL: u}
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}
	for _, u := range urls {
		ref, err := ParseArchiveRef(u)
		if err != nil {
			return nil, &chessdto.DomainError{Code: chessdto.CodeValidation, Message: "malformed archive locator", Err: err}
		}
		refs = append(refs, ref)
	}
	return filterMonths(refs, bound), nil
}

type fetchOutcome struct {
	payload *chessdto.MonthPayload
	err     error
}

// fetchAll fans out month fetches, at most limit in flight, and waits for
// every one to settle. Each outcome lands in its own slot so order matches
// refs and no failure cancels a sibling.
func (s *Service) fetchAll(ctx context.Context, refs []ArchiveRef, limit int) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(refs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			payload, err := s.fetchMonth(ctx, ref)
			outcomes[i] = fetchOutcome{payload: payload, err: err}
			return nil
		})
	}
	g.Wait()
	return outcomes
}

func (s *Service) fetchMonth(ctx context.Context, ref ArchiveRef) (*chessdto.MonthPayload, error) {
	cacheable := s.cache != nil && ref.Year != 0
	if cacheable {
		if payload, ok := s.cache.Get(ctx, ref.URL); ok {
			return payload, nil
		}
	}
	payload, err := s.fetcher.MonthlyGames(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Put(ctx, ref.URL, payload, cacheTTL(ref, time.Now()))
	}
	return payload, nil
}

// processAll filters and parses fetched months. Parsing is CPU work, so it
// runs in its own worker group after the fetch fan-in rather than inside the
// fetch slots.
func (s *Service) processAll(outcomes []fetchOutcome, bound TimeBound) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range outcomes {
		if outcomes[i].err != nil || outcomes[i].payload == nil {
			continue
		}
		i := i
		g.Go(func() error {
			s.processMonth(outcomes[i].payload, bound)
			return nil
		})
	}
	g.Wait()
}

// processMonth drops out-of-range games and attaches ParsedPGN to the rest.
// A game whose PGN does not parse stays in the payload untouched; the
// failure is only logged.
func (s *Service) processMonth(payload *chessdto.MonthPayload, bound TimeBound) {
	kept := make([]*chessdto.GameRecord, 0, len(payload.Games))
	for _, game := range payload.Games {
		if !gameInRange(game, bound) {
			continue
		}
		if game.PGN != "" {
			parsed, err := pgn.Parse(game.PGN)
			if err != nil {
				s.logger.Debug("pgn parse failed", zap.String("game", game.URL), zap.Error(err))
			} else {
				s.flagMissingWhiteMoves(game.URL, parsed)
				game.ParsedPGN = parsed
			}
		}
		kept = append(kept, game)
	}
	payload.Games = kept
}

// flagMissingWhiteMoves reports rounds the parser had to tolerate without a
// white move. The input is malformed; it is surfaced, not repaired.
func (s *Service) flagMissingWhiteMoves(gameURL string, parsed *chessdto.ParsedPGN) {
	for num, rm := range parsed.Rounds {
		if rm.White == nil || rm.White.Move == "" {
			s.logger.Debug("round has no white move",
				zap.String("game", gameURL),
				zap.Int("round", num))
		}
	}
}
