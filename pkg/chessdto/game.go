package chessdto

import "encoding/json"

// GameRecord is one game as returned inside a monthly archive payload.
// Known fields are typed; anything else the API sends is kept verbatim in
// Extra so round-tripping a payload never loses data.
type GameRecord struct {
	URL         string  `json:"url,omitempty"`
	UUID        string  `json:"uuid,omitempty"`
	PGN         string  `json:"pgn,omitempty"`
	FEN         string  `json:"fen,omitempty"`
	TimeControl string  `json:"time_control,omitempty"`
	TimeClass   string  `json:"time_class,omitempty"`
	Rules       string  `json:"rules,omitempty"`
	Rated       bool    `json:"rated,omitempty"`
	EndTime     *int64  `json:"end_time,omitempty"` // unix seconds, UTC
	White       *Player `json:"white,omitempty"`
	Black       *Player `json:"black,omitempty"`

	// ParsedPGN is attached after a successful notation parse. A parse
	// failure leaves it nil; the record itself is never dropped for it.
	ParsedPGN *ParsedPGN `json:"parsed_pgn,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Player is one side's summary within a game record.
type Player struct {
	Username string `json:"username,omitempty"`
	Rating   int    `json:"rating,omitempty"`
	Result   string `json:"result,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ParsedPGN is the structured decomposition of a game's PGN text.
type ParsedPGN struct {
	Headers map[string]string   `json:"headers"`
	Result  string              `json:"result,omitempty"` // "1-0", "0-1", "1/2-1/2", "*" or empty
	Rounds  map[int]*RoundMoves `json:"rounds"`
}

// RoundMoves holds one numbered move pair. Black is nil when the game ended
// (or the text stopped) after white's move.
type RoundMoves struct {
	White *MoveEntry `json:"white"`
	Black *MoveEntry `json:"black,omitempty"`
}

// MoveEntry is a single side's move. Clock carries the raw `%clk` token when
// the movetext had one; it is not parsed further.
type MoveEntry struct {
	Move  string `json:"move,omitempty"`
	Clock string `json:"clock,omitempty"`
}

// MonthPayload is one monthly archive's body.
type MonthPayload struct {
	Games []*GameRecord `json:"games"`

	Extra map[string]json.RawMessage `json:"-"`
}
