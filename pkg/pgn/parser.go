// Package pgn decodes the PGN text embedded in chess.com game records into a
// structured header/round/result form. It is a plain text walk, independent
// of any fetching: moves are kept as raw SAN tokens and never checked for
// legality.
package pgn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
)

var (
	ErrMissingSeparator = errors.New("pgn: missing blank line between headers and movetext")
	ErrMalformedHeader  = errors.New("pgn: malformed header line")
)

// Result tokens that may terminate the movetext. Longest first so the suffix
// check cannot mistake the tail of a draw marker for a decisive one.
var resultTokens = []string{"1/2-1/2", "1-0", "0-1", "*"}

// Parse decomposes one game's PGN text. Headers must be well-formed as a
// unit; a single bad header line fails the whole parse. A missing trailing
// result token is not an error, the Result field is just left empty.
func Parse(text string) (*chessdto.ParsedPGN, error) {
	headerBlock, movetext, err := splitSections(text)
	if err != nil {
		return nil, err
	}

	movetext, result := trimResult(strings.TrimSpace(movetext))

	headers, err := parseHeaders(headerBlock)
	if err != nil {
		return nil, err
	}

	return &chessdto.ParsedPGN{
		Headers: headers,
		Result:  result,
		Rounds:  parseRounds(movetext),
	}, nil
}

// splitSections cuts the text at the first blank line. Everything before is
// the header block, everything after is movetext.
func splitSections(text string) (string, string, error) {
	idx := strings.Index(text, "\n\n")
	if idx < 0 {
		return "", "", ErrMissingSeparator
	}
	return text[:idx], text[idx+2:], nil
}

// trimResult strips a trailing result token, returning the remaining movetext
// and the token (empty when absent).
func trimResult(movetext string) (string, string) {
	for _, tok := range resultTokens {
		if strings.HasSuffix(movetext, tok) {
			return strings.TrimRight(movetext[:len(movetext)-len(tok)], " \t\r\n"), tok
		}
	}
	return movetext, ""
}

// parseHeaders walks `[Key "Value"]` lines. The enclosing brackets are
// stripped, the line splits at the first space, and surrounding quotes come
// off the value.
func parseHeaders(block string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		s := strings.Trim(line, "[]")
		idx := strings.Index(s, " ")
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		key := s[:idx]
		value := strings.Trim(s[idx+1:], `"`)
		headers[key] = value
	}
	return headers, nil
}

// parseRounds segments the movetext into numbered chunks and decomposes each
// into white/black move entries.
func parseRounds(movetext string) map[int]*chessdto.RoundMoves {
	rounds := make(map[int]*chessdto.RoundMoves)
	for _, chunk := range splitRoundChunks(movetext) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		num, rest, ok := stripRoundNumber(chunk)
		if !ok {
			// Defensive: a chunk not led by "<digits>." is skipped, not fatal.
			continue
		}
		rounds[num] = parseRoundBody(rest, num)
	}
	return rounds
}

// parseRoundBody decomposes one round's text into white and black entries.
// When a "<round>..." continuation marker is present it is the authoritative
// side boundary. Without it the sides follow each other inline, so the text
// is consumed sequentially: first move plus its clock, then whatever remains
// belongs to black.
func parseRoundBody(text string, round int) *chessdto.RoundMoves {
	if whiteText, blackText, ok := splitSides(text, round); ok {
		white := extractMoveClock(whiteText)
		rm := &chessdto.RoundMoves{White: &white}
		if black := extractMoveClock(blackText); black.Move != "" {
			rm.Black = &black
		}
		return rm
	}

	white, rest := consumeEntry(text)
	rm := &chessdto.RoundMoves{White: &white}
	if black, _ := consumeEntry(rest); black.Move != "" {
		rm.Black = &black
	}
	return rm
}

// splitRoundChunks cuts the movetext before every "<digits>. " token that
// follows whitespace, so each chunk carries one round.
func splitRoundChunks(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var chunks []string
	start := 0
	for i := 1; i < len(s); i++ {
		if !isSpace(s[i-1]) || !isDigit(s[i]) {
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '.' && j+1 < len(s) && isSpace(s[j+1]) {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	return append(chunks, s[start:])
}

// stripRoundNumber peels a leading "<digits>." marker off a chunk.
func stripRoundNumber(chunk string) (int, string, bool) {
	i := 0
	for i < len(chunk) && isDigit(chunk[i]) {
		i++
	}
	if i == 0 || i >= len(chunk) || chunk[i] != '.' {
		return 0, "", false
	}
	num, err := strconv.Atoi(chunk[:i])
	if err != nil {
		return 0, "", false
	}
	return num, strings.TrimLeft(chunk[i+1:], " \t\r\n"), true
}

// splitSides looks for the "<round>..." continuation marker that introduces
// the black side. The marker only counts when whitespace surrounds it.
func splitSides(text string, round int) (string, string, bool) {
	marker := strconv.Itoa(round) + "..."
	from := 0
	for {
		idx := strings.Index(text[from:], marker)
		if idx < 0 {
			return "", "", false
		}
		idx += from
		end := idx + len(marker)
		if idx > 0 && isSpace(text[idx-1]) && end < len(text) && isSpace(text[end]) {
			return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[end:]), true
		}
		from = idx + 1
	}
}

// consumeEntry reads one side's move and adjacent clock annotation off the
// front of the text and returns the unconsumed remainder.
func consumeEntry(text string) (chessdto.MoveEntry, string) {
	var entry chessdto.MoveEntry
	i := skipSpaces(text, 0)

	// Clock ahead of the move (black-to-move continuations place it there).
	if i < len(text) && text[i] == '{' {
		if token, end, ok := scanClock(text, i); ok {
			entry.Clock = token
			i = skipSpaces(text, end)
		}
	}

	start := i
	for i < len(text) && !isSpace(text[i]) {
		i++
	}
	entry.Move = text[start:i]
	i = skipSpaces(text, i)

	if i < len(text) && text[i] == '{' {
		if token, end, ok := scanClock(text, i); ok {
			if entry.Clock == "" {
				entry.Clock = token
			}
			i = skipSpaces(text, end)
		}
	}
	return entry, text[i:]
}

// extractMoveClock pulls an inline {[%clk ...]} annotation out of a side's
// text and takes the first remaining whitespace-delimited token as the move.
// An empty side yields an entry with an empty move; callers decide whether
// that is tolerable (it always is for white, per the archive format).
func extractMoveClock(text string) chessdto.MoveEntry {
	clock, cleaned := stripClockAnnotations(text)
	entry := chessdto.MoveEntry{Clock: clock}
	if fields := strings.Fields(cleaned); len(fields) > 0 {
		entry.Move = fields[0]
	}
	return entry
}

// stripClockAnnotations removes every {[%clk HH:MM:SS]} annotation from the
// text and returns the first annotation's inner token. Other brace or command
// annotations are left untouched.
func stripClockAnnotations(text string) (string, string) {
	var clock string
	var out strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '{' {
			if token, end, ok := scanClock(text, i); ok {
				if clock == "" {
					clock = token
				}
				i = end
				continue
			}
		}
		out.WriteByte(text[i])
		i++
	}
	return clock, strings.TrimSpace(out.String())
}

// scanClock matches `{[%clk <token>]}` starting at the opening brace, where
// the token is a run of digits, colons and dots. It returns the token and the
// index just past the closing brace.
func scanClock(s string, start int) (string, int, bool) {
	i := start + 1
	i = skipSpaces(s, i)
	const tag = "[%clk"
	if !strings.HasPrefix(s[i:], tag) {
		return "", 0, false
	}
	i += len(tag)
	j := skipSpaces(s, i)
	if j == i { // at least one space before the token
		return "", 0, false
	}
	i = j
	tokStart := i
	for i < len(s) && isClockChar(s[i]) {
		i++
	}
	if i == tokStart || i >= len(s) || s[i] != ']' {
		return "", 0, false
	}
	token := s[tokStart:i]
	i = skipSpaces(s, i+1)
	if i >= len(s) || s[i] != '}' {
		return "", 0, false
	}
	return token, i + 1, true
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isClockChar(b byte) bool { return isDigit(b) || b == ':' || b == '.' }
