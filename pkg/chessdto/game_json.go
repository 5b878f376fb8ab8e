package chessdto

import "encoding/json"

// Custom (un)marshaling so unknown payload fields survive a round trip.

func (g *GameRecord) UnmarshalJSON(data []byte) error {
	type plain GameRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data,
		"url", "uuid", "pgn", "fen", "time_control", "time_class",
		"rules", "rated", "end_time", "white", "black", "parsed_pgn")
	if err != nil {
		return err
	}
	p.Extra = extra
	*g = GameRecord(p)
	return nil
}

func (g GameRecord) MarshalJSON() ([]byte, error) {
	type plain GameRecord
	return marshalWithExtra(plain(g), g.Extra)
}

func (p *Player) UnmarshalJSON(data []byte) error {
	type plain Player
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := splitExtra(data, "username", "rating", "result")
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = Player(v)
	return nil
}

func (p Player) MarshalJSON() ([]byte, error) {
	type plain Player
	return marshalWithExtra(plain(p), p.Extra)
}

func (m *MonthPayload) UnmarshalJSON(data []byte) error {
	type plain MonthPayload
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := splitExtra(data, "games")
	if err != nil {
		return err
	}
	v.Extra = extra
	*m = MonthPayload(v)
	return nil
}

func (m MonthPayload) MarshalJSON() ([]byte, error) {
	type plain MonthPayload
	return marshalWithExtra(plain(m), m.Extra)
}

func splitExtra(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = val
		}
	}
	return json.Marshal(merged)
}
