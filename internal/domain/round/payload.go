package round

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// RawEntry mirrors one seat record in the game payload JSON.
type RawEntry struct {
	PlayerName   *string   `json:"PlayerName"`
	Cards        []float64 `json:"Cards"`
	SplitNum     float64   `json:"SplitNum"`
	Bet          float64   `json:"Bet"`
	Payout       float64   `json:"Payout"`
	IsDoubleDown bool      `json:"IsDoubleDown"`
	Result       float64   `json:"Result"`
	Dealer       bool      `json:"Dealer"`
	Integrity    float64   `json:"Integrity"`
}

// DecodePayload accepts either a base64-encoded JSON array or direct JSON
// (handy for debugging). Empty input decodes to an empty entry list. The
// returned payloadBase64 is the base64 form of the payload for storage.
func DecodePayload(input string) ([]RawEntry, string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return nil, "", nil
	}

	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		var entries []RawEntry
		if err := sonic.UnmarshalString(raw, &entries); err != nil {
			return nil, "", fmt.Errorf("parse payload json: %w", err)
		}
		return entries, base64.StdEncoding.EncodeToString([]byte(raw)), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("decode payload base64: %w", err)
	}

	var entries []RawEntry
	if err := sonic.Unmarshal(decoded, &entries); err != nil {
		return nil, "", fmt.Errorf("parse decoded payload json: %w", err)
	}
	return entries, raw, nil
}

// ParseEntries normalizes raw payload seats into domain entries. Records
// without a player name are dropped.
func ParseEntries(raw []RawEntry) []Entry {
	out := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.PlayerName == nil {
			continue
		}

		name, world, tag := TagParts(*e.PlayerName)
		cards := finiteCards(e.Cards)

		out = append(out, Entry{
			PlayerID:     PlayerID(tag),
			PlayerTag:    tag,
			Name:         name,
			World:        world,
			Dealer:       e.Dealer,
			SplitNum:     finiteInt(e.SplitNum),
			Bet:          finiteInt64(e.Bet),
			Payout:       finiteInt64(e.Payout),
			IsDoubleDown: e.IsDoubleDown,
			Result:       finiteInt(e.Result),
			Cards:        cards,
			ComboKey:     ComboKey(cards),
			Integrity:    finiteInt(e.Integrity),
		})
	}
	return out
}

// ComboKey joins card numbers with dashes. The key is order-sensitive:
// "10-2" and "2-10" are distinct combos.
func ComboKey(cards []int) string {
	if len(cards) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, strconv.Itoa(c))
	}
	return strings.Join(parts, "-")
}

func finiteCards(cards []float64) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		out = append(out, int(c))
	}
	return out
}

func finiteInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

func finiteInt64(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(v)
}
