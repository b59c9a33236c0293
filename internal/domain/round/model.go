package round

import (
	"errors"
	"time"
)

// GameType recorded on every ingested round. Only card games flow through
// this pipeline today.
const GameTypeCards = "cards"

// IntegrityVersion tags stored rounds so future payload format changes can
// be migrated selectively.
const IntegrityVersion = 1

// ErrDuplicate is returned by repositories when a round with the same
// source date-time key already exists. Callers treat it as a skip, not a
// failure.
var ErrDuplicate = errors.New("duplicate round")

// Entry is one seat in a round, dealer included.
type Entry struct {
	PlayerID     string
	PlayerTag    string
	Name         string
	World        string
	Dealer       bool
	SplitNum     int
	Bet          int64
	Payout       int64
	IsDoubleDown bool
	Result       int
	Cards        []int
	ComboKey     string
	Integrity    int
}

// Round is a fully parsed game round ready for persistence.
type Round struct {
	ID             string
	CreatedAt      time.Time
	SourceDateTime string
	UploaderID     string
	HostID         string
	GameType       string
	Collected      *int64
	PaidOut        *int64
	Profit         *int64
	Players        []Entry
	PayloadBase64  string
}

// Dealer returns the dealer seat, if any.
func (r Round) Dealer() (Entry, bool) {
	for _, p := range r.Players {
		if p.Dealer {
			return p, true
		}
	}
	return Entry{}, false
}

// NonDealers returns the player seats excluding the dealer.
func (r Round) NonDealers() []Entry {
	out := make([]Entry, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Dealer {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Buckets maps a raw result code onto win/loss/push counters.
type Buckets struct {
	Wins   int
	Losses int
	Pushes int
	Other  int
}

// OutcomeOf buckets a raw result code.
// Result encoding from the game payload: Bust=0, Win=1, Draw=2, Loss=3,
// Surrender=6. Bust/Loss/Surrender count as losses, Draw as push.
func OutcomeOf(result int) Buckets {
	switch result {
	case 1:
		return Buckets{Wins: 1}
	case 2:
		return Buckets{Pushes: 1}
	case 0, 3, 6:
		return Buckets{Losses: 1}
	default:
		return Buckets{Other: 1}
	}
}
