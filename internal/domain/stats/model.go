package stats

import "time"

// PlayerStats is the per-uploader aggregate for one player identity. All
// counters are additive; the display fields track the latest spelling of
// the player's tag.
type PlayerStats struct {
	UploaderID   string    `db:"uploader_id"`
	PlayerID     string    `db:"player_id"`
	PlayerTag    string    `db:"player_tag"`
	Name         string    `db:"name"`
	World        string    `db:"world"`
	Games        int64     `db:"games"`
	Wins         int64     `db:"wins"`
	Losses       int64     `db:"losses"`
	Pushes       int64     `db:"pushes"`
	OtherResults int64     `db:"other_results"`
	BetTotal     int64     `db:"bet_total"`
	PayoutTotal  int64     `db:"payout_total"`
	Net          int64     `db:"net"`
	DoubleDowns  int64     `db:"double_downs"`
	Splits       int64     `db:"splits"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// HostStats is the per-uploader aggregate for one dealer identity. Net is
// from the host's perspective negated: it tracks payoutTotal minus
// betTotal across hosted rounds.
type HostStats struct {
	UploaderID         string    `db:"uploader_id"`
	HostID             string    `db:"host_id"`
	OwnedBy            string    `db:"owned_by"`
	PlayerTag          string    `db:"player_tag"`
	Name               string    `db:"name"`
	World              string    `db:"world"`
	GamesHosted        int64     `db:"games_hosted"`
	PlayerWins         int64     `db:"player_wins"`
	PlayerLosses       int64     `db:"player_losses"`
	PlayerPushes       int64     `db:"player_pushes"`
	PlayerOtherResults int64     `db:"player_other_results"`
	BetTotal           int64     `db:"bet_total"`
	PayoutTotal        int64     `db:"payout_total"`
	Net                int64     `db:"net"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// ComboStats is the per-uploader aggregate for one ordered card hand.
type ComboStats struct {
	UploaderID   string    `db:"uploader_id"`
	ComboKey     string    `db:"combo_key"`
	Seen         int64     `db:"seen"`
	Wins         int64     `db:"wins"`
	Losses       int64     `db:"losses"`
	Pushes       int64     `db:"pushes"`
	OtherResults int64     `db:"other_results"`
	BetTotal     int64     `db:"bet_total"`
	PayoutTotal  int64     `db:"payout_total"`
	Net          int64     `db:"net"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PlayerDelta is an additive increment applied to PlayerStats. Display
// fields overwrite, FirstAt folds into CreatedAt with the minimum and
// LastAt into UpdatedAt with the maximum.
type PlayerDelta struct {
	UploaderID   string
	PlayerID     string
	PlayerTag    string
	Name         string
	World        string
	Games        int64
	Wins         int64
	Losses       int64
	Pushes       int64
	OtherResults int64
	BetTotal     int64
	PayoutTotal  int64
	Net          int64
	DoubleDowns  int64
	Splits       int64
	FirstAt      time.Time
	LastAt       time.Time
}

// HostDelta is an additive increment applied to HostStats.
type HostDelta struct {
	UploaderID         string
	HostID             string
	OwnedBy            string
	PlayerTag          string
	Name               string
	World              string
	GamesHosted        int64
	PlayerWins         int64
	PlayerLosses       int64
	PlayerPushes       int64
	PlayerOtherResults int64
	BetTotal           int64
	PayoutTotal        int64
	Net                int64
	FirstAt            time.Time
	LastAt             time.Time
}

// ComboDelta is an additive increment applied to ComboStats.
type ComboDelta struct {
	UploaderID   string
	ComboKey     string
	Seen         int64
	Wins         int64
	Losses       int64
	Pushes       int64
	OtherResults int64
	BetTotal     int64
	PayoutTotal  int64
	Net          int64
	FirstAt      time.Time
	LastAt       time.Time
}

// Merge folds another delta for the same (uploader, player) key into d.
func (d *PlayerDelta) Merge(other PlayerDelta) {
	d.PlayerTag = other.PlayerTag
	d.Name = other.Name
	d.World = other.World
	d.Games += other.Games
	d.Wins += other.Wins
	d.Losses += other.Losses
	d.Pushes += other.Pushes
	d.OtherResults += other.OtherResults
	d.BetTotal += other.BetTotal
	d.PayoutTotal += other.PayoutTotal
	d.Net += other.Net
	d.DoubleDowns += other.DoubleDowns
	d.Splits += other.Splits
	d.FirstAt = minTime(d.FirstAt, other.FirstAt)
	d.LastAt = maxTime(d.LastAt, other.LastAt)
}

// Merge folds another delta for the same (uploader, host) key into d.
func (d *HostDelta) Merge(other HostDelta) {
	d.OwnedBy = other.OwnedBy
	d.PlayerTag = other.PlayerTag
	d.Name = other.Name
	d.World = other.World
	d.GamesHosted += other.GamesHosted
	d.PlayerWins += other.PlayerWins
	d.PlayerLosses += other.PlayerLosses
	d.PlayerPushes += other.PlayerPushes
	d.PlayerOtherResults += other.PlayerOtherResults
	d.BetTotal += other.BetTotal
	d.PayoutTotal += other.PayoutTotal
	d.Net += other.Net
	d.FirstAt = minTime(d.FirstAt, other.FirstAt)
	d.LastAt = maxTime(d.LastAt, other.LastAt)
}

// Merge folds another delta for the same (uploader, combo) key into d.
func (d *ComboDelta) Merge(other ComboDelta) {
	d.Seen += other.Seen
	d.Wins += other.Wins
	d.Losses += other.Losses
	d.Pushes += other.Pushes
	d.OtherResults += other.OtherResults
	d.BetTotal += other.BetTotal
	d.PayoutTotal += other.PayoutTotal
	d.Net += other.Net
	d.FirstAt = minTime(d.FirstAt, other.FirstAt)
	d.LastAt = maxTime(d.LastAt, other.LastAt)
}

func minTime(a, b time.Time) time.Time {
	if a.IsZero() || (!b.IsZero() && b.Before(a)) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
