package usecase

import (
	"sort"
	"time"

	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/round"
	"github.com/velvetden/cardledger/internal/domain/stats"
)

// statsAccumulator folds rounds into per-key additive deltas so a whole
// batch flushes as one upsert per (uploader, key) instead of one per seat.
type statsAccumulator struct {
	uploaderID string
	players    map[string]stats.PlayerDelta
	hosts      map[string]stats.HostDelta
	combos     map[string]stats.ComboDelta
	identities map[string]player.Player
}

func newStatsAccumulator(uploaderID string) *statsAccumulator {
	return &statsAccumulator{
		uploaderID: uploaderID,
		players:    make(map[string]stats.PlayerDelta),
		hosts:      make(map[string]stats.HostDelta),
		combos:     make(map[string]stats.ComboDelta),
		identities: make(map[string]player.Player),
	}
}

// addRound folds one stored round into the accumulator. Rounds that were
// skipped as duplicates must not be added, otherwise replays would double
// count.
func (a *statsAccumulator) addRound(r round.Round) {
	dealer, hasDealer := r.Dealer()

	for _, e := range r.Players {
		a.addIdentity(e, r.CreatedAt)
	}

	var host stats.HostDelta
	if hasDealer {
		host = stats.HostDelta{
			UploaderID:  a.uploaderID,
			HostID:      dealer.PlayerID,
			OwnedBy:     a.uploaderID,
			PlayerTag:   dealer.PlayerTag,
			Name:        dealer.Name,
			World:       dealer.World,
			GamesHosted: 1,
			FirstAt:     r.CreatedAt,
			LastAt:      r.CreatedAt,
		}
	}

	for _, e := range r.NonDealers() {
		buckets := round.OutcomeOf(e.Result)
		net := e.Payout - e.Bet

		delta := stats.PlayerDelta{
			UploaderID:   a.uploaderID,
			PlayerID:     e.PlayerID,
			PlayerTag:    e.PlayerTag,
			Name:         e.Name,
			World:        e.World,
			Games:        1,
			Wins:         int64(buckets.Wins),
			Losses:       int64(buckets.Losses),
			Pushes:       int64(buckets.Pushes),
			OtherResults: int64(buckets.Other),
			BetTotal:     e.Bet,
			PayoutTotal:  e.Payout,
			Net:          net,
			FirstAt:      r.CreatedAt,
			LastAt:       r.CreatedAt,
		}
		if e.IsDoubleDown {
			delta.DoubleDowns = 1
		}
		if e.SplitNum > 0 {
			delta.Splits = 1
		}
		a.mergePlayer(delta)

		if e.ComboKey != "" {
			a.mergeCombo(stats.ComboDelta{
				UploaderID:   a.uploaderID,
				ComboKey:     e.ComboKey,
				Seen:         1,
				Wins:         int64(buckets.Wins),
				Losses:       int64(buckets.Losses),
				Pushes:       int64(buckets.Pushes),
				OtherResults: int64(buckets.Other),
				BetTotal:     e.Bet,
				PayoutTotal:  e.Payout,
				Net:          net,
				FirstAt:      r.CreatedAt,
				LastAt:       r.CreatedAt,
			})
		}

		if hasDealer {
			host.PlayerWins += int64(buckets.Wins)
			host.PlayerLosses += int64(buckets.Losses)
			host.PlayerPushes += int64(buckets.Pushes)
			host.PlayerOtherResults += int64(buckets.Other)
			host.BetTotal += e.Bet
			host.PayoutTotal += e.Payout
			host.Net += net
		}
	}

	if hasDealer {
		a.mergeHost(host)
	}
}

func (a *statsAccumulator) addIdentity(e round.Entry, at time.Time) {
	existing, ok := a.identities[e.PlayerID]
	if !ok {
		a.identities[e.PlayerID] = player.Player{
			ID:        e.PlayerID,
			Tag:       e.PlayerTag,
			Name:      e.Name,
			World:     e.World,
			CreatedAt: at,
			UpdatedAt: at,
		}
		return
	}

	existing.Tag = e.PlayerTag
	existing.Name = e.Name
	existing.World = e.World
	if at.Before(existing.CreatedAt) {
		existing.CreatedAt = at
	}
	if at.After(existing.UpdatedAt) {
		existing.UpdatedAt = at
	}
	a.identities[e.PlayerID] = existing
}

func (a *statsAccumulator) mergePlayer(delta stats.PlayerDelta) {
	if existing, ok := a.players[delta.PlayerID]; ok {
		existing.Merge(delta)
		a.players[delta.PlayerID] = existing
		return
	}
	a.players[delta.PlayerID] = delta
}

func (a *statsAccumulator) mergeHost(delta stats.HostDelta) {
	if existing, ok := a.hosts[delta.HostID]; ok {
		existing.Merge(delta)
		a.hosts[delta.HostID] = existing
		return
	}
	a.hosts[delta.HostID] = delta
}

func (a *statsAccumulator) mergeCombo(delta stats.ComboDelta) {
	if existing, ok := a.combos[delta.ComboKey]; ok {
		existing.Merge(delta)
		a.combos[delta.ComboKey] = existing
		return
	}
	a.combos[delta.ComboKey] = delta
}

func (a *statsAccumulator) playerDeltas() []stats.PlayerDelta {
	out := make([]stats.PlayerDelta, 0, len(a.players))
	for _, d := range a.players {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func (a *statsAccumulator) hostDeltas() []stats.HostDelta {
	out := make([]stats.HostDelta, 0, len(a.hosts))
	for _, d := range a.hosts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostID < out[j].HostID })
	return out
}

func (a *statsAccumulator) comboDeltas() []stats.ComboDelta {
	out := make([]stats.ComboDelta, 0, len(a.combos))
	for _, d := range a.combos {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ComboKey < out[j].ComboKey })
	return out
}

func (a *statsAccumulator) identityRecords() []player.Player {
	out := make([]player.Player, 0, len(a.identities))
	for _, p := range a.identities {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
