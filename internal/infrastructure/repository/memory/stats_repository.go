package memory

import (
	"context"
	"sync"

	"github.com/velvetden/cardledger/internal/domain/stats"
)

type statsKey struct {
	uploaderID string
	entityKey  string
}

// StatsRepository applies additive deltas against in-memory maps. It keeps
// the same upsert-or-increment semantics as the database-backed repository.
type StatsRepository struct {
	mu      sync.RWMutex
	players map[statsKey]stats.PlayerStats
	hosts   map[statsKey]stats.HostStats
	combos  map[statsKey]stats.ComboStats
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{
		players: make(map[statsKey]stats.PlayerStats),
		hosts:   make(map[statsKey]stats.HostStats),
		combos:  make(map[statsKey]stats.ComboStats),
	}
}

func (r *StatsRepository) ApplyPlayerDeltas(_ context.Context, deltas []stats.PlayerDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deltas {
		key := statsKey{uploaderID: d.UploaderID, entityKey: d.PlayerID}
		row, ok := r.players[key]
		if !ok {
			row = stats.PlayerStats{
				UploaderID: d.UploaderID,
				PlayerID:   d.PlayerID,
				CreatedAt:  d.FirstAt,
				UpdatedAt:  d.LastAt,
			}
		}

		row.PlayerTag = d.PlayerTag
		row.Name = d.Name
		row.World = d.World
		row.Games += d.Games
		row.Wins += d.Wins
		row.Losses += d.Losses
		row.Pushes += d.Pushes
		row.OtherResults += d.OtherResults
		row.BetTotal += d.BetTotal
		row.PayoutTotal += d.PayoutTotal
		row.Net += d.Net
		row.DoubleDowns += d.DoubleDowns
		row.Splits += d.Splits
		if d.FirstAt.Before(row.CreatedAt) {
			row.CreatedAt = d.FirstAt
		}
		if d.LastAt.After(row.UpdatedAt) {
			row.UpdatedAt = d.LastAt
		}
		r.players[key] = row
	}
	return nil
}

func (r *StatsRepository) ApplyHostDeltas(_ context.Context, deltas []stats.HostDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deltas {
		key := statsKey{uploaderID: d.UploaderID, entityKey: d.HostID}
		row, ok := r.hosts[key]
		if !ok {
			row = stats.HostStats{
				UploaderID: d.UploaderID,
				HostID:     d.HostID,
				CreatedAt:  d.FirstAt,
				UpdatedAt:  d.LastAt,
			}
		}

		row.OwnedBy = d.OwnedBy
		row.PlayerTag = d.PlayerTag
		row.Name = d.Name
		row.World = d.World
		row.GamesHosted += d.GamesHosted
		row.PlayerWins += d.PlayerWins
		row.PlayerLosses += d.PlayerLosses
		row.PlayerPushes += d.PlayerPushes
		row.PlayerOtherResults += d.PlayerOtherResults
		row.BetTotal += d.BetTotal
		row.PayoutTotal += d.PayoutTotal
		row.Net += d.Net
		if d.FirstAt.Before(row.CreatedAt) {
			row.CreatedAt = d.FirstAt
		}
		if d.LastAt.After(row.UpdatedAt) {
			row.UpdatedAt = d.LastAt
		}
		r.hosts[key] = row
	}
	return nil
}

func (r *StatsRepository) ApplyComboDeltas(_ context.Context, deltas []stats.ComboDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deltas {
		key := statsKey{uploaderID: d.UploaderID, entityKey: d.ComboKey}
		row, ok := r.combos[key]
		if !ok {
			row = stats.ComboStats{
				UploaderID: d.UploaderID,
				ComboKey:   d.ComboKey,
				CreatedAt:  d.FirstAt,
				UpdatedAt:  d.LastAt,
			}
		}

		row.Seen += d.Seen
		row.Wins += d.Wins
		row.Losses += d.Losses
		row.Pushes += d.Pushes
		row.OtherResults += d.OtherResults
		row.BetTotal += d.BetTotal
		row.PayoutTotal += d.PayoutTotal
		row.Net += d.Net
		if d.FirstAt.Before(row.CreatedAt) {
			row.CreatedAt = d.FirstAt
		}
		if d.LastAt.After(row.UpdatedAt) {
			row.UpdatedAt = d.LastAt
		}
		r.combos[key] = row
	}
	return nil
}

func (r *StatsRepository) ListPlayerStats(_ context.Context, uploaderID string) ([]stats.PlayerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stats.PlayerStats, 0)
	for key, row := range r.players {
		if key.uploaderID == uploaderID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *StatsRepository) ListHostStats(_ context.Context, uploaderID string) ([]stats.HostStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stats.HostStats, 0)
	for key, row := range r.hosts {
		if key.uploaderID == uploaderID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *StatsRepository) ListComboStats(_ context.Context, uploaderID string) ([]stats.ComboStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stats.ComboStats, 0)
	for key, row := range r.combos {
		if key.uploaderID == uploaderID {
			out = append(out, row)
		}
	}
	return out, nil
}
