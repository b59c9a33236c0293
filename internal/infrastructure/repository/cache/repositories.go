package cache

import (
	"context"

	"github.com/velvetden/cardledger/internal/domain/alias"
	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/stats"
	basecache "github.com/velvetden/cardledger/internal/platform/cache"
)

// StatsRepository caches the per-uploader leaderboard reads and drops the
// uploader's cached boards whenever new deltas land for them.
type StatsRepository struct {
	next  stats.Repository
	cache *basecache.Store
}

func NewStatsRepository(next stats.Repository, cache *basecache.Store) *StatsRepository {
	return &StatsRepository{next: next, cache: cache}
}

func (r *StatsRepository) ApplyPlayerDeltas(ctx context.Context, deltas []stats.PlayerDelta) error {
	if err := r.next.ApplyPlayerDeltas(ctx, deltas); err != nil {
		return err
	}
	for _, d := range deltas {
		r.cache.DeletePrefix(ctx, statsUploaderPrefix(d.UploaderID))
	}
	return nil
}

func (r *StatsRepository) ApplyHostDeltas(ctx context.Context, deltas []stats.HostDelta) error {
	if err := r.next.ApplyHostDeltas(ctx, deltas); err != nil {
		return err
	}
	for _, d := range deltas {
		r.cache.DeletePrefix(ctx, statsUploaderPrefix(d.UploaderID))
	}
	return nil
}

func (r *StatsRepository) ApplyComboDeltas(ctx context.Context, deltas []stats.ComboDelta) error {
	if err := r.next.ApplyComboDeltas(ctx, deltas); err != nil {
		return err
	}
	for _, d := range deltas {
		r.cache.DeletePrefix(ctx, statsUploaderPrefix(d.UploaderID))
	}
	return nil
}

func (r *StatsRepository) ListPlayerStats(ctx context.Context, uploaderID string) ([]stats.PlayerStats, error) {
	key := statsUploaderPrefix(uploaderID) + "players"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListPlayerStats(ctx, uploaderID)
		if err != nil {
			return nil, err
		}
		return append([]stats.PlayerStats(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]stats.PlayerStats)
	return append([]stats.PlayerStats(nil), items...), nil
}

func (r *StatsRepository) ListHostStats(ctx context.Context, uploaderID string) ([]stats.HostStats, error) {
	key := statsUploaderPrefix(uploaderID) + "hosts"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListHostStats(ctx, uploaderID)
		if err != nil {
			return nil, err
		}
		return append([]stats.HostStats(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]stats.HostStats)
	return append([]stats.HostStats(nil), items...), nil
}

func (r *StatsRepository) ListComboStats(ctx context.Context, uploaderID string) ([]stats.ComboStats, error) {
	key := statsUploaderPrefix(uploaderID) + "combos"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListComboStats(ctx, uploaderID)
		if err != nil {
			return nil, err
		}
		return append([]stats.ComboStats(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]stats.ComboStats)
	return append([]stats.ComboStats(nil), items...), nil
}

func statsUploaderPrefix(uploaderID string) string {
	return "stats:uploader:" + uploaderID + ":"
}

// AliasRepository caches the full alias map, which every leaderboard read
// needs.
type AliasRepository struct {
	next  alias.Repository
	cache *basecache.Store
}

func NewAliasRepository(next alias.Repository, cache *basecache.Store) *AliasRepository {
	return &AliasRepository{next: next, cache: cache}
}

func (r *AliasRepository) All(ctx context.Context) (map[string]string, error) {
	v, err := r.cache.GetOrLoad(ctx, "alias:all", func(ctx context.Context) (any, error) {
		items, err := r.next.All(ctx)
		if err != nil {
			return nil, err
		}
		return cloneStringMap(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.(map[string]string)
	return cloneStringMap(items), nil
}

func (r *AliasRepository) Upsert(ctx context.Context, a alias.Alias) error {
	if err := r.next.Upsert(ctx, a); err != nil {
		return err
	}
	r.cache.Delete(ctx, "alias:all")
	return nil
}

func (r *AliasRepository) Delete(ctx context.Context, aliasTag string) error {
	if err := r.next.Delete(ctx, aliasTag); err != nil {
		return err
	}
	r.cache.Delete(ctx, "alias:all")
	return nil
}

// PlayerRepository caches the hidden tag set and forwards writes untouched.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	return r.next.UpsertMany(ctx, players)
}

func (r *PlayerRepository) ListHidden(ctx context.Context) (map[string]struct{}, error) {
	v, err := r.cache.GetOrLoad(ctx, "player:hidden", func(ctx context.Context) (any, error) {
		items, err := r.next.ListHidden(ctx)
		if err != nil {
			return nil, err
		}
		return cloneStringSet(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.(map[string]struct{})
	return cloneStringSet(items), nil
}

func cloneStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStringSet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
