package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/velvetden/cardledger/internal/domain/player"
	qb "github.com/velvetden/cardledger/internal/platform/querybuilder"
)

const playerUpsertConflict = `ON CONFLICT (player_id) DO UPDATE SET
    player_tag = EXCLUDED.player_tag,
    name = EXCLUDED.name,
    world = EXCLUDED.world,
    created_at = LEAST(players.created_at, EXCLUDED.created_at),
    updated_at = GREATEST(players.updated_at, EXCLUDED.updated_at)`

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range players {
		query, args, err := qb.InsertModel("players", item, playerUpsertConflict)
		if err != nil {
			return fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert players tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) ListHidden(ctx context.Context) (map[string]struct{}, error) {
	query, args, err := qb.Select("player_tag").From("hidden_players").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list hidden players query: %w", err)
	}

	var tags []string
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("list hidden players: %w", err)
	}

	out := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		out[tag] = struct{}{}
	}
	return out, nil
}
