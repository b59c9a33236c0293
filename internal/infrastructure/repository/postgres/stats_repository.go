package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/velvetden/cardledger/internal/domain/stats"
	qb "github.com/velvetden/cardledger/internal/platform/querybuilder"
)

const playerStatsConflict = `ON CONFLICT (uploader_id, player_id) DO UPDATE SET
    player_tag = EXCLUDED.player_tag,
    name = EXCLUDED.name,
    world = EXCLUDED.world,
    games = player_stats.games + EXCLUDED.games,
    wins = player_stats.wins + EXCLUDED.wins,
    losses = player_stats.losses + EXCLUDED.losses,
    pushes = player_stats.pushes + EXCLUDED.pushes,
    other_results = player_stats.other_results + EXCLUDED.other_results,
    bet_total = player_stats.bet_total + EXCLUDED.bet_total,
    payout_total = player_stats.payout_total + EXCLUDED.payout_total,
    net = player_stats.net + EXCLUDED.net,
    double_downs = player_stats.double_downs + EXCLUDED.double_downs,
    splits = player_stats.splits + EXCLUDED.splits,
    created_at = LEAST(player_stats.created_at, EXCLUDED.created_at),
    updated_at = GREATEST(player_stats.updated_at, EXCLUDED.updated_at)`

const hostStatsConflict = `ON CONFLICT (uploader_id, host_id) DO UPDATE SET
    owned_by = EXCLUDED.owned_by,
    player_tag = EXCLUDED.player_tag,
    name = EXCLUDED.name,
    world = EXCLUDED.world,
    games_hosted = host_stats.games_hosted + EXCLUDED.games_hosted,
    player_wins = host_stats.player_wins + EXCLUDED.player_wins,
    player_losses = host_stats.player_losses + EXCLUDED.player_losses,
    player_pushes = host_stats.player_pushes + EXCLUDED.player_pushes,
    player_other_results = host_stats.player_other_results + EXCLUDED.player_other_results,
    bet_total = host_stats.bet_total + EXCLUDED.bet_total,
    payout_total = host_stats.payout_total + EXCLUDED.payout_total,
    net = host_stats.net + EXCLUDED.net,
    created_at = LEAST(host_stats.created_at, EXCLUDED.created_at),
    updated_at = GREATEST(host_stats.updated_at, EXCLUDED.updated_at)`

const comboStatsConflict = `ON CONFLICT (uploader_id, combo_key) DO UPDATE SET
    seen = combo_stats.seen + EXCLUDED.seen,
    wins = combo_stats.wins + EXCLUDED.wins,
    losses = combo_stats.losses + EXCLUDED.losses,
    pushes = combo_stats.pushes + EXCLUDED.pushes,
    other_results = combo_stats.other_results + EXCLUDED.other_results,
    bet_total = combo_stats.bet_total + EXCLUDED.bet_total,
    payout_total = combo_stats.payout_total + EXCLUDED.payout_total,
    net = combo_stats.net + EXCLUDED.net,
    created_at = LEAST(combo_stats.created_at, EXCLUDED.created_at),
    updated_at = GREATEST(combo_stats.updated_at, EXCLUDED.updated_at)`

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) ApplyPlayerDeltas(ctx context.Context, deltas []stats.PlayerDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply player stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, d := range deltas {
		model := playerStatsInsertModel{
			UploaderID:   d.UploaderID,
			PlayerID:     d.PlayerID,
			PlayerTag:    d.PlayerTag,
			Name:         d.Name,
			World:        d.World,
			Games:        d.Games,
			Wins:         d.Wins,
			Losses:       d.Losses,
			Pushes:       d.Pushes,
			OtherResults: d.OtherResults,
			BetTotal:     d.BetTotal,
			PayoutTotal:  d.PayoutTotal,
			Net:          d.Net,
			DoubleDowns:  d.DoubleDowns,
			Splits:       d.Splits,
			CreatedAt:    d.FirstAt,
			UpdatedAt:    d.LastAt,
		}

		query, args, err := qb.InsertModel("player_stats", model, playerStatsConflict)
		if err != nil {
			return fmt.Errorf("build apply player stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply player stats %s: %w", d.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply player stats tx: %w", err)
	}
	return nil
}

func (r *StatsRepository) ApplyHostDeltas(ctx context.Context, deltas []stats.HostDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply host stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, d := range deltas {
		model := hostStatsInsertModel{
			UploaderID:         d.UploaderID,
			HostID:             d.HostID,
			OwnedBy:            d.OwnedBy,
			PlayerTag:          d.PlayerTag,
			Name:               d.Name,
			World:              d.World,
			GamesHosted:        d.GamesHosted,
			PlayerWins:         d.PlayerWins,
			PlayerLosses:       d.PlayerLosses,
			PlayerPushes:       d.PlayerPushes,
			PlayerOtherResults: d.PlayerOtherResults,
			BetTotal:           d.BetTotal,
			PayoutTotal:        d.PayoutTotal,
			Net:                d.Net,
			CreatedAt:          d.FirstAt,
			UpdatedAt:          d.LastAt,
		}

		query, args, err := qb.InsertModel("host_stats", model, hostStatsConflict)
		if err != nil {
			return fmt.Errorf("build apply host stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply host stats %s: %w", d.HostID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply host stats tx: %w", err)
	}
	return nil
}

func (r *StatsRepository) ApplyComboDeltas(ctx context.Context, deltas []stats.ComboDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply combo stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, d := range deltas {
		model := comboStatsInsertModel{
			UploaderID:   d.UploaderID,
			ComboKey:     d.ComboKey,
			Seen:         d.Seen,
			Wins:         d.Wins,
			Losses:       d.Losses,
			Pushes:       d.Pushes,
			OtherResults: d.OtherResults,
			BetTotal:     d.BetTotal,
			PayoutTotal:  d.PayoutTotal,
			Net:          d.Net,
			CreatedAt:    d.FirstAt,
			UpdatedAt:    d.LastAt,
		}

		query, args, err := qb.InsertModel("combo_stats", model, comboStatsConflict)
		if err != nil {
			return fmt.Errorf("build apply combo stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply combo stats %s: %w", d.ComboKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply combo stats tx: %w", err)
	}
	return nil
}

func (r *StatsRepository) ListPlayerStats(ctx context.Context, uploaderID string) ([]stats.PlayerStats, error) {
	query, args, err := qb.Select(
		"uploader_id", "player_id", "player_tag", "name", "world",
		"games", "wins", "losses", "pushes", "other_results",
		"bet_total", "payout_total", "net", "double_downs", "splits",
		"created_at", "updated_at",
	).From("player_stats").
		Where(qb.Eq("uploader_id", uploaderID)).
		OrderBy("net DESC", "games DESC", "player_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player stats query: %w", err)
	}

	var rows []stats.PlayerStats
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}
	return rows, nil
}

func (r *StatsRepository) ListHostStats(ctx context.Context, uploaderID string) ([]stats.HostStats, error) {
	query, args, err := qb.Select(
		"uploader_id", "host_id", "owned_by", "player_tag", "name", "world",
		"games_hosted", "player_wins", "player_losses", "player_pushes", "player_other_results",
		"bet_total", "payout_total", "net",
		"created_at", "updated_at",
	).From("host_stats").
		Where(qb.Eq("uploader_id", uploaderID)).
		OrderBy("games_hosted DESC", "host_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list host stats query: %w", err)
	}

	var rows []stats.HostStats
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list host stats: %w", err)
	}
	return rows, nil
}

func (r *StatsRepository) ListComboStats(ctx context.Context, uploaderID string) ([]stats.ComboStats, error) {
	query, args, err := qb.Select(
		"uploader_id", "combo_key",
		"seen", "wins", "losses", "pushes", "other_results",
		"bet_total", "payout_total", "net",
		"created_at", "updated_at",
	).From("combo_stats").
		Where(qb.Eq("uploader_id", uploaderID)).
		OrderBy("seen DESC", "combo_key ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list combo stats query: %w", err)
	}

	var rows []stats.ComboStats
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list combo stats: %w", err)
	}
	return rows, nil
}

type playerStatsInsertModel struct {
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

type hostStatsInsertModel struct {
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

type comboStatsInsertModel struct {
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
