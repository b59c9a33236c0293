package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/velvetden/cardledger/internal/domain/round"
	qb "github.com/velvetden/cardledger/internal/platform/querybuilder"
)

const roundDedupeConflict = `ON CONFLICT (source_date_time) WHERE source_date_time IS NOT NULL DO NOTHING RETURNING id`

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Insert(ctx context.Context, item round.Round) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx insert round: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("rounds", newRoundInsertModel(item), "RETURNING id")
	if err != nil {
		return "", fmt.Errorf("build insert round query: %w", err)
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return "", round.ErrDuplicate
		}
		return "", fmt.Errorf("insert round: %w", err)
	}

	if err := insertRoundPlayers(ctx, tx, id, item.Players); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit insert round tx: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// InsertMany stores a batch in one transaction. Duplicate source date-time
// keys are suppressed row by row so the rest of the batch still lands.
func (r *RoundRepository) InsertMany(ctx context.Context, rounds []round.Round) ([]bool, error) {
	flags := make([]bool, len(rounds))
	if len(rounds) == 0 {
		return flags, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx insert rounds: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, item := range rounds {
		query, args, err := qb.InsertModel("rounds", newRoundInsertModel(item), roundDedupeConflict)
		if err != nil {
			return nil, fmt.Errorf("build insert round query: %w", err)
		}

		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("insert round %d: %w", i, err)
		}

		if err := insertRoundPlayers(ctx, tx, id, item.Players); err != nil {
			return nil, err
		}
		flags[i] = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert rounds tx: %w", err)
	}
	return flags, nil
}

func insertRoundPlayers(ctx context.Context, tx *sqlx.Tx, roundID int64, players []round.Entry) error {
	for _, e := range players {
		cards := make([]int64, 0, len(e.Cards))
		for _, c := range e.Cards {
			cards = append(cards, int64(c))
		}

		model := roundPlayerInsertModel{
			RoundID:      roundID,
			PlayerID:     e.PlayerID,
			PlayerTag:    e.PlayerTag,
			Name:         e.Name,
			World:        e.World,
			Dealer:       e.Dealer,
			SplitNum:     e.SplitNum,
			Bet:          e.Bet,
			Payout:       e.Payout,
			IsDoubleDown: e.IsDoubleDown,
			Result:       e.Result,
			Cards:        cards,
			ComboKey:     e.ComboKey,
			Integrity:    e.Integrity,
		}

		query, args, err := qb.InsertModel("round_players", model, "")
		if err != nil {
			return fmt.Errorf("build insert round player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert round player %s: %w", e.PlayerID, err)
		}
	}
	return nil
}

func newRoundInsertModel(item round.Round) roundInsertModel {
	return roundInsertModel{
		CreatedAt:        item.CreatedAt,
		SourceDateTime:   nullableString(item.SourceDateTime),
		UploaderID:       item.UploaderID,
		HostID:           item.HostID,
		GameType:         item.GameType,
		Collected:        item.Collected,
		PaidOut:          item.PaidOut,
		Profit:           item.Profit,
		PayloadBase64:    item.PayloadBase64,
		IntegrityVersion: round.IntegrityVersion,
	}
}
