package postgres

import (
	"time"

	"github.com/lib/pq"
)

type roundInsertModel struct {
	CreatedAt        time.Time `db:"created_at"`
	SourceDateTime   *string   `db:"source_date_time"`
	UploaderID       string    `db:"uploader_id"`
	HostID           string    `db:"host_id"`
	GameType         string    `db:"game_type"`
	Collected        *int64    `db:"collected"`
	PaidOut          *int64    `db:"paid_out"`
	Profit           *int64    `db:"profit"`
	PayloadBase64    string    `db:"payload_base64"`
	IntegrityVersion int       `db:"integrity_version"`
}

type roundPlayerInsertModel struct {
	RoundID      int64         `db:"round_id"`
	PlayerID     string        `db:"player_id"`
	PlayerTag    string        `db:"player_tag"`
	Name         string        `db:"name"`
	World        string        `db:"world"`
	Dealer       bool          `db:"dealer"`
	SplitNum     int           `db:"split_num"`
	Bet          int64         `db:"bet"`
	Payout       int64         `db:"payout"`
	IsDoubleDown bool          `db:"is_double_down"`
	Result       int           `db:"result"`
	Cards        pq.Int64Array `db:"cards"`
	ComboKey     string        `db:"combo_key"`
	Integrity    int           `db:"integrity"`
}
