package player

import "time"

// Player is the canonical identity record for a seat participant. ID is the
// "world:name" slug derived from the display tag; the display fields keep
// the most recently seen spelling.
type Player struct {
	ID        string    `db:"player_id"`
	Tag       string    `db:"player_tag"`
	Name      string    `db:"name"`
	World     string    `db:"world"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
