package player

import "context"

// Repository describes player identity persistence needs from use cases.
type Repository interface {
	// UpsertMany inserts new players and refreshes display fields on
	// existing ones. CreatedAt keeps the earliest value, UpdatedAt the
	// latest.
	UpsertMany(ctx context.Context, players []Player) error
	// ListHidden returns the set of player tags excluded from leaderboards.
	ListHidden(ctx context.Context) (map[string]struct{}, error)
}
