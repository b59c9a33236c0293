package stats

import "context"

// Repository persists additive aggregates. Apply methods must be
// upsert-or-increment so replaying a batch of deltas in any order yields
// the same totals.
type Repository interface {
	ApplyPlayerDeltas(ctx context.Context, deltas []PlayerDelta) error
	ApplyHostDeltas(ctx context.Context, deltas []HostDelta) error
	ApplyComboDeltas(ctx context.Context, deltas []ComboDelta) error

	ListPlayerStats(ctx context.Context, uploaderID string) ([]PlayerStats, error)
	ListHostStats(ctx context.Context, uploaderID string) ([]HostStats, error)
	ListComboStats(ctx context.Context, uploaderID string) ([]ComboStats, error)
}
