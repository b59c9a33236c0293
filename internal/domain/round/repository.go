package round

import "context"

type Repository interface {
	// Insert stores a single round and returns its id. Returns ErrDuplicate
	// when the round's source date-time key already exists.
	Insert(ctx context.Context, r Round) (string, error)
	// InsertMany stores a batch. The returned slice is aligned with the
	// input: true when the round was newly inserted, false when it was a
	// duplicate on the source date-time key.
	InsertMany(ctx context.Context, rounds []Round) ([]bool, error)
}
