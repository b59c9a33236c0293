package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/velvetden/cardledger/internal/domain/round"
)

// RoundRepository keeps rounds in memory. Dedupe mirrors the database
// behavior: the source date-time is a unique key whenever it is present.
type RoundRepository struct {
	mu     sync.RWMutex
	items  map[string]round.Round
	byKey  map[string]string
	nextID int64
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{
		items: make(map[string]round.Round),
		byKey: make(map[string]string),
	}
}

func (r *RoundRepository) Insert(_ context.Context, item round.Round) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(item)
}

func (r *RoundRepository) InsertMany(_ context.Context, rounds []round.Round) ([]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	flags := make([]bool, len(rounds))
	for i, item := range rounds {
		if _, err := r.insertLocked(item); err != nil {
			if err == round.ErrDuplicate {
				continue
			}
			return nil, err
		}
		flags[i] = true
	}
	return flags, nil
}

func (r *RoundRepository) insertLocked(item round.Round) (string, error) {
	if item.SourceDateTime != "" {
		if _, exists := r.byKey[item.SourceDateTime]; exists {
			return "", round.ErrDuplicate
		}
	}

	r.nextID++
	id := strconv.FormatInt(r.nextID, 10)
	item.ID = id
	r.items[id] = item
	if item.SourceDateTime != "" {
		r.byKey[item.SourceDateTime] = id
	}
	return id, nil
}

// List returns all stored rounds in insertion order.
func (r *RoundRepository) List(_ context.Context) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0, len(r.items))
	for i := int64(1); i <= r.nextID; i++ {
		if item, ok := r.items[strconv.FormatInt(i, 10)]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}
