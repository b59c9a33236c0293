package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/velvetden/cardledger/internal/domain/player"
)

type PlayerRepository struct {
	mu     sync.RWMutex
	items  map[string]player.Player
	hidden map[string]struct{}
}

func NewPlayerRepository(hiddenTags []string) *PlayerRepository {
	hidden := make(map[string]struct{}, len(hiddenTags))
	for _, tag := range hiddenTags {
		hidden[strings.TrimSpace(tag)] = struct{}{}
	}
	return &PlayerRepository{
		items:  make(map[string]player.Player),
		hidden: hidden,
	}
}

func (r *PlayerRepository) UpsertMany(_ context.Context, players []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range players {
		existing, ok := r.items[item.ID]
		if !ok {
			r.items[item.ID] = item
			continue
		}

		existing.Tag = item.Tag
		existing.Name = item.Name
		existing.World = item.World
		if item.CreatedAt.Before(existing.CreatedAt) {
			existing.CreatedAt = item.CreatedAt
		}
		if item.UpdatedAt.After(existing.UpdatedAt) {
			existing.UpdatedAt = item.UpdatedAt
		}
		r.items[item.ID] = existing
	}
	return nil
}

func (r *PlayerRepository) ListHidden(context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]struct{}, len(r.hidden))
	for tag := range r.hidden {
		out[tag] = struct{}{}
	}
	return out, nil
}

// Get returns a stored identity, mainly for tests and the memory-backed
// development mode.
func (r *PlayerRepository) Get(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[playerID]
	return item, ok, nil
}
