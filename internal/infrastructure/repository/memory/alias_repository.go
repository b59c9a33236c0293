package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/velvetden/cardledger/internal/domain/alias"
)

type AliasRepository struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewAliasRepository(aliases []alias.Alias) *AliasRepository {
	items := make(map[string]string, len(aliases))
	for _, a := range aliases {
		items[normalizeAliasTag(a.AliasTag)] = a.PrimaryTag
	}
	return &AliasRepository{items: items}
}

func (r *AliasRepository) All(context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.items))
	for k, v := range r.items {
		out[k] = v
	}
	return out, nil
}

func (r *AliasRepository) Upsert(_ context.Context, a alias.Alias) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[normalizeAliasTag(a.AliasTag)] = strings.TrimSpace(a.PrimaryTag)
	return nil
}

func (r *AliasRepository) Delete(_ context.Context, aliasTag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, normalizeAliasTag(aliasTag))
	return nil
}

func normalizeAliasTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
