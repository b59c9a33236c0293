package alias

import "context"

type Repository interface {
	// All returns every alias link keyed by lowercased alias tag.
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, a Alias) error
	Delete(ctx context.Context, aliasTag string) error
}
