package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/velvetden/cardledger/internal/domain/alias"
	qb "github.com/velvetden/cardledger/internal/platform/querybuilder"
)

const aliasUpsertConflict = `ON CONFLICT (alias_tag) DO UPDATE SET primary_tag = EXCLUDED.primary_tag`

type AliasRepository struct {
	db *sqlx.DB
}

func NewAliasRepository(db *sqlx.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

func (r *AliasRepository) All(ctx context.Context) (map[string]string, error) {
	query, args, err := qb.Select("alias_tag", "primary_tag").From("aliases").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list aliases query: %w", err)
	}

	var rows []alias.Alias
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[strings.ToLower(strings.TrimSpace(row.AliasTag))] = row.PrimaryTag
	}
	return out, nil
}

func (r *AliasRepository) Upsert(ctx context.Context, a alias.Alias) error {
	a.AliasTag = strings.TrimSpace(a.AliasTag)
	a.PrimaryTag = strings.TrimSpace(a.PrimaryTag)

	query, args, err := qb.InsertModel("aliases", a, aliasUpsertConflict)
	if err != nil {
		return fmt.Errorf("build upsert alias query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert alias %s: %w", a.AliasTag, err)
	}
	return nil
}

func (r *AliasRepository) Delete(ctx context.Context, aliasTag string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM aliases WHERE alias_tag = $1", strings.TrimSpace(aliasTag)); err != nil {
		return fmt.Errorf("delete alias %s: %w", aliasTag, err)
	}
	return nil
}
