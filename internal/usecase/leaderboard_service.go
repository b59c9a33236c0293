package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/velvetden/cardledger/internal/domain/alias"
	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/round"
	"github.com/velvetden/cardledger/internal/domain/stats"
)

// LeaderboardService serves the read side of the aggregates: uploader
// scoped player, host and combo boards with alias folding and hidden
// player filtering applied on the way out.
type LeaderboardService struct {
	statsRepo  stats.Repository
	aliasRepo  alias.Repository
	playerRepo player.Repository
}

func NewLeaderboardService(
	statsRepo stats.Repository,
	aliasRepo alias.Repository,
	playerRepo player.Repository,
) *LeaderboardService {
	return &LeaderboardService{
		statsRepo:  statsRepo,
		aliasRepo:  aliasRepo,
		playerRepo: playerRepo,
	}
}

type StatsOverview struct {
	Players []stats.PlayerStats
	Hosts   []stats.HostStats
	Combos  []stats.ComboStats
	Totals  OverviewTotals
}

type OverviewTotals struct {
	RoundsHosted int64
	Players      int
	BetTotal     int64
	PayoutTotal  int64
	Net          int64
}

// PlayerLeaderboard returns the uploader's player aggregates with alias
// chains folded into their primary identity and hidden players removed.
// Rows are ordered by net result, then games played.
func (s *LeaderboardService) PlayerLeaderboard(ctx context.Context, uploaderID string) ([]stats.PlayerStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.PlayerLeaderboard")
	defer span.End()

	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return nil, fmt.Errorf("%w: uploader id is required", ErrInvalidInput)
	}

	rows, err := s.statsRepo.ListPlayerStats(ctx, uploaderID)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}

	aliases, err := s.aliasRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	hidden, err := s.hiddenTags(ctx)
	if err != nil {
		return nil, err
	}

	folded := make(map[string]stats.PlayerStats, len(rows))
	for _, row := range rows {
		primaryTag := alias.Resolve(row.PlayerTag, aliases)
		if _, ok := hidden[strings.ToLower(strings.TrimSpace(primaryTag))]; ok {
			continue
		}

		if primaryTag != row.PlayerTag {
			name, world, tag := round.TagParts(primaryTag)
			row.PlayerID = round.PlayerID(primaryTag)
			row.PlayerTag = tag
			row.Name = name
			row.World = world
		}

		existing, ok := folded[row.PlayerID]
		if !ok {
			folded[row.PlayerID] = row
			continue
		}
		folded[row.PlayerID] = mergePlayerStats(existing, row)
	}

	out := make([]stats.PlayerStats, 0, len(folded))
	for _, row := range folded {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Net != out[j].Net {
			return out[i].Net > out[j].Net
		}
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

// HostLeaderboard returns the uploader's dealer aggregates ordered by
// rounds hosted.
func (s *LeaderboardService) HostLeaderboard(ctx context.Context, uploaderID string) ([]stats.HostStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.HostLeaderboard")
	defer span.End()

	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return nil, fmt.Errorf("%w: uploader id is required", ErrInvalidInput)
	}

	rows, err := s.statsRepo.ListHostStats(ctx, uploaderID)
	if err != nil {
		return nil, fmt.Errorf("list host stats: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GamesHosted != rows[j].GamesHosted {
			return rows[i].GamesHosted > rows[j].GamesHosted
		}
		return rows[i].HostID < rows[j].HostID
	})
	return rows, nil
}

// ComboLeaderboard returns the uploader's hand aggregates ordered by how
// often each hand was seen.
func (s *LeaderboardService) ComboLeaderboard(ctx context.Context, uploaderID string) ([]stats.ComboStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ComboLeaderboard")
	defer span.End()

	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return nil, fmt.Errorf("%w: uploader id is required", ErrInvalidInput)
	}

	rows, err := s.statsRepo.ListComboStats(ctx, uploaderID)
	if err != nil {
		return nil, fmt.Errorf("list combo stats: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Seen != rows[j].Seen {
			return rows[i].Seen > rows[j].Seen
		}
		return rows[i].ComboKey < rows[j].ComboKey
	})
	return rows, nil
}

// Overview fetches all three boards concurrently and derives the headline
// totals from the host aggregates.
func (s *LeaderboardService) Overview(ctx context.Context, uploaderID string) (StatsOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Overview")
	defer span.End()

	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return StatsOverview{}, fmt.Errorf("%w: uploader id is required", ErrInvalidInput)
	}

	var overview StatsOverview

	group := pool.New().WithContext(ctx).WithCancelOnError()
	group.Go(func(ctx context.Context) error {
		rows, err := s.PlayerLeaderboard(ctx, uploaderID)
		if err != nil {
			return err
		}
		overview.Players = rows
		return nil
	})
	group.Go(func(ctx context.Context) error {
		rows, err := s.HostLeaderboard(ctx, uploaderID)
		if err != nil {
			return err
		}
		overview.Hosts = rows
		return nil
	})
	group.Go(func(ctx context.Context) error {
		rows, err := s.ComboLeaderboard(ctx, uploaderID)
		if err != nil {
			return err
		}
		overview.Combos = rows
		return nil
	})
	if err := group.Wait(); err != nil {
		return StatsOverview{}, err
	}

	overview.Totals.Players = len(overview.Players)
	for _, host := range overview.Hosts {
		overview.Totals.RoundsHosted += host.GamesHosted
		overview.Totals.BetTotal += host.BetTotal
		overview.Totals.PayoutTotal += host.PayoutTotal
		overview.Totals.Net += host.Net
	}
	return overview, nil
}

func (s *LeaderboardService) hiddenTags(ctx context.Context) (map[string]struct{}, error) {
	tags, err := s.playerRepo.ListHidden(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hidden players: %w", err)
	}

	out := make(map[string]struct{}, len(tags))
	for tag := range tags {
		out[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	return out, nil
}

func mergePlayerStats(dst, src stats.PlayerStats) stats.PlayerStats {
	dst.Games += src.Games
	dst.Wins += src.Wins
	dst.Losses += src.Losses
	dst.Pushes += src.Pushes
	dst.OtherResults += src.OtherResults
	dst.BetTotal += src.BetTotal
	dst.PayoutTotal += src.PayoutTotal
	dst.Net += src.Net
	dst.DoubleDowns += src.DoubleDowns
	dst.Splits += src.Splits
	if src.CreatedAt.Before(dst.CreatedAt) {
		dst.CreatedAt = src.CreatedAt
	}
	if src.UpdatedAt.After(dst.UpdatedAt) {
		dst.UpdatedAt = src.UpdatedAt
	}
	return dst
}
