package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/velvetden/cardledger/internal/domain/stats"
	"github.com/velvetden/cardledger/internal/usecase"
)

type playerStatsDTO struct {
	PlayerID     string `json:"playerId"`
	PlayerTag    string `json:"playerTag"`
	Name         string `json:"name"`
	World        string `json:"world"`
	Games        int64  `json:"games"`
	Wins         int64  `json:"wins"`
	Losses       int64  `json:"losses"`
	Pushes       int64  `json:"pushes"`
	OtherResults int64  `json:"otherResults"`
	BetTotal     int64  `json:"betTotal"`
	PayoutTotal  int64  `json:"payoutTotal"`
	Net          int64  `json:"net"`
	DoubleDowns  int64  `json:"doubleDowns"`
	Splits       int64  `json:"splits"`
	FirstSeenUTC string `json:"firstSeenUtc"`
	LastSeenUTC  string `json:"lastSeenUtc"`
}

type hostStatsDTO struct {
	HostID             string `json:"hostId"`
	OwnedBy            string `json:"ownedBy"`
	PlayerTag          string `json:"playerTag"`
	Name               string `json:"name"`
	World              string `json:"world"`
	GamesHosted        int64  `json:"gamesHosted"`
	PlayerWins         int64  `json:"playerWins"`
	PlayerLosses       int64  `json:"playerLosses"`
	PlayerPushes       int64  `json:"playerPushes"`
	PlayerOtherResults int64  `json:"playerOtherResults"`
	BetTotal           int64  `json:"betTotal"`
	PayoutTotal        int64  `json:"payoutTotal"`
	Net                int64  `json:"net"`
	FirstSeenUTC       string `json:"firstSeenUtc"`
	LastSeenUTC        string `json:"lastSeenUtc"`
}

type comboStatsDTO struct {
	ComboKey     string `json:"comboKey"`
	Seen         int64  `json:"seen"`
	Wins         int64  `json:"wins"`
	Losses       int64  `json:"losses"`
	Pushes       int64  `json:"pushes"`
	OtherResults int64  `json:"otherResults"`
	BetTotal     int64  `json:"betTotal"`
	PayoutTotal  int64  `json:"payoutTotal"`
	Net          int64  `json:"net"`
}

type overviewTotalsDTO struct {
	RoundsHosted int64 `json:"roundsHosted"`
	Players      int   `json:"players"`
	BetTotal     int64 `json:"betTotal"`
	PayoutTotal  int64 `json:"payoutTotal"`
	Net          int64 `json:"net"`
}

type overviewDTO struct {
	Players []playerStatsDTO  `json:"players"`
	Hosts   []hostStatsDTO    `json:"hosts"`
	Combos  []comboStatsDTO   `json:"combos"`
	Totals  overviewTotalsDTO `json:"totals"`
}

func (h *Handler) ListPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	rows, err := h.leaderboardService.PlayerLeaderboard(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player stats failed", "uploader_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatsToDTOs(ctx, rows))
}

func (h *Handler) ListHostStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHostStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	rows, err := h.leaderboardService.HostLeaderboard(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list host stats failed", "uploader_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, hostStatsToDTOs(ctx, rows))
}

func (h *Handler) ListComboStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListComboStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	rows, err := h.leaderboardService.ComboLeaderboard(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list combo stats failed", "uploader_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, comboStatsToDTOs(ctx, rows))
}

func (h *Handler) GetStatsOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatsOverview")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	overview, err := h.leaderboardService.Overview(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get stats overview failed", "uploader_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overviewDTO{
		Players: playerStatsToDTOs(ctx, overview.Players),
		Hosts:   hostStatsToDTOs(ctx, overview.Hosts),
		Combos:  comboStatsToDTOs(ctx, overview.Combos),
		Totals: overviewTotalsDTO{
			RoundsHosted: overview.Totals.RoundsHosted,
			Players:      overview.Totals.Players,
			BetTotal:     overview.Totals.BetTotal,
			PayoutTotal:  overview.Totals.PayoutTotal,
			Net:          overview.Totals.Net,
		},
	})
}

func playerStatsToDTOs(ctx context.Context, rows []stats.PlayerStats) []playerStatsDTO {
	ctx, span := startSpan(ctx, "httpapi.playerStatsToDTOs")
	defer span.End()

	items := make([]playerStatsDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, playerStatsDTO{
			PlayerID:     row.PlayerID,
			PlayerTag:    row.PlayerTag,
			Name:         row.Name,
			World:        row.World,
			Games:        row.Games,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Pushes:       row.Pushes,
			OtherResults: row.OtherResults,
			BetTotal:     row.BetTotal,
			PayoutTotal:  row.PayoutTotal,
			Net:          row.Net,
			DoubleDowns:  row.DoubleDowns,
			Splits:       row.Splits,
			FirstSeenUTC: row.CreatedAt.UTC().Format(time.RFC3339),
			LastSeenUTC:  row.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func hostStatsToDTOs(ctx context.Context, rows []stats.HostStats) []hostStatsDTO {
	ctx, span := startSpan(ctx, "httpapi.hostStatsToDTOs")
	defer span.End()

	items := make([]hostStatsDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, hostStatsDTO{
			HostID:             row.HostID,
			OwnedBy:            row.OwnedBy,
			PlayerTag:          row.PlayerTag,
			Name:               row.Name,
			World:              row.World,
			GamesHosted:        row.GamesHosted,
			PlayerWins:         row.PlayerWins,
			PlayerLosses:       row.PlayerLosses,
			PlayerPushes:       row.PlayerPushes,
			PlayerOtherResults: row.PlayerOtherResults,
			BetTotal:           row.BetTotal,
			PayoutTotal:        row.PayoutTotal,
			Net:                row.Net,
			FirstSeenUTC:       row.CreatedAt.UTC().Format(time.RFC3339),
			LastSeenUTC:        row.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func comboStatsToDTOs(ctx context.Context, rows []stats.ComboStats) []comboStatsDTO {
	ctx, span := startSpan(ctx, "httpapi.comboStatsToDTOs")
	defer span.End()

	items := make([]comboStatsDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, comboStatsDTO{
			ComboKey:     row.ComboKey,
			Seen:         row.Seen,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Pushes:       row.Pushes,
			OtherResults: row.OtherResults,
			BetTotal:     row.BetTotal,
			PayoutTotal:  row.PayoutTotal,
			Net:          row.Net,
		})
	}
	return items
}
