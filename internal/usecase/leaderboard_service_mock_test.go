package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/velvetden/cardledger/internal/domain/alias"
	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/stats"
)

type statsRepositoryMock struct{ mock.Mock }

func newStatsRepositoryMock(t *testing.T) *statsRepositoryMock {
	m := &statsRepositoryMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *statsRepositoryMock) ApplyPlayerDeltas(ctx context.Context, deltas []stats.PlayerDelta) error {
	return m.Called(ctx, deltas).Error(0)
}

func (m *statsRepositoryMock) ApplyHostDeltas(ctx context.Context, deltas []stats.HostDelta) error {
	return m.Called(ctx, deltas).Error(0)
}

func (m *statsRepositoryMock) ApplyComboDeltas(ctx context.Context, deltas []stats.ComboDelta) error {
	return m.Called(ctx, deltas).Error(0)
}

func (m *statsRepositoryMock) ListPlayerStats(ctx context.Context, uploaderID string) ([]stats.PlayerStats, error) {
	args := m.Called(ctx, uploaderID)
	rows, _ := args.Get(0).([]stats.PlayerStats)
	return rows, args.Error(1)
}

func (m *statsRepositoryMock) ListHostStats(ctx context.Context, uploaderID string) ([]stats.HostStats, error) {
	args := m.Called(ctx, uploaderID)
	rows, _ := args.Get(0).([]stats.HostStats)
	return rows, args.Error(1)
}

func (m *statsRepositoryMock) ListComboStats(ctx context.Context, uploaderID string) ([]stats.ComboStats, error) {
	args := m.Called(ctx, uploaderID)
	rows, _ := args.Get(0).([]stats.ComboStats)
	return rows, args.Error(1)
}

type aliasRepositoryMock struct{ mock.Mock }

func newAliasRepositoryMock(t *testing.T) *aliasRepositoryMock {
	m := &aliasRepositoryMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *aliasRepositoryMock) All(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).(map[string]string)
	return links, args.Error(1)
}

func (m *aliasRepositoryMock) Upsert(ctx context.Context, a alias.Alias) error {
	return m.Called(ctx, a).Error(0)
}

func (m *aliasRepositoryMock) Delete(ctx context.Context, aliasTag string) error {
	return m.Called(ctx, aliasTag).Error(0)
}

type playerRepositoryMock struct{ mock.Mock }

func newPlayerRepositoryMock(t *testing.T) *playerRepositoryMock {
	m := &playerRepositoryMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *playerRepositoryMock) UpsertMany(ctx context.Context, players []player.Player) error {
	return m.Called(ctx, players).Error(0)
}

func (m *playerRepositoryMock) ListHidden(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	hidden, _ := args.Get(0).(map[string]struct{})
	return hidden, args.Error(1)
}

func TestLeaderboardService_PlayerLeaderboard_FoldsAliasesUsingMocks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	statsRepo := newStatsRepositoryMock(t)
	aliasRepo := newAliasRepositoryMock(t)
	playerRepo := newPlayerRepositoryMock(t)

	service := NewLeaderboardService(statsRepo, aliasRepo, playerRepo)

	statsRepo.
		On("ListPlayerStats", mock.Anything, "uploader-1").
		Return([]stats.PlayerStats{
			{UploaderID: "uploader-1", PlayerID: "balmung:alice", PlayerTag: "Alice@Balmung", Name: "Alice", World: "Balmung", Games: 3, Wins: 2, Net: 500},
			{UploaderID: "uploader-1", PlayerID: "balmung:alt", PlayerTag: "Alt@Balmung", Name: "Alt", World: "Balmung", Games: 2, Wins: 1, Net: 100},
			{UploaderID: "uploader-1", PlayerID: "balmung:ghost", PlayerTag: "Ghost@Balmung", Name: "Ghost", World: "Balmung", Games: 9, Net: 9000},
		}, nil).
		Once()
	aliasRepo.
		On("All", mock.Anything).
		Return(map[string]string{"alt@balmung": "Alice@Balmung"}, nil).
		Once()
	playerRepo.
		On("ListHidden", mock.Anything).
		Return(map[string]struct{}{"ghost@balmung": {}}, nil).
		Once()

	rows, err := service.PlayerLeaderboard(ctx, "uploader-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "balmung:alice", rows[0].PlayerID)
	require.Equal(t, "Alice@Balmung", rows[0].PlayerTag)
	require.Equal(t, int64(5), rows[0].Games)
	require.Equal(t, int64(3), rows[0].Wins)
	require.Equal(t, int64(600), rows[0].Net)
}

func TestLeaderboardService_Overview_PropagatesStatsErrorUsingMocks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	statsRepo := newStatsRepositoryMock(t)
	aliasRepo := newAliasRepositoryMock(t)
	playerRepo := newPlayerRepositoryMock(t)

	service := NewLeaderboardService(statsRepo, aliasRepo, playerRepo)
	wantErr := errors.New("stats backend down")

	statsRepo.
		On("ListHostStats", mock.Anything, "uploader-1").
		Return(nil, wantErr).
		Once()
	// The other boards race the failing one; they may or may not run before
	// the group cancels.
	statsRepo.On("ListPlayerStats", mock.Anything, "uploader-1").Return([]stats.PlayerStats{}, nil).Maybe()
	statsRepo.On("ListComboStats", mock.Anything, "uploader-1").Return([]stats.ComboStats{}, nil).Maybe()
	aliasRepo.On("All", mock.Anything).Return(map[string]string{}, nil).Maybe()
	playerRepo.On("ListHidden", mock.Anything).Return(map[string]struct{}{}, nil).Maybe()

	_, err := service.Overview(ctx, "uploader-1")
	require.ErrorIs(t, err, wantErr)
}
