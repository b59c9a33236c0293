package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/round"
	"github.com/velvetden/cardledger/internal/domain/stats"
)

const testRoundPayload = `[` +
	`{"PlayerName":"Host@Balmung","Dealer":true,"Cards":[10,7],"Result":0},` +
	`{"PlayerName":"Alice@Balmung","Cards":[10,2],"Bet":5000,"Payout":10000,"Result":1},` +
	`{"PlayerName":"Bob@Crystal","Cards":[5,5],"Bet":2000,"Payout":0,"Result":3,"IsDoubleDown":true}` +
	`]`

type stubRoundRepo struct {
	rounds    []round.Round
	duplicate map[string]struct{}
}

func (s *stubRoundRepo) Insert(_ context.Context, r round.Round) (string, error) {
	if r.SourceDateTime != "" {
		if _, ok := s.duplicate[r.SourceDateTime]; ok {
			return "", round.ErrDuplicate
		}
	}
	s.rounds = append(s.rounds, r)
	return fmt.Sprintf("round-%d", len(s.rounds)), nil
}

func (s *stubRoundRepo) InsertMany(ctx context.Context, rounds []round.Round) ([]bool, error) {
	flags := make([]bool, len(rounds))
	for i, r := range rounds {
		if _, err := s.Insert(ctx, r); err != nil {
			if errors.Is(err, round.ErrDuplicate) {
				continue
			}
			return nil, err
		}
		if s.duplicate == nil {
			s.duplicate = map[string]struct{}{}
		}
		if r.SourceDateTime != "" {
			s.duplicate[r.SourceDateTime] = struct{}{}
		}
		flags[i] = true
	}
	return flags, nil
}

type stubPlayerRepo struct {
	upserts     [][]player.Player
	hidden      map[string]struct{}
	upsertCalls int
}

func (s *stubPlayerRepo) UpsertMany(_ context.Context, players []player.Player) error {
	s.upsertCalls++
	s.upserts = append(s.upserts, players)
	return nil
}

func (s *stubPlayerRepo) ListHidden(context.Context) (map[string]struct{}, error) {
	return s.hidden, nil
}

type stubStatsRepo struct {
	playerDeltas []stats.PlayerDelta
	hostDeltas   []stats.HostDelta
	comboDeltas  []stats.ComboDelta
	playerCalls  int
	hostCalls    int
	comboCalls   int

	playerRows []stats.PlayerStats
	hostRows   []stats.HostStats
	comboRows  []stats.ComboStats
}

func (s *stubStatsRepo) ApplyPlayerDeltas(_ context.Context, deltas []stats.PlayerDelta) error {
	s.playerCalls++
	s.playerDeltas = append(s.playerDeltas, deltas...)
	return nil
}

func (s *stubStatsRepo) ApplyHostDeltas(_ context.Context, deltas []stats.HostDelta) error {
	s.hostCalls++
	s.hostDeltas = append(s.hostDeltas, deltas...)
	return nil
}

func (s *stubStatsRepo) ApplyComboDeltas(_ context.Context, deltas []stats.ComboDelta) error {
	s.comboCalls++
	s.comboDeltas = append(s.comboDeltas, deltas...)
	return nil
}

func (s *stubStatsRepo) ListPlayerStats(context.Context, string) ([]stats.PlayerStats, error) {
	return s.playerRows, nil
}

func (s *stubStatsRepo) ListHostStats(context.Context, string) ([]stats.HostStats, error) {
	return s.hostRows, nil
}

func (s *stubStatsRepo) ListComboStats(context.Context, string) ([]stats.ComboStats, error) {
	return s.comboRows, nil
}

func newTestIngestService(roundRepo *stubRoundRepo, playerRepo *stubPlayerRepo, statsRepo *stubStatsRepo) *IngestService {
	return NewIngestService(roundRepo, playerRepo, statsRepo, nil, 2, 0)
}

func TestIngestRound(t *testing.T) {
	t.Parallel()

	roundRepo := &stubRoundRepo{}
	playerRepo := &stubPlayerRepo{}
	statsRepo := &stubStatsRepo{}
	svc := newTestIngestService(roundRepo, playerRepo, statsRepo)

	result, err := svc.IngestRound(context.Background(), IngestRoundInput{
		UploaderID:     "uploader-1",
		Payload:        testRoundPayload,
		SourceDateTime: "01/02/2026 9.15.30",
		CreatedAt:      time.Date(2026, 2, 1, 9, 15, 30, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("IngestRound error: %v", err)
	}
	if result.GameID == "" || result.Skipped {
		t.Fatalf("unexpected result: %+v", result)
	}

	if len(roundRepo.rounds) != 1 {
		t.Fatalf("expected 1 stored round, got %d", len(roundRepo.rounds))
	}
	stored := roundRepo.rounds[0]
	if stored.HostID != "balmung:host" {
		t.Fatalf("unexpected host id %q", stored.HostID)
	}
	if stored.Collected == nil || *stored.Collected != 7000 {
		t.Fatalf("unexpected collected %v", stored.Collected)
	}
	if stored.PaidOut == nil || *stored.PaidOut != 10000 {
		t.Fatalf("unexpected paid out %v", stored.PaidOut)
	}
	if stored.Profit == nil || *stored.Profit != -3000 {
		t.Fatalf("unexpected profit %v", stored.Profit)
	}

	if len(playerRepo.upserts) != 1 || len(playerRepo.upserts[0]) != 3 {
		t.Fatalf("expected 3 identity upserts, got %+v", playerRepo.upserts)
	}

	if len(statsRepo.playerDeltas) != 2 {
		t.Fatalf("expected 2 player deltas, got %d", len(statsRepo.playerDeltas))
	}
	alice := statsRepo.playerDeltas[0]
	if alice.PlayerID != "balmung:alice" || alice.Games != 1 || alice.Wins != 1 || alice.Net != 5000 {
		t.Fatalf("unexpected alice delta: %+v", alice)
	}
	bob := statsRepo.playerDeltas[1]
	if bob.PlayerID != "crystal:bob" || bob.Losses != 1 || bob.DoubleDowns != 1 || bob.Net != -2000 {
		t.Fatalf("unexpected bob delta: %+v", bob)
	}

	if len(statsRepo.hostDeltas) != 1 {
		t.Fatalf("expected 1 host delta, got %d", len(statsRepo.hostDeltas))
	}
	host := statsRepo.hostDeltas[0]
	if host.HostID != "balmung:host" || host.GamesHosted != 1 {
		t.Fatalf("unexpected host delta: %+v", host)
	}
	if host.PlayerWins != 1 || host.PlayerLosses != 1 || host.BetTotal != 7000 || host.PayoutTotal != 10000 || host.Net != 3000 {
		t.Fatalf("unexpected host totals: %+v", host)
	}
	if host.OwnedBy != "uploader-1" {
		t.Fatalf("unexpected host owner %q", host.OwnedBy)
	}

	if len(statsRepo.comboDeltas) != 2 {
		t.Fatalf("expected 2 combo deltas, got %d", len(statsRepo.comboDeltas))
	}
	if statsRepo.comboDeltas[0].ComboKey != "10-2" || statsRepo.comboDeltas[1].ComboKey != "5-5" {
		t.Fatalf("unexpected combo keys: %+v", statsRepo.comboDeltas)
	}
}

func TestIngestRoundDuplicateIsSkipped(t *testing.T) {
	t.Parallel()

	roundRepo := &stubRoundRepo{duplicate: map[string]struct{}{"01/02/2026 9.15.30": {}}}
	playerRepo := &stubPlayerRepo{}
	statsRepo := &stubStatsRepo{}
	svc := newTestIngestService(roundRepo, playerRepo, statsRepo)

	result, err := svc.IngestRound(context.Background(), IngestRoundInput{
		UploaderID:     "uploader-1",
		Payload:        testRoundPayload,
		SourceDateTime: "01/02/2026 9.15.30",
	})
	if err != nil {
		t.Fatalf("IngestRound error: %v", err)
	}
	if !result.Skipped || result.GameID != "" {
		t.Fatalf("expected skipped result, got %+v", result)
	}
	if len(statsRepo.playerDeltas) != 0 || playerRepo.upsertCalls != 0 {
		t.Fatal("duplicate round must not touch aggregates")
	}
}

func TestIngestRoundRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	svc := newTestIngestService(&stubRoundRepo{}, &stubPlayerRepo{}, &stubStatsRepo{})

	cases := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"no dealer", `[{"PlayerName":"Alice@Balmung","Cards":[10,2],"Result":1}]`},
		{"no players", `[{"Cards":[10,2]}]`},
		{"malformed", "not-base64!!"},
	}

	for _, tc := range cases {
		_, err := svc.IngestRound(context.Background(), IngestRoundInput{
			UploaderID: "uploader-1",
			Payload:    tc.payload,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestIngestRoundRequiresUploader(t *testing.T) {
	t.Parallel()

	svc := newTestIngestService(&stubRoundRepo{}, &stubPlayerRepo{}, &stubStatsRepo{})

	_, err := svc.IngestRound(context.Background(), IngestRoundInput{Payload: testRoundPayload})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestImportReport(t *testing.T) {
	t.Parallel()

	csvText := "sep=;\n" +
		"Date and Time;Details;Collected;Paid Out;Profit\n" +
		"01/02/2026 9.15.30;" + testRoundPayload + ";12000;10000;2000\n" +
		"01/02/2026 10.00.00;" + testRoundPayload + ";;;\n" +
		"01/02/2026 9.15.30;" + testRoundPayload + ";;;\n" +
		"bad-date;" + testRoundPayload + ";;;\n" +
		"01/02/2026 11.00.00;" + `[{"PlayerName":"Alice@Balmung","Cards":[1],"Result":1}]` + ";;;\n"

	roundRepo := &stubRoundRepo{}
	playerRepo := &stubPlayerRepo{}
	statsRepo := &stubStatsRepo{}
	svc := newTestIngestService(roundRepo, playerRepo, statsRepo)

	result, err := svc.ImportReport(context.Background(), "uploader-1", csvText)
	if err != nil {
		t.Fatalf("ImportReport error: %v", err)
	}

	if result.Inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", result.Inserted)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped duplicate, got %d", result.Skipped)
	}
	if result.Invalid != 2 {
		t.Fatalf("expected 2 invalid rows, got %d", result.Invalid)
	}

	first := roundRepo.rounds[0]
	if first.Collected == nil || *first.Collected != 12000 {
		t.Fatalf("report totals must win over computed ones: %v", first.Collected)
	}
	second := roundRepo.rounds[1]
	if second.Collected == nil || *second.Collected != 7000 {
		t.Fatalf("missing totals must be computed from seats: %v", second.Collected)
	}

	// Only the two inserted rounds feed the aggregates.
	var aliceGames int64
	for _, d := range statsRepo.playerDeltas {
		if d.PlayerID == "balmung:alice" {
			aliceGames += d.Games
		}
	}
	if aliceGames != 2 {
		t.Fatalf("expected 2 aggregated games for alice, got %d", aliceGames)
	}
}

func TestImportReportFlushesInChunks(t *testing.T) {
	t.Parallel()

	var lines []string
	lines = append(lines, "sep=;", "Date and Time;Details")
	for i := 0; i < 3; i++ {
		payload := fmt.Sprintf(
			`[{"PlayerName":"Host@Balmung","Dealer":true},{"PlayerName":"Player %d@Balmung","Cards":[%d],"Bet":100,"Payout":0,"Result":3}]`,
			i, i+1,
		)
		lines = append(lines, fmt.Sprintf("0%d/02/2026 9.00.00;%s", i+1, payload))
	}
	csvText := ""
	for _, line := range lines {
		csvText += line + "\n"
	}

	roundRepo := &stubRoundRepo{}
	playerRepo := &stubPlayerRepo{}
	statsRepo := &stubStatsRepo{}
	svc := NewIngestService(roundRepo, playerRepo, statsRepo, nil, 2, 2)

	result, err := svc.ImportReport(context.Background(), "uploader-1", csvText)
	if err != nil {
		t.Fatalf("ImportReport error: %v", err)
	}
	if result.Inserted != 3 || result.Skipped != 0 || result.Invalid != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// 4 identities (3 players + host) in chunks of 2.
	if playerRepo.upsertCalls != 2 {
		t.Fatalf("expected 2 identity flush calls, got %d", playerRepo.upsertCalls)
	}
	// 3 player deltas in chunks of 2.
	if statsRepo.playerCalls != 2 {
		t.Fatalf("expected 2 player stats flush calls, got %d", statsRepo.playerCalls)
	}
	if statsRepo.hostCalls != 1 {
		t.Fatalf("expected 1 host stats flush call, got %d", statsRepo.hostCalls)
	}
}

func TestImportReportRequiresBody(t *testing.T) {
	t.Parallel()

	svc := newTestIngestService(&stubRoundRepo{}, &stubPlayerRepo{}, &stubStatsRepo{})

	if _, err := svc.ImportReport(context.Background(), "uploader-1", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ImportReport(context.Background(), "", "sep=;"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
