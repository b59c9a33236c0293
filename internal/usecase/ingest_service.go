package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/report"
	"github.com/velvetden/cardledger/internal/domain/round"
	"github.com/velvetden/cardledger/internal/domain/stats"
	"github.com/velvetden/cardledger/internal/platform/id"
	"github.com/velvetden/cardledger/internal/platform/logging"
)

const (
	defaultStatsChunkSize   = 1000
	defaultDecodeWorkers    = 8
	maxDecodeWorkers        = 64
	minReportDecodePerBatch = 1
)

// IngestService accepts single rounds and whole report exports, stores the
// rounds with source date-time dedupe and folds every newly inserted round
// into the additive aggregates.
type IngestService struct {
	roundRepo      round.Repository
	playerRepo     player.Repository
	statsRepo      stats.Repository
	logger         *logging.Logger
	importIDs      id.Generator
	decodeWorkers  int
	statsChunkSize int
}

func NewIngestService(
	roundRepo round.Repository,
	playerRepo player.Repository,
	statsRepo stats.Repository,
	logger *logging.Logger,
	decodeWorkers int,
	statsChunkSize int,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{
		roundRepo:      roundRepo,
		playerRepo:     playerRepo,
		statsRepo:      statsRepo,
		logger:         logger,
		importIDs:      id.NewRandomGenerator(),
		decodeWorkers:  normalizeDecodeWorkers(decodeWorkers),
		statsChunkSize: normalizeStatsChunkSize(statsChunkSize),
	}
}

type IngestRoundInput struct {
	UploaderID     string
	Payload        string
	SourceDateTime string
	CreatedAt      time.Time
}

type IngestRoundResult struct {
	GameID  string
	Skipped bool
}

type ImportReportResult struct {
	Inserted int
	Skipped  int
	Invalid  int
}

// IngestRound stores one round from its raw payload. A round whose source
// date-time was already ingested is reported as skipped, not as an error.
func (s *IngestService) IngestRound(ctx context.Context, input IngestRoundInput) (IngestRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.IngestRound")
	defer span.End()

	uploaderID := strings.TrimSpace(input.UploaderID)
	if uploaderID == "" {
		return IngestRoundResult{}, fmt.Errorf("%w: uploader id is required", ErrInvalidInput)
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	r, err := buildRound(uploaderID, input.Payload, strings.TrimSpace(input.SourceDateTime), createdAt)
	if err != nil {
		return IngestRoundResult{}, err
	}

	id, err := s.roundRepo.Insert(ctx, r)
	if errors.Is(err, round.ErrDuplicate) {
		s.logger.InfoContext(ctx, "round skipped as duplicate",
			"uploader_id", uploaderID,
			"source_date_time", r.SourceDateTime,
		)
		return IngestRoundResult{Skipped: true}, nil
	}
	if err != nil {
		return IngestRoundResult{}, fmt.Errorf("insert round: %w", err)
	}
	r.ID = id

	acc := newStatsAccumulator(uploaderID)
	acc.addRound(r)
	if err := s.flushAggregates(ctx, acc); err != nil {
		return IngestRoundResult{}, err
	}

	s.logger.InfoContext(ctx, "round ingested",
		"uploader_id", uploaderID,
		"game_id", id,
		"seats", len(r.Players),
	)
	return IngestRoundResult{GameID: id}, nil
}

// ImportReport ingests a whole CSV report export. Row payloads are decoded
// on a worker pool; rows that cannot produce a playable round count as
// invalid, duplicate rounds count as skipped, and only newly inserted
// rounds feed the aggregates.
func (s *IngestService) ImportReport(ctx context.Context, uploaderID, csvText string) (ImportReportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.ImportReport")
	defer span.End()

	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return ImportReportResult{}, fmt.Errorf("%w: uploader id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(csvText) == "" {
		return ImportReportResult{}, fmt.Errorf("%w: report body is required", ErrInvalidInput)
	}

	importID, err := s.importIDs.NewID()
	if err != nil {
		return ImportReportResult{}, fmt.Errorf("new import id: %w", err)
	}

	rows, invalid := report.Parse(csvText)
	result := ImportReportResult{Invalid: invalid}
	if len(rows) == 0 {
		return result, nil
	}

	rounds, decodeInvalid, err := s.decodeRows(uploaderID, rows)
	if err != nil {
		return ImportReportResult{}, err
	}
	result.Invalid += decodeInvalid
	if len(rounds) == 0 {
		return result, nil
	}

	insertedFlags, err := s.roundRepo.InsertMany(ctx, rounds)
	if err != nil {
		return ImportReportResult{}, fmt.Errorf("insert rounds: %w", err)
	}

	acc := newStatsAccumulator(uploaderID)
	for i, inserted := range insertedFlags {
		if !inserted {
			result.Skipped++
			continue
		}
		result.Inserted++
		acc.addRound(rounds[i])
	}

	if result.Inserted > 0 {
		if err := s.flushAggregates(ctx, acc); err != nil {
			return ImportReportResult{}, err
		}
	}

	s.logger.InfoContext(ctx, "report imported",
		"import_id", importID,
		"uploader_id", uploaderID,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"invalid", result.Invalid,
	)
	return result, nil
}

// decodeRows turns report rows into rounds on a bounded worker pool. The
// returned invalid count covers rows whose payload decoded but held no
// playable round.
func (s *IngestService) decodeRows(uploaderID string, rows []report.Row) ([]round.Round, int, error) {
	workerCount := s.decodeWorkers
	if workerCount > len(rows) {
		workerCount = len(rows)
	}
	if workerCount < minReportDecodePerBatch {
		workerCount = minReportDecodePerBatch
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, 0, fmt.Errorf("create decode pool: %w", err)
	}
	defer pool.Release()

	decoded := make([]*round.Round, len(rows))

	var workers sync.WaitGroup
	for i := range rows {
		i := i
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := rows[i]
			r, buildErr := buildRound(uploaderID, row.DetailsBase64, row.SourceDateTime, row.CreatedAt)
			if buildErr != nil {
				return
			}
			r.Collected = row.Collected
			r.PaidOut = row.PaidOut
			r.Profit = row.Profit
			fillComputedTotals(&r)
			decoded[i] = &r
		}); err != nil {
			workers.Done()
			return nil, 0, fmt.Errorf("submit decode task: %w", err)
		}
	}
	workers.Wait()

	rounds := make([]round.Round, 0, len(rows))
	invalid := 0
	for _, r := range decoded {
		if r == nil {
			invalid++
			continue
		}
		rounds = append(rounds, *r)
	}
	return rounds, invalid, nil
}

// buildRound decodes a payload into a storable round. Payloads with no
// seats or no dealer are not playable rounds.
func buildRound(uploaderID, payload, sourceDateTime string, createdAt time.Time) (round.Round, error) {
	raw, payloadBase64, err := round.DecodePayload(payload)
	if err != nil {
		return round.Round{}, fmt.Errorf("%w: decode payload: %v", ErrInvalidInput, err)
	}

	entries := round.ParseEntries(raw)
	if len(entries) == 0 {
		return round.Round{}, fmt.Errorf("%w: no players found in payload", ErrInvalidInput)
	}

	r := round.Round{
		CreatedAt:      createdAt,
		SourceDateTime: sourceDateTime,
		UploaderID:     uploaderID,
		GameType:       round.GameTypeCards,
		Players:        entries,
		PayloadBase64:  payloadBase64,
	}

	dealer, ok := r.Dealer()
	if !ok {
		return round.Round{}, fmt.Errorf("%w: no dealer found in payload", ErrInvalidInput)
	}
	r.HostID = dealer.PlayerID

	fillComputedTotals(&r)
	return r, nil
}

// fillComputedTotals derives missing session totals from the seats:
// collected is the sum of non-dealer bets, paid out the sum of payouts and
// profit their difference. Totals present on the report row win.
func fillComputedTotals(r *round.Round) {
	var collected, paidOut int64
	for _, e := range r.NonDealers() {
		collected += e.Bet
		paidOut += e.Payout
	}

	if r.Collected == nil {
		v := collected
		r.Collected = &v
	}
	if r.PaidOut == nil {
		v := paidOut
		r.PaidOut = &v
	}
	if r.Profit == nil {
		v := *r.Collected - *r.PaidOut
		r.Profit = &v
	}
}

// flushAggregates writes identity upserts first, then the stats deltas, in
// bounded chunks.
func (s *IngestService) flushAggregates(ctx context.Context, acc *statsAccumulator) error {
	identities := acc.identityRecords()
	for start := 0; start < len(identities); start += s.statsChunkSize {
		end := min(start+s.statsChunkSize, len(identities))
		if err := s.playerRepo.UpsertMany(ctx, identities[start:end]); err != nil {
			return fmt.Errorf("upsert players: %w", err)
		}
	}

	playerDeltas := acc.playerDeltas()
	for start := 0; start < len(playerDeltas); start += s.statsChunkSize {
		end := min(start+s.statsChunkSize, len(playerDeltas))
		if err := s.statsRepo.ApplyPlayerDeltas(ctx, playerDeltas[start:end]); err != nil {
			return fmt.Errorf("apply player stats: %w", err)
		}
	}

	hostDeltas := acc.hostDeltas()
	for start := 0; start < len(hostDeltas); start += s.statsChunkSize {
		end := min(start+s.statsChunkSize, len(hostDeltas))
		if err := s.statsRepo.ApplyHostDeltas(ctx, hostDeltas[start:end]); err != nil {
			return fmt.Errorf("apply host stats: %w", err)
		}
	}

	comboDeltas := acc.comboDeltas()
	for start := 0; start < len(comboDeltas); start += s.statsChunkSize {
		end := min(start+s.statsChunkSize, len(comboDeltas))
		if err := s.statsRepo.ApplyComboDeltas(ctx, comboDeltas[start:end]); err != nil {
			return fmt.Errorf("apply combo stats: %w", err)
		}
	}

	return nil
}

func normalizeDecodeWorkers(n int) int {
	if n <= 0 {
		return defaultDecodeWorkers
	}
	if n > maxDecodeWorkers {
		return maxDecodeWorkers
	}
	return n
}

func normalizeStatsChunkSize(n int) int {
	if n <= 0 {
		return defaultStatsChunkSize
	}
	return n
}
