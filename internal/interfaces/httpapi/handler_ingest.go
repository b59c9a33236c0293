package httpapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/velvetden/cardledger/internal/usecase"
)

// maxReportBodySize caps uploaded CSV reports at 16 MiB.
const maxReportBodySize = 16 << 20

type ingestRoundRequest struct {
	Payload        string `json:"payload" validate:"required"`
	SourceDateTime string `json:"sourceDateTime"`
	CreatedAt      string `json:"createdAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type importReportRequest struct {
	CSV string `json:"csv" validate:"required"`
}

type ingestRoundDTO struct {
	GameID  string `json:"gameId,omitempty"`
	Skipped bool   `json:"skipped"`
}

type importReportDTO struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

func (h *Handler) IngestRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestRound")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req ingestRoundRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.IngestRoundInput{
		UploaderID:     principal.UserID,
		Payload:        req.Payload,
		SourceDateTime: req.SourceDateTime,
	}
	if req.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid createdAt: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.CreatedAt = createdAt.UTC()
	}

	result, err := h.ingestService.IngestRound(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest round failed", "uploader_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if result.Skipped {
		status = http.StatusOK
	}

	writeSuccess(ctx, w, status, ingestRoundDTO{
		GameID:  result.GameID,
		Skipped: result.Skipped,
	})
}

func (h *Handler) ImportReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportReport")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	csvText, err := h.readReportBody(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingestService.ImportReport(ctx, principal.UserID, csvText)
	if err != nil {
		h.logger.WarnContext(ctx, "import report failed", "uploader_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := importReportDTO{
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Invalid:  result.Invalid,
	}
	if result.Inserted == 0 && result.Skipped == 0 {
		// Nothing in the report produced a round. Surface the counters so
		// the caller can see how many lines were rejected.
		writeJSON(ctx, w, http.StatusBadRequest, googleResponseEnvelope{
			APIVersion: googleAPIVersion,
			Data:       dto,
			Error: &googleErrorBody{
				Code:    http.StatusBadRequest,
				Message: "report contained no usable rows",
				Status:  "INVALID_ARGUMENT",
				Errors: []googleErrorItem{
					{
						Domain:  errorDomain,
						Reason:  "invalidInput",
						Message: "report contained no usable rows",
					},
				},
			},
		})
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

// readReportBody accepts either a raw CSV body or a JSON wrapper {"csv": "..."}
// selected by the request content type.
func (h *Handler) readReportBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxReportBodySize+1))
	if err != nil {
		return "", fmt.Errorf("%w: read report body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) > maxReportBodySize {
		return "", fmt.Errorf("%w: report body exceeds %d bytes", usecase.ErrInvalidInput, maxReportBodySize)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.EqualFold(mediaType, "application/json") {
		return string(body), nil
	}

	var req importReportRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if strings.TrimSpace(req.CSV) == "" {
		return "", fmt.Errorf("%w: csv field is required", usecase.ErrInvalidInput)
	}
	return req.CSV, nil
}
