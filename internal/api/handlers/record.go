package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/member-sync/internal/api/dto"
	"github.com/hugh/member-sync/internal/api/middleware"
	"github.com/hugh/member-sync/internal/member"
)

// RecordService is the reconciler as seen by the HTTP layer.
type RecordService interface {
	GetRecord(ctx context.Context, userID uuid.UUID, email string) (member.Record, member.Source, error)
	SaveRecord(ctx context.Context, userID uuid.UUID, email string, fields member.Fields) (member.SaveResult, error)
}

type RecordHandler struct {
	records RecordService
	logger  *slog.Logger
}

func NewRecordHandler(records RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	email := middleware.GetUserEmail(r.Context())

	rec, source, err := h.records.GetRecord(r.Context(), userID, email)
	if err != nil {
		h.logger.Error("failed to load record", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load record"})
		return
	}

	writeJSON(w, http.StatusOK, dto.RecordResponse{Record: rec, Source: source})
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateRecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	userID := middleware.GetUserID(r.Context())
	email := middleware.GetUserEmail(r.Context())

	result, err := h.records.SaveRecord(r.Context(), userID, email, req.Fields())
	if err != nil {
		h.logger.Error("failed to save record", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save record"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SaveRecordResponse{
		Success: true,
		Synced:  result.Synced(),
		Warning: result.Detail,
	})
}
