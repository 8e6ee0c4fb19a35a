package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/member-sync/internal/member"
)

// Resyncer pushes a user's stored record into the spreadsheet.
type Resyncer interface {
	Resync(ctx context.Context, userID uuid.UUID) error
}

type Handler struct {
	resyncer Resyncer
	logger   *slog.Logger
}

func NewHandler(resyncer Resyncer, logger *slog.Logger) *Handler {
	return &Handler{
		resyncer: resyncer,
		logger:   logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSheetMirror, h.HandleSheetMirror)
}

func (h *Handler) HandleSheetMirror(ctx context.Context, t *asynq.Task) error {
	var payload SheetMirrorPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("missing user_id: %w", asynq.SkipRetry)
	}

	h.logger.Info("mirroring member record", "user_id", payload.UserID)

	if err := h.resyncer.Resync(ctx, payload.UserID); err != nil {
		if member.IsPermanent(err) {
			h.logger.Warn("spreadsheet mirror abandoned", "user_id", payload.UserID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		h.logger.Error("spreadsheet mirror failed", "user_id", payload.UserID, "error", err)
		return err
	}

	h.logger.Info("member record mirrored", "user_id", payload.UserID)
	return nil
}
