package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/member-sync/internal/api/dto"
	"github.com/hugh/member-sync/internal/api/middleware"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/sheets"
)

// SheetsHandler serves the spreadsheet function endpoint: a thin read/update
// facade over the configured Reader and Writer.
type SheetsHandler struct {
	reader member.SheetReader
	writer member.SheetWriter
	logger *slog.Logger
}

// NewSheetsHandler builds the handler. writer may be nil when spreadsheet
// writes are disabled.
func NewSheetsHandler(reader member.SheetReader, writer member.SheetWriter, logger *slog.Logger) *SheetsHandler {
	return &SheetsHandler{reader: reader, writer: writer, logger: logger}
}

// Preflight answers CORS preflight requests with an empty 200.
func (h *SheetsHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *SheetsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req dto.SheetsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	h.logger.Info("processing spreadsheet action", "action", req.Action)

	if req.Action != dto.ActionRead && req.Action != dto.ActionUpdate {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid action"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email is required"})
		return
	}

	// Reads may be anonymous; updates need a session. A signed-in caller may
	// only address their own row.
	sessionEmail := middleware.GetUserEmail(r.Context())
	if sessionEmail == "" && req.Action == dto.ActionUpdate {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return
	}
	if sessionEmail != "" && !member.SameEmail(sessionEmail, req.Email) {
		h.writeError(w, sheets.ErrUnauthorized)
		return
	}

	switch req.Action {
	case dto.ActionRead:
		h.read(w, r, req)
	case dto.ActionUpdate:
		h.update(w, r, req)
	}
}

func (h *SheetsHandler) read(w http.ResponseWriter, r *http.Request, req dto.SheetsRequest) {
	rec, err := h.reader.Lookup(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusOK, dto.SheetsReadResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, dto.SheetsReadResponse{Found: true, UserData: rec})
}

func (h *SheetsHandler) update(w http.ResponseWriter, r *http.Request, req dto.SheetsRequest) {
	if h.writer == nil {
		h.writeError(w, member.ErrWritesDisabled)
		return
	}

	if errs := dto.ValidateFields(req.Data); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	who := member.Identity{Email: req.Email, RowIndex: req.RowIndex}
	if err := h.writer.Write(r.Context(), who, req.Data); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SheetsUpdateResponse{Success: true})
}

func (h *SheetsHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sheets.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, sheets.ErrNoRow):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if errors.Is(err, sheets.ErrUnauthorized) {
		msg = sheets.ErrUnauthorized.Error()
	}
	if msg == "" {
		msg = "Unknown error"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("spreadsheet action failed", "error", err)
	} else {
		h.logger.Warn("spreadsheet action rejected", "status", status, "error", err)
	}
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}
