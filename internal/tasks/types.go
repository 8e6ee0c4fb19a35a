package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeSheetMirror = "sheet:mirror"
)

// SheetMirrorPayload names the user whose database record should be pushed
// into the spreadsheet.
type SheetMirrorPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

func NewSheetMirrorTask(payload SheetMirrorPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSheetMirror, data), nil
}
