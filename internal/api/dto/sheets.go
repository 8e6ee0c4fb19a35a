package dto

import "github.com/hugh/member-sync/internal/member"

// Spreadsheet function actions
const (
	ActionRead   = "read"
	ActionUpdate = "update"
)

// SheetsRequest is the body of the spreadsheet function endpoint.
type SheetsRequest struct {
	Action   string        `json:"action"`
	Email    string        `json:"email"`
	RowIndex int           `json:"rowIndex"`
	Data     member.Fields `json:"data"`
}

type SheetsReadResponse struct {
	Found    bool           `json:"found"`
	UserData *member.Record `json:"userData,omitempty"`
}

type SheetsUpdateResponse struct {
	Success bool `json:"success"`
}
