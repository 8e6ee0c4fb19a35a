package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hugh/member-sync/internal/member"
)

// AutomationWriter hands the whole field set to an external automation
// webhook and trusts its verdict.
type AutomationWriter struct {
	url    string
	client *http.Client
}

// NewAutomationWriter posts to url. A nil client uses http.DefaultClient.
func NewAutomationWriter(url string, client *http.Client) *AutomationWriter {
	if client == nil {
		client = http.DefaultClient
	}
	return &AutomationWriter{url: url, client: client}
}

type automationRequest struct {
	Action   string        `json:"action"`
	Email    string        `json:"email"`
	RowIndex int           `json:"rowIndex,omitempty"`
	Data     member.Fields `json:"data"`
}

type automationResponse struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (w *AutomationWriter) Write(ctx context.Context, who member.Identity, fields member.Fields) error {
	if w.url == "" {
		return errors.New("automation webhook URL not configured")
	}

	body, err := json.Marshal(automationRequest{
		Action:   "update",
		Email:    who.Email,
		RowIndex: who.RowIndex,
		Data:     fields,
	})
	if err != nil {
		return fmt.Errorf("encoding webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling automation webhook: %w", err)
	}
	defer resp.Body.Close()

	var out automationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("malformed webhook response (status %d): %w", resp.StatusCode, err)
	}
	if out.Success == nil {
		return fmt.Errorf("malformed webhook response (status %d): missing success", resp.StatusCode)
	}
	if !*out.Success {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("automation webhook rejected update: %s", msg)
	}
	return nil
}

// CellWriter updates the member's row cell by cell through the Sheets API.
// Before writing it re-reads the row and checks that it still belongs to
// the caller's email.
//
// In sequential mode a failure part way through leaves the earlier cells
// written; nothing is rolled back. Batch mode sends every cell in one request.
type CellWriter struct {
	client *Client
	batch  bool
}

func NewCellWriter(client *Client, batch bool) *CellWriter {
	return &CellWriter{client: client, batch: batch}
}

func (w *CellWriter) Write(ctx context.Context, who member.Identity, fields member.Fields) error {
	if who.RowIndex < 1 {
		return ErrNoRow
	}
	if who.RowIndex == 1 {
		return ErrUnauthorized
	}

	row, err := w.client.ReadRow(ctx, who.RowIndex)
	if err != nil {
		return err
	}
	if len(row) == 0 || !member.SameEmail(row[0], who.Email) {
		return ErrUnauthorized
	}

	cols := EditableColumns()
	refs := make([]string, 0, len(cols))
	values := make(map[string]string, len(cols))
	for _, col := range cols {
		ref := cellRef(col.Letter, who.RowIndex)
		refs = append(refs, ref)
		values[ref] = fields.Get(col.Field)
	}

	if w.batch {
		return w.client.BatchUpdateCells(ctx, values, refs)
	}

	for i, ref := range refs {
		if err := w.client.UpdateCell(ctx, ref, values[ref]); err != nil {
			return fmt.Errorf("writing %s (%d of %d cells already written): %w", ref, i, len(refs), err)
		}
	}
	return nil
}

var (
	_ member.SheetWriter = (*AutomationWriter)(nil)
	_ member.SheetWriter = (*CellWriter)(nil)
)
