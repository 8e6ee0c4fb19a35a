package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const valueInputRaw = "RAW"

// Client talks to the authenticated Sheets API for a single sheet tab.
type Client struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetName     string
}

// NewClient builds a Sheets API client. Callers supply authentication via
// opts, normally option.WithTokenSource.
func NewClient(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*Client, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Client{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Rows reads columns A..F of the sheet. Rows come back as the API returns
// them, so trailing empty cells may be missing.
func (c *Client) Rows(ctx context.Context) ([][]string, error) {
	return c.read(ctx, a1(c.sheetName, allRowsRange()))
}

// ReadRow reads a single 1-based row.
func (c *Client) ReadRow(ctx context.Context, row int) ([]string, error) {
	rows, err := c.read(ctx, a1(c.sheetName, rowRange(row)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateCell writes one value with RAW input.
func (c *Client) UpdateCell(ctx context.Context, ref, value string) error {
	_, err := c.values.Update(c.spreadsheetID, a1(c.sheetName, ref), &gsheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// BatchUpdateCells writes all values in one request, so they land together
// or not at all.
func (c *Client) BatchUpdateCells(ctx context.Context, values map[string]string, order []string) error {
	data := make([]*gsheets.ValueRange, 0, len(order))
	for _, ref := range order {
		data = append(data, &gsheets.ValueRange{
			Range:  a1(c.sheetName, ref),
			Values: [][]interface{}{{values[ref]}},
		})
	}

	_, err := c.values.BatchUpdate(c.spreadsheetID, &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputRaw,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return wrapAPIError(err)
	}
	return nil
}

func (c *Client) read(ctx context.Context, rng string) ([][]string, error) {
	resp, err := c.values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func wrapAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &FetchError{StatusCode: gerr.Code, Err: err}
	}
	return &FetchError{Err: err}
}
