package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hugh/member-sync/internal/member"
)

// RowSource fetches the whole sheet as rows of cells, header first.
type RowSource interface {
	Rows(ctx context.Context) ([][]string, error)
}

// Reader looks up member rows in a RowSource.
type Reader struct {
	src RowSource
}

func NewReader(src RowSource) *Reader {
	return &Reader{src: src}
}

// Lookup returns the member row for email, or nil when there is none.
func (r *Reader) Lookup(ctx context.Context, email string) (*member.Record, error) {
	rows, err := r.src.Rows(ctx)
	if err != nil {
		return nil, err
	}

	match, ok := FindByEmail(rows, email)
	if !ok {
		return nil, nil
	}

	rec := RecordFromRow(match.Row, match.RowIndex)
	return &rec, nil
}

// maxExportBytes bounds the CSV export body.
const maxExportBytes = 8 << 20

// ErrExportTooLarge is returned when the export exceeds maxExportBytes.
var ErrExportTooLarge = errors.New("spreadsheet export too large")

// ExportSource reads the sheet through its public CSV export, without
// credentials.
type ExportSource struct {
	url      string
	client   *http.Client
	maxBytes int64
}

// NewExportSource reads from url. A nil client uses http.DefaultClient.
func NewExportSource(url string, client *http.Client) *ExportSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &ExportSource{url: url, client: client, maxBytes: maxExportBytes}
}

func (s *ExportSource) Rows(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building export request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if int64(len(body)) > s.maxBytes {
		return nil, &FetchError{Err: ErrExportTooLarge}
	}

	return ParseCSV(string(body)), nil
}

var (
	_ member.SheetReader = (*Reader)(nil)
	_ RowSource          = (*ExportSource)(nil)
	_ RowSource          = (*Client)(nil)
)
