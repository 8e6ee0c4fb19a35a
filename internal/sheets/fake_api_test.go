package sheets

import (
	"context"
	"testing"

	"github.com/hugh/member-sync/internal/sheets/sheetstest"
	"github.com/stretchr/testify/require"
)

func newFakeSheetsAPI(t *testing.T, rows [][]string) *sheetstest.Server {
	t.Helper()
	return sheetstest.NewServer(t, rows)
}

func clientFor(t *testing.T, api *sheetstest.Server) *Client {
	t.Helper()

	c, err := NewClient(context.Background(), sheetstest.SpreadsheetID, "Sheet1", api.Options()...)
	require.NoError(t, err)
	return c
}
