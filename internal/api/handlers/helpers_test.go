package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hugh/member-sync/internal/api/handlers"
	"github.com/hugh/member-sync/internal/sheets"
)

var testCookies = handlers.SessionCookies{MaxAge: 24 * time.Hour}

// csvSheet serves rows as the public CSV export and returns a reader over it.
func csvSheet(t *testing.T, rows ...[]string) *sheets.Reader {
	t.Helper()

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ","))
		sb.WriteString("\n")
	}
	body := sb.String()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return sheets.NewReader(sheets.NewExportSource(srv.URL, srv.Client()))
}

// failingSheet is a reader whose export always answers status.
func failingSheet(t *testing.T, status int) *sheets.Reader {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return sheets.NewReader(sheets.NewExportSource(srv.URL, srv.Client()))
}

var sheetHeader = []string{"email", "tel", "topic", "keyword", "title", "igLink"}
