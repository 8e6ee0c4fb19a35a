package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/member-sync/internal/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = member.Fields{Tel: "999", Topic: "go", Keyword: "k", Title: "T", SocialLink: "http://ig/me"}

func memberSheet() [][]string {
	return [][]string{
		{"Email", "Tel", "Topic", "Keyword", "Title", "IG"},
		{"other@x.com", "000"},
		{"a@b.com", "555"},
	}
}

func TestCellWriter_Sequential(t *testing.T) {
	api := newFakeSheetsAPI(t, memberSheet())
	w := NewCellWriter(clientFor(t, api), false)

	err := w.Write(context.Background(), member.Identity{Email: "A@b.com", RowIndex: 3}, testFields)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sheet1!B3", "Sheet1!C3", "Sheet1!D3", "Sheet1!E3", "Sheet1!F3"}, api.Puts())
	assert.Empty(t, api.Batches())
}

func TestCellWriter_Batch(t *testing.T) {
	api := newFakeSheetsAPI(t, memberSheet())
	w := NewCellWriter(clientFor(t, api), true)

	err := w.Write(context.Background(), member.Identity{Email: "a@b.com", RowIndex: 3}, testFields)
	require.NoError(t, err)

	assert.Empty(t, api.Puts())
	require.Len(t, api.Batches(), 1)
	assert.Equal(t, []string{"Sheet1!B3", "Sheet1!C3", "Sheet1!D3", "Sheet1!E3", "Sheet1!F3"}, api.Batches()[0])
}

func TestCellWriter_EmailMismatch(t *testing.T) {
	api := newFakeSheetsAPI(t, memberSheet())
	w := NewCellWriter(clientFor(t, api), false)

	err := w.Write(context.Background(), member.Identity{Email: "a@b.com", RowIndex: 2}, member.Fields{Tel: "999"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, api.WriteCount())
}

func TestCellWriter_RowOutOfRange(t *testing.T) {
	api := newFakeSheetsAPI(t, memberSheet())
	w := NewCellWriter(clientFor(t, api), false)

	err := w.Write(context.Background(), member.Identity{Email: "a@b.com", RowIndex: 40}, testFields)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, api.WriteCount())
}

func TestCellWriter_HeaderAndMissingRow(t *testing.T) {
	api := newFakeSheetsAPI(t, memberSheet())
	w := NewCellWriter(clientFor(t, api), false)

	assert.ErrorIs(t, w.Write(context.Background(), member.Identity{Email: "Email", RowIndex: 1}, testFields), ErrUnauthorized)
	assert.ErrorIs(t, w.Write(context.Background(), member.Identity{Email: "a@b.com"}, testFields), ErrNoRow)
	assert.Equal(t, 0, api.WriteCount())
}

func TestCellWriter_PartialFailure(t *testing.T) {
	api := newFakeSheetsAPI(t, memberSheet())
	api.FailPut(3)
	w := NewCellWriter(clientFor(t, api), false)

	err := w.Write(context.Background(), member.Identity{Email: "a@b.com", RowIndex: 3}, testFields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 5 cells already written")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Len(t, api.Puts(), 3)
}

func webhook(t *testing.T, status int, body string, seen *automationRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAutomationWriter(t *testing.T) {
	who := member.Identity{Email: "a@b.com", RowIndex: 2}

	t.Run("success", func(t *testing.T) {
		var seen automationRequest
		srv := webhook(t, http.StatusOK, `{"success":true}`, &seen)

		err := NewAutomationWriter(srv.URL, srv.Client()).Write(context.Background(), who, testFields)
		require.NoError(t, err)
		assert.Equal(t, "update", seen.Action)
		assert.Equal(t, "a@b.com", seen.Email)
		assert.Equal(t, 2, seen.RowIndex)
		assert.Equal(t, testFields, seen.Data)
	})

	t.Run("rejected", func(t *testing.T) {
		srv := webhook(t, http.StatusOK, `{"success":false,"error":"sheet locked"}`, nil)

		err := NewAutomationWriter(srv.URL, srv.Client()).Write(context.Background(), who, testFields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sheet locked")
	})

	t.Run("malformed response", func(t *testing.T) {
		srv := webhook(t, http.StatusBadGateway, `<html>oops</html>`, nil)

		err := NewAutomationWriter(srv.URL, srv.Client()).Write(context.Background(), who, testFields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed webhook response")
	})

	t.Run("missing success flag", func(t *testing.T) {
		srv := webhook(t, http.StatusOK, `{"ok":true}`, nil)

		err := NewAutomationWriter(srv.URL, srv.Client()).Write(context.Background(), who, testFields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing success")
	})

	t.Run("not configured", func(t *testing.T) {
		err := NewAutomationWriter("", nil).Write(context.Background(), who, testFields)
		require.Error(t, err)
	})
}
