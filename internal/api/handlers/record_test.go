package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/member-sync/internal/api/dto"
	"github.com/hugh/member-sync/internal/api/handlers"
	"github.com/hugh/member-sync/internal/api/middleware"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/sheets"
	"github.com/hugh/member-sync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecordRouter(t *testing.T, tc *testutil.TestSetup, reader member.SheetReader, writer member.SheetWriter) *chi.Mux {
	t.Helper()

	reconciler := member.NewReconciler(member.NewGormStore(tc.DB), reader, writer, testutil.DiscardLogger())
	handler := handlers.NewRecordHandler(reconciler, testutil.DiscardLogger())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService, nil))
		r.Get("/api/v1/record", handler.Get)
		r.Put("/api/v1/record", handler.Update)
	})
	return r
}

// automationHook answers every webhook call with body.
func automationHook(t *testing.T, body string) *sheets.AutomationWriter {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return sheets.NewAutomationWriter(srv.URL, srv.Client())
}

func TestRecordHandler_Get(t *testing.T) {
	t.Run("database wins over spreadsheet", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()
		testutil.CreateTestMember(t, tc.DB, tc.User, "111", "")

		reader := csvSheet(t, sheetHeader, []string{tc.User.Email, "000", "sheet-topic", "", "", ""})
		router := setupRecordRouter(t, tc, reader, nil)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/record", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.RecordResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, member.SourceDatabase, resp.Source)
		assert.Equal(t, "111", resp.Record.Tel)
		assert.Equal(t, "", resp.Record.Topic)
	})

	t.Run("spreadsheet when database is empty", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		reader := csvSheet(t, sheetHeader, []string{tc.User.Email, "000", "sheet-topic", "", "", ""})
		router := setupRecordRouter(t, tc, reader, nil)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/record", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.RecordResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, member.SourceSpreadsheet, resp.Source)
		assert.Equal(t, "000", resp.Record.Tel)
		assert.Equal(t, 2, resp.Record.RowIndex)
	})

	t.Run("skeleton when neither store knows the member", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		router := setupRecordRouter(t, tc, csvSheet(t, sheetHeader), nil)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/record", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.RecordResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, member.SourceEmpty, resp.Source)
		assert.Equal(t, tc.User.Email, resp.Record.Email)
		assert.True(t, resp.Record.Fields.IsEmpty())
	})

	t.Run("spreadsheet failure is an error", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		router := setupRecordRouter(t, tc, failingSheet(t, http.StatusInternalServerError), nil)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/record", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	})

	t.Run("requires a session", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		router := setupRecordRouter(t, tc, csvSheet(t, sheetHeader), nil)

		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/record", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestRecordHandler_Update(t *testing.T) {
	body := map[string]string{
		"tel":     " 999 ",
		"topic":   "topic",
		"keyword": "kw",
		"title":   "title",
		"igLink":  "https://instagram.com/me",
	}

	t.Run("saved in both stores", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		reader := csvSheet(t, sheetHeader, []string{tc.User.Email, "000", "", "", "", ""})
		router := setupRecordRouter(t, tc, reader, automationHook(t, `{"success":true}`))

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/record", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"success":true,"synced":true}`, rr.Body.String())

		stored, err := member.NewGormStore(tc.DB).GetMember(testutil.TestContext(t), tc.User.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "999", stored.Tel)
		assert.Equal(t, "https://instagram.com/me", stored.SocialLink)
	})

	t.Run("spreadsheet failure is partial", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		reader := csvSheet(t, sheetHeader, []string{tc.User.Email, "000", "", "", "", ""})
		router := setupRecordRouter(t, tc, reader, automationHook(t, `{"success":false,"error":"sheet locked"}`))

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/record", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.SaveRecordResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.False(t, resp.Synced)
		assert.Contains(t, resp.Warning, "sheet locked")

		// The database keeps the new value regardless.
		stored, err := member.NewGormStore(tc.DB).GetMember(testutil.TestContext(t), tc.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "999", stored.Tel)
	})

	t.Run("writes disabled", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		router := setupRecordRouter(t, tc, csvSheet(t, sheetHeader), nil)

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/record", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"success":true,"synced":false,"warning":"spreadsheet writes disabled"}`, rr.Body.String())
	})

	t.Run("field too long", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		defer tc.Cleanup()

		router := setupRecordRouter(t, tc, csvSheet(t, sheetHeader), nil)

		long := make([]byte, 501)
		for i := range long {
			long[i] = 'x'
		}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/record", map[string]string{"title": string(long)}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
