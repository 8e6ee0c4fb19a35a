// Package sheetstest provides an in-process fake of the Sheets v4 values API
// for tests.
package sheetstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

// SpreadsheetID is the only spreadsheet the fake serves.
const SpreadsheetID = "sheet-id"

var rowRangePattern = regexp.MustCompile(`![A-Z]+(\d+):[A-Z]+(\d+)$`)

// Server serves Values.Get, Values.Update and Values.BatchUpdate over rows.
type Server struct {
	mu      sync.Mutex
	rows    [][]string
	puts    []string
	batches [][]string
	failPut int
	srv     *httptest.Server
}

// NewServer starts a fake holding rows, header first. It is closed when the
// test ends.
func NewServer(t *testing.T, rows [][]string) *Server {
	t.Helper()

	s := &Server{rows: rows}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

// Options point a Sheets client at the fake.
func (s *Server) Options() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.URL()),
		option.WithHTTPClient(s.srv.Client()),
	}
}

// URL is the API root of the fake, usable as a client endpoint.
func (s *Server) URL() string {
	return s.srv.URL + "/"
}

// FailPut makes the n-th single-cell update (1-based) answer 500.
func (s *Server) FailPut(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut = n
}

// Puts returns the ranges written by single-cell updates, in order.
func (s *Server) Puts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.puts...)
}

// Batches returns the ranges of each batch update.
func (s *Server) Batches() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.batches...)
}

// WriteCount is the number of write calls of either kind.
func (s *Server) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts) + len(s.batches)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := "/v4/spreadsheets/" + SpreadsheetID + "/values"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	switch {
	case r.Method == http.MethodPost && rest == ":batchUpdate":
		var req struct {
			Data []struct {
				Range string `json:"range"`
			} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		var ranges []string
		for _, d := range req.Data {
			ranges = append(ranges, d.Range)
		}
		s.batches = append(s.batches, ranges)
		writeJSON(w, http.StatusOK, map[string]interface{}{"totalUpdatedCells": len(ranges)})

	case r.Method == http.MethodGet:
		rng := strings.TrimPrefix(rest, "/")
		values := s.rows
		if m := rowRangePattern.FindStringSubmatch(rng); m != nil {
			row, _ := strconv.Atoi(m[1])
			values = nil
			if row >= 1 && row <= len(s.rows) {
				values = [][]string{s.rows[row-1]}
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"range":          rng,
			"majorDimension": "ROWS",
			"values":         values,
		})

	case r.Method == http.MethodPut:
		s.puts = append(s.puts, strings.TrimPrefix(rest, "/"))
		if s.failPut == len(s.puts) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error": map[string]interface{}{"code": 500, "message": "backend error"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"updatedCells": 1})

	default:
		http.Error(w, "unexpected call", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
