package sheets

import (
	"strings"

	"github.com/hugh/member-sync/internal/member"
)

// Match is a data row found by email.
type Match struct {
	Row      []string
	RowIndex int // 1-based, so the first data row is 2
}

// FindByEmail scans the data rows in order, skipping the header at index 0,
// and returns the first row whose email matches ignoring case and
// surrounding whitespace.
func FindByEmail(rows [][]string, email string) (Match, bool) {
	want := strings.TrimSpace(email)
	if want == "" {
		return Match{}, false
	}

	for i := 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		if member.SameEmail(rows[i][0], want) {
			return Match{Row: rows[i], RowIndex: i + 1}, true
		}
	}
	return Match{}, false
}
