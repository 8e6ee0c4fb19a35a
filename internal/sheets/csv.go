package sheets

import "strings"

// ParseCSV parses the spreadsheet's CSV export. It is a minimal parser:
// a double quote toggles quoted mode and commas inside quotes do not split,
// but escaped quotes and newlines inside a field are not supported. Cells are
// trimmed and blank lines dropped.
func ParseCSV(text string) [][]string {
	var rows [][]string

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var (
			cells    []string
			current  strings.Builder
			inQuotes bool
		)
		for _, ch := range line {
			switch {
			case ch == '"':
				inQuotes = !inQuotes
			case ch == ',' && !inQuotes:
				cells = append(cells, strings.TrimSpace(current.String()))
				current.Reset()
			default:
				current.WriteRune(ch)
			}
		}
		cells = append(cells, strings.TrimSpace(current.String()))
		rows = append(rows, cells)
	}

	return rows
}
