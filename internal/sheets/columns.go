package sheets

import (
	"fmt"
	"strings"

	"github.com/hugh/member-sync/internal/member"
)

// Column maps a record field to its spreadsheet column.
type Column struct {
	Field  string
	Letter string
}

// Columns is the single positional layout shared by the readers and the
// cell writer. Email must stay first: it is the lookup key.
var Columns = []Column{
	{Field: member.FieldEmail, Letter: "A"},
	{Field: member.FieldTel, Letter: "B"},
	{Field: member.FieldTopic, Letter: "C"},
	{Field: member.FieldKeyword, Letter: "D"},
	{Field: member.FieldTitle, Letter: "E"},
	{Field: member.FieldSocialLink, Letter: "F"},
}

// EditableColumns are every column except the email key.
func EditableColumns() []Column {
	return Columns[1:]
}

func firstLetter() string { return Columns[0].Letter }
func lastLetter() string  { return Columns[len(Columns)-1].Letter }

// RecordFromRow builds a record from a row laid out as Columns. Missing
// trailing cells read as empty.
func RecordFromRow(row []string, rowIndex int) member.Record {
	rec := member.Record{RowIndex: rowIndex}
	for i, col := range Columns {
		var value string
		if i < len(row) {
			value = row[i]
		}
		if col.Field == member.FieldEmail {
			rec.Email = value
			continue
		}
		rec.Fields.Set(col.Field, value)
	}
	return rec
}

// a1 builds an A1 range for the sheet, quoting names that need it.
func a1(sheet, ref string) string {
	return quoteSheet(sheet) + "!" + ref
}

func quoteSheet(sheet string) string {
	for _, r := range sheet {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
		}
	}
	return sheet
}

func cellRef(letter string, row int) string {
	return fmt.Sprintf("%s%d", letter, row)
}

func rowRange(row int) string {
	return fmt.Sprintf("%s%d:%s%d", firstLetter(), row, lastLetter(), row)
}

func allRowsRange() string {
	return firstLetter() + ":" + lastLetter()
}
