package member

// Source names the store a reconciled record came from.
type Source string

const (
	SourceDatabase    Source = "database"
	SourceSpreadsheet Source = "spreadsheet"
	SourceEmpty       Source = "empty"
)

// Authority is the precedence policy between the two stores: the database is
// authoritative as soon as it holds any non-empty editable field, otherwise
// the spreadsheet is consulted.
func Authority(db *Record) Source {
	if db != nil && !db.Fields.IsEmpty() {
		return SourceDatabase
	}
	return SourceSpreadsheet
}

// Skeleton is the empty record served to a first-time member.
func Skeleton(email string) Record {
	return Record{Email: email}
}
