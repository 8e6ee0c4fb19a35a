package member

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Field names, shared by the spreadsheet column map and the JSON payloads.
const (
	FieldEmail      = "email"
	FieldTel        = "tel"
	FieldTopic      = "topic"
	FieldKeyword    = "keyword"
	FieldTitle      = "title"
	FieldSocialLink = "igLink"
)

// EditableFields lists the editable field names in spreadsheet column order.
var EditableFields = []string{FieldTel, FieldTopic, FieldKeyword, FieldTitle, FieldSocialLink}

// Fields are the editable parts of a member record.
type Fields struct {
	Tel        string `json:"tel"`
	Topic      string `json:"topic"`
	Keyword    string `json:"keyword"`
	Title      string `json:"title"`
	SocialLink string `json:"igLink"`
}

// Get returns the value of an editable field by name.
func (f Fields) Get(name string) string {
	switch name {
	case FieldTel:
		return f.Tel
	case FieldTopic:
		return f.Topic
	case FieldKeyword:
		return f.Keyword
	case FieldTitle:
		return f.Title
	case FieldSocialLink:
		return f.SocialLink
	}
	return ""
}

// Set assigns an editable field by name; unknown names are ignored.
func (f *Fields) Set(name, value string) {
	switch name {
	case FieldTel:
		f.Tel = value
	case FieldTopic:
		f.Topic = value
	case FieldKeyword:
		f.Keyword = value
	case FieldTitle:
		f.Title = value
	case FieldSocialLink:
		f.SocialLink = value
	}
}

// IsEmpty reports whether every editable field is blank.
func (f Fields) IsEmpty() bool {
	return f.Tel == "" && f.Topic == "" && f.Keyword == "" && f.Title == "" && f.SocialLink == ""
}

// Record is the unit of truth. RowIndex is the 1-based spreadsheet row, or 0
// when the record was not addressed through the spreadsheet.
type Record struct {
	Email string `json:"email"`
	Fields
	RowIndex int `json:"rowIndex"`
}

// Identity is who a spreadsheet write claims to be.
type Identity struct {
	Email    string
	RowIndex int
}

// SameEmail compares emails the way the spreadsheet lookup does.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Store is the relational datastore. GetMember returns nil, nil when the
// user has no row yet.
type Store interface {
	GetMember(ctx context.Context, userID uuid.UUID) (*Record, error)
	UpdateMember(ctx context.Context, userID uuid.UUID, email string, fields Fields) error
}

// SheetReader finds a member row by email. A missing row is nil, nil.
type SheetReader interface {
	Lookup(ctx context.Context, email string) (*Record, error)
}

// SheetWriter applies field updates to the spreadsheet.
type SheetWriter interface {
	Write(ctx context.Context, who Identity, fields Fields) error
}

// RepairEnqueuer schedules a later attempt to mirror a user's database record
// into the spreadsheet.
type RepairEnqueuer interface {
	EnqueueMirror(ctx context.Context, userID uuid.UUID) error
}
