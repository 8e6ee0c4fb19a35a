package dto

import (
	"github.com/hugh/member-sync/internal/api/validation"
	"github.com/hugh/member-sync/internal/member"
)

type RecordResponse struct {
	Record member.Record `json:"record"`
	Source member.Source `json:"source"`
}

// UpdateRecordRequest carries the editable fields. Email is never taken from
// the body; it comes from the session.
type UpdateRecordRequest struct {
	Tel     string `json:"tel"`
	Topic   string `json:"topic"`
	Keyword string `json:"keyword"`
	Title   string `json:"title"`
	IGLink  string `json:"igLink"`
}

// Fields returns the cleaned field set.
func (r UpdateRecordRequest) Fields() member.Fields {
	return member.Fields{
		Tel:        validation.CleanField(r.Tel),
		Topic:      validation.CleanField(r.Topic),
		Keyword:    validation.CleanField(r.Keyword),
		Title:      validation.CleanField(r.Title),
		SocialLink: validation.CleanField(r.IGLink),
	}
}

func (r UpdateRecordRequest) Validate() map[string]string {
	return ValidateFields(r.Fields())
}

// ValidateFields checks every editable field of a record.
func ValidateFields(f member.Fields) map[string]string {
	errors := make(map[string]string)
	for _, name := range member.EditableFields {
		if err := validation.CheckField(f.Get(name)); err != nil {
			errors[name] = err.Error()
		}
	}
	return errors
}

type SaveRecordResponse struct {
	Success bool   `json:"success"`
	Synced  bool   `json:"synced"`
	Warning string `json:"warning,omitempty"`
}
