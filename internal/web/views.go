package web

import "github.com/hugh/member-sync/internal/member"

// Flash is a one-shot notice rendered at the top of a page.
type Flash struct {
	Kind string // error, success or info
	Text string
}

func ErrorFlash(err error) *Flash { return &Flash{Kind: "error", Text: FriendlyError(err)} }
func SuccessFlash(text string) *Flash { return &Flash{Kind: "success", Text: text} }
func InfoFlash(text string) *Flash { return &Flash{Kind: "info", Text: text} }

type LoginPage struct {
	Flash  *Flash
	Email  string
	SignUp bool
}

type DashboardPage struct {
	Flash     *Flash
	Email     string
	CSRFToken string
	Record    member.Record
	Source    member.Source
	Missing   bool
}

// SourceLabel names where the shown record came from.
func (p DashboardPage) SourceLabel() string {
	switch p.Source {
	case member.SourceDatabase:
		return "資料庫"
	case member.SourceSpreadsheet:
		return "Google Sheet"
	default:
		return "新記錄"
	}
}
