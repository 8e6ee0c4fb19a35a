package web

import (
	"errors"
	"strings"

	"github.com/hugh/member-sync/internal/api/validation"
	"github.com/hugh/member-sync/internal/auth"
)

// Messages shown on the web pages.
const (
	MsgSignedIn         = "登入成功！"
	MsgSignedUp         = "註冊成功！請登入。"
	MsgSaved            = "資料已儲存"
	MsgSavedNotSynced   = "資料已儲存，但未能同步到 Google Sheet"
	MsgNotInSheet       = "在表格中找不到您的資料"
	MsgFetchFailed      = "獲取資料失敗"
	MsgInvalidEmail     = "請輸入有效的電郵地址"
	MsgPasswordTooShort = "密碼至少需要6個字符"
	MsgBadCredentials   = "電郵或密碼不正確"
	MsgAlreadyExists    = "此電郵已註冊"
	MsgGeneric          = "發生錯誤，請稍後再試"
)

// FriendlyError turns an error into the message shown to the member. Anything
// unrecognised gets the generic message so internals never reach the page.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, validation.ErrInvalidEmail):
		return MsgInvalidEmail
	case errors.Is(err, validation.ErrPasswordTooShort):
		return MsgPasswordTooShort
	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgBadCredentials
	case errors.Is(err, auth.ErrUserExists):
		return MsgAlreadyExists
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "invalid login credentials"):
		return MsgBadCredentials
	case strings.Contains(msg, "already registered"):
		return MsgAlreadyExists
	}
	return MsgGeneric
}
