package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/member-sync/internal/api/dto"
	"github.com/hugh/member-sync/internal/api/middleware"
	"github.com/hugh/member-sync/internal/api/validation"
	"github.com/hugh/member-sync/internal/auth"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/web"
)

// WebHandler serves the server-rendered sign-in and dashboard pages.
type WebHandler struct {
	authService auth.Authenticator
	records     RecordService
	templates   *web.Templates
	csrf        *middleware.CSRFStore
	cookies     SessionCookies
	logger      *slog.Logger
}

func NewWebHandler(authService auth.Authenticator, records RecordService, templates *web.Templates, csrf *middleware.CSRFStore, cookies SessionCookies, logger *slog.Logger) *WebHandler {
	return &WebHandler{
		authService: authService,
		records:     records,
		templates:   templates,
		csrf:        csrf,
		cookies:     cookies,
		logger:      logger,
	}
}

func (h *WebHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", web.LoginPage{
		SignUp: r.URL.Query().Get("mode") == "signup",
	})
}

// Login handles both the sign-in and the sign-up form.
func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", web.LoginPage{Flash: web.ErrorFlash(err)})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	signUp := r.PostFormValue("mode") == "signup"
	page := web.LoginPage{Email: email, SignUp: signUp}

	if err := validation.CheckCredentials(email, password); err != nil {
		page.Flash = web.ErrorFlash(err)
		h.render(w, http.StatusBadRequest, "login.html", page)
		return
	}

	creds := auth.Credentials{Email: email, Password: password}

	if signUp {
		if _, err := h.authService.SignUp(r.Context(), creds); err != nil {
			h.logFailure("sign-up failed", err)
			page.Flash = web.ErrorFlash(err)
			h.render(w, statusFor(err), "login.html", page)
			return
		}
		// Sign-up lands back on the sign-in form.
		h.render(w, http.StatusOK, "login.html", web.LoginPage{
			Email: email,
			Flash: web.SuccessFlash(web.MsgSignedUp),
		})
		return
	}

	session, err := h.authService.SignIn(r.Context(), creds)
	if err != nil {
		h.logFailure("sign-in failed", err)
		page.Flash = web.ErrorFlash(err)
		h.render(w, statusFor(err), "login.html", page)
		return
	}

	h.cookies.Set(w, session.Token)
	http.Redirect(w, r, "/dashboard?flash=signed_in", http.StatusSeeOther)
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		h.logger.Error("sign-out failed", "error", err)
	}
	h.cookies.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *WebHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page := h.dashboardPage(r)

	rec, source, err := h.records.GetRecord(r.Context(), middleware.GetUserID(r.Context()), page.Email)
	if err != nil {
		h.logger.Error("failed to load record", "error", err)
		page.Record = member.Skeleton(page.Email)
		page.Flash = &web.Flash{Kind: "error", Text: web.MsgFetchFailed}
		h.render(w, http.StatusOK, "dashboard.html", page)
		return
	}

	page.Record = rec
	page.Source = source
	page.Missing = source == member.SourceEmpty

	switch {
	case r.URL.Query().Get("flash") == "signed_in":
		page.Flash = web.SuccessFlash(web.MsgSignedIn)
	case page.Missing:
		page.Flash = web.InfoFlash(web.MsgNotInSheet)
	}

	h.render(w, http.StatusOK, "dashboard.html", page)
}

func (h *WebHandler) SaveDashboard(w http.ResponseWriter, r *http.Request) {
	page := h.dashboardPage(r)

	req := dto.UpdateRecordRequest{
		Tel:     r.PostFormValue("tel"),
		Topic:   r.PostFormValue("topic"),
		Keyword: r.PostFormValue("keyword"),
		Title:   r.PostFormValue("title"),
		IGLink:  r.PostFormValue("igLink"),
	}
	fields := req.Fields()
	page.Record = member.Record{Email: page.Email, Fields: fields}
	page.Source = member.SourceDatabase

	if errs := req.Validate(); len(errs) > 0 {
		page.Flash = &web.Flash{Kind: "error", Text: web.MsgGeneric}
		h.render(w, http.StatusBadRequest, "dashboard.html", page)
		return
	}

	result, err := h.records.SaveRecord(r.Context(), middleware.GetUserID(r.Context()), page.Email, fields)
	switch {
	case err != nil:
		h.logger.Error("failed to save record", "error", err)
		page.Flash = web.ErrorFlash(err)
	case result.Synced():
		page.Flash = web.SuccessFlash(web.MsgSaved)
	default:
		page.Flash = web.InfoFlash(web.MsgSavedNotSynced)
	}

	h.render(w, http.StatusOK, "dashboard.html", page)
}

func (h *WebHandler) dashboardPage(r *http.Request) web.DashboardPage {
	return web.DashboardPage{
		Email:     middleware.GetUserEmail(r.Context()),
		CSRFToken: middleware.GetCSRFToken(r, h.csrf),
	}
}

func (h *WebHandler) logFailure(msg string, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserExists) {
		h.logger.Info(msg, "error", err)
		return
	}
	h.logger.Error(msg, "error", err)
}

func (h *WebHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.templates.Render(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInactiveUser):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
