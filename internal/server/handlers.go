package server

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/avral/gatehouse/internal/auth"
	"github.com/avral/gatehouse/internal/logger"
	"github.com/avral/gatehouse/internal/session"
	"github.com/avral/gatehouse/internal/userstore"
)

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func (a *App) baseData(r *http.Request) *ViewData {
	st := stateFrom(r)
	data := &ViewData{
		Authed:   st.Authenticated,
		Username: st.Username,
		Admin:    st.IsAdmin,
		Sections: a.sections,
	}
	if r.URL.Query().Get("ok") == "1" {
		data.Flash = "Saved."
		data.FlashKind = "ok"
	}
	if r.URL.Query().Get("err") == "1" {
		data.Flash = "Request failed."
		data.FlashKind = "err"
	}
	if f := r.URL.Query().Get("flash"); f != "" {
		data.Flash = f
		data.FlashKind = "err"
	}
	return data
}

func (a *App) renderPage(w http.ResponseWriter, page string, data *ViewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t := a.pages[page]
	if t == nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("renderPage template execution failed for %s: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// saveNav records the current navigation position in the request state
// and persists it. Persistence failures only cost restart survival, so
// they are logged and the page still renders.
func (a *App) saveNav(st *session.State, page, section string) {
	st.CurrentPage = page
	st.CurrentSection = section
	if err := a.sessions.Save(st.Username, st.IsAdmin, page, section); err != nil {
		logger.Warn("Persisting session for %s: %v", st.Username, err)
	}
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if stateFrom(r).Authenticated {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		a.renderPage(w, "login", &ViewData{HideNav: true})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: "Username and password are required.", FlashKind: "err"})
		return
	}

	ok, admin, err := a.users.Verify(r.Context(), username, password)
	if err != nil {
		logger.Error("Verifying credentials for %s: %v", username, err)
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: "Login failed. Please try again.", FlashKind: "err"})
		return
	}
	if !ok {
		// One message for unknown user and wrong password.
		logger.Info("Failed login attempt for user %s from %s", username, remoteIP(r))
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: "Invalid username or password.", FlashKind: "err"})
		return
	}

	tok, err := auth.SignCookie(a.secret, username, admin)
	if err != nil {
		logger.Error("Signing cookie for %s: %v", username, err)
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: "Failed to create session.", FlashKind: "err"})
		return
	}
	a.issueCookie(w, tok)
	if err := a.sessions.Save(username, admin, "default", ""); err != nil {
		logger.Warn("Persisting session for %s: %v", username, err)
	}
	logger.Info("User %s logged in from %s", username, remoteIP(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	st := stateFrom(r)
	if err := a.sessions.Clear(); err != nil {
		logger.Warn("Clearing persisted session: %v", err)
	}
	a.clearCookie(w)
	logger.Info("User %s logged out from %s", st.Username, remoteIP(r))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHome sends the browser to wherever the session last was: the
// admin panel for admins who were there, else the remembered section,
// else the first section.
func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	st := stateFrom(r)
	if st.CurrentPage == "admin" && st.IsAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	if _, ok := a.findSection(st.CurrentSection); ok {
		http.Redirect(w, r, "/sections/"+url.PathEscape(st.CurrentSection), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/sections/"+url.PathEscape(a.sections[0].ID), http.StatusSeeOther)
}

func (a *App) handleSection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/sections/")
	sec, ok := a.findSection(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	st := stateFrom(r)
	a.saveNav(st, "default", sec.ID)

	data := a.baseData(r)
	data.Active = sec.ID
	data.Section = sec
	a.renderPage(w, "dashboard", data)
}

func (a *App) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	st := stateFrom(r)
	a.saveNav(st, "admin", "")

	data := a.baseData(r)
	users, err := a.users.ListOthers(r.Context())
	if err != nil {
		logger.Error("Listing users: %v", err)
		data.Flash = "Failed to load user list."
		data.FlashKind = "err"
	}
	for _, u := range users {
		data.Users = append(data.Users, UserRow{Name: u.Username, Admin: u.IsAdmin})
	}
	a.renderPage(w, "admin", data)
}

func (a *App) handleAdminUsersCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	isAdmin := r.Form.Get("is_admin") != ""

	err := a.users.Create(r.Context(), username, password, isAdmin)
	switch {
	case errors.Is(err, userstore.ErrEmptyCredentials):
		redirectFlash(w, r, "/admin", "Username and password are required.")
		return
	case errors.Is(err, userstore.ErrUserExists):
		redirectFlash(w, r, "/admin", "Username '"+username+"' already exists.")
		return
	case err != nil:
		logger.Error("Admin create user %s failed: %v", username, err)
		http.Redirect(w, r, "/admin?err=1", http.StatusSeeOther)
		return
	}

	logger.Info("Admin %s created user %s from %s (admin: %t)", stateFrom(r).Username, username, remoteIP(r), isAdmin)
	http.Redirect(w, r, "/admin?ok=1", http.StatusSeeOther)
}

func (a *App) handleAdminUsersPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get("username"))
	newPassword := r.Form.Get("new_password")

	err := a.users.UpdatePassword(r.Context(), username, newPassword)
	switch {
	case errors.Is(err, userstore.ErrEmptyCredentials):
		redirectFlash(w, r, "/admin", "Please select a user and enter a new password.")
		return
	case errors.Is(err, userstore.ErrUserNotFound):
		redirectFlash(w, r, "/admin", "Unknown user.")
		return
	case err != nil:
		logger.Error("Admin password update for %s failed: %v", username, err)
		http.Redirect(w, r, "/admin?err=1", http.StatusSeeOther)
		return
	}

	logger.Info("Admin %s updated password for %s from %s", stateFrom(r).Username, username, remoteIP(r))
	http.Redirect(w, r, "/admin?ok=1", http.StatusSeeOther)
}

func redirectFlash(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?flash="+url.QueryEscape(msg), http.StatusSeeOther)
}
