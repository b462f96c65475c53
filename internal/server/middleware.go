package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/avral/gatehouse/internal/auth"
	"github.com/avral/gatehouse/internal/logger"
	"github.com/avral/gatehouse/internal/session"
)

type ctxKey int

const ctxSession ctxKey = iota

// withSession resolves the session state for every request and carries it
// on the request context as an explicit *session.State. Authenticated
// requests pick their remembered navigation position up from the
// persisted session file; anonymous requests get one attempt to restore
// identity from it, and a successful restore re-issues the auth cookie so
// later requests skip the file.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := a.readAuth(r)
		if st.Authenticated {
			if ld, ok := a.sessions.Load(); ok && ld.Username == st.Username {
				st.CurrentPage = ld.CurrentPage
				st.CurrentSection = ld.CurrentSection
			}
		} else if a.sessions.Restore(st) {
			if tok, err := auth.SignCookie(a.secret, st.Username, st.IsAdmin); err == nil {
				a.issueCookie(w, tok)
			} else {
				logger.Warn("Re-issuing cookie after restore failed: %v", err)
			}
		}
		ctx := context.WithValue(r.Context(), ctxSession, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// readAuth builds the request's session state from the auth cookie, or
// from an Authorization: Bearer header as a fallback.
func (a *App) readAuth(r *http.Request) *session.State {
	st := &session.State{CurrentPage: "default"}

	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		if cl, err := auth.ParseCookie(a.secret, c.Value); err == nil {
			st.Authenticated = true
			st.Username = cl.Username
			st.IsAdmin = cl.Admin
			return st
		}
	}
	authz := r.Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if cl, err := auth.ParseCookie(a.secret, strings.TrimSpace(parts[1])); err == nil {
				st.Authenticated = true
				st.Username = cl.Username
				st.IsAdmin = cl.Admin
			}
		}
	}
	return st
}

func stateFrom(r *http.Request) *session.State {
	if v := r.Context().Value(ctxSession); v != nil {
		if st, ok := v.(*session.State); ok {
			return st
		}
	}
	return &session.State{}
}

func (a *App) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !stateFrom(r).Authenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

func (a *App) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !stateFrom(r).IsAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h(w, r)
	})
}
