package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/avral/gatehouse/internal/auth"
	"github.com/avral/gatehouse/internal/session"
	"github.com/avral/gatehouse/internal/userstore"
)

//go:embed templates/*.html
var templatesFS embed.FS

type App struct {
	secret     []byte
	cookieName string
	pages      map[string]*template.Template
	users      *userstore.Store
	sessions   *session.Store
	sections   []SectionView
}

// ViewData carries everything the page templates can show.
type ViewData struct {
	Authed   bool
	Username string
	Admin    bool
	HideNav  bool

	Flash     string
	FlashKind string // ok|err|""

	// dashboard
	Sections []SectionView
	Active   string
	Section  SectionView

	// admin
	Users []UserRow
}

type UserRow struct {
	Name  string
	Admin bool
}

func newApp(cfg Config) (*App, error) {
	base := template.New("layout.html")

	pages := map[string]*template.Template{}
	for _, page := range []string{"login", "dashboard", "admin"} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		// Each page file defines the same block names (title/content);
		// parse layout first, then the page to override the blocks.
		if _, err := t.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html"); err != nil {
			return nil, err
		}
		pages[page] = t
	}

	sections, err := loadSections()
	if err != nil {
		return nil, err
	}

	return &App{
		secret:     cfg.Secret,
		cookieName: auth.CookieName,
		pages:      pages,
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		sections:   sections,
	}, nil
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.requireAuth(a.handleLogout))

	mux.HandleFunc("/", a.requireAuth(a.handleHome))
	mux.HandleFunc("/sections/", a.requireAuth(a.handleSection))

	mux.HandleFunc("/admin", a.requireAdmin(a.handleAdmin))
	mux.HandleFunc("/admin/users/create", a.requireAdmin(a.handleAdminUsersCreate))
	mux.HandleFunc("/admin/users/password", a.requireAdmin(a.handleAdminUsersPassword))

	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})

	return a.withSession(mux)
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   int(auth.CookieTTL / time.Second),
	})
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   -1,
	})
}
