package ui

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/cortexcompose/compose/internal/logger"
	"github.com/go-chi/chi/v5"
)

// SessionCookie names the cookie that carries the session id.
const SessionCookie = "compose_session"

// DefaultRefreshInterval is how often a loading page reloads itself.
const DefaultRefreshInterval = 2 * time.Second

//go:embed templates
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"imageSrc": imageSrc,
}).ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	State          State
	RefreshSeconds int
}

// Handler serves the page and the form endpoint.
type Handler struct {
	sessions     *SessionStore
	refresh      time.Duration
	secureCookie bool
}

func NewHandler(sessions *SessionStore, refresh time.Duration, secureCookie bool) *Handler {
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	return &Handler{
		sessions:     sessions,
		refresh:      refresh,
		secureCookie: secureCookie,
	}
}

// Routes mounts the page, the form endpoint and the stylesheet on r.
func (h *Handler) Routes(r chi.Router) {
	static, _ := fs.Sub(templateFS, "templates")
	r.Get("/", h.HandleIndex)
	r.Post("/generate", h.HandleGenerate)
	r.Get("/static/style.css", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "style.css")
	})
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	data := pageData{
		State:          s.Snapshot(),
		RefreshSeconds: int(math.Ceil(h.refresh.Seconds())),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render page", "error", err, logger.WithTraceContext(r.Context()))
	}
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	s := h.session(w, r)

	// The cycle outlives the request; it keeps the trace but not the deadline.
	s.Submit(context.WithoutCancel(r.Context()), r.PostFormValue("ingredients"))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// session resolves the visitor's session, issuing a cookie for new visitors.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	id, s, created := h.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

// imageSrc lets generated data URIs and http(s) links through the template's
// URL sanitizer.
func imageSrc(ref string) template.URL {
	switch {
	case strings.HasPrefix(ref, "data:image/"),
		strings.HasPrefix(ref, "https://"),
		strings.HasPrefix(ref, "http://"):
		return template.URL(ref)
	default:
		return ""
	}
}
