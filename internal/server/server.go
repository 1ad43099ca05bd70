// Package server serves the question form and a JSON answer API.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/TobiSchelling/postqa/internal/assistant"
	"github.com/TobiSchelling/postqa/internal/compose"
	"github.com/TobiSchelling/postqa/internal/database"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

const recentLimit = 10

// Server is the HTTP front end of the assistant.
type Server struct {
	db       *database.DB
	asst     *assistant.Assistant
	composer *compose.Composer
	logger   *zap.SugaredLogger
	pages    map[string]*template.Template
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithComposer enables the post drafting form.
func WithComposer(c *compose.Composer) Option {
	return func(s *Server) { s.composer = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new Server.
func New(db *database.DB, asst *assistant.Assistant, opts ...Option) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} doesn't clash.
	pageNames := []string{"index.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		db:     db,
		asst:   asst,
		logger: zap.NewNop().Sugar(),
		pages:  pages,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	r.Get("/", s.handleIndex)
	r.Post("/ask", s.handleAsk)
	r.Post("/compose", s.handleCompose)
	r.Post("/reload", s.handleReload)
	r.Get("/api/answer", s.handleAPIAnswer)

	s.router = r
}

type page struct {
	Question    string
	Reply       *assistant.Reply
	Prompt      string
	Drafts      []database.Draft
	NewDrafts   []database.Draft
	Questions   []database.Question
	Posts       int
	CanGenerate bool
	CanCompose  bool
	Error       string
}

func (s *Server) newPage() *page {
	p := &page{
		Posts:       len(s.asst.Collection()),
		CanGenerate: s.asst.CanGenerate(),
		CanCompose:  s.composer != nil,
	}
	var err error
	if p.Questions, err = s.db.RecentQuestions(recentLimit); err != nil {
		s.logger.Warnf("loading recent questions: %v", err)
	}
	if p.Drafts, err = s.db.RecentDrafts(recentLimit); err != nil {
		s.logger.Warnf("loading recent drafts: %v", err)
	}
	return p
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", s.newPage())
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	reply := s.asst.Ask(r.Context(), question, r.FormValue("generate") != "off")
	p := s.newPage()
	p.Question = question
	p.Reply = &reply
	s.render(w, "index.html", p)
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	p := s.newPage()
	p.Prompt = strings.TrimSpace(r.FormValue("prompt"))

	if s.composer == nil {
		p.Error = compose.ErrNoProvider.Error()
		s.renderStatus(w, http.StatusServiceUnavailable, "index.html", p)
		return
	}

	if r.FormValue("mode") == "top" {
		drafts, err := s.composer.FromTopPosts(r.Context(), s.asst.Collection())
		if err != nil {
			p.Error = err.Error()
		}
		p.NewDrafts = drafts
	} else {
		d, err := s.composer.FromPrompt(r.Context(), p.Prompt)
		if err != nil {
			p.Error = err.Error()
		} else {
			p.NewDrafts = []database.Draft{*d}
		}
	}
	if p.Error != "" {
		s.logger.Warnf("compose: %s", p.Error)
	}
	s.render(w, "index.html", p)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	c, err := s.db.LoadCollection()
	if err != nil {
		s.logger.Errorf("reloading posts: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reload failed"})
		return
	}
	s.asst.Swap(c)
	s.logger.Infof("reloaded %d posts", len(c))
	writeJSON(w, http.StatusOK, map[string]int{"posts": len(c)})
}

func (s *Server) handleAPIAnswer(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.URL.Query().Get("q"))
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing q parameter"})
		return
	}
	generate := r.URL.Query().Get("generate") != "false"
	writeJSON(w, http.StatusOK, s.asst.Ask(r.Context(), question, generate))
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	s.renderStatus(w, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Errorf("template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.logger.Errorf("rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func (s *Server) Serve(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	s.logger.Infof("server listening on http://%s", addr)
	err := http.ListenAndServe(addr, s.Handler())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
