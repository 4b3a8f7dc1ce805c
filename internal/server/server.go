package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/BriefStudio/internal/imagecache"
	"github.com/TobiSchelling/BriefStudio/internal/results"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the local backend: the JSON result store and image cache API,
// plus HTML pages for browsing generated runs.
type Server struct {
	store results.Store
	cache imagecache.Cache
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(store results.Store, cache imagecache.Cache) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2 Jan 2006 15:04")
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of the base so its "title" and "content"
	// blocks do not collide.
	pageNames := []string{"index.html", "result.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{store: store, cache: cache, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /results/{id}", s.handleResult)

	s.mux.Handle("POST /api/results", authed(s.handleSaveResult))
	s.mux.Handle("GET /api/results", authed(s.handleListResults))
	s.mux.Handle("GET /api/results/{id}", authed(s.handleGetResult))
	s.mux.Handle("PATCH /api/results/{id}", authed(s.handleUpdateResult))

	s.mux.Handle("POST /api/image-cache", authed(s.handleCacheAdd))
	s.mux.Handle("GET /api/image-cache", authed(s.handleCacheFind))
	s.mux.Handle("GET /api/image-cache/stats", authed(s.handleCacheStats))
	s.mux.Handle("POST /api/image-cache/cleanup", authed(s.handleCacheCleanup))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context(), 50)
	if err != nil {
		log.Printf("Error listing results: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, "index.html", map[string]any{
		"Results": list,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := s.store.Get(r.Context(), id)
	if err != nil {
		log.Printf("Error reading result %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result == nil {
		status = http.StatusNotFound
	}
	s.render(w, status, "result.html", map[string]any{
		"Result":  result,
		"BriefID": id,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(store results.Store, cache imagecache.Cache, port int) error {
	srv, err := New(store, cache)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
