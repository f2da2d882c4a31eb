package handler

import (
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// errorPage is rendered for browser-facing failures: the OAuth callback and
// unknown routes when the static dir has no 404.html.
var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Status}} · APTx</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<p><a href="/">Retour à l'accueil</a></p>
</body>
</html>
`))

type errorPageData struct {
	Status  int
	Title   string
	Message string
}

// PageHandler serves the HTML side of the site: the index page, static
// assets and error pages.
type PageHandler struct {
	staticDir string
	logger    *slog.Logger
}

func NewPageHandler(staticDir string, logger *slog.Logger) *PageHandler {
	return &PageHandler{staticDir: staticDir, logger: logger}
}

// HandleIndex serves <staticDir>/index.html.
//
// HTTP: GET /
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(h.staticDir, "index.html"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Error("reading index.html", slog.String("error", err.Error()))
		}
		h.HandleNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// Static serves files below the static dir. Mount it on /public/*.
// Directory listings are not served.
// Files are served as-is under their own name; index.html is not redirected
// to its directory.
func (h *PageHandler) Static(prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + strings.TrimPrefix(r.URL.Path, prefix))
		f, err := os.Open(filepath.Join(h.staticDir, filepath.FromSlash(name)))
		if err != nil {
			h.HandleNotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			h.HandleNotFound(w, r)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

// HandleNotFound answers 404 with <staticDir>/404.html, or a built-in page
// when that file does not exist.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(h.staticDir, "404.html"))
	if err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write(data)
		return
	}
	h.RenderError(w, http.StatusNotFound, "404 - Page introuvable", "")
}

// HandleMethodNotAllowed answers 405 for a known path with the wrong method.
func (h *PageHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:   "method_not_allowed",
		Message: r.Method + " is not allowed on " + r.URL.Path,
	})
}

// RenderError writes an HTML error page.
func (h *PageHandler) RenderError(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorPage.Execute(w, errorPageData{Status: status, Title: title, Message: message}); err != nil {
		h.logger.Error("failed to render error page", slog.String("error", err.Error()))
	}
}
