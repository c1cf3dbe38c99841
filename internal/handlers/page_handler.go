package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
)

// PageHandler serves the single-page browser client and its static assets.
type PageHandler struct {
	logger    arbor.ILogger
	staticDir string
}

// NewPageHandler creates a new PageHandler rooted at staticDir.
func NewPageHandler(staticDir string, logger arbor.ILogger) *PageHandler {
	resolved := findStaticDir(staticDir)
	logger.Debug().Str("static_dir", resolved).Msg("Serving static assets")
	return &PageHandler{
		logger:    logger,
		staticDir: resolved,
	}
}

// findStaticDir locates the static assets directory, checking the configured
// path first and then locations relative to the binary.
func findStaticDir(configured string) string {
	candidates := []string{
		configured,
		"./web/static",
		"../web/static",
		"./static",
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}
	return configured
}

// IndexHandler serves the client page at /.
func (h *PageHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}

// StaticFileHandler serves files under /static/.
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath := filepath.Join(h.staticDir, filepath.Clean("/"+path))

	// Prevent directory traversal
	if !strings.HasPrefix(fullPath, h.staticDir) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
