package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// CoverHandler serves cover images from a directory.
type CoverHandler struct {
	dir string
}

func NewCoverHandler(dir string) *CoverHandler {
	return &CoverHandler{dir: dir}
}

// Routes returns the HTTP routes this handler serves.
func (h *CoverHandler) Routes() []string {
	return []string{"/images/songs/{image}"}
}

// ServeHTTP writes the named cover file. Names with path separators or leading dots are not found.
func (h *CoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := Vars(r)["image"]
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, path)
}
