// Package site serves the embedded tracker front end.
package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the front end to r. Routes registered on r with a more
// specific pattern take precedence over the catch-all.
func Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/*", NewRootHandler().HandleRoot)
}

// RootHandler serves the embedded static files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// HandleRoot handles GET requests for the page and its assets.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
