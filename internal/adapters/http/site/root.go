// Package site serves the embedded landing page.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the landing page routes to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.FileServer(FS())
	r.Get("/", files.ServeHTTP)
	r.Get("/site.css", files.ServeHTTP)
}
