package ui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static/*
var content embed.FS

var static = mustSub(content, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Routes serves the bill check form. Mount it under a prefix, e.g.
// r.Mount("/ui", ui.Routes()).
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, req, static, "index.html")
	})
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "*")
		if !fs.ValidPath(name) {
			http.NotFound(w, req)
			return
		}
		http.ServeFileFS(w, req, static, name)
	})
	return r
}
