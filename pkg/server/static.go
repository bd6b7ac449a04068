package server

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFiles embed.FS

// staticHandler serves the embedded dashboard assets at the site root.
func staticHandler() http.Handler {
	content, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	return http.StripPrefix("/", http.FileServer(http.FS(content)))
}
