package web

import (
	"embed"
	"io/fs"
)

//go:embed dist/*
var content embed.FS

// Assets returns the embedded graph explorer UI rooted at dist/.
func Assets() (fs.FS, error) {
	return fs.Sub(content, "dist")
}
